package system

import (
	"image"
	"sync"
)

// FramePool recycles RGBA frame buffers by size so the render loop and the
// capture path do not allocate a full output frame on every tick.
type FramePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewFramePool()

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage returns a zero-origin buffer of size w×h from the shared pool.
// The contents are not cleared.
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage hands a buffer back to the shared pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *FramePool) Get(w, h int) *image.RGBA {
	key := image.Pt(w, h)
	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		pool, ok = p.pools[key]
		if !ok {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rect(0, 0, key.X, key.Y))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put ignores buffers of a size the pool never handed out, and sub-images.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) || img.Stride != 4*img.Rect.Dx() {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Max]
	p.mu.RUnlock()

	if ok {
		pool.Put(img)
	}
}
