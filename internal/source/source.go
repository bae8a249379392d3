package source

import (
	"context"
	"image"
	"sync"
)

// Constraints is what the caller asks the camera for.
type Constraints struct {
	Facing string // "user" prefers the front camera
	Audio  bool
	Width  int // preferred intrinsic size, 0 = device default
	Height int
}

// DefaultConstraints asks for the front camera without audio.
func DefaultConstraints() Constraints {
	return Constraints{Facing: "user", Audio: false}
}

// LiveSource is a continuously updating raster. Frame never blocks and
// returns nil until the first frame has arrived. Stop releases every
// underlying track and is safe to call more than once.
type LiveSource interface {
	Frame() image.Image
	Size() (width, height int)
	Stop() error
}

// Camera hands out live sources. Acquire may block on permission and device
// negotiation; failures are reported as *AcquisitionError.
type Camera interface {
	Acquire(ctx context.Context, c Constraints) (LiveSource, error)
}

// mailbox keeps only the latest frame: publishers overwrite, readers never wait.
type mailbox struct {
	mu    sync.RWMutex
	frame image.Image
	seq   uint64
}

func (m *mailbox) publish(img image.Image) {
	m.mu.Lock()
	m.frame = img
	m.seq++
	m.mu.Unlock()
}

func (m *mailbox) latest() (image.Image, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame, m.seq
}

func (m *mailbox) size() (int, int) {
	img, _ := m.latest()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
