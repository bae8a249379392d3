// Package overlay loads the decorative frame drawn on top of the composite.
// The asset is loaded once, in the background; until it is ready (or when it
// fails) drawing it is a no-op.
package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// State of the asset.
type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssetLoadError is logged, never surfaced to the user.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("overlay %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Overlay is an immutable image with alpha, loaded asynchronously.
type Overlay struct {
	path string

	mu    sync.RWMutex
	state State
	img   image.Image
	err   error
	done  chan struct{}
}

// Load starts decoding path in the background.
func Load(ctx context.Context, path string) *Overlay {
	o := &Overlay{path: path, done: make(chan struct{})}
	go o.load(ctx)
	return o
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) *Overlay {
	o := &Overlay{state: Ready, img: img, done: make(chan struct{})}
	close(o.done)
	return o
}

// None is an overlay that never loads, used when no asset is configured.
func None() *Overlay {
	o := &Overlay{state: Failed, err: fmt.Errorf("no overlay configured"), done: make(chan struct{})}
	close(o.done)
	return o
}

func (o *Overlay) load(ctx context.Context) {
	defer close(o.done)

	img, err := decode(ctx, o.path)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = Failed
		o.err = &AssetLoadError{Path: o.path, Err: err}
		log.Printf("[!] Overlay not loaded, composing without it: %v", o.err)
		return
	}
	o.state = Ready
	o.img = img
}

func decode(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	return img, nil
}

// Image returns the decoded asset and true once it is ready.
func (o *Overlay) Image() (image.Image, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.img, o.state == Ready
}

// State reports the load state.
func (o *Overlay) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Err is the load failure, if any.
func (o *Overlay) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// Wait blocks until loading finishes or ctx is done.
func (o *Overlay) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
