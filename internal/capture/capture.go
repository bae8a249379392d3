// Package capture drives the discrete booth lifecycle: acquiring the camera,
// freezing a still, resetting, and exporting the composite.
//
// Every Controller method except StartAcquisition and WaitCaptures must be
// called on the booth's event loop (the Dispatcher). StartAcquisition blocks
// on the camera and posts its result to the loop itself.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ivlev/selfieframe/internal/compositor"
	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/export"
	"github.com/ivlev/selfieframe/internal/session"
	"github.com/ivlev/selfieframe/internal/source"
	"github.com/ivlev/selfieframe/internal/system"
)

var (
	ErrNoLiveSource    = errors.New("no live source")
	ErrNoFrame         = errors.New("live source has no frame yet")
	ErrNothingToExport = errors.New("nothing to export, capture a still first")
)

// Dispatcher runs closures on the event loop. *loop.Loop implements it.
type Dispatcher interface {
	Do(ctx context.Context, f func()) error
}

// Ticker is the render schedule started with the live source.
// *loop.Repeater implements it.
type Ticker interface {
	Start()
	Stop()
}

// Affordances tells which user actions are currently meaningful.
type Affordances struct {
	Capture bool
	Export  bool
	Reset   bool
}

type Controller struct {
	s    *session.Session
	cam  source.Camera
	sink export.Sink
	comp *compositor.Compositor
	d    Dispatcher

	// Constraints is what StartAcquisition asks the camera for.
	Constraints source.Constraints
	// ExportName is the file name handed to the sink.
	ExportName string

	ticker   Ticker
	onChange func(Affordances)
	last     Affordances

	acquireMu sync.Mutex

	gen     uint64
	pending sync.WaitGroup
}

func New(s *session.Session, cam source.Camera, sink export.Sink, comp *compositor.Compositor, d Dispatcher) *Controller {
	c := &Controller{
		s:           s,
		cam:         cam,
		sink:        sink,
		comp:        comp,
		d:           d,
		Constraints: source.DefaultConstraints(),
		ExportName:  config.DefaultExportName,
	}
	c.last = c.Affordances()
	return c
}

// SetTicker binds the render schedule.
func (c *Controller) SetTicker(t Ticker) {
	c.ticker = t
}

// OnChange registers fn to be called on the loop whenever the affordances
// change.
func (c *Controller) OnChange(fn func(Affordances)) {
	c.onChange = fn
}

func (c *Controller) Affordances() Affordances {
	return Affordances{
		Capture: c.s.HasLive(),
		Export:  c.s.HasStill(),
		Reset:   true,
	}
}

func (c *Controller) notify() {
	a := c.Affordances()
	if a == c.last {
		return
	}
	c.last = a
	if c.onChange != nil {
		c.onChange(a)
	}
}

// StartAcquisition releases the current live source, then asks the camera
// for a new one and binds it. On failure the controller stays in its
// pre-start state and the call may be retried. Failures from the camera are
// *source.AcquisitionError.
func (c *Controller) StartAcquisition(ctx context.Context) error {
	c.acquireMu.Lock()
	defer c.acquireMu.Unlock()

	if err := c.d.Do(ctx, c.release); err != nil {
		return fmt.Errorf("release live source: %w", err)
	}

	live, err := c.cam.Acquire(ctx, c.Constraints)
	if err != nil {
		if !source.IsAcquisitionError(err) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = &source.AcquisitionError{Reason: source.ReasonUnknown, Err: err}
		}
		return fmt.Errorf("start acquisition: %w", err)
	}

	err = c.d.Do(ctx, func() {
		if c.s.Live != nil {
			c.s.Live.Stop()
		}
		c.s.Live = live
		if c.ticker != nil {
			c.ticker.Start()
		}
		c.notify()
	})
	if err != nil {
		live.Stop()
		return fmt.Errorf("bind live source: %w", err)
	}

	w, h := live.Size()
	fmt.Printf("[*] Camera ready: %dx%d\n", w, h)
	return nil
}

// StopAcquisition stops rendering and releases the live source. The still
// and transform are kept.
func (c *Controller) StopAcquisition() {
	c.release()
}

func (c *Controller) release() {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.s.Live != nil {
		if err := c.s.Live.Stop(); err != nil {
			log.Printf("[!] Live source did not stop cleanly: %v", err)
		}
		c.s.Live = nil
	}
	c.notify()
}

// CaptureStill freezes the current live frame, cover-fitted at output
// resolution. The still is installed later, on the loop, once it has been
// finalised; a ResetAll or a newer CaptureStill in between discards it.
func (c *Controller) CaptureStill() error {
	if !c.s.HasLive() {
		return ErrNoLiveSource
	}
	frame := c.s.Live.Frame()
	if frame == nil || frame.Bounds().Empty() {
		return ErrNoFrame
	}

	buf := system.GetImage(c.s.Width, c.s.Height)
	if !c.comp.RenderBase(buf, frame) {
		system.PutImage(buf)
		return ErrNoFrame
	}

	c.gen++
	gen := c.gen
	c.pending.Add(1)

	go func() {
		defer c.pending.Done()
		img := finalize(buf)
		system.PutImage(buf)

		// returns early if the loop stops with the install still queued
		c.d.Do(context.Background(), func() { c.install(gen, img) })
	}()
	return nil
}

// finalize copies the offscreen buffer into a standalone image that owns its
// pixels, so the buffer can go back to the pool.
func finalize(buf *image.RGBA) *image.RGBA {
	img := image.NewRGBA(buf.Rect)
	copy(img.Pix, buf.Pix)
	return img
}

func (c *Controller) install(gen uint64, img *image.RGBA) {
	if gen != c.gen {
		return
	}
	c.s.Still = session.NewStill(img)
	c.s.Transform.Set(c.s.CapturePose())
	c.notify()
	fmt.Printf("[+] Still %s ready\n", c.s.Still.ID)
}

// WaitCaptures blocks until every pending capture has been installed or
// discarded. It must not be called on the loop.
func (c *Controller) WaitCaptures() {
	c.pending.Wait()
}

// ResetAll drops the still and any capture in flight and returns the
// transform to its rest pose. The live source keeps running.
func (c *Controller) ResetAll() {
	c.gen++
	c.s.Still = nil
	c.s.Transform.Set(c.s.RestPose())
	c.notify()
}

// ExportComposite renders the composite as it is currently drawn and hands
// it to the sink.
func (c *Controller) ExportComposite(ctx context.Context) error {
	if !c.s.HasStill() {
		return ErrNothingToExport
	}
	img := image.NewRGBA(c.s.Bounds())
	c.comp.Render(img, c.s)

	if err := c.sink.Export(ctx, c.ExportName, img); err != nil {
		return fmt.Errorf("export composite: %w", err)
	}
	fmt.Printf("[+++] Composite exported: %s (%dx%d)\n", c.ExportName, c.s.Width, c.s.Height)
	return nil
}
