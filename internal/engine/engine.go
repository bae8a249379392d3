// Package engine wires a booth together: the event loop, the render
// schedule, the capture controller and the gesture tracker, all sharing one
// session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/selfieframe/internal/analyzer"
	"github.com/ivlev/selfieframe/internal/capture"
	"github.com/ivlev/selfieframe/internal/compositor"
	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/export"
	"github.com/ivlev/selfieframe/internal/gesture"
	"github.com/ivlev/selfieframe/internal/loop"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/session"
	"github.com/ivlev/selfieframe/internal/source"
	"github.com/ivlev/selfieframe/internal/system"
	"github.com/ivlev/selfieframe/internal/transform"
)

// Booth is one interactive selfie session.
type Booth struct {
	Config     config.Config
	Session    *session.Session
	Loop       *loop.Loop
	Ticker     *loop.Repeater
	Controller *capture.Controller
	Tracker    *gesture.Tracker
	Compositor *compositor.Compositor

	surface *image.RGBA
	started time.Time
	exports int
}

func NewBooth(cfg config.Config, cam source.Camera, sink export.Sink, ov *overlay.Overlay) (*Booth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	comp, err := compositor.NewNamed(cfg.Scaler)
	if err != nil {
		return nil, err
	}

	s := session.New(cfg, ov)
	l := loop.New()

	b := &Booth{
		Config:     cfg,
		Session:    s,
		Loop:       l,
		Compositor: comp,
		Tracker:    gesture.New(s, cfg.WheelStep),
		surface:    system.GetImage(cfg.OutputWidth, cfg.OutputHeight),
	}
	b.Ticker = loop.NewRepeater(l, time.Second/time.Duration(cfg.FPS), b.renderTick)

	b.Controller = capture.New(s, cam, sink, comp, l)
	b.Controller.SetTicker(b.Ticker)
	b.Controller.ExportName = cfg.ExportName
	b.Controller.Constraints = source.Constraints{
		Facing: cfg.Camera.Facing,
		Audio:  false,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	}
	b.Controller.OnChange(func(a capture.Affordances) {
		fmt.Printf("[*] Actions: capture=%s export=%s reset=%s\n", onOff(a.Capture), onOff(a.Export), onOff(a.Reset))
	})

	return b, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (b *Booth) renderTick() {
	b.Compositor.Render(b.surface, b.Session)
}

// Run drives the event loop while fn operates the booth. When fn returns the
// camera is released and the loop stops.
func (b *Booth) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	b.started = time.Now()
	defer system.PutImage(b.surface)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := b.Loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		defer b.shutdown()

		if b.Config.AnchorToWindow {
			b.anchorToWindow(gctx)
		}
		return fn(gctx)
	})
	return g.Wait()
}

func (b *Booth) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := b.Loop.Do(ctx, b.Controller.StopAcquisition)
	switch {
	case err == nil:
	case errors.Is(err, loop.ErrClosed):
		// no handler can run any more
		b.Controller.StopAcquisition()
	default:
		b.Ticker.Stop()
		log.Printf("[!] Camera not released: %v", err)
	}
	b.Controller.WaitCaptures()
}

// anchorToWindow moves the capture position to the centre of the overlay's
// largest see-through window.
func (b *Booth) anchorToWindow(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.Session.Overlay.Wait(waitCtx); err != nil {
		log.Printf("[!] Window anchor skipped: %v", err)
		return
	}
	img, ok := b.Session.Overlay.Image()
	if !ok {
		return
	}
	d, err := analyzer.NewDetector(b.Config.WindowDetector)
	if err != nil {
		log.Printf("[!] Window anchor skipped: %v", err)
		return
	}

	x, y, ok := analyzer.Anchor(d, img, b.Config.OutputWidth, b.Config.OutputHeight)
	if !ok {
		log.Printf("[!] No see-through window found in the overlay, keeping the default position")
		return
	}
	b.Loop.Do(ctx, func() { b.Session.AnchorCapture(x, y) })
	fmt.Printf("[*] Capture anchored to overlay window at (%.0f, %.0f)\n", x, y)
}

// Start acquires the camera and starts rendering.
func (b *Booth) Start(ctx context.Context) error {
	return b.Controller.StartAcquisition(ctx)
}

// Stop releases the camera; the still is kept.
func (b *Booth) Stop(ctx context.Context) error {
	return b.Loop.Do(ctx, b.Controller.StopAcquisition)
}

// Capture freezes a still and waits until it is installed.
func (b *Booth) Capture(ctx context.Context) error {
	var err error
	if derr := b.Loop.Do(ctx, func() { err = b.Controller.CaptureStill() }); derr != nil {
		return derr
	}
	if err != nil {
		return err
	}
	b.Controller.WaitCaptures()
	return nil
}

// Reset drops the still.
func (b *Booth) Reset(ctx context.Context) error {
	return b.Loop.Do(ctx, b.Controller.ResetAll)
}

// Export hands the composite to the sink, under name when given.
func (b *Booth) Export(ctx context.Context, name string) error {
	var err error
	derr := b.Loop.Do(ctx, func() {
		prev := b.Controller.ExportName
		if name != "" {
			b.Controller.ExportName = name
		}
		err = b.Controller.ExportComposite(ctx)
		b.Controller.ExportName = prev
	})
	if derr != nil {
		return derr
	}
	if err == nil {
		b.exports++
	}
	return err
}

// Tick renders one frame now, outside the schedule.
func (b *Booth) Tick(ctx context.Context) error {
	return b.Loop.Do(ctx, b.renderTick)
}

// Snapshot copies the visible surface.
func (b *Booth) Snapshot(ctx context.Context) (*image.RGBA, error) {
	var img *image.RGBA
	err := b.Loop.Do(ctx, func() {
		img = image.NewRGBA(b.surface.Rect)
		copy(img.Pix, b.surface.Pix)
	})
	return img, err
}

// Pose reads the current transform.
func (b *Booth) Pose(ctx context.Context) (transform.Pose, error) {
	var p transform.Pose
	err := b.Loop.Do(ctx, func() { p = b.Session.Transform.Pose })
	return p, err
}

// Affordances reads which actions are currently enabled.
func (b *Booth) Affordances(ctx context.Context) (capture.Affordances, error) {
	var a capture.Affordances
	err := b.Loop.Do(ctx, func() { a = b.Controller.Affordances() })
	return a, err
}

func (b *Booth) SetViewport(ctx context.Context, w, h float64) error {
	return b.Loop.Do(ctx, func() { b.Tracker.SetViewport(w, h) })
}

func (b *Booth) Press(ctx context.Context, id int, x, y float64) error {
	return b.Loop.Do(ctx, func() { b.Tracker.Press(gesture.PointerID(id), gesture.Point{X: x, Y: y}) })
}

func (b *Booth) Move(ctx context.Context, id int, x, y float64) error {
	return b.Loop.Do(ctx, func() { b.Tracker.Move(gesture.PointerID(id), gesture.Point{X: x, Y: y}) })
}

func (b *Booth) Release(ctx context.Context, id int) error {
	return b.Loop.Do(ctx, func() { b.Tracker.Release(gesture.PointerID(id)) })
}

func (b *Booth) Cancel(ctx context.Context, id int) error {
	return b.Loop.Do(ctx, func() { b.Tracker.Cancel(gesture.PointerID(id)) })
}

func (b *Booth) Wheel(ctx context.Context, deltaY float64) error {
	return b.Loop.Do(ctx, func() { b.Tracker.Wheel(deltaY) })
}

// Report prints the performance report and appends a line to
// benchmark.log in the output directory.
func (b *Booth) Report() {
	st := b.Compositor.Stats()
	total := time.Since(b.started)
	res, err := system.Snapshot()
	if err != nil {
		log.Printf("[!] %v", err)
	}

	fps := 0.0
	if total > 0 {
		fps = float64(st.Frames) / total.Seconds()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Session: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d (%.1f fps, %d dropped ticks, %d without base)\n"+
			"Render: avg %s, max %s\n"+
			"Exports: %d\n"+
			"Resources: %s\n"+
			"----------------------------\n",
		b.Config.BuildVersion, b.Session.ID, total.Seconds(),
		st.Frames, fps, b.Ticker.Drops(), st.BaseMisses,
		st.Avg().Round(time.Microsecond), st.Max.Round(time.Microsecond),
		b.exports, res,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Size: %dx%d | Total: %.2fs | Frames: %d | Avg: %s | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		b.Config.BuildVersion,
		b.Config.OutputWidth, b.Config.OutputHeight,
		total.Seconds(),
		st.Frames,
		st.Avg().Round(time.Microsecond),
		fps,
	)

	os.MkdirAll(b.Config.OutputDir, 0755)
	f, err := os.OpenFile(filepath.Join(b.Config.OutputDir, "benchmark.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
