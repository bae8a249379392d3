// Package script stores booth sessions as YAML step lists and generates demo
// sessions that drag and pinch the captured still into an overlay window.
package script

import (
	"fmt"
	"image"
	"math"

	"github.com/ivlev/selfieframe/internal/analyzer"
	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/transform"
)

// Director generates gesture sessions from detected overlay windows
type Director struct {
	ViewportWidth  float64 // displayed surface size, pointer space
	ViewportHeight float64
	OutputWidth    int
	OutputHeight   int
	Limits         transform.Limits
	MoveSteps      int     // pointer moves per gesture
	Overfill       float64 // how much larger than the window the still ends up
}

// NewDirector creates a Director for cfg, displayed at output size
func NewDirector(cfg config.Config) *Director {
	return &Director{
		ViewportWidth:  float64(cfg.OutputWidth),
		ViewportHeight: float64(cfg.OutputHeight),
		OutputWidth:    cfg.OutputWidth,
		OutputHeight:   cfg.OutputHeight,
		Limits:         transform.Limits{Min: cfg.ScaleMin, Max: cfg.ScaleMax},
		MoveSteps:      8,
		Overfill:       1.1,
	}
}

// Target is where the still should end up: centred on the largest window,
// scaled to cover it.
func (d *Director) Target(windows []analyzer.Window, overlay image.Rectangle) (transform.Pose, error) {
	win, ok := analyzer.Largest(windows)
	if !ok {
		return transform.Pose{}, fmt.Errorf("no windows detected")
	}
	if overlay.Empty() {
		return transform.Pose{}, fmt.Errorf("empty overlay bounds")
	}

	sx := float64(d.OutputWidth) / float64(overlay.Dx())
	sy := float64(d.OutputHeight) / float64(overlay.Dy())
	cx, cy := win.Center()

	ww := float64(win.Rect.Dx()) * sx
	wh := float64(win.Rect.Dy()) * sy
	scale := math.Max(ww/float64(d.OutputWidth), wh/float64(d.OutputHeight)) * d.Overfill

	return transform.Pose{
		X:     (cx - float64(overlay.Min.X)) * sx,
		Y:     (cy - float64(overlay.Min.Y)) * sy,
		Scale: d.Limits.Clamp(scale),
	}, nil
}

// Generate builds a session that starts the camera, captures, drags the
// still from start to the target window and pinches it to size, then exports.
func (d *Director) Generate(windows []analyzer.Window, overlay image.Rectangle, start transform.Pose) (*Script, error) {
	target, err := d.Target(windows, overlay)
	if err != nil {
		return nil, err
	}
	if start.Scale <= 0 {
		return nil, fmt.Errorf("start scale must be positive")
	}

	steps := []Step{
		{Action: ActionStart},
		{Action: ActionWait, Millis: 300, Comment: "let the camera settle"},
		{Action: ActionCapture},
		{Action: ActionTick},
	}
	steps = append(steps, d.drag(start, target)...)
	steps = append(steps, d.pinch(start.Scale, target.Scale)...)
	steps = append(steps,
		Step{Action: ActionTick, Count: 2},
		Step{Action: ActionExport},
	)

	return &Script{
		Version:  "1.0",
		Viewport: &Viewport{W: d.ViewportWidth, H: d.ViewportHeight},
		Steps:    steps,
	}, nil
}

// drag moves one pointer by the output delta converted to viewport space.
func (d *Director) drag(from, to transform.Pose) []Step {
	rx := float64(d.OutputWidth) / d.ViewportWidth
	ry := float64(d.OutputHeight) / d.ViewportHeight
	dx := (to.X - from.X) / rx
	dy := (to.Y - from.Y) / ry

	cx, cy := d.ViewportWidth/2, d.ViewportHeight/2
	steps := []Step{{Action: ActionPress, Pointer: 1, X: cx, Y: cy, Comment: "drag to the window"}}
	for i := 1; i <= d.moveSteps(); i++ {
		f := float64(i) / float64(d.moveSteps())
		steps = append(steps, Step{Action: ActionMove, Pointer: 1, X: cx + dx*f, Y: cy + dy*f})
	}
	return append(steps, Step{Action: ActionRelease, Pointer: 1})
}

// pinch spreads or closes two pointers so their distance changes by to/from.
func (d *Director) pinch(from, to float64) []Step {
	cx, cy := d.ViewportWidth/2, d.ViewportHeight/2
	d0 := d.ViewportWidth / 4
	d1 := d0 * to / from
	left := cx - d0/2

	steps := []Step{
		{Action: ActionPress, Pointer: 1, X: left, Y: cy, Comment: "pinch to fit"},
		{Action: ActionPress, Pointer: 2, X: left + d0, Y: cy},
	}
	for i := 1; i <= d.moveSteps(); i++ {
		f := float64(i) / float64(d.moveSteps())
		steps = append(steps, Step{Action: ActionMove, Pointer: 2, X: left + d0 + (d1-d0)*f, Y: cy})
	}
	return append(steps,
		Step{Action: ActionRelease, Pointer: 2},
		Step{Action: ActionRelease, Pointer: 1},
	)
}

func (d *Director) moveSteps() int {
	if d.MoveSteps < 1 {
		return 1
	}
	return d.MoveSteps
}
