// Package gesture turns raw pointer and wheel events into transform changes
// of the captured still: one contact drags, two contacts pinch, the wheel
// zooms in fixed steps.
//
// Pointer coordinates arrive in display space (the size the surface is shown
// at); the transform lives in output pixels. The tracker converts between the
// two with the viewport ratio set by SetViewport.
package gesture

import (
	"fmt"
	"math"

	"github.com/ivlev/selfieframe/internal/session"
)

// PointerID identifies one contact from press until release.
type PointerID int

// Point is a position in display space.
type Point struct {
	X, Y float64
}

func (p Point) dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Mode is the tracker state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Pinching
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Pinching:
		return "pinching"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Tracker owns the set of active pointers. It is not safe for concurrent use;
// every call is expected on the booth's event loop.
type Tracker struct {
	s         *session.Session
	wheelStep float64

	displayW, displayH float64

	order []PointerID
	pos   map[PointerID]Point

	mode     Mode
	ref      Point
	prevDist float64
	hasPrev  bool
}

// New binds a tracker to s. Until SetViewport is called the surface is
// assumed to be displayed at its output size.
func New(s *session.Session, wheelStep float64) *Tracker {
	return &Tracker{
		s:         s,
		wheelStep: wheelStep,
		displayW:  float64(s.Width),
		displayH:  float64(s.Height),
		pos:       make(map[PointerID]Point),
	}
}

// SetViewport records the displayed size of the surface. A non-positive
// dimension falls back to the output size on that axis.
func (t *Tracker) SetViewport(w, h float64) {
	if w <= 0 {
		w = float64(t.s.Width)
	}
	if h <= 0 {
		h = float64(t.s.Height)
	}
	t.displayW, t.displayH = w, h
}

// Ratio converts display pixels to output pixels on each axis.
func (t *Tracker) Ratio() (float64, float64) {
	return float64(t.s.Width) / t.displayW, float64(t.s.Height) / t.displayH
}

func (t *Tracker) Mode() Mode { return t.mode }

// Active is the number of pointers currently pressed.
func (t *Tracker) Active() int { return len(t.order) }

// Press registers a contact. Pressing an id that is already down only
// updates its position.
func (t *Tracker) Press(id PointerID, p Point) {
	if _, ok := t.pos[id]; ok {
		t.pos[id] = p
		return
	}
	t.order = append(t.order, id)
	t.pos[id] = p

	switch len(t.order) {
	case 1:
		t.toDragging(p)
	case 2:
		t.toPinching()
	}
}

// Move updates a contact and applies the resulting drag or pinch. Unknown
// ids are ignored.
func (t *Tracker) Move(id PointerID, p Point) {
	if _, ok := t.pos[id]; !ok {
		return
	}
	t.pos[id] = p

	switch t.mode {
	case Dragging:
		t.drag(p)
	case Pinching:
		t.pinch()
	}
}

// Release removes a contact and re-arms the remaining gesture.
func (t *Tracker) Release(id PointerID) {
	if _, ok := t.pos[id]; !ok {
		return
	}
	delete(t.pos, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	switch len(t.order) {
	case 0:
		t.toIdle()
	case 1:
		t.toDragging(t.pos[t.order[0]])
	default:
		t.toPinching()
	}
}

// Cancel is a release the host aborted (lost capture, touch cancel).
func (t *Tracker) Cancel(id PointerID) {
	t.Release(id)
}

// Wheel zooms out for positive deltaY and in for negative deltaY. A zero
// delta does nothing.
func (t *Tracker) Wheel(deltaY float64) {
	if !t.s.HasStill() {
		return
	}
	switch {
	case deltaY > 0:
		t.s.Transform.ScaleBy(1 - t.wheelStep)
	case deltaY < 0:
		t.s.Transform.ScaleBy(1 + t.wheelStep)
	}
}

func (t *Tracker) toIdle() {
	t.mode = Idle
	t.ref = Point{}
	t.prevDist, t.hasPrev = 0, false
}

func (t *Tracker) toDragging(ref Point) {
	t.mode = Dragging
	t.ref = ref
	t.prevDist, t.hasPrev = 0, false
}

// toPinching measures the first two pointers afresh, so a change of pair
// never produces a jump.
func (t *Tracker) toPinching() {
	t.mode = Pinching
	t.prevDist = t.pos[t.order[0]].dist(t.pos[t.order[1]])
	t.hasPrev = true
}

func (t *Tracker) drag(p Point) {
	dx, dy := p.X-t.ref.X, p.Y-t.ref.Y
	t.ref = p
	if !t.s.HasStill() {
		return
	}
	rx, ry := t.Ratio()
	t.s.Transform.Translate(dx*rx, dy*ry)
}

func (t *Tracker) pinch() {
	d := t.pos[t.order[0]].dist(t.pos[t.order[1]])
	prev, ok := t.prevDist, t.hasPrev
	t.prevDist, t.hasPrev = d, true

	if !ok || prev <= 0 || !t.s.HasStill() {
		return
	}
	t.s.Transform.ScaleBy(d / prev)
}
