// Package transform holds the position and scale of the captured still.
package transform

import "math"

// Limits is the inclusive scale range.
type Limits struct {
	Min, Max float64
}

// Clamp bounds v to the range.
func (l Limits) Clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// Pose is a complete transform value.
type Pose struct {
	X, Y  float64 // centre of the still in output pixels
	Scale float64
}

// State is the mutable transform of the captured still. X and Y are not
// bounded, the still may be dragged fully off the surface.
type State struct {
	Pose
	Limits Limits
}

// New returns a state at pose p with scale already clamped.
func New(p Pose, l Limits) *State {
	s := &State{Limits: l}
	s.Set(p)
	return s
}

// Set replaces the pose, clamping its scale.
func (s *State) Set(p Pose) {
	s.Pose = p
	s.Scale = s.Limits.Clamp(p.Scale)
}

// Translate moves the centre by (dx, dy).
func (s *State) Translate(dx, dy float64) {
	s.X += dx
	s.Y += dy
}

// ScaleBy multiplies the scale by factor and clamps it. Non-finite or
// non-positive factors are ignored.
func (s *State) ScaleBy(factor float64) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return
	}
	s.Scale = s.Limits.Clamp(s.Scale * factor)
}

// Size returns the drawn size of a w×h image at the current scale.
func (s *State) Size(w, h int) (float64, float64) {
	return float64(w) * s.Scale, float64(h) * s.Scale
}
