package script

import (
	"errors"
	"fmt"
)

// Action names of session steps.
const (
	ActionStart   = "start"
	ActionCapture = "capture"
	ActionPress   = "press"
	ActionMove    = "move"
	ActionRelease = "release"
	ActionCancel  = "cancel"
	ActionWheel   = "wheel"
	ActionTick    = "tick"
	ActionWait    = "wait"
	ActionExport  = "export"
	ActionReset   = "reset"
	ActionStop    = "stop"
)

// Script is a recorded or generated booth session
type Script struct {
	Version  string    `yaml:"version"`
	Overlay  string    `yaml:"overlay,omitempty"`
	Viewport *Viewport `yaml:"viewport,omitempty"`
	Steps    []Step    `yaml:"steps"`
}

// Viewport is the displayed size of the surface, pointer steps are in this space
type Viewport struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Step is one user action
type Step struct {
	Action  string  `yaml:"action"`
	Pointer int     `yaml:"pointer,omitempty"`
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	DeltaY  float64 `yaml:"delta_y,omitempty"`
	Count   int     `yaml:"count,omitempty"` // repetitions for wheel and tick
	Millis  int     `yaml:"ms,omitempty"`    // wait duration
	Name    string  `yaml:"name,omitempty"`  // export file name override
	Comment string  `yaml:"comment,omitempty"`
}

// Times is how often the step applies, at least once.
func (s Step) Times() int {
	if s.Count < 1 {
		return 1
	}
	return s.Count
}

// Validate checks every step and reports all problems at once.
func (s *Script) Validate() error {
	var errs []error
	if s.Viewport != nil && (s.Viewport.W <= 0 || s.Viewport.H <= 0) {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %gx%g", s.Viewport.W, s.Viewport.H))
	}
	for i, st := range s.Steps {
		switch st.Action {
		case ActionStart, ActionCapture, ActionRelease, ActionCancel, ActionTick, ActionExport, ActionReset, ActionStop:
		case ActionPress, ActionMove:
		case ActionWheel:
			if st.DeltaY == 0 {
				errs = append(errs, fmt.Errorf("step %d: wheel needs a non-zero delta_y", i+1))
			}
		case ActionWait:
			if st.Millis <= 0 {
				errs = append(errs, fmt.Errorf("step %d: wait needs ms > 0", i+1))
			}
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown action %q", i+1, st.Action))
		}
	}
	return errors.Join(errs...)
}
