package script

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCommand reads one step written as a command line, e.g.
//
//	press 1 120 80
//	wheel -120 3
//	export selfie.jpg
func ParseCommand(line string) (Step, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Step{}, fmt.Errorf("empty command")
	}
	st := Step{Action: strings.ToLower(f[0])}
	args := f[1:]

	var err error
	switch st.Action {
	case ActionStart, ActionStop, ActionCapture, ActionReset:
		err = arity(args, 0, 0)
	case ActionPress, ActionMove:
		if err = arity(args, 3, 3); err == nil {
			st.Pointer, err = strconv.Atoi(args[0])
			if err == nil {
				st.X, err = strconv.ParseFloat(args[1], 64)
			}
			if err == nil {
				st.Y, err = strconv.ParseFloat(args[2], 64)
			}
		}
	case ActionRelease, ActionCancel:
		if err = arity(args, 1, 1); err == nil {
			st.Pointer, err = strconv.Atoi(args[0])
		}
	case ActionWheel:
		if err = arity(args, 1, 2); err == nil {
			st.DeltaY, err = strconv.ParseFloat(args[0], 64)
			if err == nil && len(args) == 2 {
				st.Count, err = strconv.Atoi(args[1])
			}
		}
	case ActionTick:
		if err = arity(args, 0, 1); err == nil && len(args) == 1 {
			st.Count, err = strconv.Atoi(args[0])
		}
	case ActionWait:
		if err = arity(args, 1, 1); err == nil {
			st.Millis, err = strconv.Atoi(args[0])
		}
	case ActionExport:
		if err = arity(args, 0, 1); err == nil && len(args) == 1 {
			st.Name = args[0]
		}
	default:
		return Step{}, fmt.Errorf("unknown action %q", st.Action)
	}
	if err != nil {
		return Step{}, fmt.Errorf("%s: %w", st.Action, err)
	}

	if err := (&Script{Steps: []Step{st}}).Validate(); err != nil {
		return Step{}, err
	}
	return st, nil
}

func arity(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("expected %d arguments, got %d", lo, len(args))
		}
		return fmt.Errorf("expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	return nil
}
