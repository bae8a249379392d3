package source

import (
	"errors"
	"fmt"
)

// Reason classifies why a camera could not be acquired.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonPermissionDenied
	ReasonNoDevice
	ReasonBusy
	ReasonInsecureContext
)

func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission denied"
	case ReasonNoDevice:
		return "no camera device"
	case ReasonBusy:
		return "camera busy"
	case ReasonInsecureContext:
		return "insecure context"
	default:
		return "unknown"
	}
}

// Hint is a short actionable message for the user.
func (r Reason) Hint() string {
	switch r {
	case ReasonPermissionDenied:
		return "allow camera access and try again"
	case ReasonNoDevice:
		return "connect a camera or choose another source"
	case ReasonBusy:
		return "close other applications using the camera"
	case ReasonInsecureContext:
		return "camera access requires a secure (HTTPS) context"
	default:
		return "check the camera and try again"
	}
}

// AcquisitionError is returned when the host denies or lacks a camera.
// The system stays in its pre-start state and the call may be retried.
type AcquisitionError struct {
	Reason Reason
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera unavailable (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("camera unavailable (%s)", e.Reason)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// IsAcquisitionError reports whether err carries an *AcquisitionError.
func IsAcquisitionError(err error) bool {
	var ae *AcquisitionError
	return errors.As(err, &ae)
}
