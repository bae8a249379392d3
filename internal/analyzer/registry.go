package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "alpha", "":
		return NewAlphaDetector(), nil
	case "luma":
		return NewLumaDetector(), nil
	case "face":
		return nil, fmt.Errorf("face detection is not supported")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
