package analyzer

import (
	"image"
	"image/color"
)

// AlphaDetector finds windows as connected regions of (nearly) transparent
// pixels, the usual shape of a PNG frame.
type AlphaDetector struct {
	MaxAlpha     uint8 // pixels with alpha at or below this are see-through
	MinArea      int   // minimum see-through pixels per window
	IgnoreBorder bool
}

func NewAlphaDetector() *AlphaDetector {
	return &AlphaDetector{
		MaxAlpha:     16,
		MinArea:      400,
		IgnoreBorder: true,
	}
}

func (d *AlphaDetector) Detect(img image.Image) ([]Window, error) {
	mask := alphaMask(img, d.MaxAlpha)
	return windows(findRegions(mask, d.IgnoreBorder), d.MinArea, "alpha"), nil
}

func alphaMask(img image.Image, maxAlpha uint8) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if uint8(a>>8) <= maxAlpha {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return mask
}
