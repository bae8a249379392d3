package analyzer

import (
	"image"
	"image/color"
)

// LumaDetector is for opaque overlays (JPEG frames) whose window is painted
// a flat bright key colour. Bright regions are eroded to separate windows
// that touch through thin highlights.
type LumaDetector struct {
	MinLuma      uint8
	ErodeKernel  int
	MinArea      int
	IgnoreBorder bool
}

func NewLumaDetector() *LumaDetector {
	return &LumaDetector{
		MinLuma:      240,
		ErodeKernel:  3,
		MinArea:      400,
		IgnoreBorder: true,
	}
}

func (d *LumaDetector) Detect(img image.Image) ([]Window, error) {
	gray := toGrayscale(img)
	bounds := gray.Bounds()
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y >= d.MinLuma {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	if d.ErodeKernel > 1 {
		mask = erode(mask, d.ErodeKernel)
	}

	return windows(findRegions(mask, d.IgnoreBorder), d.MinArea, "luma"), nil
}
