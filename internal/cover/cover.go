// Package cover computes and draws "cover" fits: the source is cropped
// symmetrically along its longer axis so that it fills the destination
// without letterboxing.
package cover

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Crop is a source sub-rectangle in source pixel space.
type Crop struct {
	X, Y, W, H float64
}

// Fit returns the crop of a sw×sh source that, stretched to dw×dh, fills the
// destination while keeping the aspect ratio. ok is false when any dimension
// is not positive (source not producing frames yet).
func Fit(sw, sh, dw, dh float64) (Crop, bool) {
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return Crop{}, false
	}

	sourceAR := sw / sh
	destAR := dw / dh

	if sourceAR > destAR {
		// wider than the destination: trim left and right
		cw := sh * destAR
		return Crop{X: (sw - cw) / 2, Y: 0, W: cw, H: sh}, true
	}
	// taller or equal: trim top and bottom
	ch := sw / destAR
	return Crop{X: 0, Y: (sh - ch) / 2, W: sw, H: ch}, true
}

// Rect rounds the crop to whole pixels, translated by origin.
func (c Crop) Rect(origin image.Point) image.Rectangle {
	x0 := int(math.Round(c.X))
	y0 := int(math.Round(c.Y))
	x1 := int(math.Round(c.X + c.W))
	y1 := int(math.Round(c.Y + c.H))
	return image.Rect(x0, y0, x1, y1).Add(origin)
}

// Draw cover-fits src into dr of dst. It reports whether anything was drawn.
func Draw(dst xdraw.Image, dr image.Rectangle, src image.Image, scaler xdraw.Scaler, op xdraw.Op) bool {
	if src == nil || dr.Empty() {
		return false
	}
	b := src.Bounds()
	crop, ok := Fit(float64(b.Dx()), float64(b.Dy()), float64(dr.Dx()), float64(dr.Dy()))
	if !ok {
		return false
	}
	sr := crop.Rect(b.Min).Intersect(b)
	if sr.Empty() {
		return false
	}
	scaler.Scale(dst, dr, src, sr, op, nil)
	return true
}

// NewScaler returns the interpolator registered under name.
func NewScaler(name string) (xdraw.Interpolator, error) {
	switch name {
	case "nearest":
		return xdraw.NearestNeighbor, nil
	case "approx-bilinear", "":
		return xdraw.ApproxBiLinear, nil
	case "bilinear":
		return xdraw.BiLinear, nil
	case "catmull-rom":
		return xdraw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown scaler: %s", name)
	}
}
