// Package analyzer finds the see-through windows of an overlay, the places
// where the captured still shows through the frame.
package analyzer

import "image"

// Window is a connected see-through region of an overlay.
type Window struct {
	Rect     image.Rectangle
	Area     int     // see-through pixels in the region
	Coverage float64 // Area / Rect area, 0.0-1.0
	Kind     string  // "alpha" or "luma"
}

// Center of the bounding rectangle.
func (w Window) Center() (float64, float64) {
	return float64(w.Rect.Min.X+w.Rect.Max.X) / 2, float64(w.Rect.Min.Y+w.Rect.Max.Y) / 2
}

// Detector is the interface for window detection strategies
type Detector interface {
	Detect(img image.Image) ([]Window, error)
}

// Largest returns the window with the most see-through pixels.
func Largest(windows []Window) (Window, bool) {
	if len(windows) == 0 {
		return Window{}, false
	}
	best := windows[0]
	for _, w := range windows[1:] {
		if w.Area > best.Area {
			best = w
		}
	}
	return best, true
}

// Anchor locates the largest window of ov and maps its centre to a w×h
// surface the overlay is stretched over.
func Anchor(d Detector, ov image.Image, w, h int) (float64, float64, bool) {
	windows, err := d.Detect(ov)
	if err != nil {
		return 0, 0, false
	}
	win, ok := Largest(windows)
	if !ok {
		return 0, 0, false
	}
	b := ov.Bounds()
	cx, cy := win.Center()
	x := (cx - float64(b.Min.X)) * float64(w) / float64(b.Dx())
	y := (cy - float64(b.Min.Y)) * float64(h) / float64(b.Dy())
	return x, y, true
}
