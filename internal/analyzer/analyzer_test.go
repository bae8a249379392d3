package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// frame builds an opaque w×h overlay with transparent holes.
func frame(w, h int, holes ...image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{120, 30, 60, 255})
		}
	}
	for _, r := range holes {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 0})
			}
		}
	}
	return img
}

func TestAlphaDetector(t *testing.T) {
	big := image.Rect(60, 20, 140, 80)
	small := image.Rect(10, 10, 30, 30)
	margin := image.Rect(0, 90, 200, 100) // touches the border
	img := frame(200, 100, big, small, margin)

	windows, err := NewAlphaDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("Expected 2 windows, got %d: %+v", len(windows), windows)
	}

	w, ok := Largest(windows)
	if !ok || w.Rect != big {
		t.Errorf("Expected largest window %v, got %v", big, w.Rect)
	}
	if w.Area != big.Dx()*big.Dy() || w.Coverage != 1 || w.Kind != "alpha" {
		t.Errorf("Unexpected window %+v", w)
	}

	for i, w := range windows {
		t.Logf("Window %d: %v (area %d, coverage %.2f)", i, w.Rect, w.Area, w.Coverage)
	}
}

func TestAlphaDetectorMinArea(t *testing.T) {
	img := frame(100, 100, image.Rect(40, 40, 45, 45))
	windows, _ := NewAlphaDetector().Detect(img)
	if len(windows) != 0 {
		t.Errorf("Expected tiny hole to be ignored, got %+v", windows)
	}
}

func TestLumaDetector(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 50; y < 150; y++ {
		for x := 50; x < 150; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	windows, err := NewLumaDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	w, ok := Largest(windows)
	if !ok {
		t.Fatal("Expected a window, got none")
	}
	// erosion trims one pixel on each side
	if w.Rect.Dx() < 95 || w.Rect.Dy() < 95 || w.Kind != "luma" {
		t.Errorf("Unexpected window %+v", w)
	}
}

func TestAnchor(t *testing.T) {
	// window centred at (100, 40) in a 200x100 overlay
	img := frame(200, 100, image.Rect(70, 20, 130, 60))

	x, y, ok := Anchor(NewAlphaDetector(), img, 1280, 720)
	if !ok {
		t.Fatal("Expected an anchor")
	}
	if math.Abs(x-640) > 1e-9 || math.Abs(y-288) > 1e-9 {
		t.Errorf("Expected (640, 288), got (%f, %f)", x, y)
	}

	if _, _, ok := Anchor(NewAlphaDetector(), frame(50, 50), 1280, 720); ok {
		t.Error("Expected no anchor for an overlay without windows")
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"alpha", false},
		{"", false}, // default
		{"luma", false},
		{"face", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}
