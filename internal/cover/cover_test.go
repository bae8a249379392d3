package cover

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"testing"

	xdraw "golang.org/x/image/draw"
)

func TestFitInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const tolerance = 1e-9

	for i := 0; i < 2000; i++ {
		sw := 1 + r.Float64()*4000
		sh := 1 + r.Float64()*4000
		dw := 1 + r.Float64()*4000
		dh := 1 + r.Float64()*4000

		c, ok := Fit(sw, sh, dw, dh)
		if !ok {
			t.Fatalf("Fit(%v, %v, %v, %v) reported no-op", sw, sh, dw, dh)
		}
		if math.Abs(c.W/c.H-dw/dh) > tolerance*math.Max(1, dw/dh) {
			t.Errorf("Aspect mismatch: crop %v/%v vs dest %v/%v", c.W, c.H, dw, dh)
		}
		if c.W > sw+tolerance || c.H > sh+tolerance {
			t.Errorf("Crop %vx%v exceeds source %vx%v", c.W, c.H, sw, sh)
		}
		if c.X < -tolerance || c.Y < -tolerance {
			t.Errorf("Negative origin %v,%v", c.X, c.Y)
		}
		if c.X+c.W > sw+tolerance || c.Y+c.H > sh+tolerance {
			t.Errorf("Crop escapes source: %+v in %vx%v", c, sw, sh)
		}
	}
}

func TestFitCases(t *testing.T) {
	tests := []struct {
		name           string
		sw, sh, dw, dh float64
		want           Crop
	}{
		{"1080p into 720p", 1920, 1080, 1280, 720, Crop{0, 0, 1920, 1080}},
		{"4:3 into 16:9", 640, 480, 1280, 720, Crop{0, 60, 640, 360}},
		{"portrait into 16:9", 720, 1280, 1280, 720, Crop{0, 437.5, 720, 405}},
		{"ultrawide into 16:9", 2560, 720, 1280, 720, Crop{640, 0, 1280, 720}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Fit(tt.sw, tt.sh, tt.dw, tt.dh)
			if !ok {
				t.Fatal("Expected fit")
			}
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 ||
				math.Abs(got.W-tt.want.W) > 1e-9 || math.Abs(got.H-tt.want.H) > 1e-9 {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestFitNoSource(t *testing.T) {
	for _, dims := range [][4]float64{{0, 720, 1280, 720}, {1280, 0, 1280, 720}, {1280, 720, 0, 0}} {
		if _, ok := Fit(dims[0], dims[1], dims[2], dims[3]); ok {
			t.Errorf("Expected no-op for %v", dims)
		}
	}
}

func TestDrawCropsLongerAxis(t *testing.T) {
	// 300x100 source: red | green | blue thirds. Fitting into a square keeps
	// only the green middle.
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	fill(src, image.Rect(0, 0, 100, 100), color.RGBA{255, 0, 0, 255})
	fill(src, image.Rect(100, 0, 200, 100), color.RGBA{0, 255, 0, 255})
	fill(src, image.Rect(200, 0, 300, 100), color.RGBA{0, 0, 255, 255})

	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if !Draw(dst, dst.Bounds(), src, xdraw.NearestNeighbor, xdraw.Src) {
		t.Fatal("Expected draw")
	}

	for _, p := range []image.Point{{0, 0}, {25, 25}, {49, 49}} {
		if got := dst.RGBAAt(p.X, p.Y); got != (color.RGBA{0, 255, 0, 255}) {
			t.Errorf("Pixel %v: expected green, got %v", p, got)
		}
	}
}

func TestDrawEmptySourceIsNoop(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	fill(dst, dst.Bounds(), color.RGBA{9, 9, 9, 255})

	if Draw(dst, dst.Bounds(), image.NewRGBA(image.Rectangle{}), xdraw.NearestNeighbor, xdraw.Src) {
		t.Error("Expected no draw for empty source")
	}
	if got := dst.RGBAAt(5, 5); got != (color.RGBA{9, 9, 9, 255}) {
		t.Errorf("Destination touched: %v", got)
	}
}

func TestNewScaler(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"nearest", false},
		{"approx-bilinear", false},
		{"bilinear", false},
		{"catmull-rom", false},
		{"", false},
		{"lanczos", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScaler(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil || s == nil {
				t.Errorf("Unexpected result: %v, %v", s, err)
			}
		})
	}
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}
