package compositor

import (
	"image"
	"image/color"
	"testing"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/session"
	"github.com/ivlev/selfieframe/internal/transform"
)

type staticSource struct {
	img image.Image
}

func (s staticSource) Frame() image.Image { return s.img }
func (s staticSource) Size() (int, int)   { return s.img.Bounds().Dx(), s.img.Bounds().Dy() }
func (s staticSource) Stop() error        { return nil }

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	return img
}

// bandOverlay is opaque blue in its top band rows and transparent below.
func bandOverlay(w, h, band int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < band; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}
	return img
}

func newSession(ov *overlay.Overlay) *session.Session {
	return session.New(config.Default(), ov)
}

func pixel(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestRenderLayerOrder(t *testing.T) {
	s := newSession(overlay.FromImage(bandOverlay(160, 90, 10)))
	s.Live = staticSource{solid(1920, 1080, red)}
	s.Still = session.NewStill(solid(1280, 720, green))
	s.Transform.Set(transform.Pose{X: 640, Y: 360, Scale: 0.5})

	c := New(xdraw.NearestNeighbor)
	dst := image.NewRGBA(s.Bounds())
	c.Render(dst, s)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"overlay band on top", 5, 5, blue},
		{"overlay band over still", 640, 40, blue},
		{"still over base", 640, 360, green},
		{"still edge", 321, 181, green},
		{"base outside still", 100, 600, red},
		{"base just outside still", 318, 360, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pixel(dst, tt.x, tt.y); got != tt.want {
				t.Errorf("(%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
			}
		})
	}
}

func TestRenderClearsWithoutBase(t *testing.T) {
	s := newSession(nil)
	c := New(nil)
	dst := solid(1280, 720, red)

	c.Render(dst, s)

	if got := pixel(dst, 10, 10); got != (color.RGBA{}) {
		t.Errorf("Expected cleared surface, got %v", got)
	}
	if st := c.Stats(); st.Frames != 1 || st.BaseMisses != 1 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestRenderFreezeBase(t *testing.T) {
	s := newSession(nil)
	s.FreezeBase = true
	s.Live = staticSource{solid(640, 480, red)}
	s.Still = session.NewStill(solid(1280, 720, green))
	s.Transform.Set(transform.Pose{X: -5000, Y: -5000, Scale: 1})

	dst := image.NewRGBA(s.Bounds())
	New(xdraw.NearestNeighbor).Render(dst, s)

	if got := pixel(dst, 1000, 700); got != green {
		t.Errorf("Expected the still as base, got %v", got)
	}
}

func TestRenderStillOffCanvas(t *testing.T) {
	s := newSession(overlay.None())
	s.Live = staticSource{solid(800, 800, red)}
	s.Still = session.NewStill(solid(1280, 720, green))

	c := New(xdraw.NearestNeighbor)
	dst := image.NewRGBA(s.Bounds())
	for _, p := range []transform.Pose{
		{X: -100000, Y: 360, Scale: 1},
		{X: 640, Y: 1e6, Scale: 3},
		{X: 640, Y: 360, Scale: 0.3},
	} {
		s.Transform.Set(p)
		c.Render(dst, s)
	}

	if got := pixel(dst, 5, 5); got != red {
		t.Errorf("Expected base at the corner, got %v", got)
	}
	if got := pixel(dst, 640, 360); got != green {
		t.Errorf("Expected the small still at the centre, got %v", got)
	}
	if st := c.Stats(); st.Frames != 3 || st.BaseMisses != 0 || st.Avg() <= 0 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestRenderBaseCoverFits(t *testing.T) {
	// 4:3 source with a green middle band: cover fit to 16:9 drops the
	// top and bottom eighths, so the band must reach the edges.
	src := solid(400, 300, red)
	xdraw.Draw(src, image.Rect(0, 38, 400, 262), image.NewUniform(green), image.Point{}, xdraw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, 160, 90))
	if !New(xdraw.NearestNeighbor).RenderBase(dst, src) {
		t.Fatal("Expected a base frame to be drawn")
	}
	for _, y := range []int{0, 45, 89} {
		if got := pixel(dst, 80, y); got != green {
			t.Errorf("Row %d: expected green, got %v", y, got)
		}
	}
}

func TestNewNamed(t *testing.T) {
	if _, err := NewNamed("catmull-rom"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := NewNamed("lanczos"); err == nil {
		t.Error("Expected error for unknown scaler")
	}
}
