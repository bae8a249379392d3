// Package compositor draws the booth's three layers, in order: the base (live
// camera, cover-fitted), the captured still at its transform, and the overlay
// stretched over the whole surface.
package compositor

import (
	"image"
	"math"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/selfieframe/internal/cover"
	"github.com/ivlev/selfieframe/internal/session"
)

// Stats accumulates render tick timings.
type Stats struct {
	Frames     uint64
	BaseMisses uint64 // ticks where no base frame was available
	Total      time.Duration
	Max        time.Duration
}

// Avg is the mean render duration.
func (s Stats) Avg() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}

type Compositor struct {
	scaler xdraw.Interpolator

	mu    sync.Mutex
	stats Stats
}

func New(scaler xdraw.Interpolator) *Compositor {
	if scaler == nil {
		scaler = xdraw.ApproxBiLinear
	}
	return &Compositor{scaler: scaler}
}

// NewNamed builds a compositor with a scaler from the cover registry.
func NewNamed(name string) (*Compositor, error) {
	sc, err := cover.NewScaler(name)
	if err != nil {
		return nil, err
	}
	return New(sc), nil
}

// Render clears dst and draws the full composite of s into it. It runs every
// tick whether or not anything changed.
func (c *Compositor) Render(dst *image.RGBA, s *session.Session) {
	start := time.Now()
	bounds := dst.Bounds()

	xdraw.Draw(dst, bounds, image.Transparent, image.Point{}, xdraw.Src)

	drewBase := c.drawBase(dst, s)
	c.drawStill(dst, s)
	c.drawOverlay(dst, s)

	c.record(time.Since(start), drewBase)
}

// RenderBase draws only a cover-fitted frame of src into dst.
func (c *Compositor) RenderBase(dst *image.RGBA, src image.Image) bool {
	return cover.Draw(dst, dst.Bounds(), src, c.scaler, xdraw.Src)
}

func (c *Compositor) drawBase(dst *image.RGBA, s *session.Session) bool {
	if s.HasLive() && !s.FreezeBase {
		return c.RenderBase(dst, s.Live.Frame())
	}
	if s.HasStill() {
		return c.RenderBase(dst, s.Still.Image)
	}
	return false
}

func (c *Compositor) drawStill(dst *image.RGBA, s *session.Session) {
	if !s.HasStill() {
		return
	}
	img := s.Still.Image
	sb := img.Bounds()
	w, h := s.Transform.Size(sb.Dx(), sb.Dy())

	dr := image.Rect(
		int(math.Round(s.Transform.X-w/2)),
		int(math.Round(s.Transform.Y-h/2)),
		int(math.Round(s.Transform.X+w/2)),
		int(math.Round(s.Transform.Y+h/2)),
	)
	if dr.Empty() || !dr.Overlaps(dst.Bounds()) {
		return
	}
	c.scaler.Scale(dst, dr, img, sb, xdraw.Over, nil)
}

func (c *Compositor) drawOverlay(dst *image.RGBA, s *session.Session) {
	if s.Overlay == nil {
		return
	}
	ov, ok := s.Overlay.Image()
	if !ok {
		return
	}
	ob := ov.Bounds()
	if ob.Dx() == dst.Bounds().Dx() && ob.Dy() == dst.Bounds().Dy() {
		xdraw.Draw(dst, dst.Bounds(), ov, ob.Min, xdraw.Over)
		return
	}
	c.scaler.Scale(dst, dst.Bounds(), ov, ob, xdraw.Over, nil)
}

func (c *Compositor) record(d time.Duration, drewBase bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Frames++
	c.stats.Total += d
	if d > c.stats.Max {
		c.stats.Max = d
	}
	if !drewBase {
		c.stats.BaseMisses++
	}
}

func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
