// Package session holds the state shared by the capture controller, the
// gesture tracker and the compositor. The controller owns the Session and is
// the only writer of Live and Still; gestures only touch Transform; the
// compositor only reads. All access happens on the booth's event loop.
package session

import (
	"image"

	"github.com/google/uuid"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/source"
	"github.com/ivlev/selfieframe/internal/transform"
)

// Still is a captured snapshot at output resolution.
type Still struct {
	ID    string
	Image *image.RGBA
}

// NewStill tags img with a fresh ID.
func NewStill(img *image.RGBA) *Still {
	return &Still{ID: uuid.NewString(), Image: img}
}

type Session struct {
	ID     string
	Width  int
	Height int

	Transform *transform.State
	Live      source.LiveSource
	Still     *Still
	Overlay   *overlay.Overlay

	// FreezeBase shows the still, not the live feed, as the base layer.
	FreezeBase bool

	capturePose transform.Pose
}

// New builds a session in its rest pose from cfg.
func New(cfg config.Config, ov *overlay.Overlay) *Session {
	if ov == nil {
		ov = overlay.None()
	}
	s := &Session{
		ID:         uuid.NewString(),
		Width:      cfg.OutputWidth,
		Height:     cfg.OutputHeight,
		Overlay:    ov,
		FreezeBase: cfg.FreezeBase,
		capturePose: transform.Pose{
			X:     float64(cfg.OutputWidth) * cfg.DefaultOffset.X,
			Y:     float64(cfg.OutputHeight) * cfg.DefaultOffset.Y,
			Scale: cfg.DefaultScale,
		},
	}
	s.Transform = transform.New(s.RestPose(), transform.Limits{Min: cfg.ScaleMin, Max: cfg.ScaleMax})
	return s
}

// Bounds is the output rectangle.
func (s *Session) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// RestPose is the transform before any capture and after a reset.
func (s *Session) RestPose() transform.Pose {
	return transform.Pose{X: float64(s.Width) / 2, Y: float64(s.Height) / 2, Scale: 1.0}
}

// CapturePose is the transform applied when a new still is installed.
func (s *Session) CapturePose() transform.Pose {
	return s.capturePose
}

// AnchorCapture moves the capture default position, keeping its scale.
func (s *Session) AnchorCapture(x, y float64) {
	s.capturePose.X = x
	s.capturePose.Y = y
}

// HasStill reports whether a captured still is installed.
func (s *Session) HasStill() bool {
	return s.Still != nil
}

// HasLive reports whether a live source is bound.
func (s *Session) HasLive() bool {
	return s.Live != nil
}
