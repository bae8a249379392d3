package engine

import (
	"fmt"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/source"
)

// NewCamera builds the camera named by cfg.Kind.
func NewCamera(cfg config.CameraConfig) (source.Camera, error) {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	switch cfg.Kind {
	case "", "mock":
		w, h := cfg.Width, cfg.Height
		if w <= 0 || h <= 0 {
			w, h = 640, 480
		}
		return source.NewMockCamera(w, h, fps), nil
	case "images":
		if cfg.FramesDir == "" {
			return nil, fmt.Errorf("camera kind images needs frames_dir")
		}
		return source.NewImageCamera(cfg.FramesDir, fps), nil
	case "gst":
		return newGstCamera(cfg, fps)
	}
	return nil, fmt.Errorf("unknown camera kind: %s", cfg.Kind)
}
