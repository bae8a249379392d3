//go:build gst

package engine

import (
	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/source"
)

func newGstCamera(cfg config.CameraConfig, fps int) (source.Camera, error) {
	device := cfg.Device
	if device == "" {
		device = "/dev/video0"
	}
	return source.NewGstCamera(device, cfg.Width, cfg.Height, fps), nil
}
