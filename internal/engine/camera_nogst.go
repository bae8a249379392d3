//go:build !gst

package engine

import (
	"errors"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/source"
)

func newGstCamera(config.CameraConfig, int) (source.Camera, error) {
	return nil, errors.New("camera kind gst needs a build with -tags gst")
}
