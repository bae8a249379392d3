//go:build gst

package source

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// GstCamera reads a V4L2 device through GStreamer:
//
//	v4l2src → videoconvert → videoscale → capsfilter(RGBA) → appsink
type GstCamera struct {
	Device string
	Width  int
	Height int
	FPS    int
}

// NewGstCamera creates a GStreamer camera for device (e.g. /dev/video0).
func NewGstCamera(device string, width, height, fps int) *GstCamera {
	return &GstCamera{Device: device, Width: width, Height: height, FPS: fps}
}

func (c *GstCamera) Acquire(ctx context.Context, cons Constraints) (LiveSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cons.Audio {
		return nil, &AcquisitionError{Reason: ReasonNoDevice, Err: fmt.Errorf("audio capture is not supported")}
	}

	w, h := c.Width, c.Height
	if cons.Width > 0 && cons.Height > 0 {
		w, h = cons.Width, cons.Height
	}

	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to create pipeline: %w", err)}
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonNoDevice, Err: fmt.Errorf("failed to create v4l2src: %w", err)}
	}
	if c.Device != "" {
		src.SetProperty("device", c.Device)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to create videoconvert: %w", err)}
	}
	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to create videoscale: %w", err)}
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to create capsfilter: %w", err)}
	}
	capsStr := fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d", w, h)
	if c.FPS > 0 {
		capsStr += fmt.Sprintf(",framerate=%d/1", c.FPS)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to create appsink: %w", err)}
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1)
	appsink.SetProperty("drop", true)

	pipeline.AddMany(src, converter, scaler, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(src, converter, scaler, capsfilter, appsink.Element); err != nil {
		return nil, &AcquisitionError{Reason: ReasonUnknown, Err: fmt.Errorf("failed to link pipeline: %w", err)}
	}

	s := &gstStream{pipeline: pipeline, width: w, height: h}
	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return s.onNewSample(sink)
		},
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, &AcquisitionError{Reason: ReasonBusy, Err: fmt.Errorf("failed to start pipeline: %w", err)}
	}
	return s, nil
}

type gstStream struct {
	pipeline *gst.Pipeline
	width    int
	height   int
	box      mailbox
	stopOnce sync.Once
	stopErr  error
}

// onNewSample copies the RGBA buffer; GStreamer reuses it after return.
func (s *gstStream) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) < s.width*s.height*4 {
		buffer.Unmap()
		return gst.FlowOK
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, data[:len(img.Pix)])
	buffer.Unmap()

	s.box.publish(img)
	return gst.FlowOK
}

func (s *gstStream) Frame() image.Image {
	img, _ := s.box.latest()
	return img
}

func (s *gstStream) Size() (int, int) { return s.box.size() }

func (s *gstStream) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.pipeline.SetState(gst.StateNull)
	})
	return s.stopErr
}
