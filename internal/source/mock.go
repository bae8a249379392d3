package source

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"
)

// MockCamera produces synthetic frames. Setting Deny makes every Acquire
// fail with that reason. FPS <= 0 yields a single still frame and no
// background goroutine.
type MockCamera struct {
	Width  int
	Height int
	FPS    int
	Deny   Reason

	active   int32
	acquired int32
}

// NewMockCamera creates a mock camera with the given intrinsic size.
func NewMockCamera(width, height, fps int) *MockCamera {
	return &MockCamera{Width: width, Height: height, FPS: fps}
}

// Active is the number of sources handed out and not yet stopped.
func (m *MockCamera) Active() int { return int(atomic.LoadInt32(&m.active)) }

// Acquired is the number of successful Acquire calls.
func (m *MockCamera) Acquired() int { return int(atomic.LoadInt32(&m.acquired)) }

func (m *MockCamera) Acquire(ctx context.Context, c Constraints) (LiveSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Deny != ReasonUnknown {
		return nil, &AcquisitionError{Reason: m.Deny}
	}
	if c.Audio {
		// the mock has no microphone
		return nil, &AcquisitionError{Reason: ReasonNoDevice}
	}

	w, h := m.Width, m.Height
	if c.Width > 0 && c.Height > 0 {
		w, h = c.Width, c.Height
	}

	s := &mockStream{
		camera: m,
		width:  w,
		height: h,
		stopCh: make(chan struct{}),
	}
	s.box.publish(s.createFrame(0))

	atomic.AddInt32(&m.active, 1)
	atomic.AddInt32(&m.acquired, 1)

	if m.FPS > 0 {
		s.wg.Add(1)
		go s.generateFrames(time.Second / time.Duration(m.FPS))
	}
	return s, nil
}

type mockStream struct {
	camera *MockCamera
	width  int
	height int
	box    mailbox

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func (s *mockStream) Frame() image.Image {
	img, _ := s.box.latest()
	return img
}

func (s *mockStream) Size() (int, int) { return s.box.size() }

func (s *mockStream) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		atomic.AddInt32(&s.camera.active, -1)
	})
	return nil
}

func (s *mockStream) generateFrames(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			seq++
			s.box.publish(s.createFrame(seq))
		}
	}
}

// createFrame draws a vertical gradient with a bar that moves with seq, so
// consecutive frames differ.
func (s *mockStream) createFrame(seq uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	barX := int(seq*8) % max(s.width, 1)
	barW := max(s.width/32, 1)

	for y := 0; y < s.height; y++ {
		v := uint8(y * 255 / max(s.height-1, 1))
		row := img.Pix[y*img.Stride : y*img.Stride+s.width*4]
		for x := 0; x < s.width; x++ {
			c := color.RGBA{R: v, G: 96, B: 255 - v, A: 255}
			if x >= barX && x < barX+barW {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
	return img
}
