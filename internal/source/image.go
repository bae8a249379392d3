package source

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// ImageCamera plays a directory of JPEG/PNG frames (or a single file) as a
// live feed, looping at FPS.
type ImageCamera struct {
	Path string
	FPS  int
}

// NewImageCamera creates an image-backed camera.
func NewImageCamera(path string, fps int) *ImageCamera {
	return &ImageCamera{Path: path, FPS: fps}
}

func (c *ImageCamera) Acquire(ctx context.Context, _ Constraints) (LiveSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths, err := listFrames(c.Path)
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonNoDevice, Err: err}
	}
	if len(paths) == 0 {
		return nil, &AcquisitionError{Reason: ReasonNoDevice, Err: fmt.Errorf("no frames in %s", c.Path)}
	}

	first, err := decodeFrame(paths[0])
	if err != nil {
		return nil, &AcquisitionError{Reason: ReasonNoDevice, Err: err}
	}

	s := &imageStream{paths: paths, stopCh: make(chan struct{})}
	s.box.publish(first)

	if c.FPS > 0 && len(paths) > 1 {
		s.wg.Add(1)
		go s.play(time.Second / time.Duration(c.FPS))
	}
	return s, nil
}

func listFrames(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func decodeFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

type imageStream struct {
	paths []string
	box   mailbox

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func (s *imageStream) Frame() image.Image {
	img, _ := s.box.latest()
	return img
}

func (s *imageStream) Size() (int, int) { return s.box.size() }

func (s *imageStream) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
	return nil
}

func (s *imageStream) play(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			i = (i + 1) % len(s.paths)
			img, err := decodeFrame(s.paths[i])
			if err != nil {
				// keep showing the previous frame
				continue
			}
			s.box.publish(img)
		}
	}
}
