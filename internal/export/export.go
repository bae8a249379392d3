// Package export hands finished composites to their destination.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Sink accepts a finished W×H raster under a file name.
type Sink interface {
	Export(ctx context.Context, name string, img image.Image) error
}

// FileSink writes into Dir. The format follows the name's extension
// (.png, .jpg, .gif, .tif, .bmp). Files appear atomically.
type FileSink struct {
	Dir         string
	JPEGQuality int

	mu   sync.Mutex
	last string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir, JPEGQuality: 95}
}

func (s *FileSink) Export(ctx context.Context, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".export-*")
	if err != nil {
		return fmt.Errorf("export temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	quality := s.JPEGQuality
	if quality <= 0 {
		quality = 95
	}
	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(quality)); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}

	s.mu.Lock()
	s.last = path
	s.mu.Unlock()
	return nil
}

// LastPath is the path of the most recent successful export.
func (s *FileSink) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// FallbackSink tries Primary and, if it fails, Secondary. The composite is
// lost only when both fail.
type FallbackSink struct {
	Primary   Sink
	Secondary Sink
}

func (s FallbackSink) Export(ctx context.Context, name string, img image.Image) error {
	err := s.Primary.Export(ctx, name, img)
	if err == nil || s.Secondary == nil {
		return err
	}
	log.Printf("[!] Export failed, trying fallback: %v", err)

	if ferr := s.Secondary.Export(ctx, name, img); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}

// MultiSink exports to every sink concurrently.
type MultiSink []Sink

func (m MultiSink) Export(ctx context.Context, name string, img image.Image) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m {
		s := s
		g.Go(func() error {
			return s.Export(ctx, name, img)
		})
	}
	return g.Wait()
}

// MemorySink keeps exports in memory.
type MemorySink struct {
	mu     sync.Mutex
	images map[string]image.Image
}

func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[string]image.Image)}
}

func (m *MemorySink) Export(ctx context.Context, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = img
	return nil
}

func (m *MemorySink) Get(name string) (image.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[name]
	return img, ok
}

func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.images))
	for n := range m.images {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
