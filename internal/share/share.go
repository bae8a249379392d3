// Package share renders the QR code that points guests to the booth page.
package share

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the QR edge in pixels.
const DefaultSize = 180

// Image renders url as a size×size QR code.
func Image(url string, size int) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("share: empty url")
	}
	if size <= 0 {
		size = DefaultSize
	}
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	return q.Image(size), nil
}

// WriteQR writes the QR code for url as a PNG at path.
func WriteQR(path, url string, size int) error {
	if url == "" {
		return fmt.Errorf("share: empty url")
	}
	if size <= 0 {
		size = DefaultSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return qrcode.WriteFile(url, qrcode.Medium, size, path)
}
