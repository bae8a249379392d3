package share

import (
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestImage(t *testing.T) {
	img, err := Image("https://example.org/booth", 0)
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Errorf("Expected %dx%d, got %v", DefaultSize, DefaultSize, b)
	}

	if _, err := Image("", 100); err == nil {
		t.Error("Expected error for empty url")
	}
}

func TestWriteQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share", "qr.png")
	if err := WriteQR(path, "https://example.org/booth", 256); err != nil {
		t.Fatalf("WriteQR failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Cannot open QR: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("Expected width 256, got %d", img.Bounds().Dx())
	}
}
