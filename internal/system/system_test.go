package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFramePool(t *testing.T) {
	p := NewFramePool()

	img := p.Get(64, 36)
	if img.Rect.Dx() != 64 || img.Rect.Dy() != 36 || img.Rect.Min.X != 0 {
		t.Fatalf("Unexpected rect %v", img.Rect)
	}
	p.Put(img)

	// Sub-images and foreign sizes must be ignored without panicking.
	p.Put(img.SubImage(img.Rect.Inset(4)).(*image.RGBA))
	p.Put(nil)

	if again := p.Get(64, 36); again.Rect != img.Rect {
		t.Errorf("Expected %v, got %v", img.Rect, again.Rect)
	}
}

func TestFindLatestOverlay(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	fresh := filepath.Join(dir, "fresh.webp")
	os.WriteFile(old, []byte("x"), 0644)
	os.WriteFile(fresh, []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "newest.jpg"), []byte("x"), 0644)

	now := time.Now()
	os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(fresh, now, now)

	got, err := FindLatestOverlay(dir)
	if err != nil {
		t.Fatalf("FindLatestOverlay failed: %v", err)
	}
	if got != fresh {
		t.Errorf("Expected %s, got %s", fresh, got)
	}

	if got, _ := FindLatestOverlay(old); got != old {
		t.Errorf("File path should be returned as is, got %s", got)
	}

	if _, err := FindLatestOverlay(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without overlays")
	}
}

func TestSnapshot(t *testing.T) {
	r, err := Snapshot()
	if err != nil {
		t.Logf("Partial snapshot: %v", err)
	}
	t.Logf("Resources: %s", r)
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:             "512B",
		2048:            "2.0KiB",
		5 * 1024 * 1024: "5.0MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
