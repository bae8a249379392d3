// Command selfiescript generates a demo booth session for an overlay: it
// finds the overlay's see-through window and writes a script that captures,
// drags the still into the window and pinches it to size.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ivlev/selfieframe/internal/analyzer"
	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/script"
	"github.com/ivlev/selfieframe/internal/session"
	"github.com/ivlev/selfieframe/internal/system"
)

func main() {
	overlayPtr := flag.String("overlay", "", "Рамка PNG/WebP (по умолчанию: самый свежий файл в input/overlay/, иначе синтетическая)")
	presetPtr := flag.String("preset", "", "Пресет: classic, hd")
	detectorPtr := flag.String("detector", "alpha", "Детектор окна: alpha, luma")
	outputPtr := flag.String("output", "", "Путь к сценарию (по умолчанию: input/scripts/session_<время>.yaml)")
	viewportWPtr := flag.Float64("viewport-width", 0, "Ширина экрана в пикселях указателя (0 - как холст)")
	viewportHPtr := flag.Float64("viewport-height", 0, "Высота экрана в пикселях указателя (0 - как холст)")
	flag.Parse()

	cfg, err := config.Preset(*presetPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	scriptPath := *outputPtr
	if scriptPath == "" {
		scriptPath = script.GeneratePath(script.DefaultDir)
	}

	fmt.Println("=== Selfie Session Generation ===")
	fmt.Printf("Output: %s\n\n", scriptPath)

	// Step 1: overlay
	fmt.Println("[1/3] Loading overlay...")
	img, name := loadOverlay(*overlayPtr, cfg)
	fmt.Printf("✓ Overlay: %s (%dx%d)\n\n", name, img.Bounds().Dx(), img.Bounds().Dy())

	// Step 2: windows
	fmt.Println("[2/3] Looking for see-through windows...")
	detector, err := analyzer.NewDetector(*detectorPtr)
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}
	windows, err := detector.Detect(img)
	if err != nil {
		log.Fatalf("Failed to detect windows: %v", err)
	}
	fmt.Printf("✓ Detected %d windows\n", len(windows))
	for i, w := range windows {
		fmt.Printf("  Window %d: %v (area %d, coverage %.2f)\n", i+1, w.Rect, w.Area, w.Coverage)
	}
	fmt.Println()

	// Step 3: script
	fmt.Println("[3/3] Generating YAML session...")
	d := script.NewDirector(cfg)
	if *viewportWPtr > 0 && *viewportHPtr > 0 {
		d.ViewportWidth, d.ViewportHeight = *viewportWPtr, *viewportHPtr
	}
	start := session.New(cfg, nil).CapturePose()
	s, err := d.Generate(windows, img.Bounds(), start)
	if err != nil {
		log.Fatalf("Failed to generate session: %v", err)
	}
	s.Overlay = name

	os.MkdirAll(filepath.Dir(scriptPath), 0755)
	if err := script.WriteScript(s, scriptPath); err != nil {
		log.Fatalf("Failed to write session: %v", err)
	}
	fmt.Printf("✓ Session saved to: %s\n\n", scriptPath)

	target, _ := d.Target(windows, img.Bounds())
	fmt.Println("=== Session Summary ===")
	fmt.Printf("Version: %s\n", s.Version)
	fmt.Printf("Steps: %d\n", len(s.Steps))
	fmt.Printf("Start: (%.0f, %.0f) x%.2f\n", start.X, start.Y, start.Scale)
	fmt.Printf("Target: (%.0f, %.0f) x%.2f\n", target.X, target.Y, target.Scale)

	fmt.Println("\n✅ Done!")
	fmt.Printf("📄 Replay: selfieframe -script %s\n", scriptPath)
}

// loadOverlay decodes the chosen overlay, falling back to a synthetic one.
func loadOverlay(path string, cfg config.Config) (image.Image, string) {
	if path == "" {
		if latest, err := system.FindLatestOverlay("input/overlay"); err == nil {
			path = latest
		}
	}
	if path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ov := overlay.Load(ctx, path)
		if err := ov.Wait(ctx); err != nil {
			log.Fatalf("Failed to load overlay: %v", err)
		}
		img, _ := ov.Image()
		return img, filepath.Base(path)
	}

	img := createTestOverlay(cfg.OutputWidth, cfg.OutputHeight)
	testPath := filepath.Join(os.TempDir(), "test_overlay.png")
	if err := imaging.Save(img, testPath); err != nil {
		log.Fatalf("Failed to save test overlay: %v", err)
	}
	return img, testPath
}

// createTestOverlay creates an opaque frame with one transparent window in
// the upper right part.
func createTestOverlay(width, height int) *image.NRGBA {
	img := imaging.New(width, height, color.NRGBA{R: 20, G: 90, B: 160, A: 255})

	hole := image.Rect(width*55/100, height*15/100, width*90/100, height*70/100)
	for y := hole.Min.Y; y < hole.Max.Y; y++ {
		for x := hole.Min.X; x < hole.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}

	// caption band
	band := image.Rect(0, height*85/100, width, height)
	for y := band.Min.Y; y < band.Max.Y; y++ {
		for x := band.Min.X; x < band.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	return img
}
