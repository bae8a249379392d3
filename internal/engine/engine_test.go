package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/selfieframe/internal/config"
	"github.com/ivlev/selfieframe/internal/export"
	"github.com/ivlev/selfieframe/internal/overlay"
	"github.com/ivlev/selfieframe/internal/script"
	"github.com/ivlev/selfieframe/internal/source"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputWidth, cfg.OutputHeight = 320, 180
	cfg.OutputDir = t.TempDir()
	cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS = 160, 120, 0
	return cfg
}

func runBooth(t *testing.T, b *Booth, fn func(ctx context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Run(ctx, fn); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBoothSession(t *testing.T) {
	cfg := testConfig(t)
	cam := source.NewMockCamera(160, 120, 0)
	sink := export.NewMemorySink()

	b, err := NewBooth(cfg, cam, sink, nil)
	if err != nil {
		t.Fatalf("NewBooth failed: %v", err)
	}

	runBooth(t, b, func(ctx context.Context) error {
		if err := b.Start(ctx); err != nil {
			return err
		}
		if err := b.Capture(ctx); err != nil {
			return err
		}

		p, _ := b.Pose(ctx)
		if !near(p.X, 160) || !near(p.Y, 180*0.43) || !near(p.Scale, 1.1) {
			t.Errorf("Unexpected capture pose %+v", p)
		}

		b.SetViewport(ctx, 320, 180)
		b.Press(ctx, 1, 10, 10)
		b.Move(ctx, 1, 30, 20)
		b.Release(ctx, 1)
		b.Wheel(ctx, -100)

		p, _ = b.Pose(ctx)
		if !near(p.X, 180) || !near(p.Y, 180*0.43+10) || !near(p.Scale, 1.1*1.05) {
			t.Errorf("Unexpected pose after gestures %+v", p)
		}

		if err := b.Export(ctx, ""); err != nil {
			return err
		}
		return b.Export(ctx, "copy.png")
	})

	if _, ok := sink.Get(cfg.ExportName); !ok {
		t.Errorf("Expected export %s, got %v", cfg.ExportName, sink.Names())
	}
	img, ok := sink.Get("copy.png")
	if !ok {
		t.Fatalf("Expected named export, got %v", sink.Names())
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 180 {
		t.Errorf("Export should be at output resolution, got %v", img.Bounds())
	}
	if cam.Active() != 0 {
		t.Errorf("Camera should be released after Run, %d active", cam.Active())
	}
}

func TestBoothReplay(t *testing.T) {
	cfg := testConfig(t)
	cam := source.NewMockCamera(160, 120, 0)
	sink := export.NewMemorySink()
	b, err := NewBooth(cfg, cam, sink, nil)
	if err != nil {
		t.Fatalf("NewBooth failed: %v", err)
	}

	s := &script.Script{
		Version:  "1.0",
		Viewport: &script.Viewport{W: 160, H: 90},
		Steps: []script.Step{
			{Action: script.ActionCapture}, // refused, no camera yet
			{Action: script.ActionExport},  // refused, no still
			{Action: script.ActionStart},
			{Action: script.ActionCapture},
			{Action: script.ActionPress, Pointer: 1, X: 0, Y: 0},
			{Action: script.ActionMove, Pointer: 1, X: 10, Y: 5},
			{Action: script.ActionRelease, Pointer: 1},
			{Action: script.ActionWheel, DeltaY: 1, Count: 2},
			{Action: script.ActionTick, Count: 3},
			{Action: script.ActionWait, Millis: 5},
			{Action: script.ActionExport, Name: "replay.png"},
			{Action: script.ActionStop},
		},
	}

	runBooth(t, b, func(ctx context.Context) error {
		if err := b.Replay(ctx, s); err != nil {
			return err
		}
		p, _ := b.Pose(ctx)
		// viewport is half the output size, pointer deltas double
		if !near(p.X, 180) || !near(p.Y, 180*0.43+10) || !near(p.Scale, 1.1*0.95*0.95) {
			t.Errorf("Unexpected pose after replay %+v", p)
		}
		a, _ := b.Affordances(ctx)
		if a.Capture || !a.Export || !a.Reset {
			t.Errorf("Unexpected affordances after stop %+v", a)
		}
		return nil
	})

	if names := sink.Names(); len(names) != 1 || names[0] != "replay.png" {
		t.Errorf("Expected only replay.png, got %v", names)
	}
	if st := b.Compositor.Stats(); st.Frames < 3 {
		t.Errorf("Expected at least 3 rendered frames, got %d", st.Frames)
	}
}

func TestBoothReplayDenied(t *testing.T) {
	cfg := testConfig(t)
	cam := source.NewMockCamera(160, 120, 0)
	cam.Deny = source.ReasonPermissionDenied
	b, _ := NewBooth(cfg, cam, export.NewMemorySink(), nil)

	s := &script.Script{Steps: []script.Step{{Action: script.ActionStart}, {Action: script.ActionCapture}}}

	var replayErr error
	runBooth(t, b, func(ctx context.Context) error {
		replayErr = b.Replay(ctx, s)
		return nil
	})

	var acq *source.AcquisitionError
	if !errors.As(replayErr, &acq) || acq.Reason != source.ReasonPermissionDenied {
		t.Fatalf("Expected permission denied, got %v", replayErr)
	}
	if !strings.Contains(replayErr.Error(), "step 1") {
		t.Errorf("Error should name the step: %v", replayErr)
	}
}

func TestBoothAnchorToWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnchorToWindow = true

	// overlay at twice the output size with one hole centred at (480, 120)
	ov := image.NewNRGBA(image.Rect(0, 0, 640, 360))
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			a := uint8(255)
			if x >= 440 && x < 520 && y >= 80 && y < 160 {
				a = 0
			}
			ov.SetNRGBA(x, y, color.NRGBA{200, 40, 40, a})
		}
	}

	b, _ := NewBooth(cfg, source.NewMockCamera(160, 120, 0), export.NewMemorySink(), overlay.FromImage(ov))
	runBooth(t, b, func(ctx context.Context) error {
		b.Start(ctx)
		if err := b.Capture(ctx); err != nil {
			return err
		}
		p, _ := b.Pose(ctx)
		if !near(p.X, 240) || !near(p.Y, 60) {
			t.Errorf("Expected still anchored at (240, 60), got %+v", p)
		}
		return b.Reset(ctx)
	})
}

func TestBoothReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.BuildVersion = "test"
	b, _ := NewBooth(cfg, source.NewMockCamera(160, 120, 0), export.NewMemorySink(), nil)
	runBooth(t, b, func(ctx context.Context) error { return b.Tick(ctx) })

	b.Report()

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "benchmark.log"))
	if err != nil {
		t.Fatalf("benchmark.log not written: %v", err)
	}
	if !strings.Contains(string(data), "Build: test | Size: 320x180") {
		t.Errorf("Unexpected log entry: %s", data)
	}
}

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CameraConfig
		wantErr bool
	}{
		{"mock", config.CameraConfig{Kind: "mock"}, false},
		{"default", config.CameraConfig{}, false},
		{"images", config.CameraConfig{Kind: "images", FramesDir: "frames"}, false},
		{"images without dir", config.CameraConfig{Kind: "images"}, true},
		{"unknown", config.CameraConfig{Kind: "webcam"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, err := NewCamera(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCamera() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cam == nil {
				t.Error("Expected a camera")
			}
		})
	}
}

func TestNewBoothInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scaler = "lanczos9"
	if _, err := NewBooth(cfg, source.NewMockCamera(1, 1, 0), export.NewMemorySink(), nil); err == nil {
		t.Error("Expected config error")
	}
}
