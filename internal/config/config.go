package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Offset is a position expressed as fractions of the output surface.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// CameraConfig selects and tunes the live source.
type CameraConfig struct {
	Kind      string `yaml:"kind"`       // mock, images, gst
	Facing    string `yaml:"facing"`     // user, environment
	Device    string `yaml:"device"`     // gst: /dev/video0
	Width     int    `yaml:"width"`      // requested intrinsic width
	Height    int    `yaml:"height"`     // requested intrinsic height
	FPS       int    `yaml:"fps"`        // frame production rate
	FramesDir string `yaml:"frames_dir"` // images: directory with recorded frames
}

type Config struct {
	OutputWidth   int     `yaml:"output_width"`
	OutputHeight  int     `yaml:"output_height"`
	DefaultScale  float64 `yaml:"default_scale"`
	DefaultOffset Offset  `yaml:"default_offset"`
	ScaleMin      float64 `yaml:"scale_min"`
	ScaleMax      float64 `yaml:"scale_max"`
	WheelStep     float64 `yaml:"wheel_step"`

	FPS            int    `yaml:"fps"`    // render ticks per second
	Scaler         string `yaml:"scaler"` // nearest, approx-bilinear, bilinear, catmull-rom
	FreezeBase     bool   `yaml:"freeze_base"`
	AnchorToWindow bool   `yaml:"anchor_to_window"`
	WindowDetector string `yaml:"window_detector"` // alpha, luma

	OverlayPath string       `yaml:"overlay_path"`
	OutputDir   string       `yaml:"output_dir"`
	ExportName  string       `yaml:"export_name"`
	ShareURL    string       `yaml:"share_url"`
	QRSize      int          `yaml:"qr_size"`
	Camera      CameraConfig `yaml:"camera"`

	Preset       string `yaml:"preset"`
	ShowStats    bool   `yaml:"show_stats"`
	BuildVersion string `yaml:"-"`
}

// DefaultExportName is the file name offered for the finished composite.
const DefaultExportName = "bodoci-gimnazijec.png"

// Default returns the classic 16:9 configuration.
func Default() Config {
	cfg, _ := Preset("classic")
	return cfg
}

// Preset returns one of the named configurations.
func Preset(name string) (Config, error) {
	cfg := Config{
		OutputWidth:    1280,
		OutputHeight:   720,
		DefaultScale:   1.10,
		DefaultOffset:  Offset{X: 0.5, Y: 0.43},
		ScaleMin:       0.3,
		ScaleMax:       3.0,
		WheelStep:      0.05,
		FPS:            30,
		Scaler:         "approx-bilinear",
		WindowDetector: "alpha",
		OutputDir:      "output",
		ExportName:     DefaultExportName,
		QRSize:         180,
		Camera: CameraConfig{
			Kind:   "mock",
			Facing: "user",
			Width:  1920,
			Height: 1080,
			FPS:    30,
		},
		Preset: "classic",
	}

	switch strings.ToLower(name) {
	case "", "classic", "16:9":
	case "hd", "1080p":
		cfg.OutputWidth, cfg.OutputHeight = 1920, 1080
		cfg.DefaultScale = 1.12
		cfg.DefaultOffset = Offset{X: 0.5, Y: 0.45}
		cfg.Preset = "hd"
	default:
		return Config{}, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

// Load reads a YAML file over the preset it names (classic when absent).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg, err := Preset(head.Preset)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores the configuration as YAML.
func Write(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var knownScalers = map[string]bool{
	"nearest":         true,
	"approx-bilinear": true,
	"bilinear":        true,
	"catmull-rom":     true,
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		errs = append(errs, fmt.Errorf("output size must be positive, got %dx%d", c.OutputWidth, c.OutputHeight))
	}
	if c.ScaleMin <= 0 {
		errs = append(errs, fmt.Errorf("scale_min must be positive, got %g", c.ScaleMin))
	}
	if c.ScaleMax < c.ScaleMin {
		errs = append(errs, fmt.Errorf("scale_max %g is below scale_min %g", c.ScaleMax, c.ScaleMin))
	}
	if c.WheelStep <= 0 || c.WheelStep >= 1 {
		errs = append(errs, fmt.Errorf("wheel_step must be in (0,1), got %g", c.WheelStep))
	}
	if c.DefaultScale <= 0 {
		errs = append(errs, fmt.Errorf("default_scale must be positive, got %g", c.DefaultScale))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if !knownScalers[c.Scaler] {
		errs = append(errs, fmt.Errorf("unknown scaler: %s", c.Scaler))
	}
	if c.WindowDetector != "" && c.WindowDetector != "alpha" && c.WindowDetector != "luma" {
		errs = append(errs, fmt.Errorf("unknown window_detector: %s", c.WindowDetector))
	}
	if c.ExportName == "" {
		errs = append(errs, errors.New("export_name is empty"))
	}
	return errors.Join(errs...)
}
