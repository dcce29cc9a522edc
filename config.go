package shapeview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// CameraModel selects the viewport transform strategy.
type CameraModel uint8

const (
	// CameraLimits stores the four world-space edges of the visible region
	// and zooms around the cursor.
	CameraLimits CameraModel = iota
	// CameraWeighted derives the edges from an offset, a zoom factor and
	// per-edge weights.
	CameraWeighted
)

var cameraModelNames = [...]string{"limits", "weighted"}

func (m CameraModel) String() string {
	if int(m) < len(cameraModelNames) {
		return cameraModelNames[m]
	}
	return fmt.Sprintf("CameraModel(%d)", m)
}

// MarshalText implements encoding.TextMarshaler.
func (m CameraModel) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CameraModel) UnmarshalText(text []byte) error {
	i, err := lookupName(cameraModelNames[:], text, "camera model")
	if err != nil {
		return err
	}
	*m = CameraModel(i)
	return nil
}

// ResizePolicy decides what happens to the visible region when the
// viewport size changes.
type ResizePolicy uint8

const (
	// ResizeKeepDensity keeps world units per pixel constant. The left and
	// top edges stay put; the right and bottom edges follow the new size.
	ResizeKeepDensity ResizePolicy = iota
	// ResizeKeepLimits leaves the visible region unchanged, so the content
	// stretches with the window.
	ResizeKeepLimits
)

var resizePolicyNames = [...]string{"keep-density", "keep-limits"}

func (p ResizePolicy) String() string {
	if int(p) < len(resizePolicyNames) {
		return resizePolicyNames[p]
	}
	return fmt.Sprintf("ResizePolicy(%d)", p)
}

// MarshalText implements encoding.TextMarshaler.
func (p ResizePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ResizePolicy) UnmarshalText(text []byte) error {
	i, err := lookupName(resizePolicyNames[:], text, "resize policy")
	if err != nil {
		return err
	}
	*p = ResizePolicy(i)
	return nil
}

func lookupName(names []string, text []byte, what string) (int, error) {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, what, text)
}

// WindowConfig holds window creation options used by Run.
type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
	// ShowFPS draws an FPS/TPS overlay in the top-left corner.
	ShowFPS bool `toml:"show_fps" yaml:"show_fps"`
}

// CameraConfig holds the camera model and its tuning.
type CameraConfig struct {
	Model CameraModel `toml:"model" yaml:"model"`
	// ZoomSensitivity converts one pixel of vertical scroll into a zoom step.
	ZoomSensitivity float64 `toml:"zoom_sensitivity" yaml:"zoom_sensitivity"`
	// MinZoom and MaxZoom bound the zoom factor. Both must be positive.
	MinZoom float64      `toml:"min_zoom" yaml:"min_zoom"`
	MaxZoom float64      `toml:"max_zoom" yaml:"max_zoom"`
	Resize  ResizePolicy `toml:"resize" yaml:"resize"`
	// Weight is used by the weighted model only.
	Weight Weight `toml:"weight" yaml:"weight"`
}

// InputConfig holds input routing options.
type InputConfig struct {
	// PanButton is the mouse button that drags the view.
	PanButton MouseButton `toml:"pan_button" yaml:"pan_button"`
	// LinePixels converts line-based scroll deltas into pixels.
	LinePixels float64 `toml:"line_pixels" yaml:"line_pixels"`
}

// Config is the complete application configuration.
type Config struct {
	Window     WindowConfig `toml:"window" yaml:"window"`
	Camera     CameraConfig `toml:"camera" yaml:"camera"`
	Input      InputConfig  `toml:"input" yaml:"input"`
	ClearColor Color        `toml:"clear_color" yaml:"clear_color"`
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string `toml:"screenshot_dir" yaml:"screenshot_dir"`
	// Debug enables per-frame stats at debug log level.
	Debug bool `toml:"debug" yaml:"debug"`
}

// Defaults.
const (
	DefaultZoomSensitivity = 0.002
	DefaultMinZoom         = 0.5
	DefaultMaxZoom         = 10.0
	DefaultLinePixels      = 50.0
	defaultWindowWidth     = 800
	defaultWindowHeight    = 600
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:     "shapeview",
			Width:     defaultWindowWidth,
			Height:    defaultWindowHeight,
			Resizable: true,
		},
		Camera: CameraConfig{
			Model:           CameraLimits,
			ZoomSensitivity: DefaultZoomSensitivity,
			MinZoom:         DefaultMinZoom,
			MaxZoom:         DefaultMaxZoom,
			Resize:          ResizeKeepDensity,
			Weight:          DefaultWeight,
		},
		Input: InputConfig{
			PanButton:  MouseButtonLeft,
			LinePixels: DefaultLinePixels,
		},
		ClearColor:    ColorBlack,
		ScreenshotDir: "screenshots",
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if err := c.Camera.Validate(); err != nil {
		return err
	}
	switch {
	case c.Input.PanButton > MouseButtonMiddle:
		return fmt.Errorf("%w: pan button %d", ErrInvalidConfig, c.Input.PanButton)
	case !finite(c.Input.LinePixels) || c.Input.LinePixels <= 0:
		return fmt.Errorf("%w: line_pixels %g must be positive", ErrInvalidConfig, c.Input.LinePixels)
	}
	return nil
}

// Validate reports the first invalid camera field, wrapped in
// ErrInvalidConfig. The camera constructors call it, so a zero
// CameraConfig is rejected.
func (c CameraConfig) Validate() error {
	switch {
	case c.Model > CameraWeighted:
		return fmt.Errorf("%w: camera model %d", ErrInvalidConfig, c.Model)
	case !finite(c.ZoomSensitivity) || c.ZoomSensitivity <= 0:
		return fmt.Errorf("%w: zoom_sensitivity %g must be positive", ErrInvalidConfig, c.ZoomSensitivity)
	case !finite(c.MinZoom, c.MaxZoom) || c.MinZoom <= 0 || c.MaxZoom < c.MinZoom:
		return fmt.Errorf("%w: zoom range [%g, %g]", ErrInvalidConfig, c.MinZoom, c.MaxZoom)
	case c.MinZoom > 1 || c.MaxZoom < 1:
		return fmt.Errorf("%w: zoom range [%g, %g] must contain 1", ErrInvalidConfig, c.MinZoom, c.MaxZoom)
	case c.Resize > ResizeKeepLimits:
		return fmt.Errorf("%w: resize policy %d", ErrInvalidConfig, c.Resize)
	}
	if err := c.Weight.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseConfig decodes data over DefaultConfig. format is "toml" or "yaml".
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidConfig, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode %s config: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over the
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	Logger().Info("config loaded", "path", path, "camera", cfg.Camera.Model.String())
	return cfg, nil
}
