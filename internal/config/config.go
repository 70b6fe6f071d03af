// Package config handles meshpick configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"charm.land/lipgloss/v2"
)

// Config holds all viewer settings.
type Config struct {
	Viewer    ViewerConfig    `yaml:"viewer"`
	Camera    CameraConfig    `yaml:"camera"`
	Highlight HighlightConfig `yaml:"highlight"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Model      string `yaml:"model"` // GLB opened when none is given on the command line
	FPS        int    `yaml:"fps"`
	Background string `yaml:"background"` // hex or ANSI color
	Screenshot string `yaml:"screenshot"` // PNG path for the screenshot key
}

// CameraConfig holds the orbit camera. Angles are in radians.
type CameraConfig struct {
	Alpha       float64 `yaml:"alpha"`
	Beta        float64 `yaml:"beta"`
	Radius      float64 `yaml:"radius"`
	MinRadius   float64 `yaml:"min_radius"`
	FrameRadius float64 `yaml:"frame_radius"` // radius floor after framing the model
	FOV         float64 `yaml:"fov"`
}

// HighlightConfig holds the selection look.
type HighlightConfig struct {
	Color     string  `yaml:"color"`
	EdgeWidth float64 `yaml:"edge_width"`
	Scale     float64 `yaml:"scale"`      // highlight scale relative to the original
	FadeAlpha float64 `yaml:"fade_alpha"` // opacity of unselected meshes
	ScaleStep float64 `yaml:"scale_step"` // factor of the Scale Geometry button
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:        30,
			Background: "#14141E",
			Screenshot: "meshpick.png",
		},
		Camera: CameraConfig{
			Alpha:       math.Pi / 2,
			Beta:        math.Pi / 4,
			Radius:      10,
			MinRadius:   0.5,
			FrameRadius: 3,
			FOV:         0.8,
		},
		Highlight: HighlightConfig{
			Color:     "#FF0000",
			EdgeWidth: 4,
			Scale:     1.2,
			FadeAlpha: 0.2,
			ScaleStep: 1.2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: filepath.Join(ConfigDir(), "meshpick.log"),
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Viewer.FPS <= 0 {
		return fmt.Errorf("viewer.fps must be positive, got %d", c.Viewer.FPS)
	}
	if _, err := ParseColor(c.Viewer.Background); err != nil {
		return fmt.Errorf("viewer.background: %w", err)
	}
	if _, err := ParseColor(c.Highlight.Color); err != nil {
		return fmt.Errorf("highlight.color: %w", err)
	}
	if c.Camera.Radius <= 0 {
		return fmt.Errorf("camera.radius must be positive, got %g", c.Camera.Radius)
	}
	if c.Highlight.FadeAlpha < 0 || c.Highlight.FadeAlpha > 1 {
		return fmt.Errorf("highlight.fade_alpha must be within [0, 1], got %g", c.Highlight.FadeAlpha)
	}
	if c.Highlight.Scale <= 0 || c.Highlight.ScaleStep <= 0 {
		return fmt.Errorf("highlight scale factors must be positive")
	}
	return nil
}

// ParseColor parses a hex ("#ff0000", "#f00") or ANSI ("9") color.
func ParseColor(s string) (color.RGBA, error) {
	c := lipgloss.Color(s)
	if _, none := c.(lipgloss.NoColor); none {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
