// Package config holds the startup settings of the floodlight scene.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"
	"Floodlight/internal/tuning"

	"go.uber.org/zap"
)

// Hex is a 0xRRGGBB color written as "#rrggbb" in JSON.
type Hex uint

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%06x", uint(h))), nil
}

func (h *Hex) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xffffff {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*h = Hex(v)
	return nil
}

type WindowConfig struct {
	Title   string `json:"title"`
	Width   int32  `json:"width"`
	Height  int32  `json:"height"`
	VSync   bool   `json:"vsync"`
	Samples int    `json:"samples"`
}

type CameraConfig struct {
	Fov      float32    `json:"fov"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	Damping  bool       `json:"damping"`
}

type FogConfig struct {
	Color   Hex     `json:"color"`
	Density float32 `json:"density"`
}

type RendererConfig struct {
	ToneMapping string  `json:"tone_mapping"`
	Exposure    float32 `json:"exposure"`
	Shadows     bool    `json:"shadows"`

	FrustumCulling bool `json:"frustum_culling"`
	Wireframe      bool `json:"wireframe"`
}

type BloomConfig struct {
	Threshold float32 `json:"threshold"`
	Strength  float32 `json:"strength"`
	Radius    float32 `json:"radius"`
}

type HelperConfig struct {
	// Color pins the cone color; nil follows the light color.
	Color   *Hex    `json:"color,omitempty"`
	Opacity float32 `json:"opacity"`

	ShowLightHelpers  bool `json:"show_light_helpers"`
	ShowCameraHelpers bool `json:"show_camera_helpers"`
}

type ModelConfig struct {
	Path  string  `json:"path"`
	Scale float32 `json:"scale"`
}

type Config struct {
	Window   WindowConfig   `json:"window"`
	Camera   CameraConfig   `json:"camera"`
	Fog      FogConfig      `json:"fog"`
	Renderer RendererConfig `json:"renderer"`
	Bloom    BloomConfig    `json:"bloom"`
	Helpers  HelperConfig   `json:"helpers"`
	Model    ModelConfig    `json:"model"`
	Debug    tuning.Options `json:"debug"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "Floodlight",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		Camera: CameraConfig{
			Fov:      75,
			Near:     0.01,
			Far:      1000,
			Position: [3]float32{0, 4, 6},
			Target:   [3]float32{0, 1.65, 0},
			Damping:  true,
		},
		Fog: FogConfig{Color: 0x262837, Density: 0.04},
		Renderer: RendererConfig{
			ToneMapping: renderer.ACESFilmicToneMapping.String(),
			Exposure:    1,
			Shadows:     true,
		},
		Bloom:   BloomConfig{Threshold: 0, Strength: 2, Radius: 0.5},
		Helpers: HelperConfig{Opacity: 0.01},
		Model:   ModelConfig{Path: "static/model/scene.glb", Scale: 0.2},
		Debug:   tuning.DefaultOptions(),
	}
}

// Load reads path over the defaults, so a partial file only overrides what
// it names. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.Info("No config file found, using defaults", zap.String("path", path))
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	logger.Log.Info("Config loaded", zap.String("path", path))
	return cfg, nil
}

// Save writes the config as indented JSON, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range %g..%g is invalid", c.Camera.Near, c.Camera.Far)
	}
	if _, err := c.ToneMapping(); err != nil {
		return err
	}
	if c.Model.Scale <= 0 {
		return fmt.Errorf("model scale %g must be positive", c.Model.Scale)
	}
	return nil
}

func (c *Config) ToneMapping() (renderer.ToneMapping, error) {
	return renderer.ParseToneMapping(c.Renderer.ToneMapping)
}
