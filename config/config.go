// Package config holds the typed viewer configuration. Values start from
// Default, are overridden by an optional TOML file and finally by command
// line flags.
package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Window describes the initial window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Assets lists the files the viewer loads at startup.
type Assets struct {
	Model     string `toml:"model"`
	Texture   string `toml:"texture"`
	ShaderDir string `toml:"shader_dir"`
	// WatchShaders rebuilds the pipelines whenever a file in ShaderDir changes
	WatchShaders bool `toml:"watch_shaders"`
}

// Renderer groups the Vulkan specific knobs.
type Renderer struct {
	Validation       bool     `toml:"validation"`
	ValidationLayers []string `toml:"validation_layers"`
	DeviceExtensions []string `toml:"device_extensions"`
	FramesInFlight   int      `toml:"frames_in_flight"`
	MaxAnisotropy    float32  `toml:"max_anisotropy"`
}

// Camera holds the trackball defaults and input scale factors.
type Camera struct {
	Distance    float32 `toml:"distance"`
	MinDistance float32 `toml:"min_distance"`
	MaxDistance float32 `toml:"max_distance"`
	FovY        float32 `toml:"fov_y"`
	Near        float32 `toml:"near"`
	Far         float32 `toml:"far"`
	RotateScale float32 `toml:"rotate_scale"`
	ZoomScale   float32 `toml:"zoom_scale"`
}

// Config is the complete viewer configuration.
type Config struct {
	Window   Window   `toml:"window"`
	Assets   Assets   `toml:"assets"`
	Renderer Renderer `toml:"renderer"`
	Camera   Camera   `toml:"camera"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "vulkanitos",
			Width:  800,
			Height: 600,
		},
		Assets: Assets{
			Model:     "models/chalet.obj",
			Texture:   "models/chalet.jpg",
			ShaderDir: "shaders/vk",
		},
		Renderer: Renderer{
			ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
			DeviceExtensions: []string{"VK_KHR_swapchain"},
			FramesInFlight:   1,
			MaxAnisotropy:    16,
		},
		Camera: Camera{
			Distance:    100,
			MinDistance: 0.5,
			MaxDistance: 10,
			FovY:        45,
			Near:        0.1,
			Far:         1000,
			RotateScale: 0.01,
			ZoomScale:   0.3,
		},
	}
}

// Load reads a TOML file on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := c.Decode(data); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return c, nil
}

// Decode overlays TOML data onto c and validates the result.
func (c *Config) Decode(data []byte) error {
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks ranges that would otherwise fail deep inside the renderer.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight < 1 {
		return errors.Errorf("frames_in_flight must be at least 1, got %d", c.Renderer.FramesInFlight)
	}
	if c.Camera.MinDistance > c.Camera.MaxDistance {
		return errors.Errorf("camera min_distance %v exceeds max_distance %v", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Errorf("invalid clip planes near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	return nil
}

// Encode renders c as TOML, used to dump the effective configuration.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
