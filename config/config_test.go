package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 1, c.Renderer.FramesInFlight)
	assert.Equal(t, float32(0.5), c.Camera.MinDistance)
	assert.Equal(t, float32(10), c.Camera.MaxDistance)
	assert.Equal(t, []string{"VK_KHR_swapchain"}, c.Renderer.DeviceExtensions)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	c := Default()
	err := c.Decode([]byte(`
[window]
width = 1280

[renderer]
validation = true
frames_in_flight = 3

[camera]
max_distance = 20.0
`))
	require.NoError(t, err)
	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, 600, c.Window.Height)
	assert.True(t, c.Renderer.Validation)
	assert.Equal(t, 3, c.Renderer.FramesInFlight)
	assert.Equal(t, float32(20), c.Camera.MaxDistance)
	assert.Equal(t, "models/chalet.obj", c.Assets.Model)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	c := Default()
	assert.Error(t, c.Decode([]byte("[renderer]\nframes = 3\n")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"no frames in flight", func(c *Config) { c.Renderer.FramesInFlight = 0 }},
		{"inverted distance range", func(c *Config) { c.Camera.MinDistance = 11 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.01 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[assets]\nmodel = \"cube.obj\"\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cube.obj", c.Assets.Model)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
