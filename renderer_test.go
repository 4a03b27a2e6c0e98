package vulkanitos

import (
	"testing"

	"github.com/Mehdi-Antoine/vulkanitos/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	c := config.Default()
	c.Renderer.Validation = true
	c.Assets.ShaderDir = "shaders/test"

	o := OptionsFromConfig(c, nil)
	assert.Equal(t, c.Window.Title, o.AppName)
	assert.True(t, o.Validation)
	assert.Equal(t, []string{"VK_KHR_swapchain"}, o.DeviceExtensions)
	assert.Equal(t, 1, o.FramesInFlight)
	assert.Equal(t, "shaders/test", o.ShaderDir)
}

func TestNewVulkanRendererDefaults(t *testing.T) {
	r := NewVulkanRenderer(nil, nil, nil, nil, Options{FramesInFlight: 0})
	assert.Equal(t, DefaultFramesInFlight, r.opts.FramesInFlight)
	assert.NotNil(t, r.logger)
	assert.Equal(t, "shaders/vk/compute.comp.spv", NewVulkanRenderer(nil, nil, nil, nil, Options{ShaderDir: "shaders/vk"}).shader(ComputeShader))
}

func TestVulkanRendererOutOfOrder(t *testing.T) {
	r := NewVulkanRenderer(nil, nil, nil, nil, Options{})
	assert.Error(t, r.BuildFrameGraph())
	assert.Error(t, r.SubmitFrame())
	r.InvalidateSwapchain()
	require.NoError(t, r.Teardown())
}

var _ Renderer = (*VulkanRenderer)(nil)
var _ SwapchainBuilder = (*VulkanRenderer)(nil)
var _ frameBackend = (*VulkanRenderer)(nil)
