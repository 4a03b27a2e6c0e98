package vulkanitos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

var bgraSRGB = vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		name      string
		available []vk.SurfaceFormat
		want      vk.SurfaceFormat
	}{
		{
			name:      "undefined means no preference",
			available: []vk.SurfaceFormat{{Format: vk.FormatUndefined}},
			want:      bgraSRGB,
		},
		{
			name: "preferred pair anywhere in the list",
			available: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				bgraSRGB,
			},
			want: bgraSRGB,
		},
		{
			name: "first entry otherwise",
			available: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			want: vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseSurfaceFormat(tt.available))
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		available []vk.PresentMode
		want      vk.PresentMode
	}{
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{[]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChoosePresentMode(tt.available), "%v", tt.available)
	}
}

func TestChooseExtent(t *testing.T) {
	caps := &vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vk.Extent2D{Width: 100, Height: 4096}, ChooseExtent(caps, 50, 8000))
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps, 800, 600))

	caps.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, ChooseExtent(caps, 50, 8000))
}

func TestSwapchainImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), SwapchainImageCount(&vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), SwapchainImageCount(&vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), SwapchainImageCount(&vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestPresentResult(t *testing.T) {
	stale, err := presentResult(vk.Success)
	assert.False(t, stale)
	assert.NoError(t, err)

	for _, res := range []vk.Result{vk.Suboptimal, vk.ErrorOutOfDate} {
		stale, err = presentResult(res)
		assert.True(t, stale)
		assert.NoError(t, err)
	}

	_, err = presentResult(vk.ErrorDeviceLost)
	assert.Error(t, err)
}

func TestAcquireResult(t *testing.T) {
	stale, err := acquireResult(vk.Suboptimal)
	assert.False(t, stale)
	assert.NoError(t, err)

	stale, err = acquireResult(vk.ErrorOutOfDate)
	assert.True(t, stale)
	assert.NoError(t, err)

	_, err = acquireResult(vk.ErrorSurfaceLost)
	assert.Error(t, err)
}
