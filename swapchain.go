package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Swapchain wraps a vk.Swapchain and the parameters it was created with.
type Swapchain struct {
	Extent        vk.Extent2D
	SurfaceFormat vk.SurfaceFormat
	PresentMode   vk.PresentMode
	Device        *Device
	VKSwapchain   vk.Swapchain
}

// Format is the image format of the swapchain images.
func (s *Swapchain) Format() vk.Format {
	return s.SurfaceFormat.Format
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

// GetImages returns the presentable images. They are owned by the swapchain
// and must not be destroyed individually.
func (s *Swapchain) GetImages() ([]*Image, error) {
	var count uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}
	images := make([]vk.Image, count)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, images))
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}

	ret := make([]*Image, count)
	for i := range images {
		ret[i] = &Image{
			Device:    s.Device,
			VKImage:   images[i],
			VKFormat:  s.Format(),
			Extent:    s.Extent,
			MipLevels: 1,
		}
	}
	return ret, nil
}

// AcquireNextImage waits without bound for the next presentable image.
// stale is set when the swapchain must be recreated before drawing.
func (s *Swapchain) AcquireNextImage(signal *Semaphore) (index uint32, stale bool, err error) {
	res := vk.AcquireNextImage(s.Device.VKDevice, s.VKSwapchain, vk.MaxUint64, signal.VKSemaphore, vk.NullFence, &index)
	stale, err = acquireResult(res)
	return index, stale, err
}

// ChooseSurfaceFormat prefers B8G8R8A8_UNORM with the sRGB non linear color
// space. A single UNDEFINED entry means the surface has no preference.
func ChooseSurfaceFormat(available []vk.SurfaceFormat) vk.SurfaceFormat {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	if len(available) == 1 && available[0].Format == vk.FormatUndefined {
		return preferred
	}
	for _, f := range available {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f
		}
	}
	if len(available) == 0 {
		return preferred
	}
	return available[0]
}

// ChoosePresentMode prefers mailbox, then immediate, then FIFO which every
// implementation supports.
func ChoosePresentMode(available []vk.PresentMode) vk.PresentMode {
	immediate := false
	for _, m := range available {
		switch m {
		case vk.PresentModeMailbox:
			return m
		case vk.PresentModeImmediate:
			immediate = true
		}
	}
	if immediate {
		return vk.PresentModeImmediate
	}
	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's current extent, unless the surface
// lets the window decide, in which case the framebuffer size is clamped to
// the supported range.
func ChooseExtent(caps *vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(uint32(max(width, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(uint32(max(height, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SwapchainImageCount asks for one image more than the minimum, capped at
// the maximum when the surface has one.
func SwapchainImageCount(caps *vk.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// CreateSwapchainOptions configures CreateSwapchain.
type CreateSwapchainOptions struct {
	OldSwapchain *Swapchain
	// Width and Height are the framebuffer size in pixels.
	Width, Height int
	// GraphicsFamily and PresentFamily decide the sharing mode.
	GraphicsFamily, PresentFamily int
	// ExtraUsage is added to COLOR_ATTACHMENT usage.
	ExtraUsage vk.ImageUsageFlags
}

// CreateSwapchain negotiates format, present mode and extent with surface
// and creates the swapchain.
func (d *Device) CreateSwapchain(surface vk.Surface, options CreateSwapchainOptions) (*Swapchain, error) {
	pd := d.PhysicalDevice

	modes, err := pd.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	formats, err := pd.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	caps, err := pd.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	format := ChooseSurfaceFormat(formats)
	mode := ChoosePresentMode(modes)
	extent := ChooseExtent(caps, options.Width, options.Height)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    SwapchainImageCount(caps),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | options.ExtraUsage,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if options.GraphicsFamily != options.PresentFamily {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(options.GraphicsFamily), uint32(options.PresentFamily)}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain))
	if err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}

	return &Swapchain{
		Extent:        extent,
		SurfaceFormat: format,
		PresentMode:   mode,
		Device:        d,
		VKSwapchain:   swapchain,
	}, nil
}
