package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDevice is a GPU as reported by the instance.
type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// GetSurfacePresentModes returns the present modes the surface supports on this device.
func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "query present modes")
	}
	modes := make([]vk.PresentMode, count)
	err = vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, modes))
	if err != nil {
		return nil, errors.Wrap(err, "query present modes")
	}
	return modes, nil
}

// GetSurfaceFormats returns the formats the surface supports on this device.
func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "query surface formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	err = vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, formats))
	if err != nil {
		return nil, errors.Wrap(err, "query surface formats")
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

// GetSurfaceCapabilities returns the surface capabilities, dereferenced.
func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (*vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps))
	if err != nil {
		return nil, errors.Wrap(err, "query surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return &caps, nil
}

// QueueFamilies lists the queue families of this device.
func (p *PhysicalDevice) QueueFamilies() (QueueFamilySlice, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, nil)
	if count == 0 {
		return nil, nil
	}
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, props)

	ret := make(QueueFamilySlice, count)
	for i, prop := range props {
		prop.Deref()
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: prop}
	}
	return ret, nil
}

// CreateDeviceOptions configures logical device creation.
type CreateDeviceOptions struct {
	EnabledExtensions []string
	EnabledLayers     []string
	// SamplerAnisotropy enables anisotropic filtering.
	SamplerAnisotropy bool
}

// CreateLogicalDeviceWithOptions creates a device with one queue for every
// family in qfs. qfs must not contain duplicates.
func (p *PhysicalDevice) CreateLogicalDeviceWithOptions(qfs QueueFamilySlice, options *CreateDeviceOptions) (*Device, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(qfs))
	for j, q := range qfs {
		queueCreateInfos[j] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(q.Index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	var features vk.PhysicalDeviceFeatures
	if options != nil && options.SamplerAnisotropy {
		features.SamplerAnisotropy = vk.True
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(qfs)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{features},
	}

	if options != nil {
		if len(options.EnabledExtensions) > 0 {
			deviceCreateInfo.EnabledExtensionCount = uint32(len(options.EnabledExtensions))
			deviceCreateInfo.PpEnabledExtensionNames = safeStrings(options.EnabledExtensions)
		}
		if len(options.EnabledLayers) > 0 {
			deviceCreateInfo.EnabledLayerCount = uint32(len(options.EnabledLayers))
			deviceCreateInfo.PpEnabledLayerNames = safeStrings(options.EnabledLayers)
		}
	}

	var ldevice vk.Device
	err := vk.Error(vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice))
	if err != nil {
		return nil, errors.Wrap(err, "create device")
	}
	return &Device{PhysicalDevice: p, VKDevice: ldevice}, nil
}

// VKPhysicalDeviceFeatures returns the features supported by this device.
func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &features)
	features.Deref()
	return features
}

// Limits returns the device limits.
func (p *PhysicalDevice) Limits() vk.PhysicalDeviceLimits {
	return p.VKPhysicalDeviceProperties.Limits
}

// VKPhysicalDeviceMemoryProperties returns the memory heaps and types.
func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &memoryProperties)
	memoryProperties.Deref()
	return memoryProperties
}

// MemoryTypes returns the memory types, dereferenced, in index order.
func (p *PhysicalDevice) MemoryTypes() []vk.MemoryType {
	mp := p.VKPhysicalDeviceMemoryProperties()
	ret := make([]vk.MemoryType, 0, mp.MemoryTypeCount)
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]
		mt.Deref()
		ret = append(ret, mt)
	}
	return ret
}

// selectMemoryType returns the first index allowed by typeBits whose
// property flags contain every flag of want.
func selectMemoryType(types []vk.MemoryType, typeBits uint32, want vk.MemoryPropertyFlags) (uint32, error) {
	for i, mt := range types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) != 0 && mt.PropertyFlags&want == want {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits %#x, properties %#x", typeBits, want)
}

// FindMemoryType selects a memory type for a resource; see VkPhysicalDeviceMemoryProperties.
func (p *PhysicalDevice) FindMemoryType(typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	return selectMemoryType(p.MemoryTypes(), typeBits, properties)
}

// FormatProperties returns the feature flags of format.
func (p *PhysicalDevice) FormatProperties(format vk.Format) vk.FormatProperties {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(p.VKPhysicalDevice, format, &props)
	props.Deref()
	return props
}

// FindSupportedFormat returns the first candidate whose features for the
// given tiling include features.
func (p *PhysicalDevice) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, bool) {
	return firstSupportedFormat(candidates, tiling, features, p.FormatProperties)
}

func firstSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags, query func(vk.Format) vk.FormatProperties) (vk.Format, bool) {
	for _, f := range candidates {
		props := query(f)
		switch {
		case tiling == vk.ImageTilingLinear && props.LinearTilingFeatures&features == features:
			return f, true
		case tiling == vk.ImageTilingOptimal && props.OptimalTilingFeatures&features == features:
			return f, true
		}
	}
	return vk.FormatUndefined, false
}

// DepthFormats are the depth attachment candidates in order of preference.
var DepthFormats = []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}

// FindDepthFormat returns the first depth format usable as an optimal tiling attachment.
func (p *PhysicalDevice) FindDepthFormat() (vk.Format, error) {
	f, ok := p.FindSupportedFormat(DepthFormats, vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit))
	if !ok {
		return vk.FormatUndefined, errors.Wrap(ErrUnsupportedPlatform, "no depth attachment format")
	}
	return f, nil
}

// SupportsLinearBlit reports whether format can be sampled with linear
// filtering in optimal tiling, which vkCmdBlitImage with FilterLinear needs.
func (p *PhysicalDevice) SupportsLinearBlit(format vk.Format) bool {
	props := p.FormatProperties(format)
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) != 0
}

// SupportedExtensions lists the device extensions.
func (p *PhysicalDevice) SupportedExtensions() ([]vk.ExtensionProperties, error) {
	var count uint32
	err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}
	ext := make([]vk.ExtensionProperties, count)
	err = vk.Error(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, ext))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}
	for i := range ext {
		ext[i].Deref()
	}
	return ext, nil
}

// SupportedExtensionNames lists the device extension names.
func (p *PhysicalDevice) SupportedExtensionNames() ([]string, error) {
	ext, err := p.SupportedExtensions()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ext))
	for i := range ext {
		names[i] = vk.ToString(ext[i].ExtensionName[:])
	}
	return names, nil
}
