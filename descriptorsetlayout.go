package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout is a created layout together with the bindings it
// was created from.
type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout
	Bindings              []vk.DescriptorSetLayoutBinding
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
}

// CreateDescriptorSetLayoutWithBindings creates a layout holding bindings.
func (d *Device) CreateDescriptorSetLayoutWithBindings(bindings []vk.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	err := vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, &info, nil, &layout))
	if err != nil {
		return nil, errors.Wrapf(err, "create descriptor set layout with %d bindings", len(bindings))
	}
	return &DescriptorSetLayout{Device: d, VKDescriptorSetLayout: layout, Bindings: bindings}, nil
}
