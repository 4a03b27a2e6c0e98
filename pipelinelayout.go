package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PipelineLayout binds the descriptor set layouts a pipeline reads from.
type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
	SetLayouts       []*DescriptorSetLayout
}

func (p *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
}

// CreatePipelineLayout creates a layout whose set i is sets[i]. None of the
// pipelines use push constants.
func (d *Device) CreatePipelineLayout(sets ...*DescriptorSetLayout) (*PipelineLayout, error) {
	handles := make([]vk.DescriptorSetLayout, len(sets))
	for i, s := range sets {
		handles[i] = s.VKDescriptorSetLayout
	}

	info := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(handles)),
		PSetLayouts:    handles,
	}

	var layout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &info, nil, &layout))
	if err != nil {
		return nil, errors.Wrapf(err, "create pipeline layout with %d sets", len(sets))
	}
	return &PipelineLayout{Device: d, VKPipelineLayout: layout, SetLayouts: sets}, nil
}
