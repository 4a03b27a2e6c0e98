package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool hands out the descriptor sets of one swapchain generation.
type DescriptorPool struct {
	Device           *Device
	VKDescriptorPool vk.DescriptorPool
	MaxSets          int
}

// CreateDescriptorPool creates a pool able to hold maxSets sets drawing
// from sizes.
func (d *Device) CreateDescriptorPool(sizes []vk.DescriptorPoolSize, maxSets int) (*DescriptorPool, error) {
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}

	var pool vk.DescriptorPool
	err := vk.Error(vk.CreateDescriptorPool(d.VKDevice, &info, nil, &pool))
	if err != nil {
		return nil, errors.Wrapf(err, "create descriptor pool for %d sets", maxSets)
	}
	return &DescriptorPool{Device: d, VKDescriptorPool: pool, MaxSets: maxSets}, nil
}

// Allocate allocates one descriptor set per layout.
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, nil
	}
	dsl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, ds := range layouts {
		dsl[i] = ds.VKDescriptorSetLayout
	}

	descriptorSetAllocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        dsl,
	}

	sets := make([]vk.DescriptorSet, len(layouts))
	err := vk.Error(vk.AllocateDescriptorSets(d.Device.VKDevice, &descriptorSetAllocateInfo, &sets[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d descriptor sets", len(layouts))
	}

	ret := make([]*DescriptorSet, len(sets))
	for i, s := range sets {
		ret[i] = &DescriptorSet{Device: d.Device, DescriptorPool: d, VKDescriptorSet: s}
	}
	return ret, nil
}

// AllocateN allocates n descriptor sets sharing layout.
func (d *DescriptorPool) AllocateN(layout *DescriptorSetLayout, n int) ([]*DescriptorSet, error) {
	layouts := make([]*DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = layout
	}
	return d.Allocate(layouts...)
}

func (d *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
}
