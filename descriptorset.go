package vulkanitos

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSet is a binding of resources to a descriptor, per a specific DescriptorSetLayout
type DescriptorSet struct {
	Device               *Device
	DescriptorPool       *DescriptorPool
	VKDescriptorSet      vk.DescriptorSet
	VKWriteDiscriptorSet []vk.WriteDescriptorSet
}

// AddBuffer adds a specific buffer to this descirptor set
func (du *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	descriptorBufferInfo := vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size - uint64(offset)),
	}

	du.VKWriteDiscriptorSet = append(du.VKWriteDiscriptorSet, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{descriptorBufferInfo},
	})
}

func (du *DescriptorSet) addImage(dstBinding int, dtype vk.DescriptorType, info vk.DescriptorImageInfo) {
	du.VKWriteDiscriptorSet = append(du.VKWriteDiscriptorSet, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PImageInfo:      []vk.DescriptorImageInfo{info},
	})
}

// AddCombinedImageSampler adds an image layout, image view and sampler to support displaying a texture
func (du *DescriptorSet) AddCombinedImageSampler(dstBinding int, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	du.addImage(dstBinding, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorImageInfo{
		ImageView:   imageView,
		ImageLayout: layout,
		Sampler:     sampler,
	})
}

// AddInputAttachment adds a view read by a later subpass of the same render pass.
func (du *DescriptorSet) AddInputAttachment(dstBinding int, imageView vk.ImageView) {
	du.addImage(dstBinding, vk.DescriptorTypeInputAttachment, vk.DescriptorImageInfo{
		ImageView:   imageView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	})
}

// Write applies the pending writes to the descriptor set and clears them.
func (du *DescriptorSet) Write() {
	if len(du.VKWriteDiscriptorSet) == 0 {
		return
	}
	for i := range du.VKWriteDiscriptorSet {
		du.VKWriteDiscriptorSet[i].DstSet = du.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(du.Device.VKDevice, uint32(len(du.VKWriteDiscriptorSet)), du.VKWriteDiscriptorSet, 0, nil)
	du.VKWriteDiscriptorSet = nil
}
