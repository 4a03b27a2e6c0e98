package vulkanitos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestDescriptorPoolSizes(t *testing.T) {
	sizes, maxSets := descriptorPoolSizes(3)
	assert.Equal(t, 9, maxSets)

	got := map[vk.DescriptorType]uint32{}
	for _, s := range sizes {
		got[s.Type] += s.DescriptorCount
	}
	assert.Equal(t, map[vk.DescriptorType]uint32{
		vk.DescriptorTypeUniformBuffer:        6,
		vk.DescriptorTypeCombinedImageSampler: 3,
		vk.DescriptorTypeInputAttachment:      3,
		vk.DescriptorTypeStorageBuffer:        3,
	}, got)
}

// every binding must fit in the pool sized for one image
func TestBindingsFitPool(t *testing.T) {
	sizes, _ := descriptorPoolSizes(1)
	budget := map[vk.DescriptorType]uint32{}
	for _, s := range sizes {
		budget[s.Type] = s.DescriptorCount
	}
	for _, set := range [][]vk.DescriptorSetLayoutBinding{graphicsBindings(), luminanceBindings(), computeBindings()} {
		for _, b := range set {
			budget[b.DescriptorType] -= b.DescriptorCount
		}
	}
	for ty, left := range budget {
		assert.Zero(t, left, "descriptor type %d", ty)
	}
}

func TestBindingStages(t *testing.T) {
	g := graphicsBindings()
	require.Len(t, g, 2)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), g[0].StageFlags)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), g[1].StageFlags)

	l := luminanceBindings()
	require.Len(t, l, 1)
	assert.Equal(t, vk.DescriptorTypeInputAttachment, l[0].DescriptorType)

	c := computeBindings()
	require.Len(t, c, 2)
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, c[0].DescriptorType)
	assert.Equal(t, uint32(1), c[1].Binding)
	for _, b := range c {
		assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageComputeBit), b.StageFlags)
	}
}
