package vulkanitos

import (
	vk "github.com/vulkan-go/vulkan"
)

func layoutBinding(binding uint32, dtype vk.DescriptorType, stage vk.ShaderStageFlagBits) vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  dtype,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stage),
	}
}

// graphicsBindings: matrices for the vertex stage, the texture for the
// fragment stage.
func graphicsBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		layoutBinding(0, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit),
		layoutBinding(1, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit),
	}
}

// luminanceBindings: the beauty attachment read back in the second subpass.
func luminanceBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		layoutBinding(0, vk.DescriptorTypeInputAttachment, vk.ShaderStageFragmentBit),
	}
}

// computeBindings: the vertex buffer as storage and the compute data.
func computeBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		layoutBinding(0, vk.DescriptorTypeStorageBuffer, vk.ShaderStageComputeBit),
		layoutBinding(1, vk.DescriptorTypeUniformBuffer, vk.ShaderStageComputeBit),
	}
}

// descriptorPoolSizes returns the pool sizes and set count for n swapchain
// images, each owning a graphics, a luminance and a compute set.
func descriptorPoolSizes(n int) ([]vk.DescriptorPoolSize, int) {
	return []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: uint32(2 * n)},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: uint32(n)},
		{Type: vk.DescriptorTypeInputAttachment, DescriptorCount: uint32(n)},
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: uint32(n)},
	}, 3 * n
}

// DescriptorLayouts holds the three set layouts used by the renderer.
// They do not depend on the swapchain.
type DescriptorLayouts struct {
	Graphics  *DescriptorSetLayout
	Luminance *DescriptorSetLayout
	Compute   *DescriptorSetLayout
}

func (d *Device) CreateDescriptorLayouts() (*DescriptorLayouts, error) {
	l := &DescriptorLayouts{}
	var err error
	if l.Graphics, err = d.CreateDescriptorSetLayoutWithBindings(graphicsBindings()); err != nil {
		return nil, err
	}
	if l.Luminance, err = d.CreateDescriptorSetLayoutWithBindings(luminanceBindings()); err != nil {
		l.Destroy()
		return nil, err
	}
	if l.Compute, err = d.CreateDescriptorSetLayoutWithBindings(computeBindings()); err != nil {
		l.Destroy()
		return nil, err
	}
	return l, nil
}

func (l *DescriptorLayouts) Destroy() {
	for _, dsl := range []*DescriptorSetLayout{l.Compute, l.Luminance, l.Graphics} {
		if dsl != nil {
			dsl.Destroy()
		}
	}
}

// DescriptorBinder owns the descriptor pool and the per image sets.
type DescriptorBinder struct {
	Pool      *DescriptorPool
	Graphics  []*DescriptorSet
	Luminance []*DescriptorSet
	Compute   []*DescriptorSet
}

// CreateDescriptorBinder allocates a graphics, a luminance and a compute
// set for each of n swapchain images.
func (d *Device) CreateDescriptorBinder(layouts *DescriptorLayouts, n int) (*DescriptorBinder, error) {
	sizes, maxSets := descriptorPoolSizes(n)
	pool, err := d.CreateDescriptorPool(sizes, maxSets)
	if err != nil {
		return nil, err
	}

	b := &DescriptorBinder{Pool: pool}
	if b.Graphics, err = pool.AllocateN(layouts.Graphics, n); err != nil {
		pool.Destroy()
		return nil, err
	}
	if b.Luminance, err = pool.AllocateN(layouts.Luminance, n); err != nil {
		pool.Destroy()
		return nil, err
	}
	if b.Compute, err = pool.AllocateN(layouts.Compute, n); err != nil {
		pool.Destroy()
		return nil, err
	}
	return b, nil
}

// Len is the number of swapchain images the binder serves.
func (b *DescriptorBinder) Len() int {
	return len(b.Graphics)
}

// WriteGraphics points the graphics set of image i at its matrices and the
// texture.
func (b *DescriptorBinder) WriteGraphics(i int, matrices *BufferResource, tex *Texture) {
	s := b.Graphics[i]
	s.AddBuffer(0, vk.DescriptorTypeUniformBuffer, matrices.Buffer, 0)
	s.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, tex.View.VKImageView, tex.Sampler.VKSampler)
	s.Write()
}

// WriteLuminance points the luminance set of image i at the beauty view.
// It must be called again whenever the beauty attachment is recreated.
func (b *DescriptorBinder) WriteLuminance(i int, beauty *ImageView) {
	s := b.Luminance[i]
	s.AddInputAttachment(0, beauty.VKImageView)
	s.Write()
}

// WriteCompute points the compute set of image i at the vertex buffer and
// its compute data.
func (b *DescriptorBinder) WriteCompute(i int, vertices *Buffer, data *BufferResource) {
	s := b.Compute[i]
	s.AddBuffer(0, vk.DescriptorTypeStorageBuffer, vertices, 0)
	s.AddBuffer(1, vk.DescriptorTypeUniformBuffer, data.Buffer, 0)
	s.Write()
}

func (b *DescriptorBinder) Destroy() {
	b.Pool.Destroy()
}
