package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffers describe a sequence of commands that will be executed
// upon being sent to a device queue. Not all available vulkan commands
// are wrapped by this package. It is expected that the calling application
// must call the native vulkan command APIs.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
}

// ResetAndRelease will reset this commandbuffer and release the associated resources
func (c *CommandBuffer) ResetAndRelease() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Begin capturing work for this command buffer
func (c *CommandBuffer) Begin() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo)), "begin command buffer")
}

// BeginOneTime begins capturing work for this command buffer, with the stipulation that it will only be submitted once
func (c *CommandBuffer) BeginOneTime() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo)), "begin command buffer")
}

// BeginSimultaneous begins a command buffer that may be pending on a
// queue more than once, as happens when several in-flight frames present
// the same swapchain image.
func (c *CommandBuffer) BeginSimultaneous() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	return errors.Wrap(vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo)), "begin command buffer")
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return errors.Wrap(vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer)), "end command buffer")
}

func (c *CommandBuffer) CmdBindComputePipeline(p *ComputePipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointCompute, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(p *GraphicsPipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...*DescriptorSet) {
	sets := make([]vk.DescriptorSet, len(descriptorSets))
	for i := range descriptorSets {
		sets[i] = descriptorSets[i].VKDescriptorSet
	}

	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.VKPipelineLayout, uint32(firstSet), uint32(len(descriptorSets)), sets, 0, nil)
}

func (c *CommandBuffer) CmdDispatch(x, y, z int) {
	vk.CmdDispatch(c.VKCommandBuffer, uint32(x), uint32(y), uint32(z))
}

// CmdBindVertexBuffer binds b at binding 0.
func (c *CommandBuffer) CmdBindVertexBuffer(b *Buffer) {
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, 0, 1, []vk.Buffer{b.VKBuffer}, []vk.DeviceSize{0})
}

// CmdBindIndexBuffer binds b as 32 bit indices.
func (c *CommandBuffer) CmdBindIndexBuffer(b *Buffer) {
	vk.CmdBindIndexBuffer(c.VKCommandBuffer, b.VKBuffer, 0, vk.IndexTypeUint32)
}

func (c *CommandBuffer) CmdDrawIndexed(indexCount int) {
	vk.CmdDrawIndexed(c.VKCommandBuffer, uint32(indexCount), 1, 0, 0, 0)
}

func (c *CommandBuffer) CmdDraw(vertexCount int) {
	vk.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), 1, 0, 0)
}

// CmdBeginRenderPass begins an inline render pass covering extent.
func (c *CommandBuffer) CmdBeginRenderPass(rp *RenderPass, fb vk.Framebuffer, extent vk.Extent2D, clear []vk.ClearValue) {
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp.VKRenderPass,
		Framebuffer: fb,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clear)),
		PClearValues:    clear,
	}, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdNextSubpass() {
	vk.CmdNextSubpass(c.VKCommandBuffer, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

// CmdCopyBuffer copies size bytes from the start of src to the start of dst.
func (c *CommandBuffer) CmdCopyBuffer(src, dst *Buffer, size uint64) {
	vk.CmdCopyBuffer(c.VKCommandBuffer, src.VKBuffer, dst.VKBuffer, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})
}

// BufferBarrier describes a buffer memory barrier, optionally transferring
// queue family ownership.
type BufferBarrier struct {
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcFamily uint32
	DstFamily uint32
}

// CmdBufferBarrier records bb over the whole of b.
func (c *CommandBuffer) CmdBufferBarrier(b *Buffer, bb BufferBarrier) {
	vk.CmdPipelineBarrier(c.VKCommandBuffer, bb.SrcStage, bb.DstStage, 0, 0, nil, 1, []vk.BufferMemoryBarrier{{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       bb.SrcAccess,
		DstAccessMask:       bb.DstAccess,
		SrcQueueFamilyIndex: bb.SrcFamily,
		DstQueueFamilyIndex: bb.DstFamily,
		Buffer:              b.VKBuffer,
		Offset:              0,
		Size:                vk.DeviceSize(b.Size),
	}}, 0, nil)
}
