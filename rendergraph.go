package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Attachment indices of the render pass.
const (
	BeautyAttachment = iota
	DepthAttachment
	FinalAttachment
)

// Subpass indices of the render pass.
const (
	SceneSubpass     = 0
	LuminanceSubpass = 1
)

// renderGraph is the description of the two subpass render pass: the
// scene is drawn to beauty and depth, then the luminance pass reads beauty
// as an input attachment and writes the swapchain image.
type renderGraph struct {
	Attachments  []vk.AttachmentDescription
	Subpasses    []vk.SubpassDescription
	Dependencies []vk.SubpassDependency
}

func buildRenderGraph(colorFormat, depthFormat vk.Format) renderGraph {
	attachment := func(format vk.Format, store vk.AttachmentStoreOp, final vk.ImageLayout) vk.AttachmentDescription {
		return vk.AttachmentDescription{
			Format:         format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        store,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    final,
		}
	}

	attachments := []vk.AttachmentDescription{
		BeautyAttachment: attachment(colorFormat, vk.AttachmentStoreOpDontCare, vk.ImageLayoutColorAttachmentOptimal),
		DepthAttachment:  attachment(depthFormat, vk.AttachmentStoreOpDontCare, vk.ImageLayoutDepthStencilAttachmentOptimal),
		FinalAttachment:  attachment(colorFormat, vk.AttachmentStoreOpStore, vk.ImageLayoutPresentSrc),
	}

	scene := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: BeautyAttachment,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: DepthAttachment,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	luminance := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		InputAttachmentCount: 1,
		PInputAttachments: []vk.AttachmentReference{{
			Attachment: BeautyAttachment,
			Layout:     vk.ImageLayoutShaderReadOnlyOptimal,
		}},
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: FinalAttachment,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	colorOutput := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	bottom := vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	colorRW := vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
	memRead := vk.AccessFlags(vk.AccessMemoryReadBit)

	dependencies := []vk.SubpassDependency{
		{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    SceneSubpass,
			SrcStageMask:  bottom,
			DstStageMask:  colorOutput,
			SrcAccessMask: memRead,
			DstAccessMask: colorRW,
		},
		{
			SrcSubpass:      SceneSubpass,
			DstSubpass:      LuminanceSubpass,
			SrcStageMask:    colorOutput,
			DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			SrcAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
			DstAccessMask:   vk.AccessFlags(vk.AccessShaderReadBit),
			DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
		},
		{
			SrcSubpass:    LuminanceSubpass,
			DstSubpass:    vk.SubpassExternal,
			SrcStageMask:  colorOutput,
			DstStageMask:  bottom,
			SrcAccessMask: colorRW,
			DstAccessMask: memRead,
		},
	}

	return renderGraph{
		Attachments:  attachments,
		Subpasses:    []vk.SubpassDescription{scene, luminance},
		Dependencies: dependencies,
	}
}

// ClearValues returns the clear values in attachment order.
func ClearValues() []vk.ClearValue {
	return []vk.ClearValue{
		BeautyAttachment: vk.NewClearValue([]float32{0, 0, 0, 1}),
		DepthAttachment:  vk.NewClearDepthStencil(1, 0),
		FinalAttachment:  vk.NewClearValue([]float32{0, 0, 0, 1}),
	}
}

type RenderPass struct {
	Device       *Device
	VKRenderPass vk.RenderPass
}

// CreateRenderGraph creates the scene and luminance render pass.
func (d *Device) CreateRenderGraph(colorFormat, depthFormat vk.Format) (*RenderPass, error) {
	g := buildRenderGraph(colorFormat, depthFormat)
	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(g.Attachments)),
		PAttachments:    g.Attachments,
		SubpassCount:    uint32(len(g.Subpasses)),
		PSubpasses:      g.Subpasses,
		DependencyCount: uint32(len(g.Dependencies)),
		PDependencies:   g.Dependencies,
	}

	var rp vk.RenderPass
	err := vk.Error(vk.CreateRenderPass(d.VKDevice, &info, nil, &rp))
	if err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return &RenderPass{Device: d, VKRenderPass: rp}, nil
}

func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass, nil)
}

type Framebuffer struct {
	Device        *Device
	VKFramebuffer vk.Framebuffer
}

// CreateFramebuffer binds views, in attachment order, to rp.
func (r *RenderPass) CreateFramebuffer(extent vk.Extent2D, views ...*ImageView) (*Framebuffer, error) {
	attachments := make([]vk.ImageView, len(views))
	for i, v := range views {
		attachments[i] = v.VKImageView
	}
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      r.VKRenderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var fb vk.Framebuffer
	err := vk.Error(vk.CreateFramebuffer(r.Device.VKDevice, &info, nil, &fb))
	if err != nil {
		return nil, errors.Wrap(err, "create framebuffer")
	}
	return &Framebuffer{Device: r.Device, VKFramebuffer: fb}, nil
}

func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer, nil)
}
