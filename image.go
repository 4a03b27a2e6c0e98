package vulkanitos

import (
	"math/bits"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type Image struct {
	Device    *Device
	VKImage   vk.Image
	VKFormat  vk.Format
	Extent    vk.Extent2D
	MipLevels uint32
	Usage     vk.ImageUsageFlags
}

// ImageOptions describes a 2D, single layer, single sample image.
type ImageOptions struct {
	Extent    vk.Extent2D
	Format    vk.Format
	Tiling    vk.ImageTiling
	Usage     vk.ImageUsageFlags
	MipLevels uint32
}

func (d *Device) CreateImage(options ImageOptions) (*Image, error) {
	if options.MipLevels == 0 {
		options.MipLevels = 1
	}

	var imageInfo = vk.ImageCreateInfo{}
	imageInfo.SType = vk.StructureTypeImageCreateInfo
	imageInfo.ImageType = vk.ImageType2d
	imageInfo.Extent.Width = options.Extent.Width
	imageInfo.Extent.Height = options.Extent.Height
	imageInfo.Extent.Depth = 1
	imageInfo.MipLevels = options.MipLevels
	imageInfo.ArrayLayers = 1
	imageInfo.Format = options.Format
	imageInfo.Tiling = options.Tiling
	imageInfo.InitialLayout = vk.ImageLayoutUndefined
	imageInfo.Usage = options.Usage
	imageInfo.Samples = vk.SampleCount1Bit
	imageInfo.SharingMode = vk.SharingModeExclusive

	var image vk.Image

	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, errors.Wrapf(err, "create %dx%d image", options.Extent.Width, options.Extent.Height)
	}

	return &Image{
		Device:    d,
		VKImage:   image,
		VKFormat:  options.Format,
		Extent:    options.Extent,
		MipLevels: options.MipLevels,
		Usage:     options.Usage,
	}, nil
}

func (i *Image) AllocationRequirements() AllocationRequirements {
	var mr vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &mr)
	return requirements(mr)
}

func (i *Image) Bind(memory *DeviceMemory, offset uint64) error {
	return errors.Wrap(vk.Error(vk.BindImageMemory(i.Device.VKDevice, i.VKImage, memory.VKDeviceMemory, vk.DeviceSize(offset))), "bind image memory")
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}

// CreateImageView creates a color view over every mip level.
func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	levels := i.MipLevels
	if levels == 0 {
		levels = 1
	}
	createImage := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: levels,
			LayerCount: 1,
		},
	}

	var view vk.ImageView

	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, createImage, nil, &view))
	if err != nil {
		return nil, errors.Wrap(err, "create image view")
	}
	return &ImageView{Device: i.Device, VKImageView: view}, nil
}

// MipLevels is floor(log2(max(width, height))) + 1.
func MipLevels(width, height uint32) uint32 {
	m := width
	if height > m {
		m = height
	}
	if m == 0 {
		return 1
	}
	return uint32(bits.Len32(m))
}

// mipChain lists the extent of every level, halving each axis and
// clamping at 1.
func mipChain(width, height uint32) []vk.Extent2D {
	levels := MipLevels(width, height)
	chain := make([]vk.Extent2D, levels)
	w, h := width, height
	for i := range chain {
		chain[i] = vk.Extent2D{Width: w, Height: h}
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return chain
}

// HasStencil reports whether format carries a stencil component.
func HasStencil(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// layoutTransition holds the access masks, stages and aspect of a
// supported layout change.
type layoutTransition struct {
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
	Aspect    vk.ImageAspectFlags
}

func transitionFor(format vk.Format, oldLayout, newLayout vk.ImageLayout) (layoutTransition, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return layoutTransition{
			SrcAccess: 0,
			DstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			Aspect:    vk.ImageAspectFlags(vk.ImageAspectColorBit),
		}, nil
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutTransition{
			SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			Aspect:    vk.ImageAspectFlags(vk.ImageAspectColorBit),
		}, nil
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if HasStencil(format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		return layoutTransition{
			SrcAccess: 0,
			DstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
			Aspect:    aspect,
		}, nil
	}
	return layoutTransition{}, errors.Wrapf(ErrUnsupportedTransition, "%d -> %d", oldLayout, newLayout)
}

// CmdTransitionImageLayout records a barrier moving every level of img
// from oldLayout to newLayout.
func (cb *CommandBuffer) CmdTransitionImageLayout(img *Image, oldLayout, newLayout vk.ImageLayout) error {
	t, err := transitionFor(img.VKFormat, oldLayout, newLayout)
	if err != nil {
		return err
	}
	levels := img.MipLevels
	if levels == 0 {
		levels = 1
	}
	cb.cmdImageBarrier(img, oldLayout, newLayout, t, 0, levels)
	return nil
}

func (cb *CommandBuffer) cmdImageBarrier(img *Image, oldLayout, newLayout vk.ImageLayout, t layoutTransition, baseLevel, levels uint32) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       t.SrcAccess,
		DstAccessMask:       t.DstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     t.Aspect,
			BaseMipLevel:   baseLevel,
			LevelCount:     levels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdPipelineBarrier(cb.VK(), t.SrcStage, t.DstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// CmdCopyBufferToImage copies tightly packed pixels from src into mip level
// 0 of img, which must be in TRANSFER_DST layout.
func (cb *CommandBuffer) CmdCopyBufferToImage(src *Buffer, img *Image) {
	vk.CmdCopyBufferToImage(cb.VK(), src.VKBuffer, img.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{},
		ImageExtent: vk.Extent3D{
			Width: img.Extent.Width, Height: img.Extent.Height, Depth: 1,
		},
	}})
}

// CmdGenerateMipmaps fills levels 1..n-1 of img by successive linear blits
// from level 0. Every level of img must be in TRANSFER_DST layout; all of
// them end up SHADER_READ_ONLY.
func (cb *CommandBuffer) CmdGenerateMipmaps(img *Image) {
	color := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	transfer := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	fragment := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

	toSrc := layoutTransition{
		SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccess: vk.AccessFlags(vk.AccessTransferReadBit),
		SrcStage:  transfer,
		DstStage:  transfer,
		Aspect:    color,
	}
	toRead := layoutTransition{
		SrcAccess: vk.AccessFlags(vk.AccessTransferReadBit),
		DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
		SrcStage:  transfer,
		DstStage:  fragment,
		Aspect:    color,
	}

	chain := mipChain(img.Extent.Width, img.Extent.Height)
	if img.MipLevels > 0 && int(img.MipLevels) < len(chain) {
		chain = chain[:img.MipLevels]
	}

	for i := 1; i < len(chain); i++ {
		level := uint32(i)
		src, dst := chain[i-1], chain[i]

		cb.cmdImageBarrier(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal, toSrc, level-1, 1)

		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask: color,
				MipLevel:   level - 1,
				LayerCount: 1,
			},
			SrcOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: int32(src.Width), Y: int32(src.Height), Z: 1},
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask: color,
				MipLevel:   level,
				LayerCount: 1,
			},
			DstOffsets: [2]vk.Offset3D{
				{X: 0, Y: 0, Z: 0},
				{X: int32(dst.Width), Y: int32(dst.Height), Z: 1},
			},
		}
		vk.CmdBlitImage(cb.VK(),
			img.VKImage, vk.ImageLayoutTransferSrcOptimal,
			img.VKImage, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		cb.cmdImageBarrier(img, vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal, toRead, level-1, 1)
	}

	last, _ := transitionFor(img.VKFormat, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	cb.cmdImageBarrier(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal, last, uint32(len(chain)-1), 1)
}

type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

// SamplerOptions configures a linear, repeating sampler.
type SamplerOptions struct {
	MaxAnisotropy float32
	MipLevels     uint32
}

func (d *Device) CreateSampler(options SamplerOptions) (*Sampler, error) {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		MipLodBias:              0,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  float32(options.MipLevels),
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	if options.MaxAnisotropy > 1 {
		info.AnisotropyEnable = vk.True
		info.MaxAnisotropy = options.MaxAnisotropy
	}

	var sampler vk.Sampler
	err := vk.Error(vk.CreateSampler(d.VKDevice, &info, nil, &sampler))
	if err != nil {
		return nil, errors.Wrap(err, "create sampler")
	}
	return &Sampler{Device: d, VKSampler: sampler}, nil
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
}
