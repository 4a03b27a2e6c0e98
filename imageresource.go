package vulkanitos

import (
	vk "github.com/vulkan-go/vulkan"
)

// ImageResource is a device local image with its memory and a view over
// it, used for the render pass attachments and the texture.
type ImageResource struct {
	*BoundImage
	View *ImageView
}

// Size is the device memory bound to the image.
func (r *ImageResource) Size() uint64 {
	if r.BoundImage == nil || r.Memory == nil {
		return 0
	}
	return r.Memory.Size
}

func (r *ImageResource) Destroy() {
	if r.View != nil {
		r.View.Destroy()
	}
	if r.BoundImage != nil {
		r.BoundImage.Destroy()
	}
}

// createImageResource creates the image and its view. The caller settles
// it once every remaining setup step has succeeded.
func (r *ResourceManager) createImageResource(options ImageOptions, aspect vk.ImageAspectFlags) (*ImageResource, error) {
	bi, err := r.Device.CreateBoundImage(options, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	view, err := bi.CreateImageViewWithAspectMask(aspect)
	if err != nil {
		bi.Destroy()
		return nil, err
	}
	return &ImageResource{BoundImage: bi, View: view}, nil
}

// CreateBeautyAttachment creates the color target of the scene subpass,
// later read as an input attachment.
func (r *ResourceManager) CreateBeautyAttachment(extent vk.Extent2D, format vk.Format) (*ImageResource, error) {
	res, err := r.createImageResource(ImageOptions{
		Extent: extent,
		Format: format,
		Tiling: vk.ImageTilingOptimal,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageInputAttachmentBit),
	}, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	r.track("beauty", res.Size())
	return res, nil
}

// CreateDepthAttachment creates the depth buffer and moves it to the depth
// attachment layout.
func (r *ResourceManager) CreateDepthAttachment(extent vk.Extent2D, format vk.Format) (*ImageResource, error) {
	res, err := r.createImageResource(ImageOptions{
		Extent: extent,
		Format: format,
		Tiling: vk.ImageTilingOptimal,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
	}, vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}

	err = r.Pool.RunOneTime(r.Queue, func(cb *CommandBuffer) error {
		return cb.CmdTransitionImageLayout(res.Image, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	})
	if err := r.settle("depth", res.Size(), res, err); err != nil {
		return nil, err
	}
	return res, nil
}
