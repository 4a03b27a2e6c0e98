package vulkanitos

import (
	"image"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// TextureFormat is the format every texture is uploaded in.
const TextureFormat = vk.FormatR8g8b8a8Unorm

// Texture is a sampled, mipmapped image.
type Texture struct {
	*ImageResource
	Sampler *Sampler
}

func (t *Texture) Destroy() {
	if t.Sampler != nil {
		t.Sampler.Destroy()
	}
	t.ImageResource.Destroy()
}

// UploadTexture copies img to a device local image through a staging
// buffer, generates the full mip chain with linear blits and creates a
// sampler for it.
func (r *ResourceManager) UploadTexture(img *image.RGBA, maxAnisotropy float32) (*Texture, error) {
	if !r.Device.PhysicalDevice.SupportsLinearBlit(TextureFormat) {
		return nil, errors.Wrap(ErrLinearBlitUnsupported, "texture format")
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("empty texture")
	}
	extent := vk.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())}
	pixels := rgbaPixels(img)

	staging, err := r.Device.CreateHostBuffer(pixels, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	res, err := r.createImageResource(ImageOptions{
		Extent:    extent,
		Format:    TextureFormat,
		Tiling:    vk.ImageTilingOptimal,
		Usage:     vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		MipLevels: MipLevels(extent.Width, extent.Height),
	}, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	err = r.Pool.RunOneTime(r.Queue, func(cb *CommandBuffer) error {
		if err := cb.CmdTransitionImageLayout(res.Image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		cb.CmdCopyBufferToImage(staging.Buffer, res.Image)
		cb.CmdGenerateMipmaps(res.Image)
		return nil
	})
	var sampler *Sampler
	if err == nil {
		sampler, err = r.Device.CreateSampler(SamplerOptions{
			MaxAnisotropy: maxAnisotropy,
			MipLevels:     res.MipLevels,
		})
	}
	if err := r.settle("texture", res.Size(), res, err); err != nil {
		return nil, err
	}
	return &Texture{ImageResource: res, Sampler: sampler}, nil
}

// rgbaPixels returns the tightly packed pixels of img, copying only when
// its rows are strided or offset.
func rgbaPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	row := b.Dx() * 4
	if img.Stride == row && len(img.Pix) == row*b.Dy() {
		return img.Pix
	}
	out := make([]byte, 0, row*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+row]...)
	}
	return out
}
