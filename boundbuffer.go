package vulkanitos

import (
	vk "github.com/vulkan-go/vulkan"
)

// BoundBuffer is a buffer together with the memory it owns.
type BoundBuffer struct {
	*Buffer
	Memory *DeviceMemory
}

// BoundImage is an image together with the memory it owns.
type BoundImage struct {
	*Image
	Memory *DeviceMemory
}

// CreateBoundBuffer creates a buffer and binds it to a dedicated allocation
// with at least mprops.
func (d *Device) CreateBoundBuffer(size uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags, sharing vk.SharingMode, families ...uint32) (*BoundBuffer, error) {
	buffer, err := d.CreateBuffer(size, usage, sharing, families...)
	if err != nil {
		return nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	if err := buffer.Bind(memory, 0); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}
	return &BoundBuffer{Buffer: buffer, Memory: memory}, nil
}

// CreateHostBuffer creates a host visible, coherent buffer filled with data.
func (d *Device) CreateHostBuffer(data []byte, usage vk.BufferUsageFlags) (*BoundBuffer, error) {
	b, err := d.CreateBoundBuffer(uint64(len(data)), usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}
	if err := b.Memory.MapCopyUnmap(data, 0); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *BoundBuffer) Destroy() {
	if b.Buffer != nil {
		b.Buffer.Destroy()
	}
	if b.Memory != nil {
		b.Memory.Destroy()
	}
}

// CreateBoundImage creates an image and binds it to a dedicated allocation
// with at least mprops.
func (d *Device) CreateBoundImage(options ImageOptions, mprops vk.MemoryPropertyFlags) (*BoundImage, error) {
	img, err := d.CreateImage(options)
	if err != nil {
		return nil, err
	}
	ar := img.AllocationRequirements()
	memory, err := d.Allocate(ar.Size, ar.MemoryTypeBits, mprops)
	if err != nil {
		img.Destroy()
		return nil, err
	}
	if err := img.Bind(memory, 0); err != nil {
		memory.Destroy()
		img.Destroy()
		return nil, err
	}
	return &BoundImage{Image: img, Memory: memory}, nil
}

func (b *BoundImage) Destroy() {
	if b.Image != nil {
		b.Image.Destroy()
	}
	if b.Memory != nil {
		b.Memory.Destroy()
	}
}
