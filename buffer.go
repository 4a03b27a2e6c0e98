package vulkanitos

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer are used to map hunks of data that are then bound to resources used by the pipeline
// and command buffers to render data.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlags
}

// CreateBuffer creates an unbound buffer; families is only used with
// concurrent sharing.
func (d *Device) CreateBuffer(size uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode, families ...uint32) (*Buffer, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: sharing,
	}
	if sharing == vk.SharingModeConcurrent {
		info.QueueFamilyIndexCount = uint32(len(families))
		info.PQueueFamilyIndices = families
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &info, nil, &buffer))
	if err != nil {
		return nil, errors.Wrap(err, "create buffer")
	}
	return &Buffer{Device: d, VKBuffer: buffer, Size: size, Usage: usage}, nil
}

// AllocationRequirements returns size, alignment and allowed memory types.
func (b *Buffer) AllocationRequirements() AllocationRequirements {
	var mr vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &mr)
	return requirements(mr)
}

// DSInfo describes the whole buffer for a descriptor write.
func (b *Buffer) DSInfo(offset uint64) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size - offset),
	}
}

// Bind attaches memory at offset.
func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return errors.Wrap(vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset))), "bind buffer memory")
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("{ Size: %d Usage: %#x }", b.Size, b.Usage)
}
