package vulkanitos

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory is one vkAllocateMemory allocation. Vulkan allows a single
// mapping per allocation, so the memory is either unmapped, mapped for a
// one-off copy, or persistently mapped with the pointer held in Ptr.
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	Ptr            unsafe.Pointer
	mapped         bool
}

func (d *DeviceMemory) Destroy() {
	d.Unmap()
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

func (d *DeviceMemory) mapRange(offset, size uint64) (unsafe.Pointer, error) {
	if d.mapped {
		return nil, errors.New("device memory is already mapped")
	}
	if offset+size > d.Size {
		return nil, errors.Errorf("map range %d+%d exceeds allocation of %d bytes", offset, size, d.Size)
	}
	var ptr unsafe.Pointer
	err := vk.Error(vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &ptr))
	if err != nil {
		return nil, errors.Wrap(err, "map memory")
	}
	d.mapped = true
	return ptr, nil
}

// MapCopyUnmap copies data to offset through a temporary mapping.
func (d *DeviceMemory) MapCopyUnmap(data []byte, offset uint64) error {
	ptr, err := d.mapRange(offset, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(toBytes(ptr, len(data)), data)
	d.Unmap()
	return nil
}

// Map maps the whole allocation and keeps the pointer in Ptr until Unmap.
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	ptr, err := d.mapRange(0, d.Size)
	if err != nil {
		return nil, err
	}
	d.Ptr = ptr
	return ptr, nil
}

// Bytes views the persistently mapped range [offset, offset+size).
func (d *DeviceMemory) Bytes(offset, size uint64) []byte {
	if d.Ptr == nil || offset+size > d.Size {
		return nil
	}
	return toBytes(unsafe.Add(d.Ptr, offset), int(size))
}

func (d *DeviceMemory) Unmap() {
	if !d.mapped {
		return
	}
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	d.Ptr = nil
	d.mapped = false
}
