package vulkanitos

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Device is a logical device.
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

// WaitIdle blocks until all queues of the device are idle.
func (d *Device) WaitIdle() error {
	return errors.Wrap(vk.Error(vk.DeviceWaitIdle(d.VKDevice)), "device wait idle")
}

// GetQueue returns the first queue of family qf.
func (d *Device) GetQueue(qf *QueueFamily) *Queue {
	var vkq vk.Queue
	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)
	return &Queue{Device: d, QueueFamily: qf, VKQueue: vkq}
}

// AllocationRequirements is the dereferenced form of vk.MemoryRequirements.
type AllocationRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

func requirements(mr vk.MemoryRequirements) AllocationRequirements {
	mr.Deref()
	return AllocationRequirements{
		Size:           uint64(mr.Size),
		Alignment:      uint64(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

// Allocate allocates size bytes from a memory type allowed by typeBits
// with at least the given properties.
func (d *Device) Allocate(size uint64, typeBits uint32, properties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	index, err := d.PhysicalDevice.FindMemoryType(typeBits, properties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: index,
	}

	var memory vk.DeviceMemory
	err = vk.Error(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &memory))
	if err != nil {
		return nil, errors.Wrap(err, "allocate memory")
	}
	return &DeviceMemory{Device: d, VKDeviceMemory: memory, Size: size}, nil
}

// AllocateForBuffer allocates memory sized and typed for b.
func (d *Device) AllocateForBuffer(b *Buffer, properties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	ar := b.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, properties)
}
