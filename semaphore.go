package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Semaphore orders work between queue submissions.
type Semaphore struct {
	Device      *Device
	VKSemaphore vk.Semaphore
}

// CreateSemaphore creates a binary semaphore.
func (d *Device) CreateSemaphore() (*Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var sema vk.Semaphore
	err := vk.Error(vk.CreateSemaphore(d.VKDevice, &info, nil, &sema))
	if err != nil {
		return nil, errors.Wrap(err, "create semaphore")
	}
	return &Semaphore{Device: d, VKSemaphore: sema}, nil
}

func (s *Semaphore) Destroy() {
	vk.DestroySemaphore(s.Device.VKDevice, s.VKSemaphore, nil)
}
