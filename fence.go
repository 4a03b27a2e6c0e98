package vulkanitos

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Fence is a host visible GPU completion signal.
type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, optionally already signaled.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	err := vk.Error(vk.CreateFence(d.VKDevice, &info, nil, &fence))
	if err != nil {
		return nil, errors.Wrap(err, "create fence")
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

// Signaled reports whether the fence is currently signaled.
func (f *Fence) Signaled() bool {
	return vk.GetFenceStatus(f.Device.VKDevice, f.VKFence) == vk.Success
}

// Wait blocks until the fence is signaled. A zero timeout waits forever.
func (f *Fence) Wait(timeout time.Duration) error {
	return f.Device.WaitForFences(true, timeout, f)
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return errors.Wrap(vk.Error(vk.ResetFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence})), "reset fence")
}

// WaitForFences waits on fences. A zero timeout waits forever.
func (d *Device) WaitForFences(waitForAll bool, timeout time.Duration, fences ...*Fence) error {
	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}

	wait := vk.Bool32(vk.False)
	if waitForAll {
		wait = vk.True
	}

	ns := uint64(vk.MaxUint64)
	if timeout > 0 {
		ns = uint64(timeout.Nanoseconds())
	}

	err := vk.Error(vk.WaitForFences(d.VKDevice, uint32(len(fences)), f, wait, ns))
	return errors.Wrap(err, "wait for fences")
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
