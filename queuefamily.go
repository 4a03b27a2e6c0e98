package vulkanitos

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilySlice is the list of queue families of a physical device.
type QueueFamilySlice []*QueueFamily

// Filter returns the families for which f is true.
func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make(QueueFamilySlice, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

// QueueFamily is one queue family of a physical device.
type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) has(bit vk.QueueFlagBits) bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(bit) == vk.QueueFlags(bit)
}

func (q *QueueFamily) IsCompute() bool {
	return q.has(vk.QueueComputeBit)
}

func (q *QueueFamily) IsGraphics() bool {
	return q.has(vk.QueueGraphicsBit)
}

func (q *QueueFamily) IsTransfer() bool {
	return q.has(vk.QueueTransferBit)
}

func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supportsPresent)
	return supportsPresent == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Compute: %v Graphics: %v Transfer: %v }", q.Index, q.IsCompute(), q.IsGraphics(), q.IsTransfer())
}

// QueueFamilyIndices names the family used for each role. The roles may
// share a family.
type QueueFamilyIndices struct {
	Graphics int
	Compute  int
	Present  int
}

// familyCaps is what ResolveQueueFamilies needs to know about one family.
type familyCaps struct {
	graphics bool
	compute  bool
	present  bool
}

// resolveFamilies picks, independently for each role, the first family
// offering it.
func resolveFamilies(caps []familyCaps) (QueueFamilyIndices, error) {
	idx := QueueFamilyIndices{Graphics: -1, Compute: -1, Present: -1}
	for i, c := range caps {
		if idx.Graphics < 0 && c.graphics {
			idx.Graphics = i
		}
		if idx.Compute < 0 && c.compute {
			idx.Compute = i
		}
		if idx.Present < 0 && c.present {
			idx.Present = i
		}
	}
	var absent []string
	if idx.Graphics < 0 {
		absent = append(absent, "graphics")
	}
	if idx.Compute < 0 {
		absent = append(absent, "compute")
	}
	if idx.Present < 0 {
		absent = append(absent, "present")
	}
	if len(absent) > 0 {
		return idx, errors.Wrapf(ErrUnsupportedPlatform, "missing queue families %v", absent)
	}
	return idx, nil
}

// ResolveQueueFamilies finds a graphics, a compute and a present capable
// family for surface.
func (ql QueueFamilySlice) ResolveQueueFamilies(surface vk.Surface) (QueueFamilyIndices, error) {
	caps := make([]familyCaps, len(ql))
	for i, q := range ql {
		caps[i] = familyCaps{
			graphics: q.IsGraphics(),
			compute:  q.IsCompute(),
			present:  q.SupportsPresent(surface),
		}
	}
	idx, err := resolveFamilies(caps)
	if err != nil {
		return idx, err
	}
	idx.Graphics = ql[idx.Graphics].Index
	idx.Compute = ql[idx.Compute].Index
	idx.Present = ql[idx.Present].Index
	return idx, nil
}

// Unique returns the distinct family indices, graphics first.
func (i QueueFamilyIndices) Unique() []int {
	ret := []int{i.Graphics}
	for _, v := range []int{i.Compute, i.Present} {
		dup := false
		for _, r := range ret {
			if r == v {
				dup = true
			}
		}
		if !dup {
			ret = append(ret, v)
		}
	}
	return ret
}
