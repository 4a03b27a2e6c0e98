package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultFramesInFlight is used when no frame count is configured.
const DefaultFramesInFlight = 1

// FrameSlots tracks which of the K in-flight slots has GPU work outstanding.
// A slot is outstanding from the graphics submission that signals its fence
// until that fence has been waited on.
type FrameSlots struct {
	current     int
	outstanding []bool
}

// NewFrameSlots returns k slots, clamped to at least one.
func NewFrameSlots(k int) *FrameSlots {
	if k < 1 {
		k = 1
	}
	return &FrameSlots{outstanding: make([]bool, k)}
}

func (s *FrameSlots) Len() int {
	return len(s.outstanding)
}

// Current is the slot the next frame records into.
func (s *FrameSlots) Current() int {
	return s.current
}

// Wait records that the fence of the current slot has signaled.
func (s *FrameSlots) Wait() {
	s.Release(s.current)
}

// Release records that the fence of slot has signaled.
func (s *FrameSlots) Release(slot int) {
	s.outstanding[slot] = false
}

// Pending returns the slots other than the current one whose fences have
// not been waited on, oldest submission first.
func (s *FrameSlots) Pending() []int {
	var ret []int
	for i := 1; i < len(s.outstanding); i++ {
		slot := (s.current + i) % len(s.outstanding)
		if s.outstanding[slot] {
			ret = append(ret, slot)
		}
	}
	return ret
}

// Submit records a fence signaling submission on the current slot. The
// fence must have been waited on first.
func (s *FrameSlots) Submit() error {
	if s.outstanding[s.current] {
		return errors.Errorf("frame slot %d submitted while its fence is pending", s.current)
	}
	s.outstanding[s.current] = true
	return nil
}

// Advance moves to the next slot, wrapping modulo K.
func (s *FrameSlots) Advance() {
	s.current = (s.current + 1) % len(s.outstanding)
}

// InFlight counts the slots with pending fences.
func (s *FrameSlots) InFlight() int {
	n := 0
	for _, o := range s.outstanding {
		if o {
			n++
		}
	}
	return n
}

// FrameSync holds the synchronization objects of one in-flight slot.
type FrameSync struct {
	ImageAvailable  *Semaphore
	ComputeFinished *Semaphore
	RenderFinished  *Semaphore
	InFlight        *Fence
}

// Destroy releases whatever objects of f were created.
func (f *FrameSync) Destroy() {
	for _, s := range []*Semaphore{f.ImageAvailable, f.ComputeFinished, f.RenderFinished} {
		if s != nil {
			s.Destroy()
		}
	}
	if f.InFlight != nil {
		f.InFlight.Destroy()
	}
}

// CreateFrameSync creates k sets of sync objects. Fences start signaled so
// the first wait on every slot returns immediately.
func (d *Device) CreateFrameSync(k int) ([]*FrameSync, error) {
	ret := make([]*FrameSync, 0, k)
	fail := func(err error) ([]*FrameSync, error) {
		for _, f := range ret {
			f.Destroy()
		}
		return nil, err
	}
	for i := 0; i < k; i++ {
		f := &FrameSync{}
		var err error
		if f.ImageAvailable, err = d.CreateSemaphore(); err != nil {
			return fail(err)
		}
		ret = append(ret, f)
		if f.ComputeFinished, err = d.CreateSemaphore(); err != nil {
			return fail(err)
		}
		if f.RenderFinished, err = d.CreateSemaphore(); err != nil {
			return fail(err)
		}
		if f.InFlight, err = d.CreateFence(true); err != nil {
			return fail(err)
		}
	}
	return ret, nil
}

// frameBackend is the GPU side of one frame. Slot indices select the sync
// objects, image indices select the per image command buffers and uniforms.
type frameBackend interface {
	waitSlot(slot int) error
	acquire(slot int) (image uint32, stale bool, err error)
	resetSlot(slot int) error
	updateUniforms(image uint32) error
	submitCompute(slot int, image uint32) error
	submitGraphics(slot int, image uint32) error
	present(slot int, image uint32) (stale bool, err error)
}

// FrameOrchestrator runs the per frame submission protocol.
type FrameOrchestrator struct {
	backend   frameBackend
	Slots     *FrameSlots
	Swapchain *SwapchainManager
}

func newFrameOrchestrator(backend frameBackend, k int, swapchain *SwapchainManager) *FrameOrchestrator {
	return &FrameOrchestrator{backend: backend, Slots: NewFrameSlots(k), Swapchain: swapchain}
}

// SubmitFrame renders and presents one frame. When the acquired image is
// out of date the swapchain is recreated and nothing is submitted; the slot
// fence is left signaled and the slot is reused by the next call.
//
// The compute pass rewrites the vertex buffer every graphics submission
// reads, and nothing orders the compute queue after an earlier frame's
// graphics work. With K > 1 the fences of the other slots are therefore
// waited on before the uniforms are written and compute is submitted.
func (o *FrameOrchestrator) SubmitFrame() error {
	slot := o.Slots.Current()
	if err := o.backend.waitSlot(slot); err != nil {
		return err
	}
	o.Slots.Wait()

	image, stale, err := o.backend.acquire(slot)
	if err != nil {
		return err
	}
	if stale {
		o.Swapchain.Invalidate()
		_, err := o.Swapchain.RecreateIfPending()
		return err
	}

	for _, other := range o.Slots.Pending() {
		if err := o.backend.waitSlot(other); err != nil {
			return err
		}
		o.Slots.Release(other)
	}
	if err := o.backend.resetSlot(slot); err != nil {
		return err
	}
	if err := o.backend.updateUniforms(image); err != nil {
		return err
	}
	if err := o.backend.submitCompute(slot, image); err != nil {
		return err
	}
	if err := o.backend.submitGraphics(slot, image); err != nil {
		return err
	}
	if err := o.Slots.Submit(); err != nil {
		return err
	}

	stale, err = o.backend.present(slot, image)
	if err != nil {
		return err
	}
	if stale {
		o.Swapchain.Invalidate()
	}
	if _, err := o.Swapchain.RecreateIfPending(); err != nil {
		return err
	}

	o.Slots.Advance()
	return nil
}

// computeBarriers returns the barriers around the compute dispatch: the
// first acquires the vertex buffer from graphics, the second releases it
// back. Ownership transfer is skipped when both run on one family.
func computeBarriers(graphicsFamily, computeFamily uint32) (acquire, release BufferBarrier) {
	src, dst := graphicsFamily, computeFamily
	if src == dst {
		src, dst = vk.QueueFamilyIgnored, vk.QueueFamilyIgnored
	}
	acquire = BufferBarrier{
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		SrcAccess: vk.AccessFlags(vk.AccessVertexAttributeReadBit),
		DstAccess: vk.AccessFlags(vk.AccessShaderWriteBit),
		SrcFamily: src,
		DstFamily: dst,
	}
	release = BufferBarrier{
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
		SrcAccess: vk.AccessFlags(vk.AccessShaderWriteBit),
		DstAccess: vk.AccessFlags(vk.AccessVertexAttributeReadBit),
		SrcFamily: dst,
		DstFamily: src,
	}
	return acquire, release
}

// graphicsBarriers returns the halves of the same transfers recorded on the
// graphics queue: acquire before vertex input pairs with the compute
// release, release after the render pass pairs with the next compute
// acquire.
func graphicsBarriers(graphicsFamily, computeFamily uint32) (acquire, release BufferBarrier) {
	computeAcquire, computeRelease := computeBarriers(graphicsFamily, computeFamily)
	return computeRelease, computeAcquire
}
