package vulkanitos

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Queue is a device queue of a given family.
type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return errors.Wrap(vk.Error(vk.QueueWaitIdle(q.VKQueue)), "queue wait idle")
}

// SubmitInfo describes one batch for Submit.
type SubmitInfo struct {
	Buffers    []*CommandBuffer
	WaitFor    []vk.Semaphore
	WaitStages []vk.PipelineStageFlags
	Signal     []vk.Semaphore
}

func (s *SubmitInfo) native() vk.SubmitInfo {
	b := make([]vk.CommandBuffer, len(s.Buffers))
	for i := range s.Buffers {
		b[i] = s.Buffers[i].VKCommandBuffer
	}
	return vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(s.WaitFor)),
		PWaitSemaphores:      s.WaitFor,
		PWaitDstStageMask:    s.WaitStages,
		CommandBufferCount:   uint32(len(b)),
		PCommandBuffers:      b,
		SignalSemaphoreCount: uint32(len(s.Signal)),
		PSignalSemaphores:    s.Signal,
	}
}

// Submit submits one batch; fence may be nil.
func (q *Queue) Submit(info SubmitInfo, fence *Fence) error {
	f := vk.NullFence
	if fence != nil {
		f = fence.VKFence
	}
	err := vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{info.native()}, f))
	return errors.Wrap(err, "queue submit")
}

// SubmitWithFence submits buffers without semaphores, signaling fence.
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	return q.Submit(SubmitInfo{Buffers: buffers}, fence)
}

// Present queues image index for presentation once wait is signaled. It
// reports stale when the swapchain no longer matches the surface.
func (q *Queue) Present(swapchain *Swapchain, index uint32, wait []vk.Semaphore) (stale bool, err error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(wait)),
		PWaitSemaphores:    wait,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain.VKSwapchain},
		PImageIndices:      []uint32{index},
	}
	return presentResult(vk.QueuePresent(q.VKQueue, &presentInfo))
}

// presentResult splits a present result into the stale signal and a real error.
func presentResult(res vk.Result) (bool, error) {
	switch res {
	case vk.Success:
		return false, nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return true, nil
	default:
		return false, errors.Wrap(vk.Error(res), "queue present")
	}
}

// acquireResult splits an acquire result. Suboptimal still yields a usable
// image, so only out-of-date is stale here.
func acquireResult(res vk.Result) (bool, error) {
	switch res {
	case vk.Success, vk.Suboptimal:
		return false, nil
	case vk.ErrorOutOfDate:
		return true, nil
	default:
		return false, errors.Wrap(vk.Error(res), "acquire next image")
	}
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}
