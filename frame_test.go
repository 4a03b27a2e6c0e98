package vulkanitos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type fenceState int

const (
	fenceSignaled fenceState = iota
	fenceReset
	fencePending
)

// fakeGPU completes a slot's work only when the host waits on its fence,
// which is the worst case for in-flight accounting.
type fakeGPU struct {
	t        *testing.T
	fences   []fenceState
	images   int
	next     uint32
	calls    []string
	acquires int
	presents int

	staleAcquire map[int]bool
	stalePresent map[int]bool
	maxPending   int

	// computeOverlaps counts compute submissions made while graphics work
	// of any slot was still pending.
	computeOverlaps int
}

func newFakeGPU(t *testing.T, k, images int) *fakeGPU {
	return &fakeGPU{
		t:            t,
		fences:       make([]fenceState, k),
		images:       images,
		staleAcquire: map[int]bool{},
		stalePresent: map[int]bool{},
	}
}

func (g *fakeGPU) pending() int {
	n := 0
	for _, f := range g.fences {
		if f == fencePending {
			n++
		}
	}
	return n
}

func (g *fakeGPU) waitSlot(slot int) error {
	g.calls = append(g.calls, "wait")
	require.NotEqual(g.t, fenceReset, g.fences[slot], "waiting on a reset fence never returns")
	g.fences[slot] = fenceSignaled
	return nil
}

func (g *fakeGPU) acquire(slot int) (uint32, bool, error) {
	g.calls = append(g.calls, "acquire")
	g.acquires++
	if g.staleAcquire[g.acquires] {
		return 0, true, nil
	}
	img := g.next
	g.next = (g.next + 1) % uint32(g.images)
	return img, false, nil
}

func (g *fakeGPU) resetSlot(slot int) error {
	g.calls = append(g.calls, "reset")
	g.fences[slot] = fenceReset
	return nil
}

func (g *fakeGPU) updateUniforms(image uint32) error {
	g.calls = append(g.calls, "uniforms")
	return nil
}

func (g *fakeGPU) submitCompute(slot int, image uint32) error {
	g.calls = append(g.calls, "compute")
	if g.pending() > 0 {
		g.computeOverlaps++
	}
	return nil
}

func (g *fakeGPU) submitGraphics(slot int, image uint32) error {
	g.calls = append(g.calls, "graphics")
	require.Equal(g.t, fenceReset, g.fences[slot])
	g.fences[slot] = fencePending
	if p := g.pending(); p > g.maxPending {
		g.maxPending = p
	}
	return nil
}

func (g *fakeGPU) present(slot int, image uint32) (bool, error) {
	g.calls = append(g.calls, "present")
	g.presents++
	return g.stalePresent[g.presents], nil
}

func newTestOrchestrator(t *testing.T, k int) (*FrameOrchestrator, *fakeGPU, *fakeBuilder) {
	gpu := newFakeGPU(t, NewFrameSlots(k).Len(), 3)
	builder := &fakeBuilder{}
	sm := NewSwapchainManager(&fakeWindow{sizes: [][2]int{{800, 600}}}, builder)
	require.NoError(t, sm.Create())
	return newFrameOrchestrator(gpu, k, sm), gpu, builder
}

func TestFrameSlotsClamp(t *testing.T) {
	assert.Equal(t, 1, NewFrameSlots(0).Len())
	assert.Equal(t, 1, NewFrameSlots(-3).Len())
	assert.Equal(t, 3, NewFrameSlots(3).Len())
}

func TestFrameSlotsRejectDoubleSubmit(t *testing.T) {
	s := NewFrameSlots(2)
	require.NoError(t, s.Submit())
	assert.Error(t, s.Submit())
	s.Wait()
	assert.NoError(t, s.Submit())
}

func TestFrameSlotsRoundRobin(t *testing.T) {
	s := NewFrameSlots(3)
	var seen []int
	for i := 0; i < 7; i++ {
		seen = append(seen, s.Current())
		s.Advance()
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, seen)
}

func TestSubmitFrameOrder(t *testing.T) {
	o, gpu, _ := newTestOrchestrator(t, 2)
	require.NoError(t, o.SubmitFrame())
	assert.Equal(t, []string{"wait", "acquire", "reset", "uniforms", "compute", "graphics", "present"}, gpu.calls)
	assert.Equal(t, 1, o.Slots.Current())
}

func TestInFlightBound(t *testing.T) {
	for _, k := range []int{1, 2, 3} {
		o, gpu, _ := newTestOrchestrator(t, k)
		for i := 0; i < 20; i++ {
			require.NoError(t, o.SubmitFrame())
			assert.LessOrEqual(t, o.Slots.InFlight(), k)
		}
		assert.LessOrEqual(t, gpu.maxPending, k, "k=%d", k)
	}
}

func TestComputeNeverOverlapsGraphics(t *testing.T) {
	for _, k := range []int{1, 2, 3} {
		o, gpu, _ := newTestOrchestrator(t, k)
		for i := 0; i < 10; i++ {
			require.NoError(t, o.SubmitFrame())
		}
		assert.Equal(t, 0, gpu.computeOverlaps, "k=%d", k)
		assert.Equal(t, 1, gpu.maxPending, "k=%d", k)
	}
}

func TestSubmitFrameWaitsOtherSlots(t *testing.T) {
	o, gpu, _ := newTestOrchestrator(t, 2)
	require.NoError(t, o.SubmitFrame())
	gpu.calls = nil

	require.NoError(t, o.SubmitFrame())
	assert.Equal(t, []string{"wait", "acquire", "wait", "reset", "uniforms", "compute", "graphics", "present"}, gpu.calls)
	assert.Equal(t, fenceSignaled, gpu.fences[0])
	assert.Equal(t, 1, o.Slots.InFlight())
}

func TestFrameSlotsPending(t *testing.T) {
	s := NewFrameSlots(3)
	require.NoError(t, s.Submit())
	s.Advance()
	require.NoError(t, s.Submit())
	s.Advance()
	assert.Equal(t, []int{0, 1}, s.Pending())

	s.Release(0)
	assert.Equal(t, []int{1}, s.Pending())
	assert.Equal(t, 1, s.InFlight())
}

func TestStaleAcquireSubmitsNothing(t *testing.T) {
	o, gpu, builder := newTestOrchestrator(t, 2)
	gpu.staleAcquire[2] = true

	require.NoError(t, o.SubmitFrame())
	gpu.calls = nil
	require.NoError(t, o.SubmitFrame())

	assert.Equal(t, []string{"wait", "acquire"}, gpu.calls)
	assert.Equal(t, 1, o.Slots.Current(), "slot must not advance")
	assert.Equal(t, 1, o.Swapchain.Recreations)
	assert.Equal(t, SwapchainReady, o.Swapchain.Status())
	assert.Len(t, builder.units, 2)

	// the slot fence stayed signaled, so the retry does not block
	gpu.calls = nil
	require.NoError(t, o.SubmitFrame())
	assert.Contains(t, gpu.calls, "graphics")
	assert.Equal(t, 0, o.Slots.Current())
}

func TestStalePresentRecreates(t *testing.T) {
	o, gpu, _ := newTestOrchestrator(t, 2)
	gpu.stalePresent[1] = true

	require.NoError(t, o.SubmitFrame())
	assert.Equal(t, 1, o.Swapchain.Recreations)
	assert.Equal(t, 1, o.Slots.Current())
}

func TestPendingResizeRecreatesAfterPresent(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, 2)
	o.Swapchain.Invalidate()

	require.NoError(t, o.SubmitFrame())
	assert.Equal(t, 1, o.Swapchain.Recreations)
	assert.Equal(t, SwapchainReady, o.Swapchain.Status())
}

func TestComputeBarriers(t *testing.T) {
	acquire, release := computeBarriers(0, 2)
	assert.Equal(t, uint32(0), acquire.SrcFamily)
	assert.Equal(t, uint32(2), acquire.DstFamily)
	assert.Equal(t, uint32(2), release.SrcFamily)
	assert.Equal(t, uint32(0), release.DstFamily)

	assert.Equal(t, vk.AccessFlags(vk.AccessVertexAttributeReadBit), acquire.SrcAccess)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderWriteBit), acquire.DstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), acquire.SrcStage)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), acquire.DstStage)
	assert.Equal(t, acquire.SrcAccess, release.DstAccess)
	assert.Equal(t, acquire.DstStage, release.SrcStage)

	acquire, release = computeBarriers(1, 1)
	assert.Equal(t, uint32(vk.QueueFamilyIgnored), acquire.SrcFamily)
	assert.Equal(t, uint32(vk.QueueFamilyIgnored), release.DstFamily)
}

func TestGraphicsBarriersPairWithCompute(t *testing.T) {
	computeAcquire, computeRelease := computeBarriers(0, 2)
	acquire, release := graphicsBarriers(0, 2)

	// graphics takes the buffer back from compute before vertex input
	assert.Equal(t, computeRelease.SrcFamily, acquire.SrcFamily)
	assert.Equal(t, computeRelease.DstFamily, acquire.DstFamily)
	assert.Equal(t, uint32(0), acquire.DstFamily)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), acquire.DstStage)
	assert.Equal(t, vk.AccessFlags(vk.AccessVertexAttributeReadBit), acquire.DstAccess)

	// and hands it over again after the render pass
	assert.Equal(t, computeAcquire.SrcFamily, release.SrcFamily)
	assert.Equal(t, computeAcquire.DstFamily, release.DstFamily)
	assert.Equal(t, uint32(2), release.DstFamily)
	assert.Equal(t, vk.AccessFlags(vk.AccessVertexAttributeReadBit), release.SrcAccess)

	acquire, release = graphicsBarriers(1, 1)
	assert.Equal(t, uint32(vk.QueueFamilyIgnored), acquire.SrcFamily)
	assert.Equal(t, uint32(vk.QueueFamilyIgnored), release.DstFamily)
}
