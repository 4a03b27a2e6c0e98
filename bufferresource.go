package vulkanitos

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BufferResource is a uniform buffer sub-allocated from a UniformPool.
// Vulkan limits the number of memory allocations an application can make,
// so every uniform buffer of the renderer shares one persistently mapped
// block.
type BufferResource struct {
	*Buffer
	Pool       *UniformPool
	Allocation *Allocation
}

// UniformPool owns one host visible, coherent memory block and the
// uniform buffers bound into it.
type UniformPool struct {
	Device    *Device
	Memory    *DeviceMemory
	Allocator IAllocator
	Alignment uint64
	Buffers   []*BufferResource
}

// uniformLayout returns the alignment each buffer must start on and the
// bytes needed to hold count of them.
func uniformLayout(count int, size, bufferAlign, minOffsetAlign uint64) (align uint64, total uint64) {
	align = bufferAlign
	if minOffsetAlign > align {
		align = minOffsetAlign
	}
	if align == 0 {
		align = 1
	}
	if count <= 0 {
		return align, 0
	}
	return align, alignUp(size, align)*uint64(count-1) + size
}

// CreateUniformPool creates count uniform buffers of size bytes each,
// laid out in one mapped allocation at offsets honoring
// minUniformBufferOffsetAlignment.
func (r *ResourceManager) CreateUniformPool(count int, size uint64) (*UniformPool, error) {
	d := r.Device
	usage := vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)

	buffers := make([]*Buffer, 0, count)
	destroyBuffers := func() {
		for _, b := range buffers {
			b.Destroy()
		}
	}
	for i := 0; i < count; i++ {
		b, err := d.CreateBuffer(size, usage, vk.SharingModeExclusive)
		if err != nil {
			destroyBuffers()
			return nil, err
		}
		buffers = append(buffers, b)
	}
	if count == 0 {
		return &UniformPool{Device: d, Allocator: &LinearAllocator{}}, nil
	}

	ar := buffers[0].AllocationRequirements()
	align, total := uniformLayout(count, ar.Size, ar.Alignment, uint64(d.PhysicalDevice.Limits().MinUniformBufferOffsetAlignment))

	memory, err := d.Allocate(total, ar.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		destroyBuffers()
		return nil, err
	}
	if _, err := memory.Map(); err != nil {
		memory.Destroy()
		destroyBuffers()
		return nil, err
	}

	pool := &UniformPool{
		Device:    d,
		Memory:    memory,
		Allocator: &LinearAllocator{Size: total},
		Alignment: align,
	}
	for _, b := range buffers {
		a := pool.Allocator.Allocate(ar.Size, align)
		if a == nil {
			pool.Buffers = nil
			memory.Destroy()
			destroyBuffers()
			return nil, errors.Errorf("uniform pool of %d bytes exhausted", total)
		}
		if err := b.Bind(memory, a.Offset); err != nil {
			memory.Destroy()
			destroyBuffers()
			return nil, err
		}
		pool.Buffers = append(pool.Buffers, &BufferResource{Buffer: b, Pool: pool, Allocation: a})
	}
	r.track("uniforms", total)
	return pool, nil
}

// Bytes returns the mapped memory behind the buffer.
func (r *BufferResource) Bytes() []byte {
	return r.Pool.Memory.Bytes(r.Allocation.Offset, r.Buffer.Size)
}

// Write copies data to the start of the buffer.
func (r *BufferResource) Write(data []byte) error {
	dst := r.Bytes()
	if dst == nil {
		return errors.New("uniform pool memory is not mapped")
	}
	if len(data) > len(dst) {
		return errors.Errorf("%d bytes do not fit a %d byte uniform buffer", len(data), len(dst))
	}
	copy(dst, data)
	return nil
}

func (p *UniformPool) Destroy() {
	for _, b := range p.Buffers {
		p.Allocator.Free(b.Allocation)
		b.Buffer.Destroy()
	}
	p.Buffers = nil
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
}
