package vulkanitos

import (
	"fmt"
)

type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

type IAllocator interface {
	Free(a *Allocation)
	Allocate(size uint64, align uint64) *Allocation
}

// LinearAllocator hands out ranges of a block of Size bytes, first fit,
// keeping the allocations sorted by offset.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Allocate returns a range of size bytes whose offset is a multiple of
// align, or nil if the block has no such gap.
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if align == 0 {
		align = 1
	}
	var start uint64
	for i, a := range p.allocs {
		if a.Offset >= start && a.Offset-start >= size {
			na := &Allocation{Offset: start, Size: size}
			p.allocs = append(p.allocs[:i], append([]*Allocation{na}, p.allocs[i:]...)...)
			return na
		}
		start = alignUp(a.Offset+a.Size, align)
	}
	if start > p.Size || p.Size-start < size {
		return nil
	}
	na := &Allocation{Offset: start, Size: size}
	p.allocs = append(p.allocs, na)
	return na
}

// Used returns the number of bytes handed out.
func (p *LinearAllocator) Used() uint64 {
	var n uint64
	for _, a := range p.allocs {
		n += a.Size
	}
	return n
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
