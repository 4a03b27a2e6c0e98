package vulkanitos

import (
	"sync"
)

// IDestructable is implemented by every wrapper owning a Vulkan object.
type IDestructable interface {
	Destroy()
}

// DestroyFunc adapts a plain function to IDestructable.
type DestroyFunc func()

// Destroy calls f.
func (f DestroyFunc) Destroy() {
	f()
}

type release struct {
	name string
	d    IDestructable
}

// Releaser is a release stack: objects are destroyed in the mirror order
// of their acquisition. A Releaser may hold nested releasers, which are
// drained in place when the parent reaches them.
type Releaser struct {
	mu    sync.Mutex
	items []release
	// OnRelease, when set, is called with the name of every object just
	// before it is destroyed.
	OnRelease func(name string)
}

// Push records d as the most recently acquired object.
func (r *Releaser) Push(name string, d IDestructable) {
	if d == nil {
		return
	}
	r.mu.Lock()
	r.items = append(r.items, release{name: name, d: d})
	r.mu.Unlock()
}

// PushFunc records a release function.
func (r *Releaser) PushFunc(name string, f func()) {
	r.Push(name, DestroyFunc(f))
}

// Len returns the number of objects still owned.
func (r *Releaser) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Names returns the owned object names in acquisition order.
func (r *Releaser) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]string, len(r.items))
	for i, it := range r.items {
		ret[i] = it.name
	}
	return ret
}

// Destroy releases every object, most recent first. It satisfies
// IDestructable so a Releaser can be pushed onto a parent.
func (r *Releaser) Destroy() {
	for {
		r.mu.Lock()
		if len(r.items) == 0 {
			r.mu.Unlock()
			return
		}
		it := r.items[len(r.items)-1]
		r.items = r.items[:len(r.items)-1]
		r.mu.Unlock()

		if r.OnRelease != nil {
			r.OnRelease(it.name)
		}
		it.d.Destroy()
	}
}
