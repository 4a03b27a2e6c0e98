package vulkanitos

import (
	"log"
	"sort"

	units "github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

// ResourceManager creates device resources and uploads data to them. One
// shot transfers are recorded from Pool and submitted to Queue.
type ResourceManager struct {
	Device *Device
	Pool   *CommandPool
	Queue  *Queue
	Logger *log.Logger

	sizes map[string]uint64
}

func (d *Device) CreateResourceManager(pool *CommandPool, queue *Queue, logger *log.Logger) *ResourceManager {
	if logger == nil {
		logger = log.Default()
	}
	return &ResourceManager{Device: d, Pool: pool, Queue: queue, Logger: logger, sizes: make(map[string]uint64)}
}

func (r *ResourceManager) track(name string, size uint64) {
	r.sizes[name] += size
	r.Logger.Printf("resources: %s %s (total %s)", name, units.BytesSize(float64(size)), units.BytesSize(float64(r.Total())))
}

// settle finishes the creation of a resource of size bytes: on err the
// resource is destroyed and nothing is recorded, otherwise its size is
// tracked under name.
func (r *ResourceManager) settle(name string, size uint64, res IDestructable, err error) error {
	if err != nil {
		res.Destroy()
		return err
	}
	r.track(name, size)
	return nil
}

// Forget removes size bytes from name once the resource is destroyed.
func (r *ResourceManager) Forget(name string, size uint64) {
	if r.sizes[name] <= size {
		delete(r.sizes, name)
		return
	}
	r.sizes[name] -= size
}

// Total returns the number of bytes of device memory allocated so far.
func (r *ResourceManager) Total() uint64 {
	var n uint64
	for _, s := range r.sizes {
		n += s
	}
	return n
}

// UploadBuffer creates a device local buffer with usage|TRANSFER_DST and
// fills it with data through a staging buffer.
func (r *ResourceManager) UploadBuffer(name string, data []byte, usage vk.BufferUsageFlags) (*BoundBuffer, error) {
	staging, err := r.Device.CreateHostBuffer(data, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	size := uint64(len(data))
	dst, err := r.Device.CreateBoundBuffer(size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	err = r.Pool.RunOneTime(r.Queue, func(cb *CommandBuffer) error {
		cb.CmdCopyBuffer(staging.Buffer, dst.Buffer, size)
		return nil
	})
	if err := r.settle(name, dst.Memory.Size, dst, err); err != nil {
		return nil, err
	}
	return dst, nil
}

// LogDetails logs the memory allocated for each resource name.
func (r *ResourceManager) LogDetails() {
	names := make([]string, 0, len(r.sizes))
	for n := range r.sizes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		r.Logger.Printf("resources: %-12s %s", n, units.BytesSize(float64(r.sizes[n])))
	}
	r.Logger.Printf("resources: %-12s %s", "total", units.BytesSize(float64(r.Total())))
}
