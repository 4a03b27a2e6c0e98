package vulkanitos

import (
	"log"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Window is what the renderer needs from the windowing system.
type Window interface {
	FramebufferSource
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// DeviceContext holds the objects created once at startup and shared by
// everything else.
type DeviceContext struct {
	Instance       *Instance
	PhysicalDevice *PhysicalDevice
	Device         *Device
	Surface        vk.Surface
	Families       QueueFamilyIndices

	GraphicsQueue *Queue
	ComputeQueue  *Queue
	PresentQueue  *Queue

	GraphicsPool *CommandPool
	ComputePool  *CommandPool
}

// deviceCandidate is what device selection knows about a physical device.
type deviceCandidate struct {
	name              string
	familiesErr       error
	extensions        []string
	formatCount       int
	presentModeCount  int
	samplerAnisotropy bool
}

// checkSuitable returns why c cannot run the viewer, or nil.
func checkSuitable(c deviceCandidate, required []string) error {
	if c.familiesErr != nil {
		return c.familiesErr
	}
	if m := missing(c.extensions, required); len(m) > 0 {
		return errors.Wrapf(ErrExtensionNotSupported, "%v", m)
	}
	if c.formatCount == 0 {
		return errors.New("no surface formats")
	}
	if c.presentModeCount == 0 {
		return errors.New("no present modes")
	}
	if !c.samplerAnisotropy {
		return errors.New("samplerAnisotropy not supported")
	}
	return nil
}

// pickDevice returns the index of the first suitable candidate.
func pickDevice(candidates []deviceCandidate, required []string, logger *log.Logger) (int, error) {
	for i, c := range candidates {
		err := checkSuitable(c, required)
		if err == nil {
			return i, nil
		}
		if logger != nil {
			logger.Printf("skipping device %s: %v", c.name, err)
		}
	}
	return -1, errors.Wrap(ErrUnsupportedPlatform, "no suitable physical device")
}

func describeDevice(p *PhysicalDevice, surface vk.Surface) deviceCandidate {
	c := deviceCandidate{name: p.String()}

	qfs, err := p.QueueFamilies()
	if err != nil {
		c.familiesErr = err
	} else {
		_, c.familiesErr = qfs.ResolveQueueFamilies(surface)
	}
	if names, err := p.SupportedExtensionNames(); err == nil {
		c.extensions = names
	}
	if formats, err := p.GetSurfaceFormats(surface); err == nil {
		c.formatCount = len(formats)
	}
	if modes, err := p.GetSurfacePresentModes(surface); err == nil {
		c.presentModeCount = len(modes)
	}
	c.samplerAnisotropy = p.VKPhysicalDeviceFeatures().SamplerAnisotropy == vk.True
	return c
}

// BootstrapOptions configures CreateDeviceContext.
type BootstrapOptions struct {
	AppName          string
	Validation       bool
	ValidationLayers []string
	DeviceExtensions []string
	Logger           *log.Logger
}

// CreateDeviceContext creates the instance, surface and logical device,
// fetches the three queues and creates a command pool for graphics and one
// for compute. Every object is pushed onto rel.
func CreateDeviceContext(win Window, opts BootstrapOptions, rel *Releaser) (*DeviceContext, error) {
	app := &App{
		Name:       opts.AppName,
		EngineName: "vulkanitos",
		APIVersion: Version{Major: 1},
	}
	for _, ext := range win.RequiredInstanceExtensions() {
		app.EnableExtension(ext)
	}
	if opts.Validation {
		if err := app.EnableDebugging(opts.ValidationLayers); err != nil {
			return nil, err
		}
	}

	instance, err := app.CreateInstance()
	if err != nil {
		return nil, err
	}
	rel.Push("instance", instance)

	if opts.Validation {
		if err := instance.SetDebugLogger(opts.Logger); err != nil {
			return nil, err
		}
	}

	surface, err := win.CreateSurface(instance.VKInstance)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}
	rel.PushFunc("surface", func() { instance.DestroySurface(surface) })

	pds, err := instance.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	candidates := make([]deviceCandidate, len(pds))
	for i, p := range pds {
		candidates[i] = describeDevice(p, surface)
	}
	pick, err := pickDevice(candidates, opts.DeviceExtensions, opts.Logger)
	if err != nil {
		return nil, err
	}
	pd := pds[pick]

	qfs, err := pd.QueueFamilies()
	if err != nil {
		return nil, err
	}
	families, err := qfs.ResolveQueueFamilies(surface)
	if err != nil {
		return nil, err
	}
	byIndex := func(index int) *QueueFamily {
		return qfs.Filter(func(q *QueueFamily) bool { return q.Index == index })[0]
	}
	var unique QueueFamilySlice
	for _, idx := range families.Unique() {
		unique = append(unique, byIndex(idx))
	}

	device, err := pd.CreateLogicalDeviceWithOptions(unique, &CreateDeviceOptions{
		EnabledExtensions: opts.DeviceExtensions,
		SamplerAnisotropy: true,
	})
	if err != nil {
		return nil, err
	}
	rel.Push("device", device)

	ctx := &DeviceContext{
		Instance:       instance,
		PhysicalDevice: pd,
		Device:         device,
		Surface:        surface,
		Families:       families,
		GraphicsQueue:  device.GetQueue(byIndex(families.Graphics)),
		ComputeQueue:   device.GetQueue(byIndex(families.Compute)),
		PresentQueue:   device.GetQueue(byIndex(families.Present)),
	}

	if ctx.GraphicsPool, err = device.CreateCommandPool(ctx.GraphicsQueue.QueueFamily); err != nil {
		return nil, err
	}
	rel.Push("graphics command pool", ctx.GraphicsPool)

	if ctx.ComputePool, err = device.CreateCommandPool(ctx.ComputeQueue.QueueFamily); err != nil {
		return nil, err
	}
	rel.Push("compute command pool", ctx.ComputePool)

	if opts.Logger != nil {
		opts.Logger.Printf("using %s, families graphics=%d compute=%d present=%d",
			pd, families.Graphics, families.Compute, families.Present)
	}
	return ctx, nil
}
