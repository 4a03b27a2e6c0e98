package vulkanitos

import (
	"log"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// InitializeHeadless loads the Vulkan loader without a window system, for
// tools that only query devices.
func InitializeHeadless() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Wrap(err, "load vulkan")
	}
	return errors.Wrap(vk.Init(), "initialize vulkan")
}

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v *Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App is used to provide information about this specific application to Vulkan
type App struct {
	// Name the name of the application
	Name string
	// Engine the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// APIVersion the expected minimum version of the Vulkan API (i.e. 1.0.0)
	APIVersion Version

	// EnabledLayers the enabled layers
	EnabledLayers []string

	// EnabledExtensions the enabled extensions
	EnabledExtensions []string
}

// SupportedLayers returns a list of supported layers for use by Vulkan.
// vk.Init must have been called first.
func SupportedLayers() ([]string, error) {
	var count uint32
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	layers := make([]vk.LayerProperties, count)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	names := make([]string, 0, count)
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// SupportedExtensions returns a list of supported instance extensions.
// vk.Init must have been called first.
func SupportedExtensions() ([]string, error) {
	var count uint32
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	exts := make([]vk.ExtensionProperties, count)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, exts))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	names := make([]string, 0, count)
	for _, ext := range exts {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// CheckLayers verifies that every requested layer is in supported.
func CheckLayers(supported, requested []string) error {
	if m := missing(supported, requested); len(m) > 0 {
		return errors.Wrapf(ErrLayerNotSupported, "%v", m)
	}
	return nil
}

// CheckExtensions verifies that every requested instance extension is in supported.
func CheckExtensions(supported, requested []string) error {
	if m := missing(supported, requested); len(m) > 0 {
		return errors.Wrapf(ErrExtensionNotSupported, "%v", m)
	}
	return nil
}

// EnableDebugging enables the given validation layers and the debug report
// extension, after checking the layers are present.
func (a *App) EnableDebugging(layers []string) error {
	supported, err := SupportedLayers()
	if err != nil {
		return err
	}
	if err := CheckLayers(supported, layers); err != nil {
		return err
	}
	a.EnabledLayers = append(a.EnabledLayers, layers...)
	a.EnableExtension("VK_EXT_debug_report")
	return nil
}

// EnableExtension enables an extension for use by the application
func (a *App) EnableExtension(extension string) *App {
	for _, e := range a.EnabledExtensions {
		if e == extension {
			return a
		}
	}
	a.EnabledExtensions = append(a.EnabledExtensions, extension)
	return a
}

// VKApplicationInfo creates a structure representing this application in a Vulkan friendly format
func (a *App) VKApplicationInfo() vk.ApplicationInfo {
	if a.APIVersion.Major < 1 {
		a.APIVersion.Major = 1
	}
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         a.APIVersion.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
}

// CreateInstance creates the Vulkan instance. Every enabled extension must be
// supported by the loader.
func (a *App) CreateInstance() (*Instance, error) {
	supported, err := SupportedExtensions()
	if err != nil {
		return nil, err
	}
	if err := CheckExtensions(supported, a.EnabledExtensions); err != nil {
		return nil, err
	}

	appInfo := a.VKApplicationInfo()
	extensions := safeStrings(a.EnabledExtensions)
	layers := safeStrings(a.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance := &Instance{}
	err = vk.Error(vk.CreateInstance(&createInfo, nil, &instance.VKInstance))
	if err != nil {
		return nil, errors.Wrap(err, "create instance")
	}
	err = vk.InitInstance(instance.VKInstance)
	if err != nil {
		vk.DestroyInstance(instance.VKInstance, nil)
		return nil, errors.Wrap(err, "init instance")
	}
	return instance, nil
}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	// VKInstance is the native Vulkan instance object
	VKInstance vk.Instance

	debugCallback vk.DebugReportCallback
}

// PhysicalDevices returns the physical devices known to Vulkan, in
// enumeration order.
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var count uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, nil))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}
	if count == 0 {
		return nil, nil
	}

	devices := make([]vk.PhysicalDevice, count)
	err = vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, devices))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	ret := make([]*PhysicalDevice, count)
	for j, device := range devices {
		pd := &PhysicalDevice{VKPhysicalDevice: device}
		vk.GetPhysicalDeviceProperties(device, &pd.VKPhysicalDeviceProperties)
		pd.VKPhysicalDeviceProperties.Deref()
		pd.VKPhysicalDeviceProperties.Limits.Deref()
		pd.DeviceName = vk.ToString(pd.VKPhysicalDeviceProperties.DeviceName[:])
		ret[j] = pd
	}
	return ret, nil
}

// SetDebugLogger installs a debug report callback forwarding validation
// messages to logger. The callback never aborts the reported call.
func (i *Instance) SetDebugLogger(logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	callback := func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
		logger.Printf("%s: [%s] Code %d : %s", debugLevel(flags), pLayerPrefix, messageCode, pMessage)
		return vk.Bool32(vk.False)
	}

	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit),
		PfnCallback: callback,
	}, nil, &cb)
	if err := vk.Error(ret); err != nil {
		return errors.Wrap(err, "create debug report callback")
	}
	i.debugCallback = cb
	return nil
}

func debugLevel(flags vk.DebugReportFlags) string {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return "ERROR"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return "WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return "PERFORMANCE WARNING"
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return "DEBUG"
	default:
		return "INFORMATION"
	}
}

// DestroySurface destroys a surface created against this instance.
func (i *Instance) DestroySurface(surface vk.Surface) {
	vk.DestroySurface(i.VKInstance, surface, nil)
}

// Destroy removes the debug callback, if any, and destroys the instance.
func (i *Instance) Destroy() {
	if i.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.VKInstance, i.debugCallback, nil)
		i.debugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(i.VKInstance, nil)
}
