package meshvk

import (
	"log"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// CoreContext is the explicit bundle of device-scoped state every GPU
// call site needs. It is passed by value of reference into the factory,
// transition engine, swapchain and frame code instead of living in a
// package global.
type CoreContext struct {
	instance vk.Instance
	display  *CoreDisplay
	device   *CoreDevice
	pool     *CorePool
	registry *CoreRegistry
	info_log *log.Logger
}

// Optional validation layers requested with -debug. Missing layers are
// filtered out rather than failing instance creation.
var debugValidationLayers = []string{
	"VK_LAYER_KHRONOS_validation",
}

// Instance extension for routing validation output through our own
// callback. Not guaranteed to be present, so it is filtered like the
// layers are.
const debugReportExtension = "VK_EXT_debug_report"

// debugReportFunc forwards validation layer reports to the process log,
// one line per report. Always lets the triggering call proceed.
func debugReportFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, layerPrefix string,
	message string, userData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("vulkan error: [%s] code %d: %s", layerPrefix, messageCode, message)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		log.Printf("vulkan performance: [%s] code %d: %s", layerPrefix, messageCode, message)
	default:
		log.Printf("vulkan warning: [%s] code %d: %s", layerPrefix, messageCode, message)
	}
	return vk.Bool32(vk.False)
}

// NewCoreContext bootstraps the Vulkan instance, surface, physical and
// logical device, queues and command pool for a window. Everything it
// creates is tracked in its registry for reverse-order teardown.
func NewCoreContext(window *glfw.Window, app_name string, debug bool, info_log *log.Logger) (*CoreContext, error) {
	core := &CoreContext{
		display:  NewCoreDisplay(window),
		registry: NewCoreRegistry(),
		info_log: info_log,
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return nil, err
	}

	required := window.GetRequiredInstanceExtensions()
	var layers []string
	debugReports := false
	if debug {
		available, err := ValidationLayers()
		if err != nil {
			return nil, err
		}
		layers = filterSupported(debugValidationLayers, available)
		if missing := missingNames(debugValidationLayers, available); len(missing) > 0 {
			info_log.Printf("validation layers unavailable: %v", missing)
		}

		extensions, err := InstanceExtensions()
		if err != nil {
			return nil, err
		}
		if len(missingNames([]string{debugReportExtension}, extensions)) == 0 {
			required = append(required, debugReportExtension)
			debugReports = true
		} else {
			info_log.Printf("%s unavailable, validation output stays on the loader default", debugReportExtension)
		}
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(app_name),
			PEngineName:        safeString("meshvk"),
		},
		EnabledExtensionCount:   uint32(len(required)),
		PpEnabledExtensionNames: safeStrings(required),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &instance)
	if isError(ret) {
		return nil, NewError("CreateInstance", ret)
	}
	core.instance = instance
	core.registry.Track("instance", func() {
		vk.DestroyInstance(instance, nil)
	})

	if err := vk.InitInstance(instance); err != nil {
		core.registry.Release()
		return nil, err
	}

	if debugReports {
		var callback vk.DebugReportCallback
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit |
				vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: debugReportFunc,
		}, nil, &callback)
		if isError(ret) {
			core.registry.Release()
			return nil, NewError("CreateDebugReportCallback", ret)
		}
		core.registry.Track("debug report callback", func() {
			vk.DestroyDebugReportCallback(instance, callback, nil)
		})
		info_log.Print("debug report callback enabled")
	}

	if err := core.display.CreateSurface(instance); err != nil {
		core.registry.Release()
		return nil, err
	}
	surface := core.display.Surface()
	core.registry.Track("surface", func() {
		vk.DestroySurface(instance, surface, nil)
	})

	device, err := NewCoreDevice(instance, surface)
	if err != nil {
		core.registry.Release()
		return nil, err
	}
	core.device = device
	core.registry.Track("device", func() {
		device.Destroy()
	})
	info_log.Printf("selected device %q", vk.ToString(device.properties.DeviceName[:]))

	pool, err := NewCorePool(device.Handle(), device.Queues().GraphicsIndex())
	if err != nil {
		core.registry.Release()
		return nil, err
	}
	core.pool = pool
	core.registry.Track("command pool", func() {
		pool.Destroy(device.Handle())
	})

	return core, nil
}

func (core *CoreContext) Device() vk.Device { return core.device.handle }
func (core *CoreContext) Physical() vk.PhysicalDevice { return core.device.selected_device }
func (core *CoreContext) Display() *CoreDisplay { return core.display }
func (core *CoreContext) Pool() *CorePool { return core.pool }
func (core *CoreContext) GraphicsQueue() vk.Queue { return core.device.graphics_queue }
func (core *CoreContext) PresentQueue() vk.Queue { return core.device.present_queue }
func (core *CoreContext) Registry() *CoreRegistry { return core.registry }

// WaitIdle drains the whole device. Called before any teardown and
// before swapchain-scoped resources are released.
func (core *CoreContext) WaitIdle() {
	vk.DeviceWaitIdle(core.device.handle)
}

// Destroy releases everything the context tracked, in reverse creation
// order.
func (core *CoreContext) Destroy() {
	core.registry.Release()
}
