package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreDevice binds a selected physical device, its cached properties
// and the logical device created on top of it.
type CoreDevice struct {
	selected_device   vk.PhysicalDevice
	properties        vk.PhysicalDeviceProperties
	memory_properties vk.PhysicalDeviceMemoryProperties
	features          vk.PhysicalDeviceFeatures
	handle            vk.Device
	queues            *CoreQueue
	graphics_queue    vk.Queue
	present_queue     vk.Queue
}

var requiredDeviceExtensions = []string{"VK_KHR_swapchain"}

// NewCoreDevice enumerates the physical devices of an instance, scores
// them against the surface and builds the logical device with one
// graphics queue and one present queue.
func NewCoreDevice(instance vk.Instance, surface vk.Surface) (*CoreDevice, error) {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(instance, &count, nil); isError(ret) {
		return nil, NewError("EnumeratePhysicalDevices", ret)
	}
	if count == 0 {
		return nil, ErrNoSuitableDevice
	}
	gpus := make([]vk.PhysicalDevice, count)
	if ret := vk.EnumeratePhysicalDevices(instance, &count, gpus); isError(ret) {
		return nil, NewError("EnumeratePhysicalDevices", ret)
	}

	var core CoreDevice
	best := -1
	for _, gpu := range gpus {
		queues := NewCoreQueue(gpu, surface)
		score, ok := scoreDevice(gpu, surface, queues)
		if ok && score > best {
			best = score
			core.selected_device = gpu
			core.queues = queues
		}
	}
	if best < 0 {
		return nil, ErrNoSuitableDevice
	}

	vk.GetPhysicalDeviceProperties(core.selected_device, &core.properties)
	core.properties.Deref()
	core.properties.Limits.Deref()
	vk.GetPhysicalDeviceMemoryProperties(core.selected_device, &core.memory_properties)
	core.memory_properties.Deref()
	vk.GetPhysicalDeviceFeatures(core.selected_device, &core.features)
	core.features.Deref()

	features := []vk.PhysicalDeviceFeatures{{
		SamplerAnisotropy: core.features.SamplerAnisotropy,
	}}
	queue_infos := core.queues.GetCreateInfos()
	var handle vk.Device
	ret := vk.CreateDevice(core.selected_device, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queue_infos)),
		PQueueCreateInfos:       queue_infos,
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredDeviceExtensions),
		PEnabledFeatures:        features,
	}, nil, &handle)
	if isError(ret) {
		return nil, NewError("CreateDevice", ret)
	}
	core.handle = handle

	vk.GetDeviceQueue(core.handle, core.queues.GraphicsIndex(), 0, &core.graphics_queue)
	vk.GetDeviceQueue(core.handle, core.queues.PresentIndex(), 0, &core.present_queue)
	return &core, nil
}

// scoreDevice rejects devices missing the swapchain extension, a
// complete queue set or a usable surface, then prefers discrete GPUs.
func scoreDevice(gpu vk.PhysicalDevice, surface vk.Surface, queues *CoreQueue) (int, bool) {
	if !queues.Complete() {
		return 0, false
	}
	actual, err := DeviceExtensions(gpu)
	if err != nil || len(missingNames(requiredDeviceExtensions, actual)) > 0 {
		return 0, false
	}
	var formatCount, modeCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	if !adequateSurface(formatCount, modeCount) {
		return 0, false
	}
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	score := 1
	if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
		score += 1000
	}
	return score, true
}

func (core *CoreDevice) Handle() vk.Device { return core.handle }
func (core *CoreDevice) Physical() vk.PhysicalDevice { return core.selected_device }
func (core *CoreDevice) GraphicsQueue() vk.Queue { return core.graphics_queue }
func (core *CoreDevice) PresentQueue() vk.Queue { return core.present_queue }
func (core *CoreDevice) Queues() *CoreQueue { return core.queues }
func (core *CoreDevice) MaxSamplerAnisotropy() float32 { return core.properties.Limits.MaxSamplerAnisotropy }
func (core *CoreDevice) HasSamplerAnisotropy() bool { return core.features.SamplerAnisotropy == vk.True }

// Destroy tears down the logical device. The caller must have drained
// all queues first.
func (core *CoreDevice) Destroy() {
	vk.DestroyDevice(core.handle, nil)
	core.handle = nil
}
