package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreQueue holds the queue family selection for a physical device.
// The renderer needs exactly one graphics-capable family and one family
// that can present to the surface; on most hardware both resolve to the
// same index.
type CoreQueue struct {
	properties     []vk.QueueFamilyProperties
	graphics_index uint32
	present_index  uint32
	has_graphics   bool
	has_present    bool
}

// NewCoreQueue lists the queue families of gpu and picks the graphics
// and present family indices against the surface.
func NewCoreQueue(gpu vk.PhysicalDevice, surface vk.Surface) *CoreQueue {
	var q CoreQueue
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return &q
	}
	q.properties = make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, q.properties)

	for index := uint32(0); index < count; index++ {
		prop := q.properties[index]
		prop.Deref()
		if !q.has_graphics && prop.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			q.graphics_index = index
			q.has_graphics = true
		}
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, index, surface, &supported)
		if !q.has_present && supported == vk.True {
			q.present_index = index
			q.has_present = true
		}
		if q.has_graphics && q.has_present {
			break
		}
	}
	return &q
}

// Complete reports whether both required families were found.
func (q *CoreQueue) Complete() bool {
	return q.has_graphics && q.has_present
}

func (q *CoreQueue) GraphicsIndex() uint32 { return q.graphics_index }
func (q *CoreQueue) PresentIndex() uint32 { return q.present_index }

// Unified reports whether graphics and present share one family, which
// selects exclusive sharing for swapchain images.
func (q *CoreQueue) Unified() bool {
	return q.graphics_index == q.present_index
}

// GetCreateInfos builds one DeviceQueueCreateInfo per distinct family.
func (q *CoreQueue) GetCreateInfos() []vk.DeviceQueueCreateInfo {
	priority := []float32{1.0}
	families := []uint32{q.graphics_index}
	if !q.Unified() {
		families = append(families, q.present_index)
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: priority,
		}
	}
	return infos
}
