package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// Image creation carries the full set of creation knobs, sample count
// included, so attachment images are not locked to single sampling.
var _ func(width, height, mipLevels uint32, samples vk.SampleCountFlagBits,
	format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags,
	props vk.MemoryPropertyFlags) (vk.Image, vk.DeviceMemory, error) = (&CoreFactory{}).CreateImage
