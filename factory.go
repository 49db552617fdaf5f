package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreFactory creates buffers and images and backs them with device
// memory in one step: create, query requirements, pick a memory type,
// allocate, bind.
type CoreFactory struct {
	ctx *CoreContext
}

func NewCoreFactory(ctx *CoreContext) *CoreFactory {
	return &CoreFactory{ctx: ctx}
}

// findMemoryType returns the first memory type index allowed by the
// requirement mask whose property flags contain all requested flags.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits 0x%x flags 0x%x", typeBits, required)
}

// CreateBuffer creates an exclusive-mode buffer and binds fresh device
// memory with the requested property flags.
func (f *CoreFactory) CreateBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (vk.Buffer, vk.DeviceMemory, error) {
	device := f.ctx.Device()

	var buffer vk.Buffer
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if isError(ret) {
		return vk.NullBuffer, vk.NullDeviceMemory, NewError("CreateBuffer", ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &memReqs)
	memReqs.Deref()

	memType, err := findMemoryType(f.ctx.device.memory_properties, memReqs.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyBuffer(device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, NewError("AllocateMemory", ret)
	}

	vk.BindBufferMemory(device, buffer, memory, 0)
	return buffer, memory, nil
}

// CreateImage creates a 2D optimal-or-linear tiled image with the given
// mip chain length and sample count and binds fresh device memory.
func (f *CoreFactory) CreateImage(width, height, mipLevels uint32, samples vk.SampleCountFlagBits,
	format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (vk.Image, vk.DeviceMemory, error) {

	device := f.ctx.Device()

	var image vk.Image
	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Samples:       samples,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if isError(ret) {
		return vk.NullImage, vk.NullDeviceMemory, NewError("CreateImage", ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &memReqs)
	memReqs.Deref()

	memType, err := findMemoryType(f.ctx.device.memory_properties, memReqs.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, err
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		vk.DestroyImage(device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, NewError("AllocateMemory", ret)
	}

	vk.BindImageMemory(device, image, memory, 0)
	return image, memory, nil
}

// CreateImageView builds a 2D color or depth view over the first
// mipLevels levels of image.
func (f *CoreFactory) CreateImageView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(f.ctx.Device(), &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: mipLevels,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, NewError("CreateImageView", ret)
	}
	return view, nil
}
