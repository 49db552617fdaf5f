package meshvk

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	stbi "neilpa.me/go-stbi"
)

const textureFormat = vk.FormatR8g8b8a8Srgb

// LoadPixels decodes an image file into tightly packed RGBA8 texels.
func LoadPixels(path string) ([]byte, uint32, uint32, error) {
	img, err := stbi.Load(path)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, path)
	}
	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())
	if width == 0 || height == 0 {
		return nil, 0, 0, errors.Errorf("%s: empty image", path)
	}
	return img.Pix, width, height, nil
}

// CoreTexture is the sampled mesh texture with its full mip chain,
// view and sampler.
type CoreTexture struct {
	image     vk.Image
	memory    vk.DeviceMemory
	view      vk.ImageView
	sampler   vk.Sampler
	mipLevels uint32
}

func (core *CoreTexture) View() vk.ImageView { return core.view }
func (core *CoreTexture) Sampler() vk.Sampler { return core.sampler }
func (core *CoreTexture) MipLevels() uint32 { return core.mipLevels }

// NewCoreTexture uploads pixels through a staging buffer, generates the
// mip chain on the GPU and builds the view and sampler. The staging
// buffer holds exactly width*height*4 bytes, the true RGBA8 footprint.
func NewCoreTexture(ctx *CoreContext, factory *CoreFactory, engine *CoreTransition,
	pixels []byte, width, height uint32) (*CoreTexture, error) {

	device := ctx.Device()
	size := vk.DeviceSize(width * height * 4)
	if vk.DeviceSize(len(pixels)) < size {
		return nil, errors.Errorf("texture: %d pixel bytes for %dx%d", len(pixels), width, height)
	}
	core := &CoreTexture{mipLevels: MipLevels(width, height)}

	staging, stagingMem, err := factory.CreateBuffer(size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer func() {
		vk.DestroyBuffer(device, staging, nil)
		vk.FreeMemory(device, stagingMem, nil)
	}()

	var mapped unsafe.Pointer
	if ret := vk.MapMemory(device, stagingMem, 0, size, 0, &mapped); isError(ret) {
		return nil, NewError("MapMemory", ret)
	}
	vk.Memcopy(mapped, pixels[:size])
	vk.UnmapMemory(device, stagingMem)

	// Level 0 is the copy destination, every level is a blit source or
	// destination during mip generation, and the whole chain is sampled.
	core.image, core.memory, err = factory.CreateImage(width, height, core.mipLevels,
		vk.SampleCount1Bit, textureFormat, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit|vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	if err := engine.TransitionImageLayout(core.image,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal, core.mipLevels); err != nil {
		return nil, err
	}
	if err := copyBufferToImage(ctx, staging, core.image, width, height); err != nil {
		return nil, err
	}
	// Leaves every level in shaderReadOnly, no trailing transition.
	if err := engine.GenerateMipmaps(core.image, textureFormat, width, height, core.mipLevels); err != nil {
		return nil, err
	}

	core.view, err = factory.CreateImageView(core.image, textureFormat,
		vk.ImageAspectFlags(vk.ImageAspectColorBit), core.mipLevels)
	if err != nil {
		return nil, err
	}

	anisotropy := vk.Bool32(vk.False)
	maxAnisotropy := float32(1)
	if ctx.device.HasSamplerAnisotropy() {
		anisotropy = vk.True
		maxAnisotropy = ctx.device.MaxSamplerAnisotropy()
	}
	ret := vk.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        anisotropy,
		MaxAnisotropy:           maxAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  float32(core.mipLevels),
	}, nil, &core.sampler)
	if isError(ret) {
		return nil, NewError("CreateSampler", ret)
	}

	image, memory, view, sampler := core.image, core.memory, core.view, core.sampler
	ctx.Registry().Track("texture", func() {
		vk.DestroySampler(device, sampler, nil)
		vk.DestroyImageView(device, view, nil)
		vk.DestroyImage(device, image, nil)
		vk.FreeMemory(device, memory, nil)
	})
	return core, nil
}

// copyBufferToImage copies the staged texels into mip level 0.
func copyBufferToImage(ctx *CoreContext, buffer vk.Buffer, image vk.Image, width, height uint32) error {
	cmd, err := ctx.Pool().BeginOneShot(ctx.Device())
	if err != nil {
		return err
	}
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:   0,
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cmd, buffer, image, vk.ImageLayoutTransferDstOptimal,
		1, []vk.BufferImageCopy{region})
	return ctx.Pool().EndOneShot(ctx.Device(), ctx.GraphicsQueue(), cmd)
}
