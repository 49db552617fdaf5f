package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// transitionMasks holds the access and stage masks resolved for a
// supported layout transition.
type transitionMasks struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

// resolveTransition maps a layout pair to its barrier masks. Only the
// two transitions the upload path needs are supported; any other pair
// is a programming error and fails hard.
func resolveTransition(oldLayout, newLayout vk.ImageLayout) (transitionMasks, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return transitionMasks{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return transitionMasks{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	}
	return transitionMasks{}, errors.Wrapf(ErrUnsupportedTransition, "%d to %d", oldLayout, newLayout)
}

// MipLevels returns the full mip chain length for a base extent,
// floor(log2(max(w,h))) + 1.
func MipLevels(width, height uint32) uint32 {
	side := maxUint32(width, height)
	levels := uint32(1)
	for side > 1 {
		side >>= 1
		levels++
	}
	return levels
}

// mipExtent halves an extent with a floor of one texel.
func mipExtent(v int32) int32 {
	if v > 1 {
		return v / 2
	}
	return 1
}

// MipChain lists the per-level extents of the full chain, level 0 first.
func MipChain(width, height uint32) [][2]int32 {
	levels := MipLevels(width, height)
	chain := make([][2]int32, levels)
	w, h := int32(width), int32(height)
	for i := uint32(0); i < levels; i++ {
		chain[i] = [2]int32{w, h}
		w, h = mipExtent(w), mipExtent(h)
	}
	return chain
}

// CoreTransition is the engine that moves images between layouts and
// fills mip chains, always through one-shot command buffers on the
// graphics queue.
type CoreTransition struct {
	ctx *CoreContext
}

func NewCoreTransition(ctx *CoreContext) *CoreTransition {
	return &CoreTransition{ctx: ctx}
}

// TransitionImageLayout records and submits a pipeline barrier covering
// every level of the image.
func (t *CoreTransition) TransitionImageLayout(image vk.Image, oldLayout, newLayout vk.ImageLayout, mipLevels uint32) error {
	masks, err := resolveTransition(oldLayout, newLayout)
	if err != nil {
		return err
	}

	cmd, err := t.ctx.Pool().BeginOneShot(t.ctx.Device())
	if err != nil {
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       masks.srcAccess,
		DstAccessMask:       masks.dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:   vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel: 0,
			LevelCount:   mipLevels,
			LayerCount:   1,
		},
	}
	vk.CmdPipelineBarrier(cmd, masks.srcStage, masks.dstStage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

	return t.ctx.Pool().EndOneShot(t.ctx.Device(), t.ctx.GraphicsQueue(), cmd)
}

// supportsLinearBlit checks the optimal tiling features of format for
// linear sampled-image filtering, which the blit loop depends on.
func supportsLinearBlit(gpu vk.PhysicalDevice, format vk.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(gpu, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) != 0
}

// GenerateMipmaps fills levels 1..N-1 of an image whose level 0 holds
// the base texels in transferDst layout. Each level is blitted from the
// one above it at half resolution, and every level ends in
// shaderReadOnly layout.
func (t *CoreTransition) GenerateMipmaps(image vk.Image, format vk.Format, width, height, mipLevels uint32) error {
	if !supportsLinearBlit(t.ctx.Physical(), format) {
		return errors.Wrapf(ErrNoLinearBlit, "format %d", format)
	}

	cmd, err := t.ctx.Pool().BeginOneShot(t.ctx.Device())
	if err != nil {
		return err
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	transferStage := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	fragmentStage := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

	mipWidth, mipHeight := int32(width), int32(height)
	for i := uint32(1); i < mipLevels; i++ {
		// Source level becomes readable before the blit.
		barrier.SubresourceRange.BaseMipLevel = i - 1
		barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
		barrier.NewLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		vk.CmdPipelineBarrier(cmd, transferStage, transferStage, 0,
			0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:   i - 1,
				LayerCount: 1,
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:   i,
				LayerCount: 1,
			},
		}
		blit.SrcOffsets[1] = vk.Offset3D{X: mipWidth, Y: mipHeight, Z: 1}
		blit.DstOffsets[1] = vk.Offset3D{X: mipExtent(mipWidth), Y: mipExtent(mipHeight), Z: 1}
		vk.CmdBlitImage(cmd,
			image, vk.ImageLayoutTransferSrcOptimal,
			image, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		// Source level is final, hand it to the fragment shader.
		barrier.OldLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		vk.CmdPipelineBarrier(cmd, transferStage, fragmentStage, 0,
			0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

		mipWidth, mipHeight = mipExtent(mipWidth), mipExtent(mipHeight)
	}

	// Last level was only ever a blit destination.
	barrier.SubresourceRange.BaseMipLevel = mipLevels - 1
	barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
	barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
	barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
	vk.CmdPipelineBarrier(cmd, transferStage, fragmentStage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

	return t.ctx.Pool().EndOneShot(t.ctx.Device(), t.ctx.GraphicsQueue(), cmd)
}
