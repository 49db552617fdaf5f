package meshvk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CoreDescriptors owns the set layout, the pool and the per-frame sets
// binding each slot's uniform buffer plus the shared texture sampler.
type CoreDescriptors struct {
	layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
}

func (core *CoreDescriptors) Layout() vk.DescriptorSetLayout { return core.layout }

// NewCoreDescriptors creates the layout and pool for the two-binding
// set: binding 0 uniform buffer in the vertex stage, binding 1 combined
// image sampler in the fragment stage.
func NewCoreDescriptors(ctx *CoreContext) (*CoreDescriptors, error) {
	device := ctx.Device()
	core := &CoreDescriptors{}

	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	ret := vk.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &core.layout)
	if isError(ret) {
		return nil, NewError("CreateDescriptorSetLayout", ret)
	}

	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: MaxFramesInFlight},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: MaxFramesInFlight},
	}
	ret = vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       MaxFramesInFlight,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &core.pool)
	if isError(ret) {
		vk.DestroyDescriptorSetLayout(device, core.layout, nil)
		return nil, NewError("CreateDescriptorPool", ret)
	}

	layout, pool := core.layout, core.pool
	ctx.Registry().Track("descriptors", func() {
		vk.DestroyDescriptorPool(device, pool, nil)
		vk.DestroyDescriptorSetLayout(device, layout, nil)
	})
	return core, nil
}

// AllocateSets writes one descriptor set per frame slot. Sets are
// written once; the uniform buffers are persistently mapped so their
// contents change without rebinding.
func (core *CoreDescriptors) AllocateSets(ctx *CoreContext, frames *CoreFrames, texture *CoreTexture) error {
	device := ctx.Device()
	layouts := make([]vk.DescriptorSetLayout, MaxFramesInFlight)
	for i := range layouts {
		layouts[i] = core.layout
	}
	sets := make([]vk.DescriptorSet, MaxFramesInFlight)
	ret := vk.AllocateDescriptorSets(device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     core.pool,
		DescriptorSetCount: MaxFramesInFlight,
		PSetLayouts:        layouts,
	}, &sets[0])
	if isError(ret) {
		return NewError("AllocateDescriptorSets", ret)
	}

	for i := 0; i < MaxFramesInFlight; i++ {
		slot := &frames.slots[i]
		slot.descriptorSet = sets[i]

		bufferInfo := []vk.DescriptorBufferInfo{{
			Buffer: slot.uniformBuffer,
			Offset: 0,
			Range:  vk.DeviceSize(unsafe.Sizeof(UniformMatrices{})),
		}}
		imageInfo := []vk.DescriptorImageInfo{{
			Sampler:     texture.Sampler(),
			ImageView:   texture.View(),
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}}
		writes := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          sets[i],
				DstBinding:      0,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				PBufferInfo:     bufferInfo,
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          sets[i],
				DstBinding:      1,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				PImageInfo:      imageInfo,
			},
		}
		vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	}
	return nil
}
