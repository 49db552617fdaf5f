package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CorePipeline holds the graphics pipeline and its layout for the
// single textured mesh pass.
type CorePipeline struct {
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

func (core *CorePipeline) Layout() vk.PipelineLayout { return core.layout }
func (core *CorePipeline) Handle() vk.Pipeline { return core.pipeline }

// NewCorePipeline builds the mesh pipeline: interleaved vertex input,
// back-face culling with counter-clockwise winding, less-than depth
// test, no blending. Viewport and scissor are dynamic so the pipeline
// survives swapchain recreation.
func NewCorePipeline(ctx *CoreContext, shaders *CoreShader, descriptorLayout vk.DescriptorSetLayout, renderPass vk.RenderPass) (*CorePipeline, error) {
	device := ctx.Device()
	core := &CorePipeline{}

	vertModule, err := shaders.Module("shader.vert")
	if err != nil {
		return nil, err
	}
	fragModule, err := shaders.Module("shader.frag")
	if err != nil {
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  safeString("main"),
		},
	}

	bindings := []vk.VertexInputBindingDescription{VertexBindingDescription()}
	attributes := VertexAttributeDescriptions()
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	assembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1.0,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLess,
	}

	blendAttachment := []vk.PipelineColorBlendAttachmentState{{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
			vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    blendAttachment,
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	layouts := []vk.DescriptorSetLayout{descriptorLayout}
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    layouts,
	}, nil, &core.layout)
	if isError(ret) {
		return nil, NewError("CreatePipelineLayout", ret)
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &assembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &blendState,
		PDynamicState:       &dynamicState,
		Layout:              core.layout,
		RenderPass:          renderPass,
		Subpass:             0,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, nil, 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)
	if isError(ret) {
		vk.DestroyPipelineLayout(device, core.layout, nil)
		return nil, NewError("CreateGraphicsPipelines", ret)
	}
	core.pipeline = pipelines[0]

	layout, pipeline := core.layout, core.pipeline
	ctx.Registry().Track("pipeline", func() {
		vk.DestroyPipeline(device, pipeline, nil)
		vk.DestroyPipelineLayout(device, layout, nil)
	})
	return core, nil
}
