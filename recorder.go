package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreRecorder turns a frame slot's blank command buffer into the full
// draw sequence for one swapchain image.
type CoreRecorder struct {
	swapchain *CoreSwapchain
	pipeline  *CorePipeline
	vertices  *CoreBuffer
	indices   *CoreBuffer
}

func NewCoreRecorder(swapchain *CoreSwapchain, pipeline *CorePipeline, vertices, indices *CoreBuffer) *CoreRecorder {
	return &CoreRecorder{
		swapchain: swapchain,
		pipeline:  pipeline,
		vertices:  vertices,
		indices:   indices,
	}
}

// Record writes the draw into cmd targeting the framebuffer for
// imageIndex. Viewport and scissor come from the current extent since
// both are dynamic pipeline state.
func (rec *CoreRecorder) Record(cmd vk.CommandBuffer, imageIndex uint32, descriptorSet vk.DescriptorSet, renderPass vk.RenderPass) error {
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if isError(ret) {
		return NewError("BeginCommandBuffer", ret)
	}

	extent := rec.swapchain.Extent()
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{0, 0, 0, 1})
	clearValues[1].SetDepthStencil(1, 0)

	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: rec.swapchain.Framebuffer(imageIndex),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, rec.pipeline.Handle())

	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{},
		Extent: extent,
	}})

	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{rec.vertices.Handle()}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cmd, rec.indices.Handle(), 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, rec.pipeline.Layout(),
		0, 1, []vk.DescriptorSet{descriptorSet}, 0, nil)

	vk.CmdDrawIndexed(cmd, rec.indices.Count(), 1, 0, 0, 0)

	vk.CmdEndRenderPass(cmd)
	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return NewError("EndCommandBuffer", ret)
	}
	return nil
}
