package meshvk

import (
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// CoreLoop owns one full frame iteration and the window loop around it.
// Stale and suboptimal swapchain signals are handled in place; every
// other failure is fatal and propagates to the caller.
type CoreLoop struct {
	ctx        *CoreContext
	swapchain  *CoreSwapchain
	frames     *CoreFrames
	recorder   *CoreRecorder
	renderPass vk.RenderPass
	start      time.Time
	info_log   *log.Logger
}

func NewCoreLoop(ctx *CoreContext, swapchain *CoreSwapchain, frames *CoreFrames,
	recorder *CoreRecorder, renderPass vk.RenderPass, info_log *log.Logger) *CoreLoop {
	return &CoreLoop{
		ctx:        ctx,
		swapchain:  swapchain,
		frames:     frames,
		recorder:   recorder,
		renderPass: renderPass,
		start:      time.Now(),
		info_log:   info_log,
	}
}

// DrawFrame runs one iteration: wait on the slot fence, acquire,
// record, submit, present. The frame index advances on every return
// path, including the stale-acquire bailout.
func (loop *CoreLoop) DrawFrame() error {
	defer loop.frames.Advance()

	if err := loop.frames.WaitSlot(); err != nil {
		return err
	}
	slot := loop.frames.Slot()

	var imageIndex uint32
	ret := vk.AcquireNextImage(loop.ctx.Device(), loop.swapchain.Handle(), vk.MaxUint64,
		slot.imageAcquired, vk.NullFence, &imageIndex)
	status, err := frameResult("AcquireNextImage", ret)
	if err != nil {
		return err
	}
	if status == FrameStale {
		// The acquire semaphore was not consumed; recreate and let the
		// next iteration retry with a fresh image.
		loop.info_log.Print("swapchain stale at acquire, recreating")
		return loop.swapchain.Recreate(loop.ctx, loop.renderPass)
	}
	suboptimal := status == FrameSuboptimal

	extent := loop.swapchain.Extent()
	elapsed := float32(time.Since(loop.start).Seconds())
	writeUniform(slot.uniformMapped, uniformAt(elapsed, extent.Width, extent.Height))

	// The fence is only re-armed once this iteration is committed to
	// submitting, otherwise the next wait on this slot would hang.
	if err := loop.frames.ResetSlot(); err != nil {
		return err
	}
	if ret := vk.ResetCommandBuffer(slot.command, 0); isError(ret) {
		return NewError("ResetCommandBuffer", ret)
	}
	if err := loop.recorder.Record(slot.command, imageIndex, slot.descriptorSet, loop.renderPass); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{slot.imageAcquired},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.command},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.renderFinished},
	}}
	if ret := vk.QueueSubmit(loop.ctx.GraphicsQueue(), 1, submit, slot.inFlight); isError(ret) {
		return NewError("QueueSubmit", ret)
	}

	ret = vk.QueuePresent(loop.ctx.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{loop.swapchain.Handle()},
		PImageIndices:      []uint32{imageIndex},
	})
	status, err = frameResult("QueuePresent", ret)
	if err != nil {
		return err
	}

	// The resize flag is consumed before the decision so a stale or
	// suboptimal present does not leave it set and trigger a second
	// rebuild of the already-fresh swapchain next frame.
	resized := loop.ctx.Display().ConsumeResized()
	if needRecreate(status, suboptimal, resized) {
		loop.info_log.Print("swapchain out of date after present, recreating")
		return loop.swapchain.Recreate(loop.ctx, loop.renderPass)
	}
	return nil
}

// needRecreate decides whether the swapchain must be rebuilt after
// present.
func needRecreate(status FrameStatus, acquiredSuboptimal, resized bool) bool {
	return status == FrameStale || status == FrameSuboptimal || acquiredSuboptimal || resized
}

// Run drives frames until the window closes, then drains the device so
// teardown can proceed.
func (loop *CoreLoop) Run() error {
	for !loop.ctx.Display().ShouldClose() {
		glfw.PollEvents()
		if err := loop.DrawFrame(); err != nil {
			return err
		}
	}
	loop.ctx.WaitIdle()
	return nil
}
