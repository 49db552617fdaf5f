package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CorePool wraps the command pool used for both per-frame recording and
// one-shot upload work on the graphics queue family.
type CorePool struct {
	pool vk.CommandPool
}

func NewCorePool(device vk.Device, family_index uint32) (*CorePool, error) {
	var core CorePool
	var cmdPool vk.CommandPool

	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family_index,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &cmdPool)
	if isError(ret) {
		return nil, NewError("CreateCommandPool", ret)
	}
	core.pool = cmdPool
	return &core, nil
}

// Allocate returns count primary command buffers from the pool.
func (c *CorePool) Allocate(device vk.Device, count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}, buffers)
	if isError(ret) {
		return nil, NewError("AllocateCommandBuffers", ret)
	}
	return buffers, nil
}

// BeginOneShot allocates a single command buffer and opens it for a
// one-time submission. Used on the upload and transition paths during
// startup and resize, never inside the frame loop.
func (c *CorePool) BeginOneShot(device vk.Device) (vk.CommandBuffer, error) {
	buffers, err := c.Allocate(device, 1)
	if err != nil {
		return nil, err
	}
	cmd := buffers[0]
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		vk.FreeCommandBuffers(device, c.pool, 1, buffers)
		return nil, NewError("BeginCommandBuffer", ret)
	}
	return cmd, nil
}

// EndOneShot closes the buffer, submits it on queue, drains the queue
// and frees the buffer.
func (c *CorePool) EndOneShot(device vk.Device, queue vk.Queue, cmd vk.CommandBuffer) error {
	defer vk.FreeCommandBuffers(device, c.pool, 1, []vk.CommandBuffer{cmd})

	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return NewError("EndCommandBuffer", ret)
	}
	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}}
	if ret := vk.QueueSubmit(queue, 1, submit, vk.NullFence); isError(ret) {
		return NewError("QueueSubmit", ret)
	}
	if ret := vk.QueueWaitIdle(queue); isError(ret) {
		return NewError("QueueWaitIdle", ret)
	}
	return nil
}

func (c *CorePool) Free(device vk.Device, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, c.pool, uint32(len(buffers)), buffers)
}

func (c *CorePool) Destroy(device vk.Device) {
	vk.DestroyCommandPool(device, c.pool, nil)
}
