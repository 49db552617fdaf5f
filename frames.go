package meshvk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// MaxFramesInFlight fixes the CPU/GPU overlap depth. Two slots keep the
// CPU one frame ahead without letting it run away from the GPU.
const MaxFramesInFlight = 2

// nextFrame advances the frame slot ring.
func nextFrame(current int) int {
	return (current + 1) % MaxFramesInFlight
}

// frameSlot is the per-frame arena: sync objects, the command buffer
// rewritten every use, and the persistently mapped uniform buffer. A
// slot is only reused after its fence signals.
type frameSlot struct {
	imageAcquired  vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
	command        vk.CommandBuffer
	uniformBuffer  vk.Buffer
	uniformMemory  vk.DeviceMemory
	uniformMapped  unsafe.Pointer
	descriptorSet  vk.DescriptorSet
}

// CoreFrames owns the frame slot ring.
type CoreFrames struct {
	slots   [MaxFramesInFlight]frameSlot
	current int
	device  vk.Device
}

// NewCoreFrames builds the sync objects, command buffers and uniform
// ring. Fences start signaled so the first wait on each slot passes.
func NewCoreFrames(ctx *CoreContext, factory *CoreFactory) (*CoreFrames, error) {
	core := &CoreFrames{device: ctx.Device()}

	commands, err := ctx.Pool().Allocate(core.device, MaxFramesInFlight)
	if err != nil {
		return nil, err
	}

	uniformSize := vk.DeviceSize(unsafe.Sizeof(UniformMatrices{}))
	for i := 0; i < MaxFramesInFlight; i++ {
		slot := &core.slots[i]
		slot.command = commands[i]

		semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
		if ret := vk.CreateSemaphore(core.device, &semInfo, nil, &slot.imageAcquired); isError(ret) {
			return nil, NewError("CreateSemaphore", ret)
		}
		if ret := vk.CreateSemaphore(core.device, &semInfo, nil, &slot.renderFinished); isError(ret) {
			return nil, NewError("CreateSemaphore", ret)
		}
		ret := vk.CreateFence(core.device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &slot.inFlight)
		if isError(ret) {
			return nil, NewError("CreateFence", ret)
		}

		buffer, memory, err := factory.CreateBuffer(uniformSize,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return nil, err
		}
		slot.uniformBuffer = buffer
		slot.uniformMemory = memory
		if ret := vk.MapMemory(core.device, memory, 0, uniformSize, 0, &slot.uniformMapped); isError(ret) {
			return nil, NewError("MapMemory", ret)
		}
	}

	ctx.Registry().Track("frame slots", func() {
		core.destroy()
	})
	return core, nil
}

func (core *CoreFrames) Current() int { return core.current }

func (core *CoreFrames) Slot() *frameSlot {
	return &core.slots[core.current]
}

// Advance moves to the next slot in the ring. Called once per loop
// iteration, including iterations that bailed out at acquire.
func (core *CoreFrames) Advance() {
	core.current = nextFrame(core.current)
}

// WaitSlot blocks until the current slot's previous submission retired.
func (core *CoreFrames) WaitSlot() error {
	slot := core.Slot()
	ret := vk.WaitForFences(core.device, 1, []vk.Fence{slot.inFlight}, vk.True, vk.MaxUint64)
	return NewError("WaitForFences", ret)
}

// ResetSlot re-arms the fence. Only done once this iteration is sure to
// submit, otherwise a bailed-out frame would deadlock its next wait.
func (core *CoreFrames) ResetSlot() error {
	slot := core.Slot()
	ret := vk.ResetFences(core.device, 1, []vk.Fence{slot.inFlight})
	return NewError("ResetFences", ret)
}

func (core *CoreFrames) destroy() {
	for i := range core.slots {
		slot := &core.slots[i]
		vk.DestroySemaphore(core.device, slot.imageAcquired, nil)
		vk.DestroySemaphore(core.device, slot.renderFinished, nil)
		vk.DestroyFence(core.device, slot.inFlight, nil)
		vk.UnmapMemory(core.device, slot.uniformMemory)
		vk.DestroyBuffer(core.device, slot.uniformBuffer, nil)
		vk.FreeMemory(core.device, slot.uniformMemory, nil)
	}
}
