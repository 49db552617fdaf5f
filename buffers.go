package meshvk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CoreBuffer is a device-local buffer filled once through a transient
// staging buffer.
type CoreBuffer struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	count  uint32
}

func (core *CoreBuffer) Handle() vk.Buffer { return core.buffer }
func (core *CoreBuffer) Count() uint32 { return core.count }

// uploadDeviceLocal stages data into a fresh device-local buffer with
// the given usage. The staging buffer lives only for the copy.
func uploadDeviceLocal(ctx *CoreContext, factory *CoreFactory, data []byte, usage vk.BufferUsageFlags) (vk.Buffer, vk.DeviceMemory, error) {
	device := ctx.Device()
	size := vk.DeviceSize(len(data))

	staging, stagingMem, err := factory.CreateBuffer(size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	defer func() {
		vk.DestroyBuffer(device, staging, nil)
		vk.FreeMemory(device, stagingMem, nil)
	}()

	var mapped unsafe.Pointer
	if ret := vk.MapMemory(device, stagingMem, 0, size, 0, &mapped); isError(ret) {
		return vk.NullBuffer, vk.NullDeviceMemory, NewError("MapMemory", ret)
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(device, stagingMem)

	buffer, memory, err := factory.CreateBuffer(size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}

	cmd, err := ctx.Pool().BeginOneShot(device)
	if err != nil {
		vk.DestroyBuffer(device, buffer, nil)
		vk.FreeMemory(device, memory, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	vk.CmdCopyBuffer(cmd, staging, buffer, 1, []vk.BufferCopy{{Size: size}})
	if err := ctx.Pool().EndOneShot(device, ctx.GraphicsQueue(), cmd); err != nil {
		vk.DestroyBuffer(device, buffer, nil)
		vk.FreeMemory(device, memory, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	return buffer, memory, nil
}

// NewVertexBuffer uploads the mesh vertices to a device-local buffer.
func NewVertexBuffer(ctx *CoreContext, factory *CoreFactory, mesh *Mesh) (*CoreBuffer, error) {
	buffer, memory, err := uploadDeviceLocal(ctx, factory, mesh.vertexBytes(),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}
	core := &CoreBuffer{buffer: buffer, memory: memory, count: uint32(len(mesh.Vertices))}
	core.track(ctx, "vertex buffer")
	return core, nil
}

// NewIndexBuffer uploads the mesh indices to a device-local buffer.
func NewIndexBuffer(ctx *CoreContext, factory *CoreFactory, mesh *Mesh) (*CoreBuffer, error) {
	buffer, memory, err := uploadDeviceLocal(ctx, factory, mesh.indexBytes(),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		return nil, err
	}
	core := &CoreBuffer{buffer: buffer, memory: memory, count: uint32(len(mesh.Indices))}
	core.track(ctx, "index buffer")
	return core, nil
}

func (core *CoreBuffer) track(ctx *CoreContext, name string) {
	device := ctx.Device()
	buffer, memory := core.buffer, core.memory
	ctx.Registry().Track(name, func() {
		vk.DestroyBuffer(device, buffer, nil)
		vk.FreeMemory(device, memory, nil)
	})
}
