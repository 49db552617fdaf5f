package meshvk

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// UniformMatrices is the per-frame shader payload, three column-major
// mat4s laid out back to back exactly as the vertex shader declares
// them.
type UniformMatrices struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// uniformAt computes the payload for a point in time and an extent: a
// quarter-turn-per-second spin around Z, a fixed diagonal eye, and a
// perspective projection flipped for Vulkan's inverted clip-space Y.
func uniformAt(elapsed float32, width, height uint32) UniformMatrices {
	aspect := float32(width) / float32(height)
	u := UniformMatrices{
		Model: mgl32.HomogRotate3D(elapsed*mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1}),
		Proj: mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10),
	}
	u.Proj[5] *= -1
	return u
}

// writeUniform copies the payload into a slot's persistently mapped
// uniform memory. The slot fence guarantees the GPU finished reading
// the previous contents.
func writeUniform(dst unsafe.Pointer, u UniformMatrices) {
	size := int(unsafe.Sizeof(u))
	src := unsafe.Slice((*byte)(unsafe.Pointer(&u)), size)
	vk.Memcopy(dst, src)
}
