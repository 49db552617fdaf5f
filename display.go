package meshvk

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// FramebufferSizer reports the current framebuffer extent and blocks
// for window events. Satisfied by CoreDisplay; swapchain recreation
// takes the interface so the zero-extent wait can be exercised without
// a window.
type FramebufferSizer interface {
	FramebufferSize() (int, int)
	WaitEvents()
}

// CoreDisplay owns the GLFW window and the surface created from it.
type CoreDisplay struct {
	window  *glfw.Window
	surface vk.Surface
	resized bool
}

func NewCoreDisplay(window *glfw.Window) *CoreDisplay {
	core := &CoreDisplay{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		core.resized = true
	})
	return core
}

// CreateSurface builds the window surface once the instance exists.
func (core *CoreDisplay) CreateSurface(instance vk.Instance) error {
	surfPtr, err := core.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return err
	}
	core.surface = vk.SurfaceFromPointer(surfPtr)
	return nil
}

func (core *CoreDisplay) Surface() vk.Surface {
	return core.surface
}

func (core *CoreDisplay) FramebufferSize() (int, int) {
	return core.window.GetFramebufferSize()
}

func (core *CoreDisplay) WaitEvents() {
	glfw.WaitEvents()
}

func (core *CoreDisplay) ShouldClose() bool {
	return core.window.ShouldClose()
}

// ConsumeResized reports whether a resize callback fired since the last
// call and clears the flag.
func (core *CoreDisplay) ConsumeResized() bool {
	r := core.resized
	core.resized = false
	return r
}
