package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreSwapchain owns the swapchain, its image views, the depth buffer
// and the framebuffers. Everything scoped to the current extent is
// tracked in its own registry so recreation can drain it wholesale.
type CoreSwapchain struct {
	swapchain   vk.Swapchain
	format      vk.SurfaceFormat
	depthFormat vk.Format
	extent      vk.Extent2D
	images      []vk.Image
	imageViews  []vk.ImageView
	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView
	frameBuffs  []vk.Framebuffer
	registry    *CoreRegistry
	factory     *CoreFactory
}

// adequateSurface reports whether a surface exposes at least one format
// and one present mode, the minimum the choosers below rely on.
func adequateSurface(formatCount, modeCount uint32) bool {
	return formatCount > 0 && modeCount > 0
}

// chooseSurfaceFormat prefers 8-bit BGRA sRGB with an sRGB colorspace
// and falls back to the first reported format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox and falls back to FIFO, the only
// mode every implementation carries.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent resolves the swapchain extent. A fixed current extent
// wins outright; otherwise the framebuffer size is clamped into the
// surface bounds.
func chooseExtent(current vk.Extent2D, min, max vk.Extent2D, fbWidth, fbHeight uint32) vk.Extent2D {
	if current.Width != vk.MaxUint32 {
		return current
	}
	return vk.Extent2D{
		Width:  clampUint32(fbWidth, min.Width, max.Width),
		Height: clampUint32(fbHeight, min.Height, max.Height),
	}
}

// swapImageCount asks for one image above the minimum so acquire never
// stalls on the driver, capped by the maximum when one is reported.
func swapImageCount(min, max uint32) uint32 {
	count := min + 1
	if max > 0 && count > max {
		count = max
	}
	return count
}

// findDepthFormat scans the usual depth formats for one with optimal
// tiling depth attachment support.
func findDepthFormat(gpu vk.PhysicalDevice) (vk.Format, error) {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(gpu, format, &props)
		props.Deref()
		if props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			return format, nil
		}
	}
	return vk.FormatUndefined, ErrNoSuitableDevice
}

func NewCoreSwapchain(factory *CoreFactory) *CoreSwapchain {
	return &CoreSwapchain{
		registry: NewCoreRegistry(),
		factory:  factory,
	}
}

func (core *CoreSwapchain) Extent() vk.Extent2D { return core.extent }
func (core *CoreSwapchain) Format() vk.Format { return core.format.Format }
func (core *CoreSwapchain) DepthFormat() vk.Format { return core.depthFormat }
func (core *CoreSwapchain) Handle() vk.Swapchain { return core.swapchain }
func (core *CoreSwapchain) ImageCount() int { return len(core.images) }
func (core *CoreSwapchain) Framebuffer(i uint32) vk.Framebuffer {
	return core.frameBuffs[i]
}

// Create builds the swapchain and its image views against the current
// surface capabilities.
func (core *CoreSwapchain) Create(ctx *CoreContext) error {
	gpu := ctx.Physical()
	surface := ctx.Display().Surface()
	device := ctx.Device()

	var caps vk.SurfaceCapabilities
	if ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps); isError(ret) {
		return NewError("GetPhysicalDeviceSurfaceCapabilities", ret)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
	for i := range formats {
		formats[i].Deref()
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, modes)

	if !adequateSurface(formatCount, modeCount) {
		return errors.Wrap(ErrNoSuitableDevice, "surface reports no formats or present modes")
	}

	core.format = chooseSurfaceFormat(formats)
	presentMode := choosePresentMode(modes)
	fbWidth, fbHeight := ctx.Display().FramebufferSize()
	core.extent = chooseExtent(caps.CurrentExtent, caps.MinImageExtent, caps.MaxImageExtent,
		uint32(fbWidth), uint32(fbHeight))
	imageCount := swapImageCount(caps.MinImageCount, caps.MaxImageCount)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      core.format.Format,
		ImageColorSpace:  core.format.ColorSpace,
		ImageExtent:      core.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	queues := ctx.device.Queues()
	if queues.Unified() {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	} else {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{queues.GraphicsIndex(), queues.PresentIndex()}
	}

	var swapchain vk.Swapchain
	if ret := vk.CreateSwapchain(device, &createInfo, nil, &swapchain); isError(ret) {
		return NewError("CreateSwapchain", ret)
	}
	core.swapchain = swapchain
	core.registry.Track("swapchain", func() {
		vk.DestroySwapchain(device, swapchain, nil)
	})

	var count uint32
	vk.GetSwapchainImages(device, core.swapchain, &count, nil)
	core.images = make([]vk.Image, count)
	vk.GetSwapchainImages(device, core.swapchain, &count, core.images)

	core.imageViews = make([]vk.ImageView, count)
	for i := range core.images {
		view, err := core.factory.CreateImageView(core.images[i], core.format.Format,
			vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			return err
		}
		core.imageViews[i] = view
		core.registry.Track("swapchain image view", func() {
			vk.DestroyImageView(device, view, nil)
		})
	}
	return nil
}

// CreateDepth builds the depth attachment at the swapchain extent. The
// render pass clears it every frame so no layout pre-transition is
// needed.
func (core *CoreSwapchain) CreateDepth(ctx *CoreContext) error {
	format, err := findDepthFormat(ctx.Physical())
	if err != nil {
		return err
	}
	core.depthFormat = format

	image, memory, err := core.factory.CreateImage(core.extent.Width, core.extent.Height, 1,
		vk.SampleCount1Bit, format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	core.depthImage = image
	core.depthMemory = memory

	view, err := core.factory.CreateImageView(image, format,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit), 1)
	if err != nil {
		return err
	}
	core.depthView = view

	device := ctx.Device()
	core.registry.Track("depth image", func() {
		vk.DestroyImageView(device, view, nil)
		vk.DestroyImage(device, image, nil)
		vk.FreeMemory(device, memory, nil)
	})
	return nil
}

// CreateFramebuffers builds one framebuffer per swapchain image with
// the shared depth view as the second attachment.
func (core *CoreSwapchain) CreateFramebuffers(ctx *CoreContext, renderPass vk.RenderPass) error {
	device := ctx.Device()
	core.frameBuffs = make([]vk.Framebuffer, len(core.imageViews))
	for i := range core.imageViews {
		views := []vk.ImageView{core.imageViews[i], core.depthView}
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           core.extent.Width,
			Height:          core.extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if isError(ret) {
			return NewError("CreateFramebuffer", ret)
		}
		core.frameBuffs[i] = framebuffer
		fb := framebuffer
		core.registry.Track("framebuffer", func() {
			vk.DestroyFramebuffer(device, fb, nil)
		})
	}
	return nil
}

// waitForExtent blocks until the sizer reports a nonzero framebuffer.
// A minimized window reports zero and must not produce a swapchain.
func waitForExtent(sizer FramebufferSizer) (int, int) {
	w, h := sizer.FramebufferSize()
	for w == 0 || h == 0 {
		sizer.WaitEvents()
		w, h = sizer.FramebufferSize()
	}
	return w, h
}

// Recreate tears down every extent-scoped object and rebuilds against
// the current surface. Blocks while the window is minimized.
func (core *CoreSwapchain) Recreate(ctx *CoreContext, renderPass vk.RenderPass) error {
	waitForExtent(ctx.Display())
	ctx.WaitIdle()

	core.registry.Release()

	if err := core.Create(ctx); err != nil {
		return err
	}
	if err := core.CreateDepth(ctx); err != nil {
		return err
	}
	return core.CreateFramebuffers(ctx, renderPass)
}

// Destroy releases all extent-scoped objects. The device must be idle.
func (core *CoreSwapchain) Destroy() {
	core.registry.Release()
}
