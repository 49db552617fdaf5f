package meshvk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestAdequateSurface(t *testing.T) {
	tests := []struct {
		formats, modes uint32
		want           bool
	}{
		{0, 0, false},
		{0, 3, false},
		{2, 0, false},
		{1, 1, true},
		{4, 2, true},
	}
	for _, tt := range tests {
		if got := adequateSurface(tt.formats, tt.modes); got != tt.want {
			t.Errorf("adequateSurface(%d, %d) = %v, want %v", tt.formats, tt.modes, got, tt.want)
		}
	}
}

func TestChooseSurfaceFormatPrefersBGRASrgb(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := chooseSurfaceFormat(formats)
	if got.Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("format = %d, want B8G8R8A8 sRGB", got.Format)
	}
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := chooseSurfaceFormat(formats)
	if got.Format != vk.FormatR8g8b8a8Unorm {
		t.Errorf("format = %d, want first entry", got.Format)
	}
}

func TestChoosePresentMode(t *testing.T) {
	withMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	if got := choosePresentMode(withMailbox); got != vk.PresentModeMailbox {
		t.Errorf("mode = %d, want mailbox", got)
	}
	without := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}
	if got := choosePresentMode(without); got != vk.PresentModeFifo {
		t.Errorf("mode = %d, want fifo fallback", got)
	}
}

func TestChooseExtentFixedWins(t *testing.T) {
	current := vk.Extent2D{Width: 640, Height: 480}
	got := chooseExtent(current,
		vk.Extent2D{Width: 1, Height: 1},
		vk.Extent2D{Width: 4096, Height: 4096},
		1920, 1080)
	if got != current {
		t.Errorf("extent = %v, want fixed current extent %v", got, current)
	}
}

func TestChooseExtentClampsFramebuffer(t *testing.T) {
	got := chooseExtent(
		vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		vk.Extent2D{Width: 100, Height: 100},
		vk.Extent2D{Width: 4096, Height: 4096},
		50, 8000)
	want := vk.Extent2D{Width: 100, Height: 4096}
	if got != want {
		t.Errorf("extent = %v, want %v", got, want)
	}
}

func TestSwapImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{2, 8, 3},
		{3, 3, 3},
		{4, 4, 4},
	}
	for _, tt := range tests {
		if got := swapImageCount(tt.min, tt.max); got != tt.want {
			t.Errorf("swapImageCount(%d, %d) = %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}

// fakeSizer reports a scripted sequence of framebuffer sizes, one per
// WaitEvents round.
type fakeSizer struct {
	sizes [][2]int
	waits int
}

func (f *fakeSizer) FramebufferSize() (int, int) {
	s := f.sizes[0]
	return s[0], s[1]
}

func (f *fakeSizer) WaitEvents() {
	f.waits++
	if len(f.sizes) > 1 {
		f.sizes = f.sizes[1:]
	}
}

func TestWaitForExtentBlocksOnZero(t *testing.T) {
	sizer := &fakeSizer{sizes: [][2]int{{0, 0}, {0, 600}, {800, 600}}}
	w, h := waitForExtent(sizer)
	if w != 800 || h != 600 {
		t.Errorf("extent = %dx%d, want 800x600", w, h)
	}
	if sizer.waits != 2 {
		t.Errorf("waited %d rounds, want 2", sizer.waits)
	}
}

func TestWaitForExtentPassesNonzero(t *testing.T) {
	sizer := &fakeSizer{sizes: [][2]int{{1024, 768}}}
	w, h := waitForExtent(sizer)
	if w != 1024 || h != 768 {
		t.Errorf("extent = %dx%d, want 1024x768", w, h)
	}
	if sizer.waits != 0 {
		t.Errorf("waited %d rounds, want 0", sizer.waits)
	}
}
