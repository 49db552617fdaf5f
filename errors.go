package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Fatal conditions. Everything that is not a FrameStatus is fatal and
// propagates up to the caller as an error value.
var (
	ErrUnsupportedTransition = errors.New("unsupported image layout transition")
	ErrNoLinearBlit          = errors.New("format does not support linear blit filtering")
	ErrNoMemoryType          = errors.New("no suitable memory type")
	ErrNoSuitableDevice      = errors.New("no suitable physical device")
)

// FrameStatus classifies the per-frame conditions the render loop is
// allowed to recover from. Anything outside this set is an error.
type FrameStatus int

const (
	FrameOK FrameStatus = iota
	FrameStale
	FrameSuboptimal
)

func (s FrameStatus) String() string {
	switch s {
	case FrameOK:
		return "ok"
	case FrameStale:
		return "stale"
	case FrameSuboptimal:
		return "suboptimal"
	}
	return "unknown"
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError wraps a non-success vk.Result into an error naming the call
// site operation. Returns nil on vk.Success.
func NewError(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Wrapf(vk.Error(ret), "%s (%d)", op, ret)
}

// frameResult splits an acquire/present return into the recoverable
// status set and a fatal error for everything else. Suboptimal is a
// success code in the API but still wants a swapchain rebuild.
func frameResult(op string, ret vk.Result) (FrameStatus, error) {
	switch ret {
	case vk.Success:
		return FrameOK, nil
	case vk.ErrorOutOfDate:
		return FrameStale, nil
	case vk.Suboptimal:
		return FrameSuboptimal, nil
	}
	return FrameOK, NewError(op, ret)
}
