package meshvk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestFrameResultClassification(t *testing.T) {
	tests := []struct {
		ret     vk.Result
		want    FrameStatus
		wantErr bool
	}{
		{vk.Success, FrameOK, false},
		{vk.ErrorOutOfDate, FrameStale, false},
		{vk.Suboptimal, FrameSuboptimal, false},
		{vk.ErrorDeviceLost, FrameOK, true},
		{vk.ErrorSurfaceLost, FrameOK, true},
	}
	for _, tt := range tests {
		status, err := frameResult("test", tt.ret)
		if (err != nil) != tt.wantErr {
			t.Errorf("frameResult(%d) err = %v, wantErr %v", tt.ret, err, tt.wantErr)
			continue
		}
		if err == nil && status != tt.want {
			t.Errorf("frameResult(%d) = %v, want %v", tt.ret, status, tt.want)
		}
	}
}

func TestNewErrorNilOnSuccess(t *testing.T) {
	if err := NewError("op", vk.Success); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if err := NewError("op", vk.ErrorDeviceLost); err == nil {
		t.Error("err = nil on device lost")
	}
}
