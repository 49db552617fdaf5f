package meshvk

import (
	"testing"
)

func TestNeedRecreate(t *testing.T) {
	tests := []struct {
		name               string
		status             FrameStatus
		acquiredSuboptimal bool
		resized            bool
		want               bool
	}{
		{"clean frame", FrameOK, false, false, false},
		{"stale present", FrameStale, false, false, true},
		{"suboptimal present", FrameSuboptimal, false, false, true},
		{"suboptimal acquire", FrameOK, true, false, true},
		{"resize callback", FrameOK, false, true, true},
		{"stale present during resize", FrameStale, false, true, true},
	}
	for _, tt := range tests {
		if got := needRecreate(tt.status, tt.acquiredSuboptimal, tt.resized); got != tt.want {
			t.Errorf("%s: needRecreate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// A stale present must still clear the resize flag, otherwise the next
// frame rebuilds the already-fresh swapchain a second time.
func TestConsumeResizedClearsFlag(t *testing.T) {
	display := &CoreDisplay{resized: true}
	if !display.ConsumeResized() {
		t.Fatal("first ConsumeResized = false, want true")
	}
	if display.ConsumeResized() {
		t.Error("second ConsumeResized = true, want flag cleared")
	}
}
