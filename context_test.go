package meshvk

import (
	"bytes"
	"log"
	"strings"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

// The report callback must log and return false so the triggering call
// is never aborted.
func TestDebugReportFuncLogsAndContinues(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	got := debugReportFunc(vk.DebugReportFlags(vk.DebugReportErrorBit),
		vk.DebugReportObjectType(0), 0, 0, 42, "core", "bad barrier", nil)
	if got != vk.Bool32(vk.False) {
		t.Errorf("callback = %d, want false", got)
	}
	if !strings.Contains(buf.String(), "bad barrier") {
		t.Errorf("log output %q missing report message", buf.String())
	}
}
