package meshvk

import "testing"

func TestNextFrameRing(t *testing.T) {
	current := 0
	for k := 1; k <= 10; k++ {
		current = nextFrame(current)
		if current != k%MaxFramesInFlight {
			t.Fatalf("after %d advances index = %d, want %d", k, current, k%MaxFramesInFlight)
		}
	}
}

func TestNextFrameStaysInRange(t *testing.T) {
	current := 0
	for k := 0; k < 100; k++ {
		current = nextFrame(current)
		if current < 0 || current >= MaxFramesInFlight {
			t.Fatalf("index %d out of range", current)
		}
	}
}
