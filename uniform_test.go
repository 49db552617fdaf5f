package meshvk

import (
	"math"
	"testing"
)

func TestUniformProjectionFlipsY(t *testing.T) {
	u := uniformAt(0, 800, 600)
	if u.Proj[5] >= 0 {
		t.Errorf("Proj[5] = %f, want negative for Vulkan clip space", u.Proj[5])
	}
}

func TestUniformAspectFollowsExtent(t *testing.T) {
	wide := uniformAt(0, 1600, 900)
	square := uniformAt(0, 900, 900)
	// Perspective puts 1/(aspect*tan(fov/2)) in Proj[0]; a wider extent
	// must shrink it.
	if wide.Proj[0] >= square.Proj[0] {
		t.Errorf("Proj[0] wide = %f, square = %f, want wide < square", wide.Proj[0], square.Proj[0])
	}
}

func TestUniformModelSpins(t *testing.T) {
	at0 := uniformAt(0, 800, 600)
	at1 := uniformAt(1, 800, 600)
	if at0.Model == at1.Model {
		t.Error("model matrix unchanged after one second")
	}
	// 90 degrees per second: after 4 seconds the rotation is a full
	// turn and the matrix comes back around.
	at4 := uniformAt(4, 800, 600)
	for i := range at4.Model {
		if diff := math.Abs(float64(at4.Model[i] - at0.Model[i])); diff > 1e-4 {
			t.Fatalf("model[%d] after full turn differs by %f", i, diff)
		}
	}
}

func TestUniformViewIsStable(t *testing.T) {
	a := uniformAt(0, 800, 600)
	b := uniformAt(7, 800, 600)
	if a.View != b.View {
		t.Error("view matrix varies with time")
	}
}
