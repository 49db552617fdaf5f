package meshvk

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3
f 1/1 3/3 4/4
`

func TestDecodeOBJDeduplicates(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	// Two triangles share an edge: 4 unique vertices, 6 indices.
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 6 {
		t.Errorf("indices = %d, want 6", len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			t.Errorf("index %d = %d, out of range [0,%d)", i, idx, len(mesh.Vertices))
		}
	}
}

func TestDecodeOBJFlipsTexcoordV(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	// First corner references vt (0,0), which samples as (0,1).
	got := mesh.Vertices[mesh.Indices[0]].TexCoord
	if got != (mgl32.Vec2{0, 1}) {
		t.Errorf("texcoord = %v, want (0,1)", got)
	}
}

func TestDecodeOBJWhiteColor(t *testing.T) {
	mesh, err := DecodeOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range mesh.Vertices {
		if v.Color != (mgl32.Vec3{1, 1, 1}) {
			t.Errorf("vertex %d color = %v, want white", i, v.Color)
		}
	}
}

func TestDecodeOBJFanTriangulation(t *testing.T) {
	quad := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	mesh, err := DecodeOBJ(strings.NewReader(quad))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Indices) != 6 {
		t.Fatalf("indices = %d, want 6 from fan triangulation", len(mesh.Indices))
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(mesh.Vertices))
	}
}

func TestDecodeOBJNegativeIndices(t *testing.T) {
	tri := `
v 0 0 0
v 1 0 0
v 1 1 0
f -3 -2 -1
`
	mesh, err := DecodeOBJ(strings.NewReader(tri))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Indices) != 3 || len(mesh.Vertices) != 3 {
		t.Errorf("got %d indices %d vertices, want 3 and 3", len(mesh.Indices), len(mesh.Vertices))
	}
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"no faces", "v 0 0 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"short vertex", "v 0 0\nf 1 1 1\n"},
		{"bad float", "v a b c\nf 1 1 1\n"},
	}
	for _, tt := range tests {
		if _, err := DecodeOBJ(strings.NewReader(tt.src)); err == nil {
			t.Errorf("%s: decode succeeded, want error", tt.name)
		}
	}
}

func TestVertexLayout(t *testing.T) {
	if vertexStride != 32 {
		t.Errorf("stride = %d, want 32", vertexStride)
	}
	attrs := VertexAttributeDescriptions()
	wantOffsets := []uint32{0, 12, 24}
	for i, attr := range attrs {
		if attr.Offset != wantOffsets[i] {
			t.Errorf("attribute %d offset = %d, want %d", i, attr.Offset, wantOffsets[i])
		}
	}
}
