package meshvk

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex matches the vertex shader input block: position, color and
// texture coordinate, tightly packed.
type Vertex struct {
	Pos      mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

const vertexStride = uint32(unsafe.Sizeof(Vertex{}))

// VertexBindingDescription describes the single interleaved vertex
// buffer binding.
func VertexBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    vertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
}

// VertexAttributeDescriptions lists the three shader locations and
// their byte offsets into the Vertex struct.
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Pos))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.TexCoord))},
	}
}

// Mesh is a deduplicated indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// DecodeOBJ reads a Wavefront OBJ stream into a Mesh. Faces with more
// than three corners are fan-triangulated. Identical position/texcoord
// pairs collapse to a single vertex; Vertex is comparable so the seen
// map can key on the full value. The V texture coordinate is flipped
// because OBJ puts the origin at the bottom-left and the sampler reads
// top-down.
func DecodeOBJ(r io.Reader) (*Mesh, error) {
	var positions []mgl32.Vec3
	var texcoords []mgl32.Vec2
	mesh := &Mesh{}
	seen := make(map[Vertex]uint32)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj line %d: short vertex", line)
			}
			vec, err := parseFloats3(fields[1:4])
			if err != nil {
				return nil, errors.Wrapf(err, "obj line %d", line)
			}
			positions = append(positions, vec)
		case "vt":
			if len(fields) < 3 {
				return nil, errors.Errorf("obj line %d: short texcoord", line)
			}
			u, err0 := strconv.ParseFloat(fields[1], 32)
			v, err1 := strconv.ParseFloat(fields[2], 32)
			if err0 != nil || err1 != nil {
				return nil, errors.Errorf("obj line %d: bad texcoord", line)
			}
			texcoords = append(texcoords, mgl32.Vec2{float32(u), float32(v)})
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj line %d: face with fewer than 3 corners", line)
			}
			corners := fields[1:]
			for i := 1; i+1 < len(corners); i++ {
				for _, c := range []string{corners[0], corners[i], corners[i+1]} {
					idx, err := cornerVertex(c, positions, texcoords, mesh, seen)
					if err != nil {
						return nil, errors.Wrapf(err, "obj line %d", line)
					}
					mesh.Indices = append(mesh.Indices, idx)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Indices) == 0 {
		return nil, errors.New("obj: no faces")
	}
	return mesh, nil
}

func parseFloats3(fields []string) (mgl32.Vec3, error) {
	var vec mgl32.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return vec, err
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

// cornerVertex resolves a face corner "pos/tex/..." reference to a
// deduplicated vertex index, appending a new vertex on first sight.
func cornerVertex(corner string, positions []mgl32.Vec3, texcoords []mgl32.Vec2, mesh *Mesh, seen map[Vertex]uint32) (uint32, error) {
	parts := strings.Split(corner, "/")
	posIdx, err := objIndex(parts[0], len(positions))
	if err != nil {
		return 0, err
	}
	vertex := Vertex{
		Pos:   positions[posIdx],
		Color: mgl32.Vec3{1, 1, 1},
	}
	if len(parts) > 1 && parts[1] != "" {
		texIdx, err := objIndex(parts[1], len(texcoords))
		if err != nil {
			return 0, err
		}
		tc := texcoords[texIdx]
		vertex.TexCoord = mgl32.Vec2{tc[0], 1 - tc[1]}
	}
	if idx, ok := seen[vertex]; ok {
		return idx, nil
	}
	idx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, vertex)
	seen[vertex] = idx
	return idx, nil
}

// objIndex converts a 1-based (or negative, from-the-end) OBJ index
// into a slice index.
func objIndex(field string, count int) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, errors.Errorf("obj: index %s out of range", field)
	}
	return n - 1, nil
}

// LoadMesh decodes an OBJ file from disk.
func LoadMesh(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	mesh, err := DecodeOBJ(file)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return mesh, nil
}

// vertexBytes reinterprets the vertex slice for the staging copy.
func (m *Mesh) vertexBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*int(vertexStride))
}

func (m *Mesh) indexBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*4)
}
