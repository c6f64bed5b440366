package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderMode selects the proxy mesh and the shader variant.
type RenderMode int

const (
	// ModeTriangle draws a single flat triangle with a constant color.
	ModeTriangle RenderMode = iota
	// ModeCube draws the unit cube transformed by the MVP matrix.
	ModeCube
	// ModeVolume draws the unit cube and samples the volume texture.
	ModeVolume
)

var modeNames = [...]string{"triangle", "cube", "volume"}

func (m RenderMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseRenderMode converts a mode name ("triangle", "cube", "volume").
func ParseRenderMode(s string) (RenderMode, error) {
	for i, name := range modeNames {
		if name == s {
			return RenderMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// Indexed reports whether the mode draws with an index buffer.
func (m RenderMode) Indexed() bool {
	return m != ModeTriangle
}

// Mesh is the proxy geometry rasterized to invoke the volume shader.
// Indices is nil for non-indexed meshes.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
}

// VertexCount is the number of vertices a non-indexed draw consumes,
// or the number of indices for an indexed one.
func (m Mesh) VertexCount() int {
	if m.Indices != nil {
		return len(m.Indices)
	}
	return len(m.Positions)
}

// Flatten returns positions as a tightly packed float32 slice (3 per vertex).
func (m Mesh) Flatten() []float32 {
	out := make([]float32, 0, len(m.Positions)*3)
	for _, p := range m.Positions {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// Extent returns the size of the axis-aligned box enclosing the positions.
func (m Mesh) Extent() mgl32.Vec3 {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return hi.Sub(lo)
}

// Triangle returns the three-vertex mesh used by the minimal variant.
//
//	0----1
//	|  /
//	|/
//	2
func Triangle() Mesh {
	return Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, 0.5, 0},
			{0.5, 0.5, 0},
			{-0.5, -0.5, 0},
		},
	}
}

// cubeCorners run from the origin to (1,1,1).
var cubeCorners = [8]mgl32.Vec3{
	{0, 0, 0}, // 0
	{1, 0, 0}, // 1
	{1, 1, 0}, // 2
	{0, 1, 0}, // 3
	{0, 0, 1}, // 4
	{1, 0, 1}, // 5
	{1, 1, 1}, // 6
	{0, 1, 1}, // 7
}

// Two triangles per face, counter-clockwise seen from outside.
var cubeIndices = [36]uint32{
	4, 5, 6, 4, 6, 7, // +z
	1, 0, 3, 1, 3, 2, // -z
	5, 1, 2, 5, 2, 6, // +x
	0, 4, 7, 0, 7, 3, // -x
	3, 7, 6, 3, 6, 2, // +y
	4, 0, 1, 4, 1, 5, // -y
}

// UnitCube returns the cube bounding the volume in object space.
func UnitCube() Mesh {
	positions := make([]mgl32.Vec3, len(cubeCorners))
	copy(positions, cubeCorners[:])
	indices := make([]uint32, len(cubeIndices))
	copy(indices, cubeIndices[:])
	return Mesh{Positions: positions, Indices: indices}
}

// MeshFor returns the proxy mesh used by the given mode.
func MeshFor(mode RenderMode) Mesh {
	if mode == ModeTriangle {
		return Triangle()
	}
	return UnitCube()
}
