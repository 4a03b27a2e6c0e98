// Package mesh turns per-corner vertex references into a compact indexed
// mesh: identical corners share one vertex slot, and the result is
// recentered on the mean of its unique positions.
package mesh

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the std430 layout read by both the vertex shader and the
// compute shader, hence the explicit padding.
type Vertex struct {
	Pos      mgl32.Vec3
	pad0     float32
	Color    mgl32.Vec3
	pad1     float32
	TexCoord mgl32.Vec2
	pad2     mgl32.Vec2
}

// Layout of Vertex in bytes.
const (
	VertexStride   = int(unsafe.Sizeof(Vertex{}))
	PosOffset      = int(unsafe.Offsetof(Vertex{}.Pos))
	ColorOffset    = int(unsafe.Offsetof(Vertex{}.Color))
	TexCoordOffset = int(unsafe.Offsetof(Vertex{}.TexCoord))
)

// Ref is one triangle corner as delivered by a file loader.
type Ref struct {
	Pos      mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

func (r Ref) vertex() Vertex {
	return Vertex{Pos: r.Pos, Color: r.Color, TexCoord: r.TexCoord}
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Build deduplicates refs by exact equality of position, color and texture
// coordinate, then recenters the unique vertices around the origin. The
// index list always has len(refs) entries.
func Build(refs []Ref) *Mesh {
	m := &Mesh{
		Indices: make([]uint32, 0, len(refs)),
	}
	unique := make(map[Vertex]uint32, len(refs))
	for _, r := range refs {
		v := r.vertex()
		idx, ok := unique[v]
		if !ok {
			idx = uint32(len(m.Vertices))
			unique[v] = idx
			m.Vertices = append(m.Vertices, v)
		}
		m.Indices = append(m.Indices, idx)
	}
	m.Recenter()
	return m
}

// Barycenter returns the arithmetic mean of the vertex positions.
func (m *Mesh) Barycenter() mgl32.Vec3 {
	var sum mgl32.Vec3
	if len(m.Vertices) == 0 {
		return sum
	}
	for _, v := range m.Vertices {
		sum = sum.Add(v.Pos)
	}
	return sum.Mul(1 / float32(len(m.Vertices)))
}

// Recenter translates every vertex so the barycenter lands on the origin.
func (m *Mesh) Recenter() {
	c := m.Barycenter()
	for i := range m.Vertices {
		m.Vertices[i].Pos = m.Vertices[i].Pos.Sub(c)
	}
}

// VertexBytes exposes the vertex array as raw bytes for upload.
func (m *Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*VertexStride)
}

// IndexBytes exposes the index array as raw bytes for upload.
func (m *Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*4)
}
