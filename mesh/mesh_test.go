package mesh

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = mgl32.Vec3{1, 1, 1}

func quad() []Ref {
	a := Ref{Pos: mgl32.Vec3{0, 0, 0}, Color: white, TexCoord: mgl32.Vec2{0, 0}}
	b := Ref{Pos: mgl32.Vec3{2, 0, 0}, Color: white, TexCoord: mgl32.Vec2{1, 0}}
	c := Ref{Pos: mgl32.Vec3{2, 2, 0}, Color: white, TexCoord: mgl32.Vec2{1, 1}}
	d := Ref{Pos: mgl32.Vec3{0, 2, 0}, Color: white, TexCoord: mgl32.Vec2{0, 1}}
	return []Ref{a, b, c, a, c, d}
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, 48, VertexStride)
	assert.Equal(t, 0, PosOffset)
	assert.Equal(t, 16, ColorOffset)
	assert.Equal(t, 32, TexCoordOffset)
}

func TestBuildDeduplicates(t *testing.T) {
	refs := quad()
	m := Build(refs)

	require.Len(t, m.Indices, len(refs))
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
}

func TestBuildSharesSlotsForEqualRefs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := make([]Ref, 10)
	for i := range pool {
		pool[i] = Ref{
			Pos:      mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()},
			Color:    white,
			TexCoord: mgl32.Vec2{rng.Float32(), rng.Float32()},
		}
	}
	refs := make([]Ref, 300)
	for i := range refs {
		refs[i] = pool[rng.Intn(len(pool))]
	}

	m := Build(refs)
	require.Len(t, m.Indices, len(refs))
	assert.LessOrEqual(t, len(m.Vertices), len(pool))
	for i := range refs {
		for j := range refs {
			if refs[i] == refs[j] {
				assert.Equal(t, m.Indices[i], m.Indices[j])
			} else {
				assert.NotEqual(t, m.Indices[i], m.Indices[j])
			}
		}
	}
}

func TestBuildKeepsDistinctAttributes(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	refs := []Ref{
		{Pos: p, Color: white, TexCoord: mgl32.Vec2{0, 0}},
		{Pos: p, Color: white, TexCoord: mgl32.Vec2{0, 1}},
		{Pos: p, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{0, 0}},
	}
	m := Build(refs)
	assert.Len(t, m.Vertices, 3)
}

func TestBuildRecenters(t *testing.T) {
	m := Build(quad())
	c := m.Barycenter()
	assert.InDelta(t, 0, c.X(), 1e-6)
	assert.InDelta(t, 0, c.Y(), 1e-6)
	assert.InDelta(t, 0, c.Z(), 1e-6)
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, m.Vertices[0].Pos)
}

func TestRecenterUsesUniqueVertices(t *testing.T) {
	// the corner at the origin is repeated many times; only its unique
	// occurrence contributes to the mean
	refs := []Ref{
		{Pos: mgl32.Vec3{0, 0, 0}},
		{Pos: mgl32.Vec3{0, 0, 0}},
		{Pos: mgl32.Vec3{0, 0, 0}},
		{Pos: mgl32.Vec3{4, 0, 0}},
	}
	m := Build(refs)
	require.Len(t, m.Vertices, 2)
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, m.Vertices[0].Pos)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, m.Vertices[1].Pos)
}

func TestBuildEmpty(t *testing.T) {
	m := Build(nil)
	assert.Empty(t, m.Vertices)
	assert.Empty(t, m.Indices)
	assert.Nil(t, m.VertexBytes())
	assert.Nil(t, m.IndexBytes())
}

func TestBytes(t *testing.T) {
	m := Build(quad())
	assert.Len(t, m.VertexBytes(), 4*VertexStride)
	assert.Len(t, m.IndexBytes(), 6*4)
}
