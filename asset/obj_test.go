package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mehdi-Antoine/vulkanitos/mesh"
)

const quad = `# a unit quad in the xz plane
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeOBJQuad(t *testing.T) {
	refs, err := DecodeOBJ(strings.NewReader(quad))
	require.NoError(t, err)
	require.Len(t, refs, 6)

	// fan around the first corner
	assert.Equal(t, refs[0], refs[3])
	assert.Equal(t, refs[2], refs[4])

	// y and z swapped, v flipped, white
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, refs[2].Pos)
	assert.Equal(t, mgl32.Vec2{1, 0}, refs[2].TexCoord)
	assert.Equal(t, mgl32.Vec2{0, 1}, refs[0].TexCoord)
	for _, r := range refs {
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, r.Color)
	}

	m := mesh.Build(refs)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Indices, 6)
}

func TestDecodeOBJNegativeIndicesAndNoTexCoords(t *testing.T) {
	refs, err := DecodeOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"))
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, refs[2].Pos)
	assert.Equal(t, mgl32.Vec2{}, refs[2].TexCoord)
}

func TestDecodeOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"no faces":     "v 0 0 0\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"bad float":    "v 0 x 0\n",
		"short vertex": "v 0 0\n",
		"bad texcoord": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/4 2 3\n",
	} {
		_, err := DecodeOBJ(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quad), 0o644))

	refs, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, refs, 6)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}
