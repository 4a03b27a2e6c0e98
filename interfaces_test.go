package vulkanitos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestMeshVertexLayout(t *testing.T) {
	var l MeshVertexLayout
	assert.Equal(t, uint32(48), l.GetBindingDescription().Stride)

	attrs := l.GetAttributeDescriptions()
	if assert.Len(t, attrs, 3) {
		assert.Equal(t, uint32(0), attrs[0].Offset)
		assert.Equal(t, uint32(16), attrs[1].Offset)
		assert.Equal(t, uint32(32), attrs[2].Offset)
		assert.Equal(t, vk.FormatR32g32Sfloat, attrs[2].Format)
	}
}

func TestTriangleLayout(t *testing.T) {
	var l TriangleVertexLayout
	assert.Equal(t, uint32(12), l.GetBindingDescription().Stride)
	assert.Len(t, l.GetAttributeDescriptions(), 1)
	assert.Len(t, TriangleBytes(FullScreenTriangle), 36)
	assert.Nil(t, TriangleBytes(nil))
}
