package vulkanitos

import (
	"unsafe"

	"github.com/Mehdi-Antoine/vulkanitos/mesh"
	vk "github.com/vulkan-go/vulkan"
)

// VertexDescriptor describes how a vertex buffer bound at binding 0 is read.
type VertexDescriptor interface {
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

// MeshVertexLayout reads mesh.Vertex: position, color and texture coordinate.
type MeshVertexLayout struct{}

func (MeshVertexLayout) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(mesh.VertexStride),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (MeshVertexLayout) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(mesh.PosOffset)},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(mesh.ColorOffset)},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(mesh.TexCoordOffset)},
	}
}

// TriangleVertex is a bare position, used for the full screen triangle.
type TriangleVertex [3]float32

// FullScreenTriangle covers the whole viewport once clipped.
var FullScreenTriangle = []TriangleVertex{
	{-1, -1, 0},
	{3, -1, 0},
	{-1, 3, 0},
}

// TriangleBytes returns the raw bytes of vertices.
func TriangleBytes(vertices []TriangleVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return toBytes(unsafe.Pointer(&vertices[0]), len(vertices)*int(unsafe.Sizeof(TriangleVertex{})))
}

// TriangleVertexLayout reads TriangleVertex.
type TriangleVertexLayout struct{}

func (TriangleVertexLayout) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(TriangleVertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (TriangleVertexLayout) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
	}
}
