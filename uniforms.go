package vulkanitos

import (
	"time"
	"unsafe"

	"github.com/Mehdi-Antoine/vulkanitos/camera"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Matrices is the uniform block read by the scene vertex shader.
type Matrices struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// ComputeData is the uniform block read by the compute shader.
type ComputeData struct {
	Time        float32
	VertexCount int32
}

var (
	MatricesSize    = uint64(unsafe.Sizeof(Matrices{}))
	ComputeDataSize = uint64(unsafe.Sizeof(ComputeData{}))
)

// MatricesFor returns the matrices of cam for a framebuffer of extent.
func MatricesFor(cam *camera.TrackBall, extent vk.Extent2D) Matrices {
	aspect := float32(1)
	if extent.Height > 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}
	return Matrices{
		Model: mgl32.Ident4(),
		View:  cam.View(),
		Proj:  cam.Projection(aspect),
	}
}

// ComputeDataAt returns the compute block elapsed after start.
func ComputeDataAt(elapsed time.Duration, vertexCount int) ComputeData {
	return ComputeData{
		Time:        float32(elapsed.Seconds()),
		VertexCount: int32(vertexCount),
	}
}

// DispatchSize is the number of 64 wide workgroups covering n vertices.
func DispatchSize(n int) int {
	return n/64 + 1
}
