package vulkanitos

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBAPixelsPacked(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Len(t, rgbaPixels(img), 16)
}

func TestRGBAPixelsSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	img.Set(2, 2, color.RGBA{R: 5, G: 6, B: 7, A: 8})

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	px := rgbaPixels(sub)
	assert.Len(t, px, 16)
	assert.Equal(t, []byte{1, 2, 3, 4}, px[0:4])
	assert.Equal(t, []byte{5, 6, 7, 8}, px[12:16])
}
