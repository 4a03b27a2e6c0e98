package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeTextureFormats(t *testing.T) {
	src := checker(4, 3)

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, bmp.Encode(&bmpBuf, src))

	for want, buf := range map[string]*bytes.Buffer{"png": &pngBuf, "bmp": &bmpBuf} {
		img, format, err := DecodeTexture(buf)
		require.NoError(t, err, want)
		assert.Equal(t, want, format)
		assert.Equal(t, image.Rect(0, 0, 4, 3), img.Rect)
		assert.Equal(t, 16, img.Stride)
		assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
		assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(1, 0))
	}
}

func TestToRGBARebasesSubImages(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 8, 8))
	full.Set(3, 3, color.RGBA{G: 255, A: 255})
	sub := full.SubImage(image.Rect(2, 2, 6, 6))

	img := toRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Rect)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 1))
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checker.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checker(2, 2)))
	require.NoError(t, f.Close())

	img, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Rect.Dx())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o644))
	_, err = LoadTexture(filepath.Join(dir, "junk.png"))
	assert.Error(t, err)

	_, err = LoadTexture(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
