package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleKeepsColorOfOpaqueImage(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	out := Downsample(filled(64, 64, c), 16)
	assert.Equal(t, image.Rect(0, 0, 16, 16), out.Bounds())
	assert.Equal(t, c, out.NRGBAAt(8, 8))
}

func TestDownsampleNoHaloAtTransparentEdge(t *testing.T) {
	img := filled(64, 64, color.NRGBA{})
	for y := 0; y < 64; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	out := Downsample(img, 16)
	edge := out.NRGBAAt(8, 8)
	if edge.A > 16 {
		assert.GreaterOrEqual(t, edge.R, uint8(240), "edge pixel %v darkened", edge)
	}
}

func TestDownsampleAspectAndSmallInput(t *testing.T) {
	out := Downsample(filled(64, 32, color.NRGBA{A: 255}), 16)
	assert.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())

	small := filled(8, 8, color.NRGBA{A: 255})
	assert.Same(t, small, Downsample(small, 16))
}

func TestSideBySide(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	out := SideBySide(filled(4, 4, red), filled(4, 2, blue))
	assert.Equal(t, image.Rect(0, 0, 8, 4), out.Bounds())
	assert.Equal(t, red, out.NRGBAAt(1, 3))
	assert.Equal(t, blue, out.NRGBAAt(5, 1))
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(5, 3))
}
