package raster

import "image"

// SampleTexture reads tex at (u, v) with bilinear filtering. Coordinates
// wrap, matching the default texture clamp mode of scene files.
func SampleTexture(tex *image.NRGBA, u, v float64) [4]float64 {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()

	u -= float64(int(u))
	if u < 0 {
		u++
	}
	v -= float64(int(v))
	if v < 0 {
		v++
	}

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	texel := func(x, y int) []uint8 {
		i := y*tex.Stride + x*4
		return tex.Pix[i : i+4]
	}
	t00, t10, t01, t11 := texel(x0, y0), texel(x1, y0), texel(x0, y1), texel(x1, y1)
	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]float64
	for c := 0; c < 4; c++ {
		out[c] = float64(t00[c])*w00 + float64(t10[c])*w10 + float64(t01[c])*w01 + float64(t11[c])*w11
	}
	return out
}
