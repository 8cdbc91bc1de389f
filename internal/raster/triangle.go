package raster

import (
	"image"
	"math"

	"nif-optimizer/internal/mathutil"
)

// Vertex is a projected vertex: screen position, depth, texture coordinate
// and colour with channels in [0, 255].
type Vertex struct {
	X, Y, Z float64
	U, V    float64
	Color   [4]float64
}

// Surface is the per-mesh draw state.
type Surface struct {
	Texture  *image.NRGBA
	Additive bool
}

// RasterizeTriangle draws one flat-shaded triangle. The texture, when set,
// modulates the interpolated vertex colour.
//
// Opaque surfaces are depth tested and written. Additive surfaces are
// depth tested against what is already drawn, never write depth, and add
// to the colour buffer.
//
// This is the hot path: nothing in the pixel loop allocates.
func RasterizeTriangle(fb *FrameBuffer, tri [3]Vertex, s Surface, lc *LightConfig) {
	a, b, c := &tri[0], &tri[1], &tri[2]

	e1 := mathutil.Vec3{b.X - a.X, b.Y - a.Y, b.Z - a.Z}
	e2 := mathutil.Vec3{c.X - a.X, c.Y - a.Y, c.Z - a.Z}
	n := e1.Cross(e2)
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.ComputeShade(n.Normalize())

	minX := max(int(math.Min(math.Min(a.X, b.X), c.X)), 0)
	maxX := min(int(math.Max(math.Max(a.X, b.X), c.X))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(a.Y, b.Y), c.Y)), 0)
	maxY := min(int(math.Max(math.Max(a.Y, b.Y), c.Y))+1, fb.Height-1)
	if minX >= maxX || minY >= maxY {
		return
	}

	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12, dx21 := b.Y-c.Y, c.X-b.X
	dy20, dx02 := c.Y-a.Y, a.X-c.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - c.Y
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - c.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			pix := sy*fb.Width + sx
			z := w0*a.Z + w1*b.Z + w2*c.Z
			if z <= fb.ZBuf[pix] {
				continue
			}

			var col [4]float64
			for k := range col {
				col[k] = w0*a.Color[k] + w1*b.Color[k] + w2*c.Color[k]
			}
			if s.Texture != nil {
				t := SampleTexture(s.Texture, w0*a.U+w1*b.U+w2*c.U, w0*a.V+w1*b.V+w2*c.V)
				for k := range col {
					col[k] *= t[k] / 255
				}
			}
			if col[3] < 8 {
				continue
			}

			o := pix * 4
			r := lc.toneMap(srgbToLinear[clamp255(col[0])], shade)
			g := lc.toneMap(srgbToLinear[clamp255(col[1])], shade)
			bl := lc.toneMap(srgbToLinear[clamp255(col[2])], shade)
			if s.Additive {
				fb.Color[o] = clamp255(float64(fb.Color[o]) + r)
				fb.Color[o+1] = clamp255(float64(fb.Color[o+1]) + g)
				fb.Color[o+2] = clamp255(float64(fb.Color[o+2]) + bl)
				// Dark additive pixels stay transparent.
				if lum := clamp255(r*0.299 + g*0.587 + bl*0.114); lum > fb.Color[o+3] {
					fb.Color[o+3] = lum
				}
				continue
			}
			fb.ZBuf[pix] = z
			fb.Color[o] = clamp255(r)
			fb.Color[o+1] = clamp255(g)
			fb.Color[o+2] = clamp255(bl)
			fb.Color[o+3] = clamp255(col[3])
		}
	}
}
