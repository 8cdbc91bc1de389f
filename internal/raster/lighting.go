package raster

import (
	"math"

	"nif-optimizer/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir mathutil.Vec3
	RimDir   mathutil.Vec3
	HalfMain mathutil.Vec3 // half-vector for Blinn-Phong
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig is a key light from the upper right, a cool rim
// light from behind and a soft hemisphere fill.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{180, 260, 140}.Normalize()
	viewDir := mathutil.Vec3{0, 0, -1}
	return LightConfig{
		LightDir: lightDir,
		RimDir:   mathutil.Vec3{-160, 130, -210}.Normalize(),
		HalfMain: lightDir.Sub(viewDir).Normalize(),
		Ambient:  0.45,
		Hemi:     0.50,
		Direct:   1.30,
		Rim:      0.50,
		SpecInt:  0.35,
		SpecPow:  16.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	hemi := ((1.0-math.Abs(normal[1]))*0.5 + 0.5) * lc.Hemi

	ndh := math.Max(normal.Dot(lc.HalfMain), 0)
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemi + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// toneMap takes a linear colour channel through exposure, ACES filmic
// tone mapping and gamma, and returns it in [0, 255].
func (lc *LightConfig) toneMap(linear, shade float64) float64 {
	return math.Pow(ACESTonemap(linear*shade*lc.Exposure), lc.InvGamma) * 255
}

// srgbToLinear maps 8-bit sRGB values to linear light.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
