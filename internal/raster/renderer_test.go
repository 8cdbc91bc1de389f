package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/mathutil"
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/nif/niftest"
)

type solid struct{ c color.NRGBA }

func (s solid) Resolve(string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetNRGBA(i%2, i/2, s.c)
	}
	return img
}

func opaquePixels(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func quadScene(t *testing.T) (*niftest.Builder, nif.Ref, nif.Ref) {
	t.Helper()
	b := niftest.New()
	shape := b.TriShape("quad", b.TriShapeData(niftest.Grid(1)))
	root := b.Node("root", shape)
	b.Roots(root)
	return b, root, shape
}

func TestCollectInheritsTransformAndProperties(t *testing.T) {
	b, root, shape := quadScene(t)
	mat := b.Material("red", 0.5)
	b.G.Block(mat).(*nif.MaterialProperty).Diffuse = [3]float32{1, 0, 0}
	b.NodeAt(root).Properties = []nif.Ref{mat}
	b.NodeAt(root).Translation = [3]float32{10, 0, 0}
	b.NodeAt(root).Scale = 2

	meshes := Collect(b.G)
	require.Len(t, meshes, 1)
	m := meshes[0]
	assert.Equal(t, shape, m.Ref)
	assert.Equal(t, mathutil.Vec3{10, 0, 0}, m.Verts[0])
	assert.Equal(t, mathutil.Vec3{12, 0, 0}, m.Verts[1])
	assert.Equal(t, [3]float32{1, 0, 0}, m.Diffuse)
	assert.Equal(t, float32(0.5), m.Alpha)
	assert.Len(t, m.Tris, 2)
}

func TestCollectSkipsHidden(t *testing.T) {
	b, _, shape := quadScene(t)
	b.Geom(shape).AV().Flags = hiddenFlag
	assert.Empty(t, Collect(b.G))
}

func TestRenderScene(t *testing.T) {
	b, _, _ := quadScene(t)
	opts := DefaultOptions()
	opts.Size, opts.Supersample = 64, 1
	opts.Camera = mathutil.Mat3Identity()

	img := RenderScene(b.G, nil, opts)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Greater(t, opaquePixels(img), 0)
	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)
}

func TestRenderEmptyScene(t *testing.T) {
	img := RenderScene(nif.NewGraph("20.0.0.5"), nil, DefaultOptions())
	assert.Equal(t, 0, opaquePixels(img))
}

func TestRenderTexturedAndAdditive(t *testing.T) {
	b, _, shape := quadScene(t)
	gd := b.G.Block(b.Geom(shape).Geom().Data).(nif.GeomData).GeomData()
	gd.UVSets = [][][2]float32{{{0, 0}, {1, 0}, {0, 1}, {1, 1}}}
	tp := nif.MustNew(nif.KindTexturingProperty).(*nif.TexturingProperty)
	tp.BaseTexture = b.Texture(`textures\green.dds`)
	b.Geom(shape).AV().Properties = []nif.Ref{b.Add(tp)}

	opts := DefaultOptions()
	opts.Size, opts.Supersample = 64, 1
	opts.Camera = mathutil.Mat3Identity()

	img := RenderScene(b.G, solid{color.NRGBA{G: 255, A: 255}}, opts)
	c := img.NRGBAAt(32, 32)
	assert.Greater(t, c.G, c.R)
	assert.Greater(t, c.G, c.B)

	ap := nif.MustNew(nif.KindAlphaProperty).(*nif.AlphaProperty)
	ap.Flags = nif.AlphaBlendEnable
	b.Geom(shape).AV().Properties = append(b.Geom(shape).AV().Properties, b.Add(ap))
	meshes := Collect(b.G)
	require.Len(t, meshes, 1)
	assert.True(t, meshes[0].Additive)
	glow := RenderScene(b.G, solid{color.NRGBA{G: 255, A: 255}}, opts)
	assert.Greater(t, opaquePixels(glow), 0)
}
