package optimize_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/nif/niftest"
	"nif-optimizer/internal/optimize"
	"nif-optimizer/internal/tristrip"
)

var (
	vA = [3]float32{0, 0, 0}
	vB = [3]float32{1, 0, 0}
	vC = [3]float32{0, 1, 0}
)

func TestGeometryWeldsTriangleList(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData([][3]float32{vA, vB, vA, vC}, [][3]uint16{{0, 1, 2}, {1, 2, 3}})
	shape := b.TriShape("shape", data)
	b.Roots(b.Node("root", shape))

	res, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, shape, res.Ref)
	assert.False(t, res.Replaced())
	assert.Equal(t, 4, res.VerticesBefore)
	assert.Equal(t, 3, res.VerticesAfter)

	d, _ := nif.Get[*nif.TriShapeData](b.G, data)
	assert.Equal(t, [][3]float32{vA, vB, vC}, d.Vertices)
	assert.Equal(t, [][3]uint16{{0, 1, 0}, {1, 0, 2}}, d.Triangles)
}

func TestGeometryShortStripsBecomeTriangles(t *testing.T) {
	b := niftest.New()
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {5, 0, 0}, {6, 0, 0}, {5, 1, 0}}
	data := b.TriStripsData(verts, []uint16{0, 1, 2, 3}, []uint16{4, 5, 6})
	strips := b.TriStrips("strips", data)
	b.Roots(b.Node("root", strips))

	res, err := optimize.Geometry(b.G, strips, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 25.0/7.0, res.AvgStripLength, 1e-9)
	require.True(t, res.Replaced())
	assert.Equal(t, nif.KindTriShape, res.Kind)

	shape, ok := nif.Get[*nif.TriShape](b.G, res.Ref)
	require.True(t, ok)
	assert.Equal(t, "strips", shape.Name)
	sd, ok := nif.Get[*nif.TriShapeData](b.G, shape.Data)
	require.True(t, ok)
	assert.Equal(t, [][3]uint16{{0, 1, 2}, {1, 3, 2}, {4, 5, 6}}, sd.Triangles)
	assert.Equal(t, verts, sd.Vertices)
	assert.Equal(t, 9, res.IndicesAfter)
	assert.Equal(t, 7, res.IndicesBefore)
}

func TestGeometryZeroCutoffKeepsStrips(t *testing.T) {
	b := niftest.New()
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {5, 0, 0}, {6, 0, 0}, {5, 1, 0}}
	strips := b.TriStrips("strips", b.TriStripsData(verts, []uint16{0, 1, 2, 3}, []uint16{4, 5, 6}))
	b.Roots(b.Node("root", strips))

	opts := optimize.DefaultOptions()
	opts.StripLengthCutoff = 0
	res, err := optimize.Geometry(b.G, strips, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, strips, res.Ref)
	assert.False(t, res.Replaced())
}

func TestGeometryLongStripsAreStitched(t *testing.T) {
	verts, tris := niftest.Grid(6)
	b := niftest.New()
	data := b.TriShapeData(verts, tris)
	shape := b.TriShape("grid", data)
	root := b.Node("root", shape)
	b.Roots(root)

	res, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	require.True(t, res.Replaced())
	assert.Equal(t, nif.KindTriStrips, res.Kind)
	assert.GreaterOrEqual(t, res.AvgStripLength, 10.0)

	ts, _ := nif.Get[*nif.TriStrips](b.G, res.Ref)
	sd, ok := nif.Get[*nif.TriStripsData](b.G, ts.Data)
	require.True(t, ok)
	require.Len(t, sd.Strips, 1)
	assert.ElementsMatch(t, rotations(tris), rotations(tristrip.Triangulate(sd.Strips)))

	t.Run("without stitching", func(t *testing.T) {
		b := niftest.New()
		shape := b.TriShape("grid", b.TriShapeData(verts, tris))
		b.Roots(b.Node("root", shape))
		opts := optimize.DefaultOptions()
		opts.Stitch = false

		res, err := optimize.Geometry(b.G, shape, opts, nil)
		require.NoError(t, err)
		ts, _ := nif.Get[*nif.TriStrips](b.G, res.Ref)
		sd, _ := nif.Get[*nif.TriStripsData](b.G, ts.Data)
		assert.Greater(t, len(sd.Strips), 1)
	})
}

// rotations brings every triangle to its smallest-index-first rotation.
func rotations(tris [][3]uint16) [][3]uint16 {
	out := make([][3]uint16, len(tris))
	for i, t := range tris {
		for t[0] > t[1] || t[0] > t[2] {
			t = [3]uint16{t[1], t[2], t[0]}
		}
		out[i] = t
	}
	return out
}

func TestGeometryRoundTripWithoutDuplicates(t *testing.T) {
	verts, tris := niftest.Grid(8)
	b := niftest.New()
	d := &nif.TriStripsData{Strips: tristrip.Stripify(tris)}
	d.Vertices = verts
	d.UVSets = [][][2]float32{nil}
	for _, v := range verts {
		d.Normals = append(d.Normals, [3]float32{0, 0, 1})
		d.VertexColors = append(d.VertexColors, [4]float32{v[0] / 8, v[1] / 8, 0, 1})
		d.UVSets[0] = append(d.UVSets[0], [2]float32{v[0] / 8, v[1] / 8})
	}
	before, err := nif.CloneBlock(d)
	require.NoError(t, err)
	data := b.Add(d)
	strips := b.TriStrips("grid", data)
	b.Roots(b.Node("root", strips))

	res, err := optimize.Geometry(b.G, strips, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.False(t, res.Replaced())

	orig := before.(*nif.TriStripsData)
	assert.Equal(t, orig.Vertices, d.Vertices)
	assert.Equal(t, orig.Normals, d.Normals)
	assert.Equal(t, orig.UVSets, d.UVSets)
	assert.Equal(t, orig.VertexColors, d.VertexColors)
	assert.ElementsMatch(t, rotations(tristrip.Triangulate(orig.Strips)), rotations(tristrip.Triangulate(d.Strips)))
}

func TestGeometryDropsDegenerate(t *testing.T) {
	b := niftest.New()
	shape := b.TriShape("tiny", b.TriShapeData([][3]float32{vA, vB}, nil))

	res, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.True(t, res.Dropped)
	assert.Equal(t, nif.Nil, res.Ref)
	assert.NotNil(t, b.G.Block(shape))
}

func TestGeometryErrors(t *testing.T) {
	b := niftest.New()
	node := b.Node("node")
	_, err := optimize.Geometry(b.G, node, optimize.DefaultOptions(), nil)
	assert.ErrorIs(t, err, optimize.ErrNotGeometry)

	noData := b.TriShape("nodata", nif.Nil)
	_, err = optimize.Geometry(b.G, noData, optimize.DefaultOptions(), nil)
	assert.ErrorIs(t, err, optimize.ErrNoData)

	bad := b.TriShape("bad", b.TriShapeData([][3]float32{vA, vB, vC}, [][3]uint16{{0, 1, 7}}))
	_, err = optimize.Geometry(b.G, bad, optimize.DefaultOptions(), nil)
	assert.ErrorIs(t, err, optimize.ErrIndexRange)
}

func TestGeometryRemapsSkin(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData([][3]float32{vA, vB, vA, vC}, [][3]uint16{{0, 1, 2}, {1, 2, 3}})
	bone0, bone1 := b.Node("bone0"), b.Node("bone1")
	sd := nif.MustNew(nif.KindSkinData).(*nif.SkinData)
	sd.Bones = []nif.BoneData{
		{VertexWeights: []nif.SkinWeight{{Index: 0, Weight: 0.6}, {Index: 1, Weight: 1}, {Index: 2, Weight: 0.3}}},
		{VertexWeights: []nif.SkinWeight{{Index: 0, Weight: 0.4}, {Index: 2, Weight: 0.7}, {Index: 3, Weight: 1}}},
	}
	part := &nif.SkinPartition{}
	inst := &nif.SkinInstance{Data: b.Add(sd), SkinPartition: b.Add(part), Bones: []nif.Ref{bone0, bone1}}
	shape := b.TriShape("skinned", data)
	b.Geom(shape).Geom().SkinInstance = b.Add(inst)
	b.Roots(b.Node("root", shape, bone0, bone1))

	_, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)

	// Vertex 0 keeps the weights of old vertex 0, not of its duplicate 2.
	assert.Equal(t, []nif.SkinWeight{{Index: 0, Weight: 0.6}, {Index: 1, Weight: 1}}, sd.Bones[0].VertexWeights)
	assert.Equal(t, []nif.SkinWeight{{Index: 0, Weight: 0.4}, {Index: 2, Weight: 1}}, sd.Bones[1].VertexWeights)

	require.Len(t, part.Partitions, 1)
	p := part.Partitions[0]
	assert.Equal(t, []uint16{0, 1}, p.Bones)
	assert.Equal(t, []uint16{1, 0, 2}, p.VertexMap)
	assert.Equal(t, uint16(2), p.NumWeightsPerVertex)
	assert.Equal(t, [][]uint8{{0, 0}, {0, 1}, {1, 0}}, p.BoneIndices)
	require.Len(t, p.VertexWeights, 3)
	assert.InDeltaSlice(t, []float32{0.6, 0.4}, p.VertexWeights[1], 1e-6)
	assert.Equal(t, [][]uint16{{0, 1, 2}}, p.Strips)
	assert.Empty(t, p.Triangles)
}

func TestGeometrySkinPartitionLimits(t *testing.T) {
	verts, tris := niftest.Grid(4)
	b := niftest.New()
	sd := nif.MustNew(nif.KindSkinData).(*nif.SkinData)
	// Every vertex gets six influences; each column of vertices its own bones.
	for bone := 0; bone < 30; bone++ {
		var ws []nif.SkinWeight
		for i := range verts {
			if (i%5)*6 <= bone && bone < (i%5)*6+6 {
				ws = append(ws, nif.SkinWeight{Index: uint16(i), Weight: float32(bone%6+1) / 21})
			}
		}
		sd.Bones = append(sd.Bones, nif.BoneData{VertexWeights: ws})
	}
	part := &nif.SkinPartition{}
	sd.SkinPartition = b.Add(part)
	inst := &nif.SkinInstance{Data: b.Add(sd)}
	shape := b.TriShape("skinned", b.TriShapeData(verts, tris))
	b.Geom(shape).Geom().SkinInstance = b.Add(inst)
	b.Roots(b.Node("root", shape))

	res, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 25, res.VerticesAfter)

	require.Greater(t, len(part.Partitions), 1)
	covered := 0
	for _, p := range part.Partitions {
		assert.LessOrEqual(t, len(p.Bones), 18)
		assert.LessOrEqual(t, int(p.NumWeightsPerVertex), 4)
		for _, ws := range p.VertexWeights {
			var sum float32
			for _, w := range ws {
				sum += w
			}
			assert.InDelta(t, 1, sum, 1e-5)
		}
		covered += len(tristrip.Triangulate(p.Strips))
	}
	assert.Equal(t, len(tris), covered)
}

func TestGeometryRemapsMorphs(t *testing.T) {
	b := niftest.New()
	verts := [][3]float32{vA, vB, vA, vC}
	data := b.TriStripsData(verts, []uint16{0, 1, 3})
	md := &nif.MorphData{NumVertices: 4, Morphs: []nif.Morph{
		{FrameName: "base", Vectors: [][3]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
		{FrameName: "smile", Vectors: [][3]float32{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}}},
	}}
	ctrl := nif.MustNew(nif.KindGeomMorpherController).(*nif.GeomMorpherController)
	ctrl.Data = b.Add(md)
	other := nif.MustNew(nif.KindMaterialColorController).(*nif.MaterialColorController)
	strips := b.TriStrips("face", data)
	other.NextController = b.Add(ctrl)
	b.Geom(strips).Net().Controller = b.Add(other)
	ctrl.Target = strips
	b.Roots(b.Node("root", strips))

	_, err := optimize.Geometry(b.G, strips, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), md.NumVertices)
	assert.Equal(t, [][3]float32{{1, 0, 0}, {2, 0, 0}, {4, 0, 0}}, md.Morphs[1].Vectors)
	assert.Len(t, md.Morphs[0].Vectors, 3)
}

func TestGeometryRecomputesTangentSpace(t *testing.T) {
	b := niftest.New()
	quad := niftest.Quad()
	d := &nif.TriShapeData{Triangles: [][3]uint16{{0, 1, 2}, {0, 2, 3}}}
	d.Vertices = append(quad, quad[0])
	d.Triangles = append(d.Triangles, [3]uint16{4, 2, 3})
	d.Normals = [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	d.UVSets = [][][2]float32{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	ts := &nif.BinaryExtraData{Name: nif.TangentSpaceName, Data: []byte{1, 2, 3}}
	shape := b.TriShape("quad", b.Add(d))
	b.Geom(shape).Net().ExtraData = []nif.Ref{b.Add(ts)}
	b.Roots(b.Node("root", shape))

	_, err := optimize.Geometry(b.G, shape, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, ts.Data, 4*2*3*4)

	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(ts.Data[4*i:])) }
	assert.InDeltaSlice(t, []float32{1, 0, 0}, []float32{f(0), f(1), f(2)}, 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, []float32{f(12), f(13), f(14)}, 1e-6)
}

func TestTangentSpaceNeedsNormalsAndUVs(t *testing.T) {
	d := &nif.GeometryData{Vertices: niftest.Quad()}
	tan, bin := optimize.TangentSpace(d, [][3]uint16{{0, 1, 2}})
	assert.Nil(t, tan)
	assert.Nil(t, bin)
}
