package optimize_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/nif/niftest"
	"nif-optimizer/internal/optimize"
	"nif-optimizer/internal/spell"
)

func TestRootDropsDegenerateGeometry(t *testing.T) {
	b := niftest.New()
	tinyData := b.TriShapeData([][3]float32{vA, vB}, nil)
	tiny := b.TriShape("tiny", tinyData)
	keep := b.TriShape("keep", b.TriShapeData([][3]float32{vA, vB, vC}, [][3]uint16{{0, 1, 2}}))
	inner := b.Node("inner", tiny)
	root := b.Node("root", tiny, keep, inner)
	ctrl := nif.MustNew(nif.KindTransformController).(*nif.TransformController)
	ctrl.Target = tiny
	b.NodeAt(root).Controller = b.Add(ctrl)
	pal := &nif.DefaultAVObjectPalette{Scene: root, Objects: []nif.AVObjectEntry{{Name: "tiny", Object: tiny}, {Name: "keep", Object: keep}}}
	b.Roots(root, b.Add(pal))

	rep, err := optimize.Root(b.G, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Dropped)
	assert.Len(t, rep.Results, 2)

	assert.Equal(t, []nif.Ref{keep, inner}, b.NodeAt(root).Children)
	assert.Empty(t, b.NodeAt(inner).Children)
	assert.Equal(t, nif.Nil, ctrl.Target)
	assert.Equal(t, nif.Nil, pal.Objects[0].Object)
	assert.Equal(t, keep, pal.Objects[1].Object)
	assert.Nil(t, b.G.Block(tiny))
	assert.Nil(t, b.G.Block(tinyData))
}

func TestRootReplacesEveryHolder(t *testing.T) {
	b := niftest.New()
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	data := b.TriStripsData(verts, []uint16{0, 1, 2, 3})
	strips := b.TriStrips("mesh", data)
	coll := &nif.CollisionObject{Target: strips}
	collRef := b.Add(coll)
	b.Geom(strips).AV().CollisionObject = collRef
	ctrl := nif.MustNew(nif.KindTransformController).(*nif.TransformController)
	ctrl.Target = strips
	b.Geom(strips).Net().Controller = b.Add(ctrl)
	root := b.Node("root", strips)
	other := b.Node("other", strips)
	b.NodeAt(root).Children = append(b.NodeAt(root).Children, other)
	pal := b.Add(&nif.DefaultAVObjectPalette{Scene: root, Objects: []nif.AVObjectEntry{{Name: "mesh", Object: strips}}})
	b.Roots(root, pal)

	rep, err := optimize.Root(b.G, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, 1, rep.Replaced)
	repl := rep.Results[0].Ref
	require.NotEqual(t, strips, repl)

	shape, ok := nif.Get[*nif.TriShape](b.G, repl)
	require.True(t, ok)
	assert.Equal(t, []nif.Ref{repl, other}, b.NodeAt(root).Children)
	assert.Equal(t, []nif.Ref{repl}, b.NodeAt(other).Children)
	assert.Equal(t, repl, ctrl.Target)
	assert.Equal(t, repl, coll.Target)
	p, _ := nif.Get[*nif.DefaultAVObjectPalette](b.G, pal)
	assert.Equal(t, repl, p.Objects[0].Object)
	assert.Nil(t, b.G.Block(strips))
	assert.Nil(t, b.G.Block(data))
	assert.Equal(t, collRef, shape.CollisionObject)
	assert.Equal(t, "mesh", shape.Name)
}

func TestRootStructuralError(t *testing.T) {
	b := niftest.New()
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	strips := b.TriStrips("emitted", b.TriStripsData(verts, []uint16{0, 1, 2}))
	emitter := b.Add(&nif.PSysMeshEmitter{Name: "emitter", EmitterMeshes: []nif.Ref{strips}})
	psys := nif.MustNew(nif.KindParticleSystem).(*nif.ParticleSystem)
	psys.Modifiers = []nif.Ref{emitter}
	root := b.Node("root", strips, b.Add(psys))
	b.Roots(root)

	_, err := optimize.Root(b.G, optimize.DefaultOptions(), nil)
	require.Error(t, err)
	var serr *optimize.StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, strips, serr.Block)
	assert.Equal(t, emitter, serr.Holder)
	assert.Equal(t, nif.KindPSysMeshEmitter, serr.HolderKind)
	assert.Contains(t, err.Error(), "NiPSysMeshEmitter")
}

func TestRootRespectsExclude(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData([][3]float32{vA, vB, vA, vC}, [][3]uint16{{0, 1, 3}})
	shape := b.TriShape("shape", data)
	b.Roots(b.Node("root", shape))

	opts := optimize.DefaultOptions()
	opts.Exclude = []nif.Kind{nif.KindTriShape}
	rep, err := optimize.Root(b.G, opts, nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
	d, _ := nif.Get[*nif.TriShapeData](b.G, data)
	assert.Len(t, d.Vertices, 4)
}

func TestDriverSpell(t *testing.T) {
	b := niftest.New()
	shared := b.TriShape("shared", b.TriShapeData([][3]float32{vA, vB, vA, vC}, [][3]uint16{{0, 1, 3}}))
	b.Roots(b.Node("root", shared, b.Node("child", shared)))

	toast := spell.NewToast(b.G, nil, spell.Options{})
	require.NoError(t, spell.Cast(toast, optimize.NewDriver(optimize.DefaultOptions())))
	assert.Equal(t, 1, toast.Stat("geometries_optimized"))
	assert.Equal(t, 4, toast.Stat("vertices_before"))
	assert.Equal(t, 3, toast.Stat("vertices_after"))

	empty := niftest.New()
	empty.Roots(empty.Node("root"))
	assert.False(t, optimize.NewDriver(optimize.DefaultOptions()).DataInspect(spell.NewToast(empty.G, nil, spell.Options{})))
}

func skinnedShape(b *niftest.Builder, name string, data nif.Ref, lastWeight float32) (nif.Ref, *nif.SkinData) {
	bone := b.Node(name + "_bone")
	sd := nif.MustNew(nif.KindSkinData).(*nif.SkinData)
	sd.Bones = []nif.BoneData{{VertexWeights: []nif.SkinWeight{
		{Index: 0, Weight: 1}, {Index: 1, Weight: 1}, {Index: 2, Weight: 1}, {Index: 3, Weight: lastWeight},
	}}}
	inst := &nif.SkinInstance{Data: b.Add(sd), Bones: []nif.Ref{bone}}
	shape := b.TriShape(name, data)
	b.Geom(shape).Geom().SkinInstance = b.Add(inst)
	return shape, sd
}

func TestRootDetachesSharedData(t *testing.T) {
	b := niftest.New()
	data := b.TriShapeData([][3]float32{vA, vB, vA, vC}, [][3]uint16{{0, 1, 2}, {1, 2, 3}})
	a, sdA := skinnedShape(b, "a", data, 1)
	c, sdC := skinnedShape(b, "c", data, 0.5)
	b.Roots(b.Node("root", a, c))

	rep, err := optimize.Root(b.G, optimize.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Detached)
	require.Len(t, rep.Results, 2)

	dataA, dataC := b.Geom(a).Geom().Data, b.Geom(c).Geom().Data
	assert.NotEqual(t, dataA, dataC)
	for _, d := range []nif.Ref{dataA, dataC} {
		shape, ok := nif.Get[*nif.TriShapeData](b.G, d)
		require.True(t, ok)
		assert.Len(t, shape.Vertices, 3)
	}
	want := func(last float32) []nif.SkinWeight {
		return []nif.SkinWeight{{Index: 0, Weight: 1}, {Index: 1, Weight: 1}, {Index: 2, Weight: last}}
	}
	assert.Equal(t, want(1), sdA.Bones[0].VertexWeights)
	assert.Equal(t, want(0.5), sdC.Bones[0].VertexWeights)
}
