// Package niftest builds small scene graphs for tests.
package niftest

import "nif-optimizer/internal/nif"

// Builder appends blocks to a graph.
type Builder struct {
	G *nif.Graph
}

// New returns a builder over an empty graph.
func New() *Builder {
	return &Builder{G: nif.NewGraph("20.0.0.5")}
}

// Add appends b and returns its ref.
func (b *Builder) Add(blk nif.Block) nif.Ref { return b.G.Add(blk) }

// Roots sets the graph roots.
func (b *Builder) Roots(refs ...nif.Ref) *Builder {
	b.G.SetRoots(refs...)
	return b
}

// Node adds a NiNode with the given children.
func (b *Builder) Node(name string, children ...nif.Ref) nif.Ref {
	n := nif.MustNew(nif.KindNode).(*nif.Node)
	n.Name = name
	n.Children = children
	return b.Add(n)
}

// TriShapeData adds triangle list data.
func (b *Builder) TriShapeData(verts [][3]float32, tris [][3]uint16) nif.Ref {
	d := &nif.TriShapeData{Triangles: tris}
	d.Vertices = verts
	return b.Add(d)
}

// TriStripsData adds strips data.
func (b *Builder) TriStripsData(verts [][3]float32, strips ...[]uint16) nif.Ref {
	d := &nif.TriStripsData{Strips: strips}
	d.Vertices = verts
	return b.Add(d)
}

// TriShape adds a NiTriShape over data.
func (b *Builder) TriShape(name string, data nif.Ref) nif.Ref {
	s := nif.MustNew(nif.KindTriShape).(*nif.TriShape)
	s.Name = name
	s.Data = data
	return b.Add(s)
}

// TriStrips adds a NiTriStrips over data.
func (b *Builder) TriStrips(name string, data nif.Ref) nif.Ref {
	s := nif.MustNew(nif.KindTriStrips).(*nif.TriStrips)
	s.Name = name
	s.Data = data
	return b.Add(s)
}

// Material adds a NiMaterialProperty with the given alpha.
func (b *Builder) Material(name string, alpha float32) nif.Ref {
	m := nif.MustNew(nif.KindMaterialProperty).(*nif.MaterialProperty)
	m.Name = name
	m.Alpha = alpha
	return b.Add(m)
}

// Texture adds a NiSourceTexture.
func (b *Builder) Texture(file string) nif.Ref {
	t := nif.MustNew(nif.KindSourceTexture).(*nif.SourceTexture)
	t.FileName = file
	return b.Add(t)
}

// Geom returns the geometry block at r.
func (b *Builder) Geom(r nif.Ref) nif.Geom {
	g, _ := nif.Get[nif.Geom](b.G, r)
	return g
}

// NodeAt returns the NiNode at r.
func (b *Builder) NodeAt(r nif.Ref) *nif.Node {
	n, _ := nif.Get[*nif.Node](b.G, r)
	return n
}

// Quad returns the four corners of a unit square in the XY plane.
func Quad() [][3]float32 {
	return [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
}

// Grid returns an (n+1)x(n+1) vertex grid and its triangles.
func Grid(n int) ([][3]float32, [][3]uint16) {
	var verts [][3]float32
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			verts = append(verts, [3]float32{float32(x), float32(y), 0})
		}
	}
	var tris [][3]uint16
	w := n + 1
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := uint16(y*w + x)
			tris = append(tris,
				[3]uint16{i, i + 1, i + uint16(w)},
				[3]uint16{i + 1, i + uint16(w) + 1, i + uint16(w)})
		}
	}
	return verts, tris
}
