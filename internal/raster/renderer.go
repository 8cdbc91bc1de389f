// Package raster is a small software renderer for scene previews.
package raster

import (
	"image"
	"math"

	"nif-optimizer/internal/mathutil"
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/texture"
	"nif-optimizer/internal/tristrip"
)

// Options controls a preview render.
type Options struct {
	Size        int
	Supersample int
	Camera      mathutil.Mat3
	Light       LightConfig
}

// DefaultOptions renders 256 pixel previews at twice the resolution.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Camera: mathutil.PreviewCamera, Light: DefaultLightConfig()}
}

// Mesh is a geometry block resolved into world space with its inherited
// properties.
type Mesh struct {
	Ref      nif.Ref
	Verts    []mathutil.Vec3
	UVs      [][2]float32
	Colors   [][4]float32
	Tris     [][3]uint16
	Texture  string
	Diffuse  [3]float32
	Alpha    float32
	Additive bool
}

const hiddenFlag = 1

// inherited is the property state along the path from a root.
type inherited struct {
	xf                  mathutil.Transform
	texturing, material nif.Ref
	alpha               nif.Ref
}

// Collect resolves every visible geometry reachable from the roots of g.
// Properties are inherited down the tree; a property on a child overrides
// one of the same kind above it.
func Collect(g *nif.Graph) []Mesh {
	var out []Mesh
	onPath := make(map[nif.Ref]bool)

	var visit func(r nif.Ref, st inherited)
	visit = func(r nif.Ref, st inherited) {
		av, ok := nif.Get[nif.AV](g, r)
		if !ok || onPath[r] || av.AV().Flags&hiddenFlag != 0 {
			return
		}
		onPath[r] = true
		defer delete(onPath, r)

		a := av.AV()
		st.xf = mathutil.Transform{
			Rotation:    mathutil.M32(a.Rotation),
			Translation: mathutil.V32(a.Translation),
			Scale:       float64(a.Scale),
		}.Then(st.xf)
		for _, p := range a.Properties {
			switch g.Block(p).(type) {
			case *nif.TexturingProperty:
				st.texturing = p
			case *nif.MaterialProperty:
				st.material = p
			case *nif.AlphaProperty:
				st.alpha = p
			}
		}

		switch b := av.(type) {
		case *nif.Node:
			for _, c := range b.Children {
				visit(c, st)
			}
		case nif.Geom:
			if m, ok := resolve(g, r, b, st); ok {
				out = append(out, m)
			}
		}
	}
	for _, r := range g.Roots() {
		visit(r, inherited{xf: mathutil.Identity})
	}
	return out
}

func resolve(g *nif.Graph, r nif.Ref, geom nif.Geom, st inherited) (Mesh, bool) {
	data, ok := nif.Get[nif.GeomData](g, geom.Geom().Data)
	if !ok {
		return Mesh{}, false
	}
	m := Mesh{Ref: r, Diffuse: [3]float32{1, 1, 1}, Alpha: 1}
	switch d := data.(type) {
	case *nif.TriShapeData:
		m.Tris = d.Triangles
	case *nif.TriStripsData:
		m.Tris = tristrip.Triangulate(d.Strips)
	default:
		return Mesh{}, false
	}

	gd := data.GeomData()
	m.Verts = make([]mathutil.Vec3, len(gd.Vertices))
	for i, v := range gd.Vertices {
		m.Verts[i] = st.xf.Apply(mathutil.V32(v))
	}
	if len(gd.UVSets) > 0 {
		m.UVs = gd.UVSets[0]
	}
	m.Colors = gd.VertexColors

	if tp, ok := nif.Get[*nif.TexturingProperty](g, st.texturing); ok {
		if src, ok := nif.Get[*nif.SourceTexture](g, tp.BaseTexture); ok {
			m.Texture = src.FileName
		}
	}
	if mp, ok := nif.Get[*nif.MaterialProperty](g, st.material); ok {
		m.Diffuse = mp.Diffuse
		m.Alpha = mp.Alpha
	}
	if ap, ok := nif.Get[*nif.AlphaProperty](g, st.alpha); ok {
		m.Additive = ap.Additive()
	}
	return m, true
}

// RenderScene renders every visible geometry of g. The image is
// Size*Supersample pixels square; see postprocess.Downsample.
func RenderScene(g *nif.Graph, tex texture.Resolver, opts Options) *image.NRGBA {
	return RenderMeshes(Collect(g), tex, opts)
}

// RenderMeshes renders meshes fitted to the frame. Opaque meshes are drawn
// before additive ones.
func RenderMeshes(meshes []Mesh, tex texture.Resolver, opts Options) *image.NRGBA {
	renderSize := opts.Size * max(opts.Supersample, 1)
	fb := NewFrameBuffer(renderSize, renderSize)

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	views := make([][]mathutil.Vec3, len(meshes))
	for i, m := range meshes {
		views[i] = make([]mathutil.Vec3, len(m.Verts))
		for j, v := range m.Verts {
			p := opts.Camera.MulVec3(v)
			views[i][j] = p
			lo, hi = lo.Min(p), hi.Max(p)
		}
	}
	if lo[0] > hi[0] {
		return fb.Image()
	}

	center := lo.Add(hi).Scale(0.5)
	span := math.Max(math.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	margin := float64(renderSize) / 16
	scale := (float64(renderSize) - 2*margin) / span
	half := float64(renderSize) / 2

	for _, additive := range []bool{false, true} {
		for i := range meshes {
			m := &meshes[i]
			if m.Additive != additive {
				continue
			}
			s := Surface{Additive: additive}
			if tex != nil && m.Texture != "" && len(m.UVs) == len(m.Verts) {
				s.Texture = tex.Resolve(m.Texture)
			}
			verts := project(m, views[i], center, scale, half, s.Texture != nil)
			for _, t := range m.Tris {
				if int(t[0]) >= len(verts) || int(t[1]) >= len(verts) || int(t[2]) >= len(verts) {
					continue
				}
				RasterizeTriangle(fb, [3]Vertex{verts[t[0]], verts[t[1]], verts[t[2]]}, s, &opts.Light)
			}
		}
	}
	return fb.Image()
}

// untextured is the base colour of meshes with neither texture nor vertex
// colours.
var untextured = [4]float64{160, 160, 170, 255}

func project(m *Mesh, view []mathutil.Vec3, center mathutil.Vec3, scale, half float64, textured bool) []Vertex {
	out := make([]Vertex, len(view))
	for i, p := range view {
		v := Vertex{
			X: (p[0]-center[0])*scale + half,
			Y: half - (p[1]-center[1])*scale,
			Z: p[2] - center[2],
		}
		if textured {
			v.U, v.V = float64(m.UVs[i][0]), float64(m.UVs[i][1])
		}

		base := untextured
		if textured {
			base = [4]float64{255, 255, 255, 255}
		}
		if len(m.Colors) == len(view) {
			c := m.Colors[i]
			base = [4]float64{float64(c[0]) * 255, float64(c[1]) * 255, float64(c[2]) * 255, float64(c[3]) * 255}
		}
		for k := 0; k < 3; k++ {
			v.Color[k] = base[k] * float64(m.Diffuse[k])
		}
		v.Color[3] = base[3] * float64(m.Alpha)
		out[i] = v
	}
	return out
}
