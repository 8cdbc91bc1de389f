package optimize

import (
	"encoding/binary"
	"math"

	"nif-optimizer/internal/mathutil"
	"nif-optimizer/internal/nif"
)

// tangentSpace returns the cached tangent space block attached to geom.
func tangentSpace(g *nif.Graph, geom nif.Geom) *nif.BinaryExtraData {
	for _, r := range geom.Net().ExtraData {
		if x, ok := nif.Get[*nif.BinaryExtraData](g, r); ok && x.Name == nif.TangentSpaceName {
			return x
		}
	}
	return nil
}

// TangentSpace computes per-vertex tangents and binormals from the
// positions, normals and first UV set, orthogonalized against the normal.
// It returns nil slices when normals or UVs are missing.
func TangentSpace(gd *nif.GeometryData, tris [][3]uint16) (tangents, binormals []mathutil.Vec3) {
	n := gd.NumVertices()
	if len(gd.Normals) != n || len(gd.UVSets) == 0 || len(gd.UVSets[0]) != n {
		return nil, nil
	}
	uv := gd.UVSets[0]
	tan := make([]mathutil.Vec3, n)
	bin := make([]mathutil.Vec3, n)
	for _, t := range tris {
		if int(t[0]) >= n || int(t[1]) >= n || int(t[2]) >= n {
			continue
		}
		p0, p1, p2 := mathutil.V32(gd.Vertices[t[0]]), mathutil.V32(gd.Vertices[t[1]]), mathutil.V32(gd.Vertices[t[2]])
		e1, e2 := p1.Sub(p0), p2.Sub(p0)
		s1 := float64(uv[t[1]][0] - uv[t[0]][0])
		t1 := float64(uv[t[1]][1] - uv[t[0]][1])
		s2 := float64(uv[t[2]][0] - uv[t[0]][0])
		t2 := float64(uv[t[2]][1] - uv[t[0]][1])
		det := s1*t2 - s2*t1
		if math.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		sdir := e1.Scale(t2).Sub(e2.Scale(t1)).Scale(r)
		tdir := e2.Scale(s1).Sub(e1.Scale(s2)).Scale(r)
		for _, v := range t {
			tan[v] = tan[v].Add(sdir)
			bin[v] = bin[v].Add(tdir)
		}
	}
	tangents = make([]mathutil.Vec3, n)
	binormals = make([]mathutil.Vec3, n)
	for i := 0; i < n; i++ {
		nv := mathutil.V32(gd.Normals[i]).Normalize()
		t := tan[i].Sub(nv.Scale(nv.Dot(tan[i]))).Normalize()
		if t.Len() == 0 {
			t = nv.Perpendicular()
		}
		b := nv.Cross(t)
		if b.Dot(bin[i]) < 0 {
			b = b.Scale(-1)
		}
		tangents[i] = t
		binormals[i] = b
	}
	return tangents, binormals
}

// updateTangentSpace rewrites the tangent space payload: every tangent
// then every binormal, three little-endian float32 each.
func updateTangentSpace(x *nif.BinaryExtraData, geom nif.Geom, g *nif.Graph, tris [][3]uint16) {
	data, ok := nif.Get[nif.GeomData](g, geom.Geom().Data)
	if !ok {
		return
	}
	tangents, binormals := TangentSpace(data.GeomData(), tris)
	if tangents == nil {
		return
	}
	buf := make([]byte, 0, 24*len(tangents))
	for _, vs := range [][]mathutil.Vec3{tangents, binormals} {
		for _, v := range vs {
			for _, c := range v {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c)))
			}
		}
	}
	x.Data = buf
}
