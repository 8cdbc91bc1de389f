package optimize

import "nif-optimizer/internal/nif"

// morphData returns the morph data of every morpher controller on geom.
func morphData(g *nif.Graph, geom nif.Geom) []*nif.MorphData {
	var out []*nif.MorphData
	seen := make(map[nif.Ref]bool)
	for c := geom.Net().Controller; c != nif.Nil && !seen[c]; {
		seen[c] = true
		ctrl, ok := nif.Get[nif.Ctrl](g, c)
		if !ok {
			break
		}
		if m, ok := ctrl.(*nif.GeomMorpherController); ok {
			if md, ok := nif.Get[*nif.MorphData](g, m.Data); ok {
				out = append(out, md)
			}
		}
		c = ctrl.Ctrl().NextController
	}
	return out
}

// remapMorphs moves every morph delta to its welded vertex and resizes the
// morph targets to the welded vertex count.
func remapMorphs(md *nif.MorphData, m Remap) {
	for i := range md.Morphs {
		vecs := md.Morphs[i].Vectors
		out := make([][3]float32, m.Len())
		for j, old := range m.Inverse {
			if old < len(vecs) {
				out[j] = vecs[old]
			}
		}
		md.Morphs[i].Vectors = out
	}
	md.NumVertices = uint32(m.Len())
}
