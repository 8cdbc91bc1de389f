package optimize

import (
	"sort"

	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/tristrip"
)

type boneWeight struct {
	Bone   int
	Weight float32
}

type skinBinding struct {
	inst *nif.SkinInstance
	data *nif.SkinData
}

func skinOf(g *nif.Graph, geom *nif.Geometry) *skinBinding {
	inst, ok := nif.Get[*nif.SkinInstance](g, geom.SkinInstance)
	if !ok {
		return nil
	}
	data, ok := nif.Get[*nif.SkinData](g, inst.Data)
	if !ok {
		return nil
	}
	return &skinBinding{inst: inst, data: data}
}

// partition returns the skin partition cache, looked up on the instance
// first and on the skin data second.
func (s *skinBinding) partition(g *nif.Graph) *nif.SkinPartition {
	if p, ok := nif.Get[*nif.SkinPartition](g, s.inst.SkinPartition); ok {
		return p
	}
	if p, ok := nif.Get[*nif.SkinPartition](g, s.data.SkinPartition); ok {
		return p
	}
	return nil
}

// vertexWeights inverts the per-bone weight lists into per-vertex lists.
// Weights addressing vertices past n are ignored.
func vertexWeights(sd *nif.SkinData, n int) [][]boneWeight {
	out := make([][]boneWeight, n)
	for b, bone := range sd.Bones {
		for _, w := range bone.VertexWeights {
			if int(w.Index) < n {
				out[w.Index] = append(out[w.Index], boneWeight{Bone: b, Weight: w.Weight})
			}
		}
	}
	return out
}

// rebuildBoneWeights stores per-vertex weights back into the per-bone lists.
func rebuildBoneWeights(sd *nif.SkinData, weights [][]boneWeight) {
	for b := range sd.Bones {
		var list []nif.SkinWeight
		for i, ws := range weights {
			for _, w := range ws {
				if w.Bone == b {
					list = append(list, nif.SkinWeight{Index: uint16(i), Weight: w.Weight})
				}
			}
		}
		sd.Bones[b].VertexWeights = list
	}
}

// limitWeights keeps the strongest maxPerVertex influences, renormalized.
func limitWeights(ws []boneWeight, maxPerVertex int) []boneWeight {
	out := append([]boneWeight(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > maxPerVertex {
		out = out[:maxPerVertex]
	}
	var total float32
	for _, w := range out {
		total += w.Weight
	}
	if total > 0 {
		for i := range out {
			out[i].Weight /= total
		}
	}
	return out
}

type partitionBuilder struct {
	bones map[int]bool
	tris  [][3]uint16
}

func (p *partitionBuilder) fits(bones map[int]bool, max int) bool {
	n := len(p.bones)
	for b := range bones {
		if !p.bones[b] {
			n++
		}
	}
	return n <= max
}

// buildPartitions splits the triangles into partitions that each use at
// most maxBones bones, with at most maxPerVertex influences per vertex.
// Triangles go to the first partition that can take their bones.
func buildPartitions(weights [][]boneWeight, tris [][3]uint16, maxBones, maxPerVertex int) ([]nif.Partition, error) {
	limited := make([][]boneWeight, len(weights))
	for i, ws := range weights {
		limited[i] = limitWeights(ws, maxPerVertex)
	}

	var builders []*partitionBuilder
	for ti, t := range tris {
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			continue
		}
		bones := make(map[int]bool)
		for _, v := range t {
			if int(v) >= len(limited) {
				return nil, errors.Wrapf(ErrIndexRange, "triangle %d vertex %d", ti, v)
			}
			for _, w := range limited[v] {
				bones[w.Bone] = true
			}
		}
		if len(bones) > maxBones {
			return nil, errors.Wrapf(ErrTooManyBones, "triangle %d uses %d bones, limit %d", ti, len(bones), maxBones)
		}
		var target *partitionBuilder
		for _, pb := range builders {
			if pb.fits(bones, maxBones) {
				target = pb
				break
			}
		}
		if target == nil {
			target = &partitionBuilder{bones: make(map[int]bool)}
			builders = append(builders, target)
		}
		for b := range bones {
			target.bones[b] = true
		}
		target.tris = append(target.tris, t)
	}

	parts := make([]nif.Partition, 0, len(builders))
	for _, pb := range builders {
		parts = append(parts, pb.build(limited))
	}
	return parts, nil
}

func (p *partitionBuilder) build(weights [][]boneWeight) nif.Partition {
	bones := make([]int, 0, len(p.bones))
	for b := range p.bones {
		bones = append(bones, b)
	}
	sort.Ints(bones)
	local := make(map[int]uint8, len(bones))
	part := nif.Partition{}
	for i, b := range bones {
		local[b] = uint8(i)
		part.Bones = append(part.Bones, uint16(b))
	}

	vmap := make(map[uint16]uint16)
	var tris [][3]uint16
	for _, t := range p.tris {
		var lt [3]uint16
		for j, v := range t {
			idx, ok := vmap[v]
			if !ok {
				idx = uint16(len(part.VertexMap))
				vmap[v] = idx
				part.VertexMap = append(part.VertexMap, v)
			}
			lt[j] = idx
		}
		tris = append(tris, lt)
	}

	per := 1
	for _, v := range part.VertexMap {
		if n := len(weights[v]); n > per {
			per = n
		}
	}
	part.NumWeightsPerVertex = uint16(per)
	for _, v := range part.VertexMap {
		ws := make([]float32, per)
		bi := make([]uint8, per)
		for j, w := range weights[v] {
			ws[j] = w.Weight
			bi[j] = local[w.Bone]
		}
		part.VertexWeights = append(part.VertexWeights, ws)
		part.BoneIndices = append(part.BoneIndices, bi)
	}
	part.Strips = tristrip.Stripify(tris)
	return part
}
