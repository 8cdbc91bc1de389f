package optimize

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
)

// Remap is the vertex index mapping produced by welding. Map sends every
// old index to its new index; Inverse sends every new index to the first
// old index that produced it.
type Remap struct {
	Map     []int
	Inverse []int
}

// Len returns the welded vertex count.
func (m Remap) Len() int { return len(m.Inverse) }

// Index maps one old connectivity index.
func (m Remap) Index(old uint16) (uint16, error) {
	if int(old) >= len(m.Map) {
		return 0, errors.Wrapf(ErrIndexRange, "index %d of %d", old, len(m.Map))
	}
	return uint16(m.Map[old]), nil
}

var pow10 = [...]float64{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9}

func quantize(x float32, digits int) int64 {
	if digits < 0 {
		digits = 0
	}
	if digits >= len(pow10) {
		digits = len(pow10) - 1
	}
	return int64(math.Round(float64(x) * pow10[digits]))
}

// vertexKey appends the quantized attributes of vertex i to key.
func vertexKey(d *nif.GeometryData, i int, p Precision, key []int64) []int64 {
	for _, x := range d.Vertices[i] {
		key = append(key, quantize(x, p.Vertex))
	}
	if len(d.Normals) > 0 {
		for _, x := range d.Normals[i] {
			key = append(key, quantize(x, p.Normal))
		}
	}
	for _, set := range d.UVSets {
		for _, x := range set[i] {
			key = append(key, quantize(x, p.UV))
		}
	}
	if len(d.VertexColors) > 0 {
		for _, x := range d.VertexColors[i] {
			key = append(key, quantize(x, p.Color))
		}
	}
	return key
}

func checkLengths(d *nif.GeometryData) error {
	n := len(d.Vertices)
	if len(d.Normals) != 0 && len(d.Normals) != n {
		return errors.Wrapf(ErrArrayLength, "%d normals for %d vertices", len(d.Normals), n)
	}
	for i, set := range d.UVSets {
		if len(set) != n {
			return errors.Wrapf(ErrArrayLength, "uv set %d has %d entries for %d vertices", i, len(set), n)
		}
	}
	if len(d.VertexColors) != 0 && len(d.VertexColors) != n {
		return errors.Wrapf(ErrArrayLength, "%d colors for %d vertices", len(d.VertexColors), n)
	}
	return nil
}

// Weld finds the distinct vertices of d. Two vertices are the same when
// every attribute agrees at the given precision. New indices follow the
// order of first appearance.
func Weld(d *nif.GeometryData, p Precision) (Remap, error) {
	if err := checkLengths(d); err != nil {
		return Remap{}, err
	}
	n := len(d.Vertices)
	m := Remap{Map: make([]int, n)}
	buckets := make(map[uint64][]int, n)
	var keys [][]int64
	var key []int64
	var buf [8]byte
	h := xxhash.New()
	for i := 0; i < n; i++ {
		key = vertexKey(d, i, p, key[:0])
		h.Reset()
		for _, k := range key {
			binary.LittleEndian.PutUint64(buf[:], uint64(k))
			_, _ = h.Write(buf[:])
		}
		sum := h.Sum64()
		idx := -1
		for _, c := range buckets[sum] {
			if equalKeys(keys[c], key) {
				idx = c
				break
			}
		}
		if idx < 0 {
			idx = len(m.Inverse)
			m.Inverse = append(m.Inverse, i)
			keys = append(keys, append([]int64(nil), key...))
			buckets[sum] = append(buckets[sum], idx)
		}
		m.Map[i] = idx
	}
	return m, nil
}

func equalKeys(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Apply rewrites every per-vertex array of d to the welded vertex count,
// taking each value from the first old vertex. Absent arrays stay absent.
func (m Remap) Apply(d *nif.GeometryData) {
	d.Vertices = gather(d.Vertices, m.Inverse)
	d.Normals = gather(d.Normals, m.Inverse)
	for i := range d.UVSets {
		d.UVSets[i] = gather(d.UVSets[i], m.Inverse)
	}
	d.VertexColors = gather(d.VertexColors, m.Inverse)
}

// gather picks src[inv[i]] for every new index i. An empty src stays empty;
// indices past the end of src yield the zero value.
func gather[T any](src []T, inv []int) []T {
	if len(src) == 0 {
		return src
	}
	out := make([]T, len(inv))
	for i, old := range inv {
		if old < len(src) {
			out[i] = src[old]
		}
	}
	return out
}
