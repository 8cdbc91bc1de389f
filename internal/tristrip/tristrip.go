// Package tristrip converts between triangle lists and triangle strips.
//
// A strip s encodes the triangles (s[k], s[k+1], s[k+2]) for even k and
// (s[k], s[k+2], s[k+1]) for odd k, so every triangle keeps its winding.
package tristrip

// Triangulate expands strips into a triangle list. Degenerate triangles,
// including the bridges left by Stitch, are skipped.
func Triangulate(strips [][]uint16) [][3]uint16 {
	var tris [][3]uint16
	for _, s := range strips {
		for k := 0; k+2 < len(s); k++ {
			t0, t1, t2 := s[k], s[k+1], s[k+2]
			if t0 == t1 || t1 == t2 || t2 == t0 {
				continue
			}
			if k%2 == 0 {
				tris = append(tris, [3]uint16{t0, t1, t2})
			} else {
				tris = append(tris, [3]uint16{t0, t2, t1})
			}
		}
	}
	return tris
}

type edge [2]uint16

type adjacency struct {
	tris  [][3]uint16
	edges map[edge][]int // directed edge -> triangles carrying it
	used  []bool
}

func newAdjacency(tris [][3]uint16) *adjacency {
	a := &adjacency{
		tris:  tris,
		edges: make(map[edge][]int, len(tris)*3),
		used:  make([]bool, len(tris)),
	}
	for i, t := range tris {
		if degenerate(t) {
			a.used[i] = true
			continue
		}
		for j := 0; j < 3; j++ {
			e := edge{t[j], t[(j+1)%3]}
			a.edges[e] = append(a.edges[e], i)
		}
	}
	return a
}

// next returns an unused triangle carrying the directed edge from -> to,
// other than the ones in taken, and its third vertex.
func (a *adjacency) next(from, to uint16, taken map[int]bool) (int, uint16, bool) {
	for _, i := range a.edges[edge{from, to}] {
		if a.used[i] || taken[i] {
			continue
		}
		t := a.tris[i]
		for j := 0; j < 3; j++ {
			if t[j] == from && t[(j+1)%3] == to {
				return i, t[(j+2)%3], true
			}
		}
	}
	return 0, 0, false
}

// grow extends a strip that starts with the triangle start, in the given
// rotation, as far as unused neighbours allow.
func (a *adjacency) grow(start int, rot int) ([]uint16, []int) {
	t := a.tris[start]
	strip := []uint16{t[rot], t[(rot+1)%3], t[(rot+2)%3]}
	members := []int{start}
	taken := map[int]bool{start: true}
	for {
		p := len(strip) - 2
		x, y := strip[p], strip[p+1]
		var i int
		var z uint16
		var ok bool
		if p%2 == 0 {
			i, z, ok = a.next(x, y, taken)
		} else {
			i, z, ok = a.next(y, x, taken)
		}
		if !ok {
			return strip, members
		}
		strip = append(strip, z)
		members = append(members, i)
		taken[i] = true
	}
}

// Stripify builds strips covering every non-degenerate triangle of tris.
// Strips are grown greedily in triangle order; each strip starts from the
// rotation of its first triangle that yields the longest strip.
func Stripify(tris [][3]uint16) [][]uint16 {
	a := newAdjacency(tris)
	var strips [][]uint16
	for start := range tris {
		if a.used[start] {
			continue
		}
		var best []uint16
		var bestMembers []int
		for rot := 0; rot < 3; rot++ {
			s, m := a.grow(start, rot)
			if len(s) > len(best) {
				best, bestMembers = s, m
			}
		}
		for _, i := range bestMembers {
			a.used[i] = true
		}
		strips = append(strips, best)
	}
	return strips
}

// Stitch joins strips into one, bridging with degenerate triangles. Every
// strip is placed at an even position so its winding is kept.
func Stitch(strips [][]uint16) []uint16 {
	var out []uint16
	for _, s := range strips {
		if len(s) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, out[len(out)-1], s[0])
			if len(out)%2 == 1 {
				out = append(out, s[0])
			}
		}
		out = append(out, s...)
	}
	return out
}

// AverageLength is the strip length average weighted towards long strips:
// sum(len^2) / sum(len), with the denominator floored at 1.
func AverageLength(strips [][]uint16) float64 {
	var sq, sum int
	for _, s := range strips {
		sq += len(s) * len(s)
		sum += len(s)
	}
	if sum < 1 {
		sum = 1
	}
	return float64(sq) / float64(sum)
}

// IndexCount is the total number of indices over all strips.
func IndexCount(strips [][]uint16) int {
	n := 0
	for _, s := range strips {
		n += len(s)
	}
	return n
}

func degenerate(t [3]uint16) bool {
	return t[0] == t[1] || t[1] == t[2] || t[2] == t[0]
}
