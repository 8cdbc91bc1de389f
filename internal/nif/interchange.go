package nif

import (
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
)

// dataOptions compares the data-bearing fields of two blocks. Links are
// compared separately, through the edges.
var dataOptions = cmp.Options{
	cmpopts.IgnoreTypes(Ref(0), []Ref(nil)),
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b float32) bool { return math.Float32bits(a) == math.Float32bits(b) }),
}

// Fingerprint is a hash of the kind and data fields of a block. Blocks that
// are interchangeable always share a fingerprint.
type Fingerprint struct {
	Kind Kind
	Hash uint64
}

// FingerprintOf hashes the data fields of b, ignoring links.
func FingerprintOf(b Block) (Fingerprint, error) {
	h, err := hashstructure.Hash(b, hashstructure.FormatV2, &hashstructure.HashOptions{ZeroNil: true})
	if err != nil {
		return Fingerprint{}, errors.Wrapf(err, "fingerprint %s", b.Kind())
	}
	return Fingerprint{Kind: b.Kind(), Hash: h}, nil
}

// Comparer decides interchangeability between blocks of one graph. Pairs
// under comparison are assumed equal, so cyclic links terminate.
type Comparer struct {
	g       *Graph
	assumed map[[2]Ref]bool
	differ  map[[2]Ref]bool
}

// NewComparer returns a comparer over g.
func NewComparer(g *Graph) *Comparer {
	return &Comparer{
		g:       g,
		assumed: make(map[[2]Ref]bool),
		differ:  make(map[[2]Ref]bool),
	}
}

// Interchangeable reports whether a and b can replace each other: same
// kind, identical data fields, identical pointer links, and owning links
// that are identical or themselves interchangeable. Owning lists are
// compared as multisets, ignoring nil and repeated entries.
func Interchangeable(g *Graph, a, b Ref) bool {
	return NewComparer(g).Equal(a, b)
}

// Equal reports whether a and b are interchangeable.
func (c *Comparer) Equal(a, b Ref) bool {
	if a == b {
		return true
	}
	key := [2]Ref{a, b}
	if a > b {
		key = [2]Ref{b, a}
	}
	if c.assumed[key] {
		return true
	}
	if c.differ[key] {
		return false
	}
	c.assumed[key] = true
	ok := c.equal(a, b)
	delete(c.assumed, key)
	if !ok {
		c.differ[key] = true
	}
	return ok
}

func (c *Comparer) equal(a, b Ref) bool {
	ba, bb := c.g.Block(a), c.g.Block(b)
	if ba == nil || bb == nil || ba.Kind() != bb.Kind() {
		return false
	}
	if !cmp.Equal(ba, bb, dataOptions) {
		return false
	}
	ea, eb := edgesOf(ba), edgesOf(bb)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if !c.edgeEqual(ea[i], eb[i]) {
			return false
		}
	}
	return true
}

func (c *Comparer) edgeEqual(x, y Edge) bool {
	if x.Field != y.Field || x.Ptr != y.Ptr {
		return false
	}
	if x.Slot != nil {
		if x.Ptr {
			return *x.Slot == *y.Slot
		}
		if *x.Slot == Nil || *y.Slot == Nil {
			return *x.Slot == *y.Slot
		}
		return c.Equal(*x.Slot, *y.Slot)
	}
	if x.Ptr {
		return cmp.Equal(*x.List, *y.List, cmpopts.EquateEmpty())
	}
	return c.multisetEqual(distinct(*x.List), distinct(*y.List))
}

// multisetEqual matches every entry of xs to a distinct entry of ys.
func (c *Comparer) multisetEqual(xs, ys []Ref) bool {
	if len(xs) != len(ys) {
		return false
	}
	used := make([]bool, len(ys))
	for _, x := range xs {
		found := false
		for j, y := range ys {
			if !used[j] && c.Equal(x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func edgesOf(b Block) []Edge {
	var out []Edge
	b.Edges(func(e Edge) { out = append(out, e) })
	return out
}

func distinct(list []Ref) []Ref {
	var out []Ref
	for _, r := range list {
		if r != Nil && !contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
