package nif

import (
	"reflect"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Graph is an arena of blocks addressed by Ref.
//
// Blocks may be shared by several parents; identity is the Ref, never the
// value. Removing a block frees its slot without renumbering, so refs held
// elsewhere stay stable until Compact.
type Graph struct {
	Version string
	roots   []Ref
	blocks  []Block
}

// NewGraph returns an empty graph.
func NewGraph(version string) *Graph {
	return &Graph{Version: version}
}

// Add appends a block and returns its ref.
func (g *Graph) Add(b Block) Ref {
	g.blocks = append(g.blocks, b)
	return Ref(len(g.blocks))
}

// Block returns the block at r, or nil for Nil, removed or unknown refs.
func (g *Graph) Block(r Ref) Block {
	if r == Nil || int(r) > len(g.blocks) {
		return nil
	}
	return g.blocks[r-1]
}

// Get returns the block at r if it has type T.
func Get[T Block](g *Graph, r Ref) (T, bool) {
	b, ok := g.Block(r).(T)
	return b, ok
}

// Len returns the number of slots, removed ones included.
func (g *Graph) Len() int { return len(g.blocks) }

// Live returns the number of blocks that have not been removed.
func (g *Graph) Live() int {
	n := 0
	for _, b := range g.blocks {
		if b != nil {
			n++
		}
	}
	return n
}

// Remove frees the slot at r. Links to r elsewhere are left untouched.
func (g *Graph) Remove(r Ref) {
	if r != Nil && int(r) <= len(g.blocks) {
		g.blocks[r-1] = nil
	}
}

// Roots returns a copy of the root refs.
func (g *Graph) Roots() []Ref {
	return append([]Ref(nil), g.roots...)
}

// SetRoots replaces the root refs.
func (g *Graph) SetRoots(roots ...Ref) {
	g.roots = append(g.roots[:0:0], roots...)
}

// HasBlockType reports whether a live block of one of the kinds exists.
// It answers from the arena, the way a file header lists block types.
func (g *Graph) HasBlockType(kinds ...Kind) bool {
	return g.HasBlock(func(b Block) bool {
		for _, k := range kinds {
			if b.Kind() == k {
				return true
			}
		}
		return false
	})
}

// HasBlock reports whether a live block satisfies pred.
func (g *Graph) HasBlock(pred func(Block) bool) bool {
	for _, b := range g.blocks {
		if b != nil && pred(b) {
			return true
		}
	}
	return false
}

// Children returns the live targets of the owning edges of r, in edge order.
func (g *Graph) Children(r Ref) []Ref {
	b := g.Block(r)
	if b == nil {
		return nil
	}
	var out []Ref
	b.Edges(func(e Edge) {
		if e.Ptr {
			return
		}
		for _, t := range e.Targets() {
			if g.Block(t) != nil {
				out = append(out, t)
			}
		}
	})
	return out
}

// Tree returns every block reachable from the roots over owning edges,
// each once, in depth-first pre-order.
func (g *Graph) Tree() []Ref {
	seen := make(map[Ref]bool)
	var out []Ref
	var visit func(r Ref)
	visit = func(r Ref) {
		if seen[r] || g.Block(r) == nil {
			return
		}
		seen[r] = true
		out = append(out, r)
		for _, c := range g.Children(r) {
			visit(c)
		}
	}
	for _, r := range g.roots {
		visit(r)
	}
	return out
}

// ReplaceGlobal rewrites every link to old, in roots and in every live
// block, to repl. With repl Nil, owning list entries are dropped and single
// links are cleared. It returns the number of links rewritten.
func (g *Graph) ReplaceGlobal(old, repl Ref) int {
	if old == repl {
		return 0
	}
	n := 0
	roots := g.roots[:0]
	for _, r := range g.roots {
		if r == old {
			n++
			if repl == Nil {
				continue
			}
			r = repl
		}
		roots = append(roots, r)
	}
	g.roots = roots
	for _, b := range g.blocks {
		if b == nil {
			continue
		}
		b.Edges(func(e Edge) { n += e.replace(old, repl) })
	}
	return n
}

// Clone returns a deep copy of the graph with identical refs.
func (g *Graph) Clone() (*Graph, error) {
	out := &Graph{
		Version: g.Version,
		roots:   g.Roots(),
		blocks:  make([]Block, len(g.blocks)),
	}
	for i, b := range g.blocks {
		if b == nil {
			continue
		}
		c, err := CloneBlock(b)
		if err != nil {
			return nil, errors.Wrapf(err, "clone %s", Ref(i+1))
		}
		out.blocks[i] = c
	}
	return out, nil
}

// CloneBlock returns a deep copy of b. Links are copied as is.
func CloneBlock(b Block) (Block, error) {
	dst := reflect.New(reflect.TypeOf(b).Elem()).Interface()
	if err := copier.CopyWithOption(dst, b, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.Wrapf(err, "copy %s", b.Kind())
	}
	return dst.(Block), nil
}

// Compact drops unreachable blocks and renumbers the rest in tree order.
// Links to dropped blocks are cleared; owning lists lose the entry.
// It returns the old to new ref mapping.
func (g *Graph) Compact() map[Ref]Ref {
	tree := g.Tree()
	remap := make(map[Ref]Ref, len(tree))
	blocks := make([]Block, 0, len(tree))
	for _, r := range tree {
		blocks = append(blocks, g.blocks[r-1])
		remap[r] = Ref(len(blocks))
	}
	for _, b := range blocks {
		b.Edges(func(e Edge) {
			if e.Slot != nil {
				*e.Slot = remap[*e.Slot]
				return
			}
			list := (*e.List)[:0]
			for _, x := range *e.List {
				nx := remap[x]
				if nx == Nil && !e.Ptr {
					continue
				}
				list = append(list, nx)
			}
			*e.List = list
		})
	}
	roots := g.roots[:0]
	for _, r := range g.roots {
		if nr := remap[r]; nr != Nil {
			roots = append(roots, nr)
		}
	}
	g.roots = roots
	g.blocks = blocks
	return remap
}
