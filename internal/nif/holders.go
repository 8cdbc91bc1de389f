package nif

// Index is a reverse reference index: for each block, the reachable blocks
// that link to it, in tree order.
type Index struct {
	holders map[Ref][]Ref
}

// Holders builds the reverse index over the blocks reachable from the roots.
// Both owning and pointer links are indexed.
func (g *Graph) Holders() *Index {
	ix := &Index{holders: make(map[Ref][]Ref)}
	for _, h := range g.Tree() {
		seen := make(map[Ref]bool)
		g.Block(h).Edges(func(e Edge) {
			for _, t := range e.Targets() {
				if !seen[t] {
					seen[t] = true
					ix.holders[t] = append(ix.holders[t], h)
				}
			}
		})
	}
	return ix
}

// Of returns the blocks linking to r.
func (ix *Index) Of(r Ref) []Ref {
	return ix.holders[r]
}

// Move transfers the holders of old to repl, as after a ReplaceGlobal.
func (ix *Index) Move(old, repl Ref) {
	if repl != Nil {
		for _, h := range ix.holders[old] {
			if !contains(ix.holders[repl], h) {
				ix.holders[repl] = append(ix.holders[repl], h)
			}
		}
	}
	delete(ix.holders, old)
}

func contains(list []Ref, r Ref) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}
