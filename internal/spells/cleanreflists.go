package spells

import (
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/spell"
)

// CleanRefList returns list without nil and repeated entries, keeping the
// order of first occurrences. report, when set, is called for every
// dropped entry (Nil for a null reference).
func CleanRefList(list []nif.Ref, report func(dropped nif.Ref)) []nif.Ref {
	if len(list) == 0 {
		return list
	}
	out := make([]nif.Ref, 0, len(list))
	seen := make(map[nif.Ref]bool, len(list))
	for _, r := range list {
		if r == nif.Nil || seen[r] {
			if report != nil {
				report(r)
			}
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// CleanRefLists removes empty and duplicate entries from the extra data,
// property, child and effect lists.
type CleanRefLists struct {
	spell.Base
	// Veto lists block types whose presence keeps the graph uncleaned.
	Veto []nif.Kind
}

// NewCleanRefLists returns the reference list cleaner.
func NewCleanRefLists() *CleanRefLists {
	return &CleanRefLists{Base: spell.Base{SpellName: "opt_cleanreflists", Mutates: true}, Veto: DefaultVeto()}
}

// DataInspect skips graphs without NET blocks and graphs holding a vetoed
// block type.
func (s *CleanRefLists) DataInspect(t *spell.Toast) bool {
	return t.Graph.HasBlock(func(b nif.Block) bool { _, ok := b.(nif.NET); return ok }) &&
		!vetoed(t.Graph, s.Veto)
}

func (s *CleanRefLists) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	_, ok := b.(nif.NET)
	return ok
}

func (s *CleanRefLists) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	b := t.Graph.Block(r)
	clean := func(list []nif.Ref, category string) []nif.Ref {
		return CleanRefList(list, func(dropped nif.Ref) {
			t.Count("references_cleaned", 1)
			if dropped == nif.Nil {
				t.BlockLog(r).Infof("removing empty %s reference", category)
			} else {
				t.BlockLog(r).Infof("removing duplicate %s reference", category)
			}
		})
	}
	if n, ok := b.(nif.NET); ok {
		n.Net().ExtraData = clean(n.Net().ExtraData, "extra")
	}
	if av, ok := b.(nif.AV); ok {
		av.AV().Properties = clean(av.AV().Properties, "property")
	}
	if node, ok := b.(*nif.Node); ok {
		node.Children = clean(node.Children, "child")
		node.Effects = clean(node.Effects, "effect")
	}
	return spell.Continue, nil
}
