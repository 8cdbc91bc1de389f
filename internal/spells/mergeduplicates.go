package spells

import (
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/spell"
)

// MergePolicy decides which blocks are kept out of merging.
type MergePolicy struct {
	// Skip returns true for blocks that must never be merged.
	Skip func(g *nif.Graph, b nif.Block) bool
	// Veto lists block types whose presence anywhere in a graph keeps the
	// whole graph out of merging.
	Veto []nif.Kind
}

// DefaultVeto keeps graphs with mesh emitters untouched: the emitter's
// links to its shapes drive the particle system.
func DefaultVeto() []nif.Kind {
	return []nif.Kind{nif.KindPSysMeshEmitter}
}

func vetoed(g *nif.Graph, kinds []nif.Kind) bool {
	return len(kinds) > 0 && g.HasBlockType(kinds...)
}

// ControlledProperty matches properties with an attached controller: the
// animated state cannot be compared statically.
func ControlledProperty(_ *nif.Graph, b nif.Block) bool {
	p, ok := b.(nif.Prop)
	return ok && p.Net().Controller != nif.Nil
}

// DefaultMergePolicy skips controlled properties and vetoes graphs with
// mesh emitters.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{Skip: ControlledProperty, Veto: DefaultVeto()}
}

// MergeDuplicates replaces every block with an earlier interchangeable one.
type MergeDuplicates struct {
	spell.Base
	Policy MergePolicy
}

// NewMergeDuplicates returns the duplicate merger.
func NewMergeDuplicates(p MergePolicy) *MergeDuplicates {
	return &MergeDuplicates{Base: spell.Base{SpellName: "opt_mergeduplicates", Mutates: true}, Policy: p}
}

// representatives are the blocks accepted so far, bucketed by fingerprint,
// in traversal order.
type representatives map[nif.Fingerprint][]nif.Ref

func (s *MergeDuplicates) reps(t *spell.Toast) representatives {
	return spell.Scratch(t, s, func() representatives { return make(representatives) })
}

// DataInspect skips graphs holding a vetoed block type. The
// representatives of an earlier cast are discarded.
func (s *MergeDuplicates) DataInspect(t *spell.Toast) bool {
	t.Forget(s)
	return !vetoed(t.Graph, s.Policy.Veto)
}

func (s *MergeDuplicates) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	switch b.(type) {
	case nif.NET, nif.GeomData:
		return true
	}
	return false
}

func (s *MergeDuplicates) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	b := t.Graph.Block(r)
	if s.Policy.Skip != nil && s.Policy.Skip(t.Graph, b) {
		t.BlockLog(r).Warn("not merging block with controller")
		t.Count("merges_skipped", 1)
		return spell.Continue, nil
	}
	fp, err := nif.FingerprintOf(b)
	if err != nil {
		return spell.Prune, err
	}
	reps := s.reps(t)
	cmp := nif.NewComparer(t.Graph)
	for _, rep := range reps[fp] {
		if rep == r {
			return spell.Continue, nil
		}
		if t.Graph.Block(rep) != nil && cmp.Equal(r, rep) {
			t.BlockLog(r).Infof("removing duplicate branch, keeping %s", rep)
			t.Count("branches_merged", 1)
			return spell.ReplaceWith(rep), nil
		}
	}
	reps[fp] = append(reps[fp], r)
	return spell.Continue, nil
}
