package spell

import (
	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
)

type walker struct {
	t      *Toast
	s      Spell
	onPath map[nif.Ref]bool
}

// Walk drives s over the graph of t: depth first, pre-order, from every
// root, over owning links. A block reachable by several paths is entered
// once per path; blocks already on the current path are not re-entered.
//
// Children are listed when a branch is entered, so links rewritten while
// the children are visited do not disturb the traversal. Replacements are
// applied at branch entry and the replaced block is dropped from the graph.
func Walk(t *Toast, s Spell) error {
	w := &walker{t: t, s: s, onPath: make(map[nif.Ref]bool)}
	for _, r := range t.Graph.Roots() {
		if err := w.visit(r); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit(r nif.Ref) error {
	b := w.t.Graph.Block(r)
	if b == nil || w.onPath[r] || w.t.Options.Excluded(b.Kind()) {
		return nil
	}
	if !w.s.BranchInspect(w.t, b) {
		return nil
	}
	act, err := w.s.BranchEntry(w.t, r)
	if err != nil {
		return errors.Wrapf(err, "%s: %s %s", w.s.Name(), b.Kind(), r)
	}
	if repl, ok := act.Replacement(); ok {
		if w.s.ReadOnly() {
			return errors.Wrapf(ErrReadOnly, "%s: %s %s", w.s.Name(), b.Kind(), r)
		}
		log := w.t.BlockLog(r)
		n := w.t.Graph.ReplaceGlobal(r, repl)
		w.t.Graph.Remove(r)
		log.Debugf("replaced by %s (%d links)", repl, n)
		return nil
	}
	if !act.Recurse() {
		return nil
	}
	w.onPath[r] = true
	for _, c := range w.t.Graph.Children(r) {
		if err := w.visit(c); err != nil {
			return err
		}
	}
	delete(w.onPath, r)
	if err := w.s.BranchExit(w.t, r); err != nil {
		return errors.Wrapf(err, "%s: leaving %s %s", w.s.Name(), b.Kind(), r)
	}
	return nil
}
