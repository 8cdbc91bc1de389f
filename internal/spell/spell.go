package spell

import "nif-optimizer/internal/nif"

type actionKind int

const (
	actContinue actionKind = iota
	actPrune
	actReplace
)

// Action is the result of entering a branch.
type Action struct {
	kind actionKind
	ref  nif.Ref
}

var (
	// Continue recurses into the children of the branch.
	Continue = Action{kind: actContinue}
	// Prune skips the children of the branch.
	Prune = Action{kind: actPrune}
	// Remove drops the branch and every link to it.
	Remove = Action{kind: actReplace, ref: nif.Nil}
)

// ReplaceWith rewrites every link to the branch to r and drops the branch.
func ReplaceWith(r nif.Ref) Action {
	return Action{kind: actReplace, ref: r}
}

// Recurse reports whether the walker descends into the branch.
func (a Action) Recurse() bool { return a.kind == actContinue }

// Replacement returns the replacing ref, Nil for a removal.
func (a Action) Replacement() (nif.Ref, bool) {
	return a.ref, a.kind == actReplace
}

// Unit is anything that can be cast on a toast.
type Unit interface {
	Name() string
	// ReadOnly units never modify the graph.
	ReadOnly() bool
}

// Inspector vetoes a unit for a whole graph before any block is visited.
type Inspector interface {
	DataInspect(t *Toast) bool
}

// Visitor is driven by Walk.
type Visitor interface {
	// BranchInspect decides whether the branch is considered at all.
	BranchInspect(t *Toast, b nif.Block) bool
	// BranchEntry acts on the branch.
	BranchEntry(t *Toast, r nif.Ref) (Action, error)
	// BranchExit runs after the children of a continued branch.
	BranchExit(t *Toast, r nif.Ref) error
}

// Spell is a unit that works block by block.
type Spell interface {
	Unit
	Inspector
	Visitor
}

// Runner is a unit that works on the whole graph at once. A unit that
// is both a Runner and a Spell is run, not walked.
type Runner interface {
	Unit
	Run(t *Toast) error
}

// Base provides the defaults of a spell: no veto, every branch admitted,
// recursion everywhere. Spells embed it and override what they need.
type Base struct {
	SpellName string
	Mutates   bool
}

func (b Base) Name() string { return b.SpellName }
func (b Base) ReadOnly() bool { return !b.Mutates }
func (Base) DataInspect(*Toast) bool { return true }
func (Base) BranchInspect(*Toast, nif.Block) bool { return true }
func (Base) BranchEntry(*Toast, nif.Ref) (Action, error) { return Continue, nil }
func (Base) BranchExit(*Toast, nif.Ref) error { return nil }
