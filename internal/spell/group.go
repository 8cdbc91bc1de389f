package spell

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
)

// Group is a composite unit.
type Group struct {
	name     string
	parallel bool
	members  []Unit
}

// Series runs the members one after another, each over the whole graph.
func Series(name string, members ...Unit) *Group {
	return &Group{name: groupName(name, " then ", members), members: members}
}

// Parallel interleaves the members in a single traversal. Members that
// are themselves series are split into passes: pass i runs stage i of
// every member, so ordering within each member is kept.
func Parallel(name string, members ...Unit) *Group {
	return &Group{name: groupName(name, " + ", members), parallel: true, members: members}
}

func groupName(name, sep string, members []Unit) string {
	if name != "" {
		return name
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	return "(" + strings.Join(names, sep) + ")"
}

func (g *Group) Name() string { return g.name }

// ReadOnly is true when no member modifies the graph.
func (g *Group) ReadOnly() bool {
	for _, m := range g.members {
		if !m.ReadOnly() {
			return false
		}
	}
	return true
}

// Members returns the direct members of the group.
func (g *Group) Members() []Unit {
	return append([]Unit(nil), g.members...)
}

// Stages flattens u into the units Cast runs in order: spells, runners
// and parallel passes.
func Stages(u Unit) []Unit {
	g, ok := u.(*Group)
	if !ok {
		return []Unit{u}
	}
	if !g.parallel {
		var out []Unit
		for _, m := range g.members {
			out = append(out, Stages(m)...)
		}
		return out
	}
	var passes []*pass
	for _, m := range g.members {
		for i, s := range Stages(m) {
			for len(passes) <= i {
				passes = append(passes, &pass{})
			}
			passes[i].add(s)
		}
	}
	out := make([]Unit, 0, len(passes))
	for i, p := range passes {
		p.name = g.name
		if len(passes) > 1 {
			p.name = g.name + "#" + strconv.Itoa(i+1)
		}
		out = append(out, p)
	}
	return out
}

// Cast runs u on the toast. A unit whose DataInspect fails is skipped.
// The first error aborts the cast; changes made so far are kept.
func Cast(t *Toast, u Unit) error {
	for _, s := range Stages(u) {
		if err := castStage(t, s); err != nil {
			return err
		}
	}
	return nil
}

func castStage(t *Toast, u Unit) error {
	if p, ok := u.(*pass); ok {
		return p.cast(t)
	}
	if in, ok := u.(Inspector); ok && !in.DataInspect(t) {
		t.Log.WithField("spell", u.Name()).Debug("nothing to do")
		return nil
	}
	switch s := u.(type) {
	case Runner:
		t.Log.WithField("spell", s.Name()).Debug("running")
		t.Count("spells_cast", 1)
		return errors.Wrap(s.Run(t), s.Name())
	case Spell:
		t.Log.WithField("spell", s.Name()).Debug("casting")
		t.Count("spells_cast", 1)
		return Walk(t, s)
	default:
		return errors.Errorf("spell: cannot cast %T", u)
	}
}

// pass is one traversal of a parallel group.
type pass struct {
	name    string
	spells  []Spell
	runners []Unit
}

func (p *pass) add(u Unit) {
	if _, ok := u.(Runner); ok {
		p.runners = append(p.runners, u)
		return
	}
	if s, ok := u.(Spell); ok {
		p.spells = append(p.spells, s)
		return
	}
	p.runners = append(p.runners, u)
}

func (p *pass) Name() string { return p.name }

func (p *pass) ReadOnly() bool {
	for _, s := range p.spells {
		if !s.ReadOnly() {
			return false
		}
	}
	for _, r := range p.runners {
		if !r.ReadOnly() {
			return false
		}
	}
	return true
}

func (p *pass) cast(t *Toast) error {
	var active []Spell
	for _, s := range p.spells {
		if s.DataInspect(t) {
			active = append(active, s)
			t.Count("spells_cast", 1)
		} else {
			t.Log.WithField("spell", s.Name()).Debug("nothing to do")
		}
	}
	if len(active) > 0 {
		t.Log.WithField("spell", p.name).Debugf("casting %d spells in one pass", len(active))
		v := &interleave{name: p.name, spells: active}
		if err := Walk(t, v); err != nil {
			return err
		}
	}
	for _, r := range p.runners {
		if err := castStage(t, r); err != nil {
			return err
		}
	}
	return nil
}

// interleave runs several spells in one walk. The children of a branch are
// visited by exactly the spells that admitted the branch and continued.
type interleave struct {
	name    string
	spells  []Spell
	pending []bool
	masks   [][]bool
}

func (v *interleave) Name() string { return v.name }

// ReadOnly is false so that the walker applies replacements; the members'
// own flags are checked in BranchEntry.
func (v *interleave) ReadOnly() bool { return false }

func (v *interleave) DataInspect(*Toast) bool { return true }

func (v *interleave) mask() []bool {
	if len(v.masks) == 0 {
		return nil
	}
	return v.masks[len(v.masks)-1]
}

func (v *interleave) BranchInspect(t *Toast, b nif.Block) bool {
	mask := v.mask()
	v.pending = make([]bool, len(v.spells))
	admit := false
	for i, s := range v.spells {
		if (mask == nil || mask[i]) && s.BranchInspect(t, b) {
			v.pending[i] = true
			admit = true
		}
	}
	return admit
}

func (v *interleave) BranchEntry(t *Toast, r nif.Ref) (Action, error) {
	admitted := v.pending
	next := make([]bool, len(v.spells))
	recurse := false
	for i, s := range v.spells {
		if !admitted[i] {
			continue
		}
		act, err := s.BranchEntry(t, r)
		if err != nil {
			return Prune, errors.Wrap(err, s.Name())
		}
		if _, ok := act.Replacement(); ok {
			if s.ReadOnly() {
				return Prune, errors.Wrap(ErrReadOnly, s.Name())
			}
			return act, nil
		}
		if act.Recurse() {
			next[i] = true
			recurse = true
		}
	}
	if !recurse {
		return Prune, nil
	}
	v.masks = append(v.masks, next)
	return Continue, nil
}

func (v *interleave) BranchExit(t *Toast, r nif.Ref) error {
	mask := v.mask()
	v.masks = v.masks[:len(v.masks)-1]
	for i, s := range v.spells {
		if mask[i] {
			if err := s.BranchExit(t, r); err != nil {
				return errors.Wrap(err, s.Name())
			}
		}
	}
	return nil
}
