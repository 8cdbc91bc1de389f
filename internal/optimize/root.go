package optimize

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nif-optimizer/internal/nif"
)

// Report summarizes a Root pass.
type Report struct {
	Results  []Result
	Replaced int
	Dropped  int
	// Detached counts geometries given their own copy of shared data.
	Detached int
}

// VerticesBefore sums the vertex counts before welding.
func (r Report) VerticesBefore() int {
	n := 0
	for _, x := range r.Results {
		n += x.VerticesBefore
	}
	return n
}

// VerticesAfter sums the vertex counts after welding.
func (r Report) VerticesAfter() int {
	n := 0
	for _, x := range r.Results {
		if !x.Dropped {
			n += x.VerticesAfter
		}
	}
	return n
}

// Root optimizes every NiTriShape and NiTriStrips reachable in g, once
// each, and rewrites the links to blocks that were replaced or dropped.
//
// Links are rewritten in NiNode children, controller targets, object
// palettes and collision objects. Any other block linking to a replaced
// geometry aborts the pass with a *StructuralError; g must then be
// discarded.
func Root(g *nif.Graph, opts Options, log *logrus.Entry) (Report, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	var rep Report
	n, err := detachSharedData(g, log)
	if err != nil {
		return rep, err
	}
	rep.Detached = n
	holders := g.Holders()
	done := make(map[nif.Ref]bool)
	for _, r := range g.Tree() {
		b := g.Block(r)
		if b == nil || done[r] {
			continue
		}
		if k := b.Kind(); (k != nif.KindTriShape && k != nif.KindTriStrips) || opts.excluded(k) {
			continue
		}
		done[r] = true
		oldData := b.(nif.Geom).Geom().Data

		res, err := Geometry(g, r, opts, log)
		if err != nil {
			return rep, err
		}
		rep.Results = append(rep.Results, res)
		if !res.Replaced() {
			continue
		}
		done[res.Ref] = true
		if err := replaceLinks(g, holders, r, res.Ref); err != nil {
			return rep, err
		}
		if res.Dropped {
			rep.Dropped++
		} else {
			rep.Replaced++
			holders.Move(r, res.Ref)
		}
		g.Remove(r)
		if owners := holders.Of(oldData); len(owners) == 1 && owners[0] == r {
			g.Remove(oldData)
		}
	}
	return rep, nil
}

// detachSharedData gives every geometry after the first that links to the
// same data block its own deep copy, so that welding one shape never
// leaves another with stale skin or morph indices.
func detachSharedData(g *nif.Graph, log *logrus.Entry) (int, error) {
	owner := make(map[nif.Ref]nif.Ref)
	n := 0
	for _, r := range g.Tree() {
		b := g.Block(r)
		if b == nil || (b.Kind() != nif.KindTriShape && b.Kind() != nif.KindTriStrips) {
			continue
		}
		geom := b.(nif.Geom).Geom()
		if geom.Data == nif.Nil {
			continue
		}
		first, shared := owner[geom.Data]
		if !shared {
			owner[geom.Data] = r
			continue
		}
		clone, err := nif.CloneBlock(g.Block(geom.Data))
		if err != nil {
			return n, errors.Wrapf(err, "detach data of %s", r)
		}
		log.WithField("block", r).Infof("detaching geometry data %s shared with %s", geom.Data, first)
		geom.Data = g.Add(clone)
		n++
	}
	return n, nil
}

// replaceLinks points every holder of old at repl, or unlinks old when
// repl is Nil. Holders are checked before any link is changed.
func replaceLinks(g *nif.Graph, holders *nif.Index, old, repl nif.Ref) error {
	kind := g.Block(old).Kind()
	for _, h := range holders.Of(old) {
		switch g.Block(h).(type) {
		case *nif.Node, nif.Ctrl, *nif.DefaultAVObjectPalette, *nif.CollisionObject:
		default:
			return &StructuralError{Block: old, BlockKind: kind, Holder: h, HolderKind: g.Block(h).Kind()}
		}
	}
	for _, h := range holders.Of(old) {
		switch hb := g.Block(h).(type) {
		case *nif.Node:
			hb.Children = replaceInList(hb.Children, old, repl)
		case nif.Ctrl:
			if c := hb.Ctrl(); c.Target == old {
				c.Target = repl
			}
		case *nif.DefaultAVObjectPalette:
			for i := range hb.Objects {
				if hb.Objects[i].Object == old {
					hb.Objects[i].Object = repl
				}
			}
		case *nif.CollisionObject:
			if hb.Target == old {
				hb.Target = repl
			}
		}
		var leftover string
		g.Block(h).Edges(func(e nif.Edge) {
			if leftover == "" && e.Holds(old) {
				leftover = e.Field
			}
		})
		if leftover != "" {
			return &StructuralError{Block: old, BlockKind: kind, Holder: h, HolderKind: g.Block(h).Kind(), Field: leftover}
		}
	}
	roots := g.Roots()
	changed := false
	out := roots[:0]
	for _, r := range roots {
		if r == old {
			changed = true
			if repl == nif.Nil {
				continue
			}
			r = repl
		}
		out = append(out, r)
	}
	if changed {
		g.SetRoots(out...)
	}
	return nil
}

func replaceInList(list []nif.Ref, old, repl nif.Ref) []nif.Ref {
	out := list[:0]
	for _, r := range list {
		if r == old {
			if repl == nif.Nil {
				continue
			}
			r = repl
		}
		out = append(out, r)
	}
	return out
}
