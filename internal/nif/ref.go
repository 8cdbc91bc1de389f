package nif

import "fmt"

// Ref addresses a block inside a Graph. Refs are 1-based; Nil is the null link.
type Ref uint32

// Nil is the null reference.
const Nil Ref = 0

func (r Ref) String() string {
	if r == Nil {
		return "None"
	}
	return fmt.Sprintf("#%d", uint32(r))
}

// Edge is one link field of a block. Exactly one of Slot and List is set.
//
// Ptr edges are back pointers (controller targets, skeleton roots, bones,
// palette entries). They are rewritten by ReplaceGlobal but never followed
// by Tree or the walker.
type Edge struct {
	Field string
	Ptr   bool
	Slot  *Ref
	List  *[]Ref
}

// Targets returns the non-nil refs held by the edge, in field order.
func (e Edge) Targets() []Ref {
	if e.Slot != nil {
		if *e.Slot == Nil {
			return nil
		}
		return []Ref{*e.Slot}
	}
	var out []Ref
	for _, r := range *e.List {
		if r != Nil {
			out = append(out, r)
		}
	}
	return out
}

// Holds reports whether the edge links to r.
func (e Edge) Holds(r Ref) bool {
	if e.Slot != nil {
		return *e.Slot == r
	}
	for _, x := range *e.List {
		if x == r {
			return true
		}
	}
	return false
}

// replace rewrites every occurrence of old with repl and returns the number of
// rewrites. Owning lists drop the entry when repl is Nil; pointer lists keep
// the position so that parallel arrays (bones vs. bone data) stay aligned.
func (e Edge) replace(old, repl Ref) int {
	n := 0
	if e.Slot != nil {
		if *e.Slot == old {
			*e.Slot = repl
			n++
		}
		return n
	}
	list := *e.List
	out := list[:0]
	for _, x := range list {
		if x != old {
			out = append(out, x)
			continue
		}
		n++
		if repl != Nil || e.Ptr {
			out = append(out, repl)
		}
	}
	*e.List = out
	return n
}

func ref(fn func(Edge), field string, r *Ref) { fn(Edge{Field: field, Slot: r}) }
func refs(fn func(Edge), field string, l *[]Ref) { fn(Edge{Field: field, List: l}) }
func ptr(fn func(Edge), field string, r *Ref) { fn(Edge{Field: field, Ptr: true, Slot: r}) }
func ptrs(fn func(Edge), field string, l *[]Ref) { fn(Edge{Field: field, Ptr: true, List: l}) }
