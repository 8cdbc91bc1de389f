// Package spells holds the concrete cleanup, fix and optimization spells
// and the registry the command line looks them up in.
package spells

import (
	"sort"

	"github.com/pkg/errors"

	"nif-optimizer/internal/optimize"
	"nif-optimizer/internal/spell"
)

// ErrUnknownSpell is returned by Lookup for names that are not registered.
var ErrUnknownSpell = errors.New("unknown spell")

// Settings parameterize the spells built by the registry.
type Settings struct {
	Geometry optimize.Options
	Merge    MergePolicy
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{Geometry: optimize.DefaultOptions(), Merge: DefaultMergePolicy()}
}

var registry = map[string]func(Settings) spell.Unit{
	"opt_cleanreflists":            func(s Settings) spell.Unit { return cleaner(s) },
	"opt_mergeduplicates":          func(s Settings) spell.Unit { return NewMergeDuplicates(s.Merge) },
	"opt_geometry":                 func(s Settings) spell.Unit { return optimize.NewDriver(s.Geometry) },
	"fix_detachhavoktristripsdata": func(Settings) spell.Unit { return NewDetachHavokTriStripsData() },
	"fix_texturepath":              func(Settings) spell.Unit { return NewFixTexturePath() },
	"fix_clampmaterialalpha":       func(Settings) spell.Unit { return NewClampMaterialAlpha() },
	"fix_deltangentspace":          func(Settings) spell.Unit { return NewDelTangentSpace() },
	"optimize":                     func(s Settings) spell.Unit { return Optimize(s) },
}

// Optimize is the full optimization pipeline: one traversal of cleanups and
// fixes, then duplicate merging, then geometry optimization.
func Optimize(s Settings) spell.Unit {
	return spell.Series("optimize",
		spell.Parallel("",
			cleaner(s),
			NewDetachHavokTriStripsData(),
			NewFixTexturePath(),
			NewClampMaterialAlpha(),
		),
		NewMergeDuplicates(s.Merge),
		optimize.NewDriver(s.Geometry),
	)
}

// cleaner shares the merge veto, so both spells leave the same graphs alone.
func cleaner(s Settings) *CleanRefLists {
	c := NewCleanRefLists()
	c.Veto = s.Merge.Veto
	return c
}

// Lookup builds the spell registered under name.
func Lookup(name string, s Settings) (spell.Unit, error) {
	build, ok := registry[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownSpell, name)
	}
	return build(s), nil
}

// LookupAll builds the named spells and composes them in series.
func LookupAll(names []string, s Settings) (spell.Unit, error) {
	if len(names) == 1 {
		return Lookup(names[0], s)
	}
	units := make([]spell.Unit, 0, len(names))
	for _, n := range names {
		u, err := Lookup(n, s)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return spell.Series("", units...), nil
}

// Names lists the registered spells, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
