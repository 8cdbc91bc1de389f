package optimize

import (
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/spell"
)

// Driver casts Root as a whole-graph spell.
type Driver struct {
	spell.Base
	Options Options
}

// NewDriver returns the geometry optimizer spell.
func NewDriver(opts Options) *Driver {
	return &Driver{Base: spell.Base{SpellName: "opt_geometry", Mutates: true}, Options: opts}
}

func (d *Driver) DataInspect(t *spell.Toast) bool {
	return t.Graph.HasBlockType(nif.KindTriShape, nif.KindTriStrips)
}

func (d *Driver) Run(t *spell.Toast) error {
	opts := d.Options
	opts.Exclude = append(append([]nif.Kind(nil), opts.Exclude...), t.Options.Exclude...)
	rep, err := Root(t.Graph, opts, t.Log.WithField("spell", d.Name()))
	t.Count("geometries_optimized", len(rep.Results))
	t.Count("geometries_replaced", rep.Replaced)
	t.Count("geometries_dropped", rep.Dropped)
	t.Count("geometry_data_detached", rep.Detached)
	t.Count("vertices_before", rep.VerticesBefore())
	t.Count("vertices_after", rep.VerticesAfter())
	return err
}
