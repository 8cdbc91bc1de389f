package optimize

import "nif-optimizer/internal/nif"

// Precision is the number of decimal digits kept per vertex attribute when
// deciding whether two vertices are the same.
type Precision struct {
	Vertex int `yaml:"vertex"`
	Normal int `yaml:"normal"`
	UV     int `yaml:"uv"`
	Color  int `yaml:"color"`
}

// DefaultPrecision matches the storage precision of the file format.
func DefaultPrecision() Precision {
	return Precision{Vertex: 3, Normal: 3, UV: 5, Color: 3}
}

// Options configure the geometry optimizer.
type Options struct {
	// StripLengthCutoff is the weighted average strip length below which
	// geometry is stored as a triangle list.
	StripLengthCutoff float64
	// Stitch joins all strips of a geometry into one.
	Stitch    bool
	Precision Precision
	// Exclude lists geometry kinds the root driver leaves alone.
	Exclude []nif.Kind

	MaxBonesPerPartition int
	MaxBonesPerVertex    int
}

// DefaultOptions returns the settings used by the optimize spell.
func DefaultOptions() Options {
	return Options{
		StripLengthCutoff:    10.0,
		Stitch:               true,
		Precision:            DefaultPrecision(),
		MaxBonesPerPartition: 18,
		MaxBonesPerVertex:    4,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultPrecision()
	orDefault(&o.Precision.Vertex, def.Vertex)
	orDefault(&o.Precision.Normal, def.Normal)
	orDefault(&o.Precision.UV, def.UV)
	orDefault(&o.Precision.Color, def.Color)
	orDefault(&o.MaxBonesPerPartition, 18)
	orDefault(&o.MaxBonesPerVertex, 4)
	return o
}

func orDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func (o Options) excluded(kind nif.Kind) bool {
	for _, k := range o.Exclude {
		if k == kind {
			return true
		}
	}
	return false
}
