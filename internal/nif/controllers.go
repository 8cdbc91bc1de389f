package nif

// TimeController holds the fields shared by every controller.
type TimeController struct {
	NextController Ref     `yaml:"next_controller,omitempty" hash:"ignore"`
	Flags          uint16  `yaml:"flags,omitempty"`
	Frequency      float32 `yaml:"frequency"`
	Phase          float32 `yaml:"phase,omitempty"`
	StartTime      float32 `yaml:"start_time,omitempty"`
	StopTime       float32 `yaml:"stop_time,omitempty"`
	Target         Ref     `yaml:"target,omitempty" hash:"ignore"`
}

func (c *TimeController) Ctrl() *TimeController { return c }

func (c *TimeController) setDefaults() { c.Frequency = 1 }

func (c *TimeController) edges(fn func(Edge)) {
	ref(fn, "NextController", &c.NextController)
	ptr(fn, "Target", &c.Target)
}

// GeomMorpherController animates geometry through morph targets.
type GeomMorpherController struct {
	TimeController `yaml:",inline"`
	Data           Ref `yaml:"data,omitempty" hash:"ignore"`
}

func (*GeomMorpherController) Kind() Kind { return KindGeomMorpherController }

func (c *GeomMorpherController) Edges(fn func(Edge)) {
	c.TimeController.edges(fn)
	ref(fn, "Data", &c.Data)
}

// MaterialColorController animates one colour of a material.
type MaterialColorController struct {
	TimeController `yaml:",inline"`
	TargetColor    uint16 `yaml:"target_color"`
}

func (*MaterialColorController) Kind() Kind { return KindMaterialColorController }
func (c *MaterialColorController) Edges(fn func(Edge)) { c.TimeController.edges(fn) }

// TransformController animates the transform of its target.
type TransformController struct {
	TimeController `yaml:",inline"`
}

func (*TransformController) Kind() Kind { return KindTransformController }
func (c *TransformController) Edges(fn func(Edge)) { c.TimeController.edges(fn) }

// Morph is one morph target: a delta per base vertex.
type Morph struct {
	FrameName string       `yaml:"frame_name,omitempty"`
	Vectors   [][3]float32 `yaml:"vectors,omitempty"`
}

// MorphData holds the morph targets of a GeomMorpherController.
type MorphData struct {
	NumVertices     uint32  `yaml:"num_vertices"`
	RelativeTargets uint8   `yaml:"relative_targets"`
	Morphs          []Morph `yaml:"morphs,omitempty"`
}

func (*MorphData) Kind() Kind { return KindMorphData }
func (*MorphData) Edges(func(Edge)) {}
