package nif

// Kind is the NIF block type name.
type Kind string

const (
	KindNode                    Kind = "NiNode"
	KindTriShape                Kind = "NiTriShape"
	KindTriStrips               Kind = "NiTriStrips"
	KindParticleSystem          Kind = "NiParticleSystem"
	KindTriShapeData            Kind = "NiTriShapeData"
	KindTriStripsData           Kind = "NiTriStripsData"
	KindMaterialProperty        Kind = "NiMaterialProperty"
	KindTexturingProperty       Kind = "NiTexturingProperty"
	KindAlphaProperty           Kind = "NiAlphaProperty"
	KindSpecularProperty        Kind = "NiSpecularProperty"
	KindSourceTexture           Kind = "NiSourceTexture"
	KindStringExtraData         Kind = "NiStringExtraData"
	KindBinaryExtraData         Kind = "NiBinaryExtraData"
	KindGeomMorpherController   Kind = "NiGeomMorpherController"
	KindMaterialColorController Kind = "NiMaterialColorController"
	KindTransformController     Kind = "NiTransformController"
	KindMorphData               Kind = "NiMorphData"
	KindSkinInstance            Kind = "NiSkinInstance"
	KindSkinData                Kind = "NiSkinData"
	KindSkinPartition           Kind = "NiSkinPartition"
	KindDefaultAVObjectPalette  Kind = "NiDefaultAVObjectPalette"
	KindCollisionObject         Kind = "bhkCollisionObject"
	KindRigidBody               Kind = "bhkRigidBody"
	KindNiTriStripsShape        Kind = "bhkNiTriStripsShape"
	KindPSysMeshEmitter         Kind = "NiPSysMeshEmitter"
)

// Block is one object of the scene graph.
type Block interface {
	Kind() Kind
	// Edges calls fn for every link field, in file order.
	Edges(fn func(Edge))
}

// NET is implemented by blocks deriving from NiObjectNET.
type NET interface {
	Block
	Net() *ObjectNET
}

// AV is implemented by blocks deriving from NiAVObject.
type AV interface {
	NET
	AV() *AVObject
}

// Geom is implemented by renderable geometry blocks.
type Geom interface {
	AV
	Geom() *Geometry
}

// GeomData is implemented by the per-vertex data blocks of geometry.
type GeomData interface {
	Block
	GeomData() *GeometryData
}

// Prop is implemented by property blocks.
type Prop interface {
	NET
	property()
}

// Ctrl is implemented by time controllers.
type Ctrl interface {
	Block
	Ctrl() *TimeController
}

type defaulter interface {
	setDefaults()
}

// ObjectNET holds the fields shared by named scene objects.
type ObjectNET struct {
	Name       string `yaml:"name,omitempty"`
	ExtraData  []Ref  `yaml:"extra_data,flow,omitempty" hash:"ignore"`
	Controller Ref    `yaml:"controller,omitempty" hash:"ignore"`
}

func (o *ObjectNET) Net() *ObjectNET { return o }

func (o *ObjectNET) edges(fn func(Edge)) {
	refs(fn, "ExtraData", &o.ExtraData)
	ref(fn, "Controller", &o.Controller)
}

// AVObject holds the transform and property links of scene objects.
type AVObject struct {
	ObjectNET       `yaml:",inline"`
	Flags           uint16     `yaml:"flags,omitempty"`
	Translation     [3]float32 `yaml:"translation,flow"`
	Rotation        [9]float32 `yaml:"rotation,flow"`
	Scale           float32    `yaml:"scale"`
	Properties      []Ref      `yaml:"properties,flow,omitempty" hash:"ignore"`
	CollisionObject Ref        `yaml:"collision_object,omitempty" hash:"ignore"`
}

// Identity is the row-major identity rotation.
var Identity = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

func (a *AVObject) AV() *AVObject { return a }

func (a *AVObject) setDefaults() {
	a.Rotation = Identity
	a.Scale = 1
}

func (a *AVObject) edges(fn func(Edge)) {
	a.ObjectNET.edges(fn)
	refs(fn, "Properties", &a.Properties)
	ref(fn, "CollisionObject", &a.CollisionObject)
}

// Node is a grouping node (NiNode).
type Node struct {
	AVObject `yaml:",inline"`
	Children []Ref `yaml:"children,flow,omitempty" hash:"ignore"`
	Effects  []Ref `yaml:"effects,flow,omitempty" hash:"ignore"`
}

func (*Node) Kind() Kind { return KindNode }

func (n *Node) Edges(fn func(Edge)) {
	n.AVObject.edges(fn)
	refs(fn, "Children", &n.Children)
	refs(fn, "Effects", &n.Effects)
}

// Geometry holds the links shared by renderable geometry.
type Geometry struct {
	AVObject     `yaml:",inline"`
	Data         Ref `yaml:"data,omitempty" hash:"ignore"`
	SkinInstance Ref `yaml:"skin_instance,omitempty" hash:"ignore"`
}

func (g *Geometry) Geom() *Geometry { return g }

func (g *Geometry) edges(fn func(Edge)) {
	g.AVObject.edges(fn)
	ref(fn, "Data", &g.Data)
	ref(fn, "SkinInstance", &g.SkinInstance)
}

// TriShape is geometry drawn from a triangle list.
type TriShape struct {
	Geometry `yaml:",inline"`
}

func (*TriShape) Kind() Kind { return KindTriShape }
func (t *TriShape) Edges(fn func(Edge)) { t.Geometry.edges(fn) }

// TriStrips is geometry drawn from triangle strips.
type TriStrips struct {
	Geometry `yaml:",inline"`
}

func (*TriStrips) Kind() Kind { return KindTriStrips }
func (t *TriStrips) Edges(fn func(Edge)) { t.Geometry.edges(fn) }

// ParticleSystem is particle geometry driven by its modifiers.
type ParticleSystem struct {
	Geometry  `yaml:",inline"`
	Modifiers []Ref `yaml:"modifiers,flow,omitempty" hash:"ignore"`
}

func (*ParticleSystem) Kind() Kind { return KindParticleSystem }

func (p *ParticleSystem) Edges(fn func(Edge)) {
	p.Geometry.edges(fn)
	refs(fn, "Modifiers", &p.Modifiers)
}

// GeometryData holds the parallel per-vertex arrays. Absent arrays are empty.
type GeometryData struct {
	Vertices     [][3]float32   `yaml:"vertices,omitempty"`
	Normals      [][3]float32   `yaml:"normals,omitempty"`
	UVSets       [][][2]float32 `yaml:"uv_sets,omitempty"`
	VertexColors [][4]float32   `yaml:"vertex_colors,omitempty"`
	Center       [3]float32     `yaml:"center,flow"`
	Radius       float32        `yaml:"radius"`
}

func (d *GeometryData) GeomData() *GeometryData { return d }

// NumVertices returns the vertex count.
func (d *GeometryData) NumVertices() int { return len(d.Vertices) }

// TriShapeData is the data block of a TriShape.
type TriShapeData struct {
	GeometryData `yaml:",inline"`
	Triangles    [][3]uint16 `yaml:"triangles,omitempty"`
}

func (*TriShapeData) Kind() Kind { return KindTriShapeData }
func (*TriShapeData) Edges(func(Edge)) {}

// TriStripsData is the data block of a TriStrips.
type TriStripsData struct {
	GeometryData `yaml:",inline"`
	Strips       [][]uint16 `yaml:"strips,omitempty"`
}

func (*TriStripsData) Kind() Kind { return KindTriStripsData }
func (*TriStripsData) Edges(func(Edge)) {}

// MaterialProperty describes surface colours.
type MaterialProperty struct {
	ObjectNET  `yaml:",inline"`
	Flags      uint16     `yaml:"flags,omitempty"`
	Ambient    [3]float32 `yaml:"ambient,flow"`
	Diffuse    [3]float32 `yaml:"diffuse,flow"`
	Specular   [3]float32 `yaml:"specular,flow"`
	Emissive   [3]float32 `yaml:"emissive,flow"`
	Glossiness float32    `yaml:"glossiness"`
	Alpha      float32    `yaml:"alpha"`
}

func (*MaterialProperty) Kind() Kind { return KindMaterialProperty }
func (m *MaterialProperty) Edges(fn func(Edge)) { m.ObjectNET.edges(fn) }
func (*MaterialProperty) property() {}

func (m *MaterialProperty) setDefaults() {
	m.Diffuse = [3]float32{1, 1, 1}
	m.Ambient = [3]float32{1, 1, 1}
	m.Alpha = 1
}

// TexturingProperty binds textures to the geometry it is attached to.
type TexturingProperty struct {
	ObjectNET   `yaml:",inline"`
	Flags       uint16 `yaml:"flags,omitempty"`
	ApplyMode   uint32 `yaml:"apply_mode"`
	BaseTexture Ref    `yaml:"base_texture,omitempty" hash:"ignore"`
	GlowTexture Ref    `yaml:"glow_texture,omitempty" hash:"ignore"`
}

func (*TexturingProperty) Kind() Kind { return KindTexturingProperty }
func (*TexturingProperty) property() {}

func (t *TexturingProperty) Edges(fn func(Edge)) {
	t.ObjectNET.edges(fn)
	ref(fn, "BaseTexture", &t.BaseTexture)
	ref(fn, "GlowTexture", &t.GlowTexture)
}

// AlphaProperty controls blending and alpha testing.
type AlphaProperty struct {
	ObjectNET `yaml:",inline"`
	Flags     uint16 `yaml:"flags"`
	Threshold uint8  `yaml:"threshold"`
}

func (*AlphaProperty) Kind() Kind { return KindAlphaProperty }
func (a *AlphaProperty) Edges(fn func(Edge)) { a.ObjectNET.edges(fn) }
func (*AlphaProperty) property() {}

// Blend flag layout of AlphaProperty.Flags.
const (
	AlphaBlendEnable = 1 << 0
	alphaDstShift    = 5
	alphaFuncMask    = 0xF
	alphaFuncOne     = 0
)

// Additive reports whether blending adds the source onto the destination.
func (a *AlphaProperty) Additive() bool {
	return a.Flags&AlphaBlendEnable != 0 && (a.Flags>>alphaDstShift)&alphaFuncMask == alphaFuncOne
}

// SpecularProperty toggles specular lighting.
type SpecularProperty struct {
	ObjectNET `yaml:",inline"`
	Flags     uint16 `yaml:"flags"`
}

func (*SpecularProperty) Kind() Kind { return KindSpecularProperty }
func (s *SpecularProperty) Edges(fn func(Edge)) { s.ObjectNET.edges(fn) }
func (*SpecularProperty) property() {}

// SourceTexture names an external texture file.
type SourceTexture struct {
	ObjectNET   `yaml:",inline"`
	FileName    string `yaml:"file_name"`
	UseExternal bool   `yaml:"use_external"`
}

func (*SourceTexture) Kind() Kind { return KindSourceTexture }
func (s *SourceTexture) Edges(fn func(Edge)) { s.ObjectNET.edges(fn) }

func (s *SourceTexture) setDefaults() { s.UseExternal = true }

// StringExtraData attaches a named string.
type StringExtraData struct {
	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value"`
}

func (*StringExtraData) Kind() Kind { return KindStringExtraData }
func (*StringExtraData) Edges(func(Edge)) {}

// BinaryExtraData attaches a named byte blob.
type BinaryExtraData struct {
	Name string `yaml:"name,omitempty"`
	Data []byte `yaml:"data,omitempty"`
}

func (*BinaryExtraData) Kind() Kind { return KindBinaryExtraData }
func (*BinaryExtraData) Edges(func(Edge)) {}

// TangentSpaceName is the extra data name of cached tangent space vectors.
const TangentSpaceName = "Tangent space (binormal & tangent vectors)"
