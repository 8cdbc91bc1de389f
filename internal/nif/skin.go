package nif

// Transform is a rotation, translation and uniform scale.
type Transform struct {
	Rotation    [9]float32 `yaml:"rotation,flow"`
	Translation [3]float32 `yaml:"translation,flow"`
	Scale       float32    `yaml:"scale"`
}

// SkinInstance binds geometry to a skeleton.
type SkinInstance struct {
	Data          Ref   `yaml:"data,omitempty" hash:"ignore"`
	SkinPartition Ref   `yaml:"skin_partition,omitempty" hash:"ignore"`
	SkeletonRoot  Ref   `yaml:"skeleton_root,omitempty" hash:"ignore"`
	Bones         []Ref `yaml:"bones,flow,omitempty" hash:"ignore"`
}

func (*SkinInstance) Kind() Kind { return KindSkinInstance }

func (s *SkinInstance) Edges(fn func(Edge)) {
	ref(fn, "Data", &s.Data)
	ref(fn, "SkinPartition", &s.SkinPartition)
	ptr(fn, "SkeletonRoot", &s.SkeletonRoot)
	ptrs(fn, "Bones", &s.Bones)
}

// SkinWeight is one vertex influenced by a bone.
type SkinWeight struct {
	Index  uint16  `yaml:"index"`
	Weight float32 `yaml:"weight"`
}

// BoneData is the bind pose and vertex weights of one bone.
type BoneData struct {
	SkinTransform        Transform    `yaml:"skin_transform"`
	BoundingSphereOffset [3]float32   `yaml:"bounding_sphere_offset,flow"`
	BoundingSphereRadius float32      `yaml:"bounding_sphere_radius"`
	VertexWeights        []SkinWeight `yaml:"vertex_weights,omitempty"`
}

// SkinData stores vertex weights inverted, per bone.
type SkinData struct {
	SkinTransform Transform  `yaml:"skin_transform"`
	SkinPartition Ref        `yaml:"skin_partition,omitempty" hash:"ignore"`
	Bones         []BoneData `yaml:"bones,omitempty"`
}

func (*SkinData) Kind() Kind { return KindSkinData }

func (s *SkinData) Edges(fn func(Edge)) { ref(fn, "SkinPartition", &s.SkinPartition) }

func (s *SkinData) setDefaults() {
	s.SkinTransform.Rotation = Identity
	s.SkinTransform.Scale = 1
}

// Partition is one bone-bounded chunk of a skinned mesh. Indices in
// Triangles and Strips address VertexMap, which addresses the geometry.
type Partition struct {
	NumWeightsPerVertex uint16      `yaml:"num_weights_per_vertex"`
	Bones               []uint16    `yaml:"bones,flow"`
	VertexMap           []uint16    `yaml:"vertex_map,flow"`
	VertexWeights       [][]float32 `yaml:"vertex_weights"`
	BoneIndices         [][]uint8   `yaml:"bone_indices"`
	Triangles           [][3]uint16 `yaml:"triangles,omitempty"`
	Strips              [][]uint16  `yaml:"strips,omitempty"`
}

// SkinPartition caches the partitioning of a skinned mesh.
type SkinPartition struct {
	Partitions []Partition `yaml:"partitions"`
}

func (*SkinPartition) Kind() Kind { return KindSkinPartition }
func (*SkinPartition) Edges(func(Edge)) {}
