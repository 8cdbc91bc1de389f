package nif

import "fmt"

// AVObjectEntry is one named entry of an object palette.
type AVObjectEntry struct {
	Name   string `yaml:"name"`
	Object Ref    `yaml:"object,omitempty" hash:"ignore"`
}

// DefaultAVObjectPalette maps names to scene objects for animation lookup.
type DefaultAVObjectPalette struct {
	Scene   Ref             `yaml:"scene,omitempty" hash:"ignore"`
	Objects []AVObjectEntry `yaml:"objects,omitempty"`
}

func (*DefaultAVObjectPalette) Kind() Kind { return KindDefaultAVObjectPalette }

func (p *DefaultAVObjectPalette) Edges(fn func(Edge)) {
	ptr(fn, "Scene", &p.Scene)
	for i := range p.Objects {
		ptr(fn, fmt.Sprintf("Objects[%d].Object", i), &p.Objects[i].Object)
	}
}

// CollisionObject attaches a rigid body to a scene object.
type CollisionObject struct {
	Target Ref    `yaml:"target,omitempty" hash:"ignore"`
	Flags  uint16 `yaml:"flags"`
	Body   Ref    `yaml:"body,omitempty" hash:"ignore"`
}

func (*CollisionObject) Kind() Kind { return KindCollisionObject }

func (c *CollisionObject) Edges(fn func(Edge)) {
	ptr(fn, "Target", &c.Target)
	ref(fn, "Body", &c.Body)
}

// RigidBody is a physics body with a collision shape.
type RigidBody struct {
	Layer uint8   `yaml:"layer"`
	Mass  float32 `yaml:"mass"`
	Shape Ref     `yaml:"shape,omitempty" hash:"ignore"`
}

func (*RigidBody) Kind() Kind { return KindRigidBody }

func (r *RigidBody) Edges(fn func(Edge)) { ref(fn, "Shape", &r.Shape) }

// NiTriStripsShape is a collision shape built from strips data blocks.
type NiTriStripsShape struct {
	Material   uint32 `yaml:"material"`
	StripsData []Ref  `yaml:"strips_data,flow,omitempty" hash:"ignore"`
}

func (*NiTriStripsShape) Kind() Kind { return KindNiTriStripsShape }

func (s *NiTriStripsShape) Edges(fn func(Edge)) { refs(fn, "StripsData", &s.StripsData) }

// PSysMeshEmitter emits particles from the surface of geometry blocks.
type PSysMeshEmitter struct {
	Name          string `yaml:"name,omitempty"`
	EmitterMeshes []Ref  `yaml:"emitter_meshes,flow,omitempty" hash:"ignore"`
}

func (*PSysMeshEmitter) Kind() Kind { return KindPSysMeshEmitter }

func (e *PSysMeshEmitter) Edges(fn func(Edge)) { ptrs(fn, "EmitterMeshes", &e.EmitterMeshes) }
