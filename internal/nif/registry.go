package nif

import (
	"sort"

	"github.com/pkg/errors"
)

var constructors = map[Kind]func() Block{
	KindNode:                    func() Block { return &Node{} },
	KindTriShape:                func() Block { return &TriShape{} },
	KindTriStrips:               func() Block { return &TriStrips{} },
	KindParticleSystem:          func() Block { return &ParticleSystem{} },
	KindTriShapeData:            func() Block { return &TriShapeData{} },
	KindTriStripsData:           func() Block { return &TriStripsData{} },
	KindMaterialProperty:        func() Block { return &MaterialProperty{} },
	KindTexturingProperty:       func() Block { return &TexturingProperty{} },
	KindAlphaProperty:           func() Block { return &AlphaProperty{} },
	KindSpecularProperty:        func() Block { return &SpecularProperty{} },
	KindSourceTexture:           func() Block { return &SourceTexture{} },
	KindStringExtraData:         func() Block { return &StringExtraData{} },
	KindBinaryExtraData:         func() Block { return &BinaryExtraData{} },
	KindGeomMorpherController:   func() Block { return &GeomMorpherController{} },
	KindMaterialColorController: func() Block { return &MaterialColorController{} },
	KindTransformController:     func() Block { return &TransformController{} },
	KindMorphData:               func() Block { return &MorphData{} },
	KindSkinInstance:            func() Block { return &SkinInstance{} },
	KindSkinData:                func() Block { return &SkinData{} },
	KindSkinPartition:           func() Block { return &SkinPartition{} },
	KindDefaultAVObjectPalette:  func() Block { return &DefaultAVObjectPalette{} },
	KindCollisionObject:         func() Block { return &CollisionObject{} },
	KindRigidBody:               func() Block { return &RigidBody{} },
	KindNiTriStripsShape:        func() Block { return &NiTriStripsShape{} },
	KindPSysMeshEmitter:         func() Block { return &PSysMeshEmitter{} },
}

// New returns an empty block of the given kind with file defaults applied
// (identity rotation, unit scale, opaque white material and so on).
func New(kind Kind) (Block, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
	b := ctor()
	if d, ok := b.(defaulter); ok {
		d.setDefaults()
	}
	return b, nil
}

// MustNew is New for kinds known at compile time.
func MustNew(kind Kind) Block {
	b, err := New(kind)
	if err != nil {
		panic(err)
	}
	return b
}

// Kinds lists every block kind of the model, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether kind is part of the model.
func Known(kind Kind) bool {
	_, ok := constructors[kind]
	return ok
}
