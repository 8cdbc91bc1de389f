package optimize

import (
	"fmt"

	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
)

var (
	// ErrNotGeometry is returned when the block to optimize is not geometry.
	ErrNotGeometry = errors.New("optimize: not a geometry block")
	// ErrNoData is returned when geometry has no usable data block.
	ErrNoData = errors.New("optimize: geometry has no data")
	// ErrArrayLength is returned when a vertex array does not match the vertex count.
	ErrArrayLength = errors.New("optimize: vertex array length mismatch")
	// ErrIndexRange is returned when connectivity addresses a missing vertex.
	ErrIndexRange = errors.New("optimize: vertex index out of range")
	// ErrTooManyBones is returned when one triangle needs more bones than a partition holds.
	ErrTooManyBones = errors.New("optimize: triangle influenced by too many bones")
)

// StructuralError reports a link to a replaced geometry block that the
// driver does not know how to rewrite. The graph must not be written back.
type StructuralError struct {
	Block      nif.Ref
	BlockKind  nif.Kind
	Holder     nif.Ref
	HolderKind nif.Kind
	Field      string
}

func (e *StructuralError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("optimize: cannot replace %s %s linked from %s %s field %s",
			e.BlockKind, e.Block, e.HolderKind, e.Holder, e.Field)
	}
	return fmt.Sprintf("optimize: cannot replace %s %s linked from %s %s",
		e.BlockKind, e.Block, e.HolderKind, e.Holder)
}
