package nif

import "github.com/pkg/errors"

var (
	// ErrUnknownKind is returned when a block type name is not part of the model.
	ErrUnknownKind = errors.New("nif: unknown block type")
	// ErrBadRef is returned when a ref does not address a live block.
	ErrBadRef = errors.New("nif: reference to missing block")
)
