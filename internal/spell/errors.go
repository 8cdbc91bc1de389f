package spell

import "github.com/pkg/errors"

// ErrReadOnly is returned when a read-only spell asks for a mutation.
var ErrReadOnly = errors.New("spell: read-only spell requested a mutation")
