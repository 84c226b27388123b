package geometry

import "errors"

// Resolve errors.
var (
	ErrSurfaceCountMismatch = errors.New("surface count does not match object count")
	ErrIndexOutOfRange      = errors.New("face corner index out of range")
	ErrMissingMaterial      = errors.New("material not found")
)
