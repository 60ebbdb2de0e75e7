package tensor

import "github.com/pkg/errors"

// Common errors.
var (
	// ErrShapeMismatch reports operand shapes that are incompatible with the requested operation.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrIndexOutOfRange reports an element or sub-tensor access beyond the tensor's extents.
	ErrIndexOutOfRange = errors.New("index out of range")
)
