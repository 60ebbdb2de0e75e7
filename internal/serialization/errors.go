package serialization

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrInvalidHeader      = errors.New("invalid model header")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrUnsupportedFormat  = errors.New("unsupported model file extension")
	ErrTooManyTensors     = errors.New("too many tensors in file")
	ErrInvalidTensor      = errors.New("invalid tensor header")
	ErrInvalidTensorName  = errors.New("invalid tensor name")
	ErrParameterMismatch  = errors.New("stored parameters do not match the layers")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Kind    error  // One of the sentinel errors above
	Tensor  string // Tensor name involved, if any
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%v: tensor %q: %s", e.Kind, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Details)
}

// Unwrap returns the sentinel, so errors.Is matches it.
func (e *ValidationError) Unwrap() error { return e.Kind }
