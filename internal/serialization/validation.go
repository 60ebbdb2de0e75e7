package serialization

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation limits for resource protection against malformed files.
const (
	MaxTensorCount   = 100_000 // Maximum number of tensors in a file
	MaxTensorNameLen = 4096    // Maximum tensor or string length
	MaxLayerCount    = 100_000 // Maximum number of layers in a file
	MaxRank          = 8       // Maximum tensor rank
	MaxElements      = 1 << 28 // Maximum elements per tensor
)

// ValidateTensorName rejects empty names, names that are too long and names with control
// or separator characters.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Kind: ErrInvalidTensorName, Details: "empty name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Kind:    ErrInvalidTensorName,
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{Kind: ErrInvalidTensorName, Tensor: name, Details: "contains a separator or null byte"}
	}
	return nil
}

// ValidateShape checks a stored tensor shape against the rank and size limits.
func ValidateShape(name string, shape []int) error {
	if len(shape) == 0 || len(shape) > MaxRank {
		return &ValidationError{
			Kind:    ErrInvalidTensor,
			Tensor:  name,
			Details: fmt.Sprintf("rank %d outside [1, %d]", len(shape), MaxRank),
		}
	}
	n := 1
	for _, d := range shape {
		if d < 1 || d > MaxElements || n > MaxElements/d {
			return &ValidationError{
				Kind:    ErrInvalidTensor,
				Tensor:  name,
				Details: fmt.Sprintf("shape %v exceeds %d elements or has a non-positive dimension", shape, MaxElements),
			}
		}
		n *= d
	}
	return nil
}

// ValidateDocument performs the structural checks shared by both file formats.
func ValidateDocument(doc *Document) error {
	if doc.FormatVersion != FormatVersion {
		return &ValidationError{
			Kind:    ErrUnsupportedVersion,
			Details: fmt.Sprintf("got %d, expected %d", doc.FormatVersion, FormatVersion),
		}
	}
	if _, err := uuid.Parse(doc.ModelID); err != nil {
		return &ValidationError{Kind: ErrInvalidHeader, Details: fmt.Sprintf("model id %q: %v", doc.ModelID, err)}
	}
	if len(doc.Layers) > MaxLayerCount {
		return &ValidationError{Kind: ErrTooManyTensors, Details: fmt.Sprintf("%d layers", len(doc.Layers))}
	}
	if len(doc.Parameters) > MaxTensorCount {
		return &ValidationError{
			Kind:    ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(doc.Parameters), MaxTensorCount),
		}
	}
	for _, p := range doc.Parameters {
		if err := ValidateTensorName(p.Name); err != nil {
			return err
		}
		if err := ValidateShape(p.Name, p.Shape); err != nil {
			return err
		}
		if want := numElements(p.Shape); len(p.Data) != want {
			return &ValidationError{
				Kind:    ErrInvalidTensor,
				Tensor:  p.Name,
				Details: fmt.Sprintf("%d values for shape %v (%d elements)", len(p.Data), p.Shape, want),
			}
		}
	}
	return nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
