package serialization

import (
	"github.com/born-ml/seqnet/internal/nn"
)

// Format constants.
const (
	MagicBytes    = "SQNN"
	FormatVersion = 1
	ChecksumSize  = 32 // SHA-256
)

// File extensions understood by SaveModel and LoadModel.
const (
	ExtBinary = ".nn"
	ExtYAML   = ".yaml"
	ExtYML    = ".yml"
)

// Document is the format-independent content of a model file.
type Document struct {
	FormatVersion int            `yaml:"format_version"`
	ModelID       string         `yaml:"model_id"`
	Loss          string         `yaml:"loss,omitempty"`
	InputShape    []int          `yaml:"input_shape,flow"`
	Layers        []nn.LayerSpec `yaml:"layers"`
	Parameters    []TensorData   `yaml:"parameters"`
}

// TensorData is a named tensor in flat logical order.
type TensorData struct {
	Name  string    `yaml:"name"`
	Shape []int     `yaml:"shape,flow"`
	Data  []float64 `yaml:"data,flow"`
}
