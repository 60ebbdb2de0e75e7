package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Input declares the input shape of a model. It is the identity and is usually the first
// layer, so the model can build the rest of the chain from it.
type Input struct {
	base
	shape tensor.Shape
	y, dx *tensor.Tensor
}

// NewInput creates an input layer for samples of the given shape.
func NewInput(dims ...int) *Input {
	return &Input{shape: tensor.Shape(dims).Clone()}
}

// Name returns "input".
func (l *Input) Name() string { return TypeInput }

// Build binds the declared shape. A non-nil in must equal it.
func (l *Input) Build(in tensor.Shape) error {
	if err := l.shape.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "input: %v", err)
	}
	if in != nil && !in.Equal(l.shape) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "input: declared %v, got %v", l.shape, in)
	}
	l.bind(l.shape, l.shape)
	l.y = tensor.New(l.shape...)
	l.dx = tensor.New(l.shape...)
	return nil
}

// Forward copies x into the layer's output buffer.
func (l *Input) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := l.checkForward(l.Name(), x); err != nil {
		return nil, err
	}
	if err := l.y.CopyFrom(x); err != nil {
		return nil, err
	}
	l.forward = true
	return l.y, nil
}

// Backward passes the gradient through.
func (l *Input) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := l.checkBackward(l.Name(), grad); err != nil {
		return nil, err
	}
	if err := l.dx.CopyFrom(grad); err != nil {
		return nil, err
	}
	return l.dx, nil
}

func (l *Input) NumParams() int { return 0 }

func (l *Input) Parameters() []*Parameter { return nil }

func (l *Input) ZeroGrad() {}

// Clone returns an independent input layer with the same declared shape.
func (l *Input) Clone() Layer {
	c := NewInput(l.shape...)
	if l.built {
		rebuild(c, l.in)
	}
	return c
}

// Spec describes the layer.
func (l *Input) Spec() LayerSpec {
	return LayerSpec{Type: TypeInput, Shape: append([]int(nil), l.shape...)}
}
