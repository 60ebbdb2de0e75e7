// Package nn implements the layers of a sequential network.
//
// This package provides the building blocks stacked by a model:
//   - Layer interface: the contract every building block satisfies
//   - Parameter: trainable tensor with an accumulating gradient
//   - Input, Dense, Activation, Dropout, Flatten, Conv2D, MaxPool2D, AvgPool2D layers
//   - Activations: Linear, ReLU, LeakyReLU, ELU, SELU, GELU, Swish, SoftPlus, Atan,
//     Sigmoid, Tanh, Softmax
//   - Initializers: GlorotUniform, GlorotNormal, He, HeUniform, LeCun, Gaussian
//   - LayerSpec: a serializable description used to rebuild layers
//
// Layers compute gradients with explicit per-layer Backward methods. There is no tape or
// graph: the caller walks the layers in reverse order and feeds each Backward output to the
// previous layer.
package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Layer is the contract for every building block of a sequential model.
//
// Lifecycle: a layer is constructed with its hyperparameters (unbuilt), then Build binds the
// concrete input shape and allocates parameters and scratch buffers. Forward and Backward are
// only valid after Build, and Backward only after a Forward in the same step.
//
// Layers cache the last input and output, so an instance is not reentrant. Use Clone to get an
// independent copy for another goroutine.
type Layer interface {
	// Name returns the layer type name (e.g. "dense").
	Name() string

	// Build binds the input shape. A nil shape is accepted only by layers that declare
	// their own input shape (Input).
	Build(in tensor.Shape) error

	// Built reports whether Build succeeded.
	Built() bool

	// Forward computes the output for x, whose shape must equal InputShape.
	// The returned tensor is a layer-owned buffer overwritten by the next Forward.
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)

	// Backward takes dL/dOutput (shape OutputShape) and returns dL/dInput (shape InputShape).
	// Parameter gradients are added to, never overwritten.
	Backward(grad *tensor.Tensor) (*tensor.Tensor, error)

	InputShape() tensor.Shape
	OutputShape() tensor.Shape

	// NumParams returns the number of trainable scalars.
	NumParams() int

	// Parameters returns the trainable parameters (nil for stateless layers).
	Parameters() []*Parameter

	// ZeroGrad resets every parameter gradient to zero.
	ZeroGrad()

	// SetTraining switches between training and inference behaviour.
	SetTraining(training bool)

	// Clone returns a deep copy that shares no buffers with the receiver.
	Clone() Layer

	// Spec describes the layer's hyperparameters for serialization.
	Spec() LayerSpec
}

// Parallelizable is implemented by layers whose kernels run on a worker pool.
type Parallelizable interface {
	SetParallel(cfg parallel.Config)
}

// base holds the shape bookkeeping shared by every layer.
type base struct {
	in, out  tensor.Shape
	built    bool
	forward  bool
	training bool
}

func (b *base) Built() bool { return b.built }

func (b *base) InputShape() tensor.Shape { return b.in.Clone() }

func (b *base) OutputShape() tensor.Shape { return b.out.Clone() }

func (b *base) SetTraining(training bool) { b.training = training }

func (b *base) bind(in, out tensor.Shape) {
	b.in = in.Clone()
	b.out = out.Clone()
	b.built = true
	b.forward = false
}

// checkForward validates x against the bound input shape.
func (b *base) checkForward(name string, x *tensor.Tensor) error {
	if !b.built {
		return errors.Wrapf(ErrNotBuilt, "%s: forward", name)
	}
	if !x.Shape().Equal(b.in) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "%s: input shape %v, expected %v", name, x.Shape(), b.in)
	}
	return nil
}

// checkBackward validates grad against the bound output shape.
func (b *base) checkBackward(name string, grad *tensor.Tensor) error {
	if !b.built {
		return errors.Wrapf(ErrNotBuilt, "%s: backward", name)
	}
	if !b.forward {
		return errors.Wrapf(ErrNotBuilt, "%s: backward called before forward", name)
	}
	if !grad.Shape().Equal(b.out) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "%s: gradient shape %v, expected %v", name, grad.Shape(), b.out)
	}
	return nil
}

// rebuild builds a clone with the shape its source was built with. That shape was accepted
// once, so a failure here is a bug and panics.
func rebuild(l Layer, in tensor.Shape) {
	if err := l.Build(in); err != nil {
		panic(errors.Wrapf(err, "%s: clone", l.Name()))
	}
}

func validateInput(name string, in tensor.Shape) error {
	if in == nil {
		return errors.Wrapf(ErrInvalidConfig, "%s: input shape is unknown", name)
	}
	if err := in.Validate(); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	return nil
}

func paramsOf(ps ...*Parameter) int {
	n := 0
	for _, p := range ps {
		n += p.Value().Len()
	}
	return n
}
