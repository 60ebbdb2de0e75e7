package nn

import (
	"github.com/born-ml/seqnet/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// They typically represent weights and biases of layers. The gradient has the
// same shape as the value and accumulates across Backward calls until ZeroGrad.
//
// Example:
//
//	// Create a weight parameter
//	weight := nn.NewParameter("dense.weight", weightTensor)
//
//	// Access the tensor
//	w := weight.Value()
//
//	// Get gradient after backward pass
//	grad := weight.Grad()
type Parameter struct {
	name  string         // Parameter name (e.g., "weight", "bias")
	value *tensor.Tensor // The parameter tensor
	grad  *tensor.Tensor // Accumulated gradient, same shape as value
}

// NewParameter creates a new trainable parameter with a zero gradient.
//
// The parameter tensor should be initialized before creating the Parameter.
// The tensor is used as-is (not copied).
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	grad, err := tensor.Zeros(t.Shape())
	if err != nil {
		panic(err)
	}
	return &Parameter{
		name:  name,
		value: t,
		grad:  grad,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the accumulated gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the gradient tensor.
//
// This must be called once per optimization step, before the gradients for the
// step are accumulated.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}

// Clone returns a deep copy of the value and the gradient.
func (p *Parameter) Clone() *Parameter {
	return &Parameter{
		name:  p.name,
		value: p.value.Clone(),
		grad:  p.grad.Clone(),
	}
}
