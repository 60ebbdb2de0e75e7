// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/tensor"
)

// Layer is the contract of every building block of a sequential model.
//
// Every layer must implement:
//   - Build: bind the input shape and allocate parameters
//   - Forward: compute the output into a layer-owned buffer
//   - Backward: return dL/dInput and add parameter gradients
//   - Clone: deep copy for use on another goroutine
//
// Layers are stacked with NewSequential:
//
//	model := nn.NewSequential(
//	    nn.NewInput(2),
//	    nn.NewDense(4, nn.Tanh{}),
//	    nn.NewDense(1, nn.Sigmoid{}),
//	)
type Layer = nn.Layer

// Parallelizable is implemented by layers that can split their work across goroutines
// (Conv2D, MaxPool2D).
type Parallelizable = nn.Parallelizable

// Parameter is a trainable tensor paired with an accumulating gradient of the same shape.
type Parameter = nn.Parameter

// NewParameter creates a parameter owning t, with a zero gradient.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// LayerSpec is the serializable description of a layer's hyperparameters.
type LayerSpec = nn.LayerSpec

// Factory creates an unbuilt layer from its spec.
type Factory = nn.Factory

// FromSpec creates an unbuilt layer from spec.
func FromSpec(spec LayerSpec) (Layer, error) {
	return nn.FromSpec(spec)
}

// Register adds a layer factory under name, so models containing custom layers can be loaded.
func Register(name string, f Factory) {
	nn.Register(name, f)
}

// Registered returns the registered layer type names in sorted order.
func Registered() []string {
	return nn.Registered()
}

// Errors reported by layers and models.
var (
	ErrNotBuilt      = nn.ErrNotBuilt
	ErrInvalidConfig = nn.ErrInvalidConfig
	ErrUnknownLayer  = nn.ErrUnknownLayer
)
