// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Tensor is a dense float64 n-dimensional array.
type Tensor = tensor.Tensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Errors reported by tensor operations.
var (
	ErrShapeMismatch   = tensor.ErrShapeMismatch
	ErrIndexOutOfRange = tensor.ErrIndexOutOfRange
)

// New creates a zero-filled tensor.
//
// Example:
//
//	t := tensor.New(2, 3) // 2x3 zeros
func New(dims ...int) *Tensor {
	return tensor.New(dims...)
}

// Zeros creates a zero-filled tensor, returning an error for an invalid shape.
func Zeros(shape Shape) (*Tensor, error) {
	return tensor.Zeros(shape)
}

// FromSlice creates a tensor that takes ownership of data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float64{1, 2, 3, 4}, 2, 2)
func FromSlice(data []float64, dims ...int) (*Tensor, error) {
	return tensor.FromSlice(data, dims...)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice(data []float64, dims ...int) *Tensor {
	return tensor.MustFromSlice(data, dims...)
}

// Scalar creates a tensor of shape [1] holding v.
func Scalar(v float64) *Tensor {
	return tensor.Scalar(v)
}

// Full creates a tensor filled with value.
func Full(value float64, dims ...int) *Tensor {
	return tensor.Full(value, dims...)
}

// Ones creates a tensor filled with ones.
func Ones(dims ...int) *Tensor {
	return tensor.Ones(dims...)
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64, dims ...int) *Tensor {
	return tensor.Uniform(rng, lo, hi, dims...)
}

// Broadcast applies fn elementwise over the broadcast of a and b into a new tensor.
func Broadcast(a, b *Tensor, fn func(x, y float64) float64) (*Tensor, error) {
	return tensor.Broadcast(a, b, fn)
}

// BroadcastShapes returns the broadcast of two shapes and whether any axis had to be broadcast.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// MatMul multiplies two rank-2 tensors: (m, k) x (k, n) -> (m, n).
//
// Example:
//
//	a := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
//	b := tensor.Ones(3, 2)
//	c, err := tensor.MatMul(a, b) // shape [2 2]
func MatMul(a, b *Tensor) (*Tensor, error) {
	return tensor.MatMul(a, b)
}
