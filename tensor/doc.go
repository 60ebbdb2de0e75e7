// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense float64 tensors used by seqnet.
//
// # Overview
//
// A Tensor is an n-dimensional array stored row-major in a flat buffer, described by a shape,
// per-axis strides and an offset into that buffer. Views (Reshape of a contiguous tensor,
// Transpose, Permute, Index, Squeeze, Unsqueeze) share the buffer of their source; Clone and
// Contiguous copy it.
//
// # Basic Usage
//
//	x := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
//	b := tensor.MustFromSlice([]float64{10, 20, 30}, 3)
//
//	// In-place broadcast add: every row gets b.
//	if _, err := x.Add(b); err != nil {
//	    return err
//	}
//
//	// Reductions keep the reduced axis with size 1.
//	rows, _ := x.SumAxis(1) // shape [2 1]
//
//	// Matrix product of two rank-2 tensors.
//	y, _ := tensor.MatMul(x, tensor.Ones(3, 2))
//
// # Broadcasting
//
// Two shapes are compatible when, aligned from the trailing axis, every pair of extents is
// equal or one of them is 1. In-place operations (Add, Sub, Mul, Div, Map2) broadcast the
// argument into the receiver and fail with ErrShapeMismatch when the receiver's shape would
// have to grow. Broadcast allocates a result of the broadcast shape.
//
// # Errors
//
// Operations that depend on shapes return errors wrapping ErrShapeMismatch or
// ErrIndexOutOfRange. Element accessors (At, Set) and MustFromSlice panic instead.
package tensor
