package tensor

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// In-place element-wise operations. Each one writes through the receiver's offset/stride
// mapping, so views sharing the buffer observe the change, and returns the receiver.

// Fill sets every element to v.
func (t *Tensor) Fill(v float64) *Tensor {
	t.each(func(_, pos int) {
		t.data[pos] = v
	})
	return t
}

// Zero sets every element to 0.
func (t *Tensor) Zero() *Tensor {
	return t.Fill(0)
}

// CopyFrom copies the elements of src into t in logical order.
// Both tensors must have the same number of elements.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if src.Len() != t.Len() {
		return errors.Wrapf(ErrShapeMismatch, "copy from %v into %v", src.shape, t.shape)
	}
	vals := src.Values()
	t.each(func(i, pos int) {
		t.data[pos] = vals[i]
	})
	return nil
}

// Map applies fn to every element in ascending logical order.
func (t *Tensor) Map(fn func(float64) float64) *Tensor {
	t.each(func(_, pos int) {
		t.data[pos] = fn(t.data[pos])
	})
	return t
}

// Map2 sets every element to fn(t, o), broadcasting o to the receiver's shape.
// Returns ErrShapeMismatch if o does not broadcast to t's shape.
func (t *Tensor) Map2(o *Tensor, fn func(a, b float64) float64) (*Tensor, error) {
	ov, err := o.BroadcastTo(t.shape)
	if err != nil {
		return nil, errors.Wrapf(err, "map %v with %v", t.shape, o.shape)
	}
	vals := ov.Values()
	t.each(func(i, pos int) {
		t.data[pos] = fn(t.data[pos], vals[i])
	})
	return t, nil
}

// Add adds o element-wise (broadcast to t's shape).
func (t *Tensor) Add(o *Tensor) (*Tensor, error) {
	return t.Map2(o, func(a, b float64) float64 { return a + b })
}

// Sub subtracts o element-wise (broadcast to t's shape).
func (t *Tensor) Sub(o *Tensor) (*Tensor, error) {
	return t.Map2(o, func(a, b float64) float64 { return a - b })
}

// Mul multiplies by o element-wise (broadcast to t's shape).
func (t *Tensor) Mul(o *Tensor) (*Tensor, error) {
	return t.Map2(o, func(a, b float64) float64 { return a * b })
}

// Div divides by o element-wise (broadcast to t's shape).
func (t *Tensor) Div(o *Tensor) (*Tensor, error) {
	return t.Map2(o, func(a, b float64) float64 { return a / b })
}

// AddScalar adds v to every element.
func (t *Tensor) AddScalar(v float64) *Tensor {
	return t.Map(func(x float64) float64 { return x + v })
}

// MulScalar multiplies every element by v.
func (t *Tensor) MulScalar(v float64) *Tensor {
	return t.Map(func(x float64) float64 { return x * v })
}

// Clamp limits every element to [lo, hi].
func (t *Tensor) Clamp(lo, hi float64) *Tensor {
	return t.Map(func(x float64) float64 { return math.Max(lo, math.Min(hi, x)) })
}

// Norm linearly rescales the value range of t to [lo, hi].
// A tensor whose elements are all equal is filled with lo.
func (t *Tensor) Norm(lo, hi float64) *Tensor {
	vals := t.Values()
	minV, maxV := floats.Min(vals), floats.Max(vals)
	if maxV == minV {
		return t.Fill(lo)
	}
	scale := (hi - lo) / (maxV - minV)
	return t.Map(func(x float64) float64 { return lo + (x-minV)*scale })
}

// Broadcast combines a and b element-wise into a newly allocated tensor whose shape is the
// broadcast of both shapes.
//
// Example:
//
//	a: (3, 2), b: (1, 2) -> result (3, 2); every row of a combined with the single row of b.
func Broadcast(a, b *Tensor, fn func(x, y float64) float64) (*Tensor, error) {
	shape, _, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	av, _ := a.BroadcastTo(shape)
	bv, _ := b.BroadcastTo(shape)

	out := New(shape...)
	x, y := av.Values(), bv.Values()
	for i := range out.data {
		out.data[i] = fn(x[i], y[i])
	}
	return out, nil
}

// MatMul multiplies two rank-2 tensors: (m, k) x (k, n) -> (m, n).
// The result is newly allocated.
func MatMul(a, b *Tensor) (*Tensor, error) {
	if a.NumDim() != 2 || b.NumDim() != 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "matmul requires rank-2 operands, got %v and %v", a.shape, b.shape)
	}
	m, k, n := a.shape[0], a.shape[1], b.shape[1]
	if b.shape[0] != k {
		return nil, errors.Wrapf(ErrShapeMismatch, "matmul inner dimensions differ: %v x %v", a.shape, b.shape)
	}

	var c mat.Dense
	c.Mul(mat.NewDense(m, k, a.Values()), mat.NewDense(k, n, b.Values()))
	raw := c.RawMatrix()

	out := New(m, n)
	for i := 0; i < m; i++ {
		copy(out.data[i*n:(i+1)*n], raw.Data[i*raw.Stride:i*raw.Stride+n])
	}
	return out, nil
}
