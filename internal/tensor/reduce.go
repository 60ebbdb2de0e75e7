package tensor

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Fold combines all elements left to right in ascending logical order, starting from init.
// The fixed order keeps non-associative float sums reproducible.
func (t *Tensor) Fold(init float64, fn func(acc, x float64) float64) float64 {
	acc := init
	t.each(func(_, pos int) {
		acc = fn(acc, t.data[pos])
	})
	return acc
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return t.Fold(0, func(acc, x float64) float64 { return acc + x })
}

// Mean returns the arithmetic mean of all elements.
func (t *Tensor) Mean() float64 {
	return t.Sum() / float64(t.Len())
}

// Max returns the largest element.
func (t *Tensor) Max() float64 {
	return floats.Max(t.Values())
}

// Min returns the smallest element.
func (t *Tensor) Min() float64 {
	return floats.Min(t.Values())
}

// Std returns the population standard deviation of all elements.
func (t *Tensor) Std() float64 {
	mean := t.Mean()
	ss := t.Fold(0, func(acc, x float64) float64 { return acc + (x-mean)*(x-mean) })
	return math.Sqrt(ss / float64(t.Len()))
}

// Reduce folds the elements along axis, left to right, starting from init for every output
// position. The result is newly allocated and keeps the reduced axis with size 1.
//
// Example:
//
//	t: (2, 3) = [[1 2 3] [4 5 6]]
//	t.Reduce(1, 0, add) -> (2, 1) = [[6] [15]]
func (t *Tensor) Reduce(axis int, init float64, fn func(acc, x float64) float64) (*Tensor, error) {
	if axis < 0 || axis >= len(t.shape) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "reduce axis %d for tensor of rank %d", axis, len(t.shape))
	}

	outShape := t.shape.Clone()
	outShape[axis] = 1
	out := Full(init, outShape...)

	inner := 1
	for _, d := range t.shape[axis+1:] {
		inner *= d
	}
	span := t.shape[axis] * inner

	t.each(func(i, pos int) {
		o := (i/span)*inner + i%inner
		out.data[o] = fn(out.data[o], t.data[pos])
	})
	return out, nil
}

// SumAxis sums along axis, keeping it with size 1.
func (t *Tensor) SumAxis(axis int) (*Tensor, error) {
	return t.Reduce(axis, 0, func(acc, x float64) float64 { return acc + x })
}

// ArgMax returns, for every position along the other axes, the index of the maximum along
// axis. Ties resolve to the first (lowest) index. The reduced axis is kept with size 1.
func (t *Tensor) ArgMax(axis int) (*Tensor, error) {
	if axis < 0 || axis >= len(t.shape) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "argmax axis %d for tensor of rank %d", axis, len(t.shape))
	}

	outShape := t.shape.Clone()
	outShape[axis] = 1
	out := New(outShape...)
	best := Full(math.Inf(-1), outShape...)

	inner := 1
	for _, d := range t.shape[axis+1:] {
		inner *= d
	}
	span := t.shape[axis] * inner

	t.each(func(i, pos int) {
		o := (i/span)*inner + i%inner
		if v := t.data[pos]; v > best.data[o] {
			best.data[o] = v
			out.data[o] = float64((i % span) / inner)
		}
	})
	return out, nil
}

// ArgMaxFlat returns the flat logical index of the largest element, the first one on ties.
func (t *Tensor) ArgMaxFlat() int {
	return floats.MaxIdx(t.Values())
}
