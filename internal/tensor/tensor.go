// Package tensor provides the N-dimensional float64 tensor used by every layer, loss and
// optimizer of seqnet.
//
// A Tensor is a shape, a set of per-dimension strides and an offset into a flat backing
// buffer. Several tensors may share one buffer: Reshape, Transpose, Permute, Index, Squeeze
// and Unsqueeze return views, so writing through a view is visible through its source.
//
// Operation categories follow one fixed policy:
//   - element-wise arithmetic (Add, Sub, Mul, Div, Map, Map2, Fill, Norm, ...) mutates the
//     receiver's buffer and returns the receiver;
//   - shape operations return views that share the receiver's buffer;
//   - Broadcast, MatMul, Clone and all reductions allocate a new buffer.
//
// Example:
//
//	a := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
//	b := tensor.MustFromSlice([]float64{10, 20}, 1, 2)
//	c, _ := tensor.Broadcast(a, b, func(x, y float64) float64 { return x * y }) // shape (3, 2)
package tensor

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
)

// Tensor is a strided view over a flat float64 buffer.
type Tensor struct {
	data    []float64 // Backing buffer, possibly shared with other views
	shape   Shape     // Tensor dimensions
	strides []int     // Memory strides (row-major for freshly allocated tensors)
	offset  int       // Position of element (0, ..., 0) in data
}

// New creates a zero-filled tensor with the given dimensions.
// Panics with ErrShapeMismatch if no dimension is given or any dimension is not positive.
//
// Example:
//
//	t := tensor.New(3, 4) // 3x4 zeros
func New(dims ...int) *Tensor {
	t, err := Zeros(Shape(dims))
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	shape = shape.Clone()
	return &Tensor{
		data:    make([]float64, shape.NumElements()),
		shape:   shape,
		strides: shape.ComputeStrides(),
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, dims ...int) (*Tensor, error) {
	shape := Shape(dims)
	if len(dims) == 0 {
		shape = Shape{len(data)}
	}
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice(data []float64, dims ...int) *Tensor {
	t, err := FromSlice(data, dims...)
	if err != nil {
		panic(err)
	}
	return t
}

// Scalar creates a tensor of shape (1) holding v.
func Scalar(v float64) *Tensor {
	t := New(1)
	t.data[0] = v
	return t
}

// Full creates a tensor filled with a specific value.
func Full(value float64, dims ...int) *Tensor {
	return New(dims...).Fill(value)
}

// Ones creates a tensor filled with ones.
func Ones(dims ...int) *Tensor {
	return Full(1, dims...)
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi) using rng.
func Uniform(rng *rand.Rand, lo, hi float64, dims ...int) *Tensor {
	t := New(dims...)
	for i := range t.data {
		t.data[i] = lo + rng.Float64()*(hi-lo)
	}
	return t
}

// view builds a tensor sharing data.
func view(data []float64, shape Shape, strides []int, offset int) *Tensor {
	return &Tensor{
		data:    data,
		shape:   shape,
		strides: strides,
		offset:  offset,
	}
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Strides returns a copy of the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return append([]int(nil), t.strides...)
}

// Offset returns the position of the first element in the backing buffer.
func (t *Tensor) Offset() int {
	return t.offset
}

// NumDim returns the number of dimensions.
func (t *Tensor) NumDim() int {
	return len(t.shape)
}

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	return t.shape.NumElements()
}

// Dim returns the extent of dimension i.
// Panics with ErrIndexOutOfRange if i is not a valid axis.
func (t *Tensor) Dim(i int) int {
	if i < 0 || i >= len(t.shape) {
		panic(errors.Wrapf(ErrIndexOutOfRange, "axis %d for tensor of rank %d", i, len(t.shape)))
	}
	return t.shape[i]
}

// SameShape reports whether t and o have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	return t.shape.Equal(o.shape)
}

// position maps indices to a buffer position.
// Panics with ErrIndexOutOfRange if the index count differs from the rank or any index is
// outside its dimension.
func (t *Tensor) position(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(errors.Wrapf(ErrIndexOutOfRange, "expected %d indices, got %d", len(t.shape), len(indices)))
	}

	pos := t.offset
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(errors.Wrapf(ErrIndexOutOfRange, "index %d out of bounds for dimension %d (size %d)",
				idx, i, t.shape[i]))
		}
		pos += idx * t.strides[i]
	}
	return pos
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
//
// Example:
//
//	t := tensor.New(3, 4)
//	value := t.At(1, 2) // Row 1, column 2
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.position(indices)]
}

// Set writes value at the given indices through the offset/stride mapping, so the write is
// visible through every view sharing the buffer.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) *Tensor {
	t.data[t.position(indices)] = value
	return t
}

// Item returns the value of a single-element tensor.
// Panics with ErrShapeMismatch if the tensor holds more than one element.
func (t *Tensor) Item() float64 {
	if t.Len() != 1 {
		panic(errors.Wrapf(ErrShapeMismatch, "Item() only works for single-element tensors, got shape %v", t.shape))
	}
	return t.data[t.offset]
}

// IsContiguous reports whether the strides match the row-major layout of the shape.
func (t *Tensor) IsContiguous() bool {
	expected := 1
	for i := len(t.shape) - 1; i >= 0; i-- {
		if t.shape[i] != 1 && t.strides[i] != expected {
			return false
		}
		expected *= t.shape[i]
	}
	return true
}

// Contiguous returns t if it is already contiguous, otherwise a contiguous copy.
func (t *Tensor) Contiguous() *Tensor {
	if t.IsContiguous() {
		return t
	}
	return t.Clone()
}

// Data returns the backing slice of a contiguous tensor (zero-copy).
// Panics with ErrShapeMismatch if the tensor is not contiguous.
//
// WARNING: Modifications to the returned slice will modify the tensor and its views.
func (t *Tensor) Data() []float64 {
	if !t.IsContiguous() {
		panic(errors.Wrap(ErrShapeMismatch, "Data() requires a contiguous tensor"))
	}
	return t.data[t.offset : t.offset+t.Len()]
}

// Values returns a copy of the elements in logical (row-major) order.
func (t *Tensor) Values() []float64 {
	out := make([]float64, t.Len())
	t.each(func(i, pos int) {
		out[i] = t.data[pos]
	})
	return out
}

// Clone creates a deep copy of the tensor with its own contiguous buffer.
func (t *Tensor) Clone() *Tensor {
	shape := t.shape.Clone()
	return &Tensor{
		data:    t.Values(),
		shape:   shape,
		strides: shape.ComputeStrides(),
	}
}

// Shares reports whether t and o use the same backing buffer.
func (t *Tensor) Shares(o *Tensor) bool {
	return len(t.data) > 0 && len(o.data) > 0 && &t.data[0] == &o.data[0]
}

// each calls fn for every element in ascending logical order with the element's logical
// index and its position in the backing buffer.
func (t *Tensor) each(fn func(i, pos int)) {
	n := t.Len()
	if t.IsContiguous() {
		for i := 0; i < n; i++ {
			fn(i, t.offset+i)
		}
		return
	}

	nd := len(t.shape)
	idx := make([]int, nd)
	pos := t.offset
	for i := 0; i < n; i++ {
		fn(i, pos)
		for d := nd - 1; d >= 0; d-- {
			idx[d]++
			pos += t.strides[d]
			if idx[d] < t.shape[d] {
				break
			}
			pos -= idx[d] * t.strides[d]
			idx[d] = 0
		}
	}
}

// Equal reports whether t and o have the same shape and identical elements.
func (t *Tensor) Equal(o *Tensor) bool {
	return t.EqualApprox(o, 0)
}

// EqualApprox reports whether t and o have the same shape and all elements differ by at most eps.
func (t *Tensor) EqualApprox(o *Tensor, eps float64) bool {
	if !t.SameShape(o) {
		return false
	}
	a, b := t.Values(), o.Values()
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > eps {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if t.Len() <= 16 {
		return fmt.Sprintf("Tensor%v %v", t.shape, t.Values())
	}
	return fmt.Sprintf("Tensor%v", t.shape)
}
