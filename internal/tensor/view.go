package tensor

import (
	"github.com/pkg/errors"
)

// Reshape returns a tensor with the same elements and a new shape.
//
// One dimension may be -1, in which case it is inferred from the element count.
// A contiguous receiver yields a view sharing its buffer; a non-contiguous receiver is copied
// first, so the result never aliases a strided source.
//
// Returns ErrShapeMismatch if the element counts differ.
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	shape, err := t.inferShape(dims)
	if err != nil {
		return nil, err
	}

	src := t.Contiguous()
	return view(src.data, shape, shape.ComputeStrides(), src.offset), nil
}

func (t *Tensor) inferShape(dims []int) (Shape, error) {
	shape := Shape(dims).Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d <= 0:
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot reshape %v to %v", t.shape, Shape(dims))
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || t.Len()%known != 0 {
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot infer dimension reshaping %v to %v", t.shape, Shape(dims))
		}
		shape[infer] = t.Len() / known
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != t.Len() {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, t.Len(), shape, shape.NumElements())
	}
	return shape, nil
}

// Flatten returns a rank-1 tensor with all elements (a view when the receiver is contiguous).
func (t *Tensor) Flatten() *Tensor {
	out, err := t.Reshape(t.Len())
	if err != nil {
		panic(err) // element count is always preserved
	}
	return out
}

// Transpose swaps the last two axes and returns a view.
// Returns ErrShapeMismatch for tensors of rank < 2.
func (t *Tensor) Transpose() (*Tensor, error) {
	n := len(t.shape)
	if n < 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "transpose requires rank >= 2, got shape %v", t.shape)
	}
	axes := make([]int, n)
	for i := range axes {
		axes[i] = i
	}
	axes[n-2], axes[n-1] = axes[n-1], axes[n-2]
	return t.Permute(axes...)
}

// Permute reorders the axes and returns a view.
// axes must be a permutation of 0..rank-1.
func (t *Tensor) Permute(axes ...int) (*Tensor, error) {
	n := len(t.shape)
	if len(axes) != n {
		return nil, errors.Wrapf(ErrShapeMismatch, "permute expects %d axes, got %d", n, len(axes))
	}

	seen := make([]bool, n)
	shape := make(Shape, n)
	strides := make([]int, n)
	for i, a := range axes {
		if a < 0 || a >= n || seen[a] {
			return nil, errors.Wrapf(ErrShapeMismatch, "invalid permutation %v for rank %d", axes, n)
		}
		seen[a] = true
		shape[i] = t.shape[a]
		strides[i] = t.strides[a]
	}
	return view(t.data, shape, strides, t.offset), nil
}

// Index returns the i-th sub-tensor along axis 0 as a view.
// For a rank-1 tensor the result has shape (1).
func (t *Tensor) Index(i int) (*Tensor, error) {
	if i < 0 || i >= t.shape[0] {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d for axis 0 of size %d", i, t.shape[0])
	}
	offset := t.offset + i*t.strides[0]
	if len(t.shape) == 1 {
		return view(t.data, Shape{1}, []int{1}, offset), nil
	}
	return view(t.data, t.shape[1:].Clone(), append([]int(nil), t.strides[1:]...), offset), nil
}

// Squeeze removes axis dim, which must have size 1, and returns a view.
// A rank-1 tensor cannot be squeezed.
func (t *Tensor) Squeeze(dim int) (*Tensor, error) {
	if dim < 0 || dim >= len(t.shape) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "axis %d for tensor of rank %d", dim, len(t.shape))
	}
	if t.shape[dim] != 1 || len(t.shape) == 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot squeeze axis %d of shape %v", dim, t.shape)
	}

	shape := make(Shape, 0, len(t.shape)-1)
	strides := make([]int, 0, len(t.shape)-1)
	for i := range t.shape {
		if i == dim {
			continue
		}
		shape = append(shape, t.shape[i])
		strides = append(strides, t.strides[i])
	}
	return view(t.data, shape, strides, t.offset), nil
}

// Unsqueeze inserts an axis of size 1 at position dim and returns a view.
func (t *Tensor) Unsqueeze(dim int) (*Tensor, error) {
	if dim < 0 || dim > len(t.shape) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "axis %d for unsqueeze of rank %d", dim, len(t.shape))
	}

	shape := make(Shape, 0, len(t.shape)+1)
	strides := make([]int, 0, len(t.shape)+1)
	shape = append(shape, t.shape[:dim]...)
	strides = append(strides, t.strides[:dim]...)
	stride := 1
	if dim < len(t.shape) {
		stride = t.strides[dim] * t.shape[dim]
	}
	shape = append(shape, 1)
	strides = append(strides, stride)
	shape = append(shape, t.shape[dim:]...)
	strides = append(strides, t.strides[dim:]...)
	return view(t.data, shape, strides, t.offset), nil
}

// BroadcastTo returns a read view of t with the given shape, repeating size-1 and missing
// leading dimensions with stride 0. Writing through the result writes every aliased element.
func (t *Tensor) BroadcastTo(shape Shape) (*Tensor, error) {
	out, _, err := BroadcastShapes(t.shape, shape)
	if err != nil {
		return nil, err
	}
	if !out.Equal(shape) {
		return nil, errors.Wrapf(ErrShapeMismatch, "cannot broadcast %v to %v", t.shape, shape)
	}
	return view(t.data, shape.Clone(), broadcastStrides(t, shape), t.offset), nil
}
