package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	x := New(2, 3)
	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, []int{3, 1}, x.Strides())
	assert.Equal(t, 6, x.Len())
	assert.Equal(t, 0.0, x.Sum())

	assert.Panics(t, func() { New(2, 0) })
	assert.Panics(t, func() { New() })
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, x.At(1, 0))

	_, err = FromSlice([]float64{1, 2, 3}, 2, 2)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	v, err := FromSlice([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, Shape{3}, v.Shape())
}

func TestAtSetBounds(t *testing.T) {
	x := New(2, 2)
	x.Set(5, 1, 1)
	assert.Equal(t, 5.0, x.At(1, 1))

	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
	assert.Panics(t, func() { x.Set(1, 0, -1) })
}

func TestBroadcastRows(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	b := MustFromSlice([]float64{10, 20}, 1, 2)

	out, err := Broadcast(a, b, func(x, y float64) float64 { return x * y })
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{10, 40, 30, 80, 50, 120}, out.Values())

	// Inputs are not modified.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Values())
}

func TestBroadcastKeepsLeadingDims(t *testing.T) {
	a := Ones(2, 3, 4)
	b := MustFromSlice([]float64{1, 2, 3, 4}, 4)

	out, err := Broadcast(a, b, func(x, y float64) float64 { return x + y })
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3, 4}, out.Shape())
	assert.Equal(t, 5.0, out.At(1, 2, 3))
}

func TestBroadcastIncompatible(t *testing.T) {
	_, err := Broadcast(New(3, 4), New(3, 5), func(x, y float64) float64 { return x })
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b  Shape
		out   Shape
		needs bool
		fail  bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{5}, Shape{2, 5}, Shape{2, 5}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		out, needs, err := BroadcastShapes(tt.a, tt.b)
		if tt.fail {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.out, out)
		assert.Equal(t, tt.needs, needs)
	}
}

func TestInPlaceAddBroadcast(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4}, 2, 2)
	bias := MustFromSlice([]float64{10, 20}, 2)

	out, err := x.Add(bias)
	require.NoError(t, err)
	assert.Same(t, x, out)
	assert.Equal(t, []float64{11, 22, 13, 24}, x.Values())

	_, err = bias.Add(x)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestReshapeRoundTrip(t *testing.T) {
	x := Uniform(rand.New(rand.NewSource(1)), -1, 1, 2, 3, 4)

	for _, dims := range [][]int{{24}, {4, 6}, {2, 12}, {3, -1}, {1, 24, 1}} {
		r, err := x.Reshape(dims...)
		require.NoError(t, err)
		back, err := r.Reshape(x.Shape()...)
		require.NoError(t, err)
		assert.True(t, back.Equal(x), "reshape via %v", dims)
	}

	_, err := x.Reshape(5, 5)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestReshapeIsView(t *testing.T) {
	x := New(2, 3)
	r, err := x.Reshape(3, 2)
	require.NoError(t, err)

	r.Set(7, 2, 1)
	assert.Equal(t, 7.0, x.At(1, 2))
	assert.True(t, r.Shares(x))
}

func TestTransposeView(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	tr, err := x.Transpose()
	require.NoError(t, err)

	assert.Equal(t, Shape{3, 2}, tr.Shape())
	assert.False(t, tr.IsContiguous())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, tr.Values())

	tr.Set(-1, 2, 0)
	assert.Equal(t, -1.0, x.At(0, 2))

	// Reshaping a strided view copies.
	flat, err := tr.Reshape(6)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 2, 5, -1, 6}, flat.Values())
	assert.False(t, flat.Shares(x))

	_, err = New(3).Transpose()
	assert.Error(t, err)
}

func TestPermute(t *testing.T) {
	x := New(2, 3, 4)
	x.Set(9, 1, 2, 3)
	p, err := x.Permute(2, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 2, 3}, p.Shape())
	assert.Equal(t, 9.0, p.At(3, 1, 2))

	_, err = x.Permute(0, 0, 1)
	assert.Error(t, err)
}

func TestIndexSqueezeUnsqueeze(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)

	row, err := x.Index(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, row.Values())
	row.Fill(0)
	assert.Equal(t, []float64{1, 2, 0, 0, 5, 6}, x.Values())

	_, err = x.Index(3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	u, err := row.Unsqueeze(0)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2}, u.Shape())

	s, err := u.Squeeze(0)
	require.NoError(t, err)
	assert.Equal(t, Shape{2}, s.Shape())

	_, err = x.Squeeze(0)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestReduceKeepsAxis(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)

	rows, err := x.SumAxis(1)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Values())

	cols, err := x.SumAxis(0)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Values())

	maxes, err := x.Reduce(0, math.Inf(-1), math.Max)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, maxes.Values())

	_, err = x.SumAxis(2)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestReduceOnView(t *testing.T) {
	x := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	tr, err := x.Transpose()
	require.NoError(t, err)

	s, err := tr.SumAxis(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, s.Values())
}

func TestArgMaxFirstIndexOnTies(t *testing.T) {
	x := MustFromSlice([]float64{1, 3, 3, 0, 2, 2}, 2, 3)

	am, err := x.ArgMax(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, am.Values())

	assert.Equal(t, 1, x.ArgMaxFlat())
}

func TestScalarReductions(t *testing.T) {
	x := MustFromSlice([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	assert.Equal(t, 40.0, x.Sum())
	assert.Equal(t, 5.0, x.Mean())
	assert.Equal(t, 9.0, x.Max())
	assert.Equal(t, 2.0, x.Min())
	assert.InDelta(t, 2.0, x.Std(), 1e-12)
}

func TestNorm(t *testing.T) {
	x := MustFromSlice([]float64{-2, 0, 2}, 3)
	x.Norm(0, 1)
	assert.Equal(t, []float64{0, 0.5, 1}, x.Values())

	c := Full(3, 2)
	c.Norm(-1, 1)
	assert.Equal(t, []float64{-1, -1}, c.Values())
}

func TestMatMul(t *testing.T) {
	a := MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := MustFromSlice([]float64{7, 8, 9, 10, 11, 12}, 3, 2)

	c, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Values())

	_, err = MatMul(a, a)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestCloneIsDeep(t *testing.T) {
	x := MustFromSlice([]float64{1, 2}, 2)
	c := x.Clone()
	c.Set(9, 0)
	assert.Equal(t, 1.0, x.At(0))
	assert.False(t, c.Shares(x))
}

func TestItem(t *testing.T) {
	assert.Equal(t, 3.5, Scalar(3.5).Item())
	assert.Panics(t, func() { New(2).Item() })
}
