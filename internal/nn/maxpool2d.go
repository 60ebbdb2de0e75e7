package nn

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer with stride equal to the pool size.
//
// Input shape:  [channels, height, width]
// Output shape: [channels, height / pool_h, width / pool_w]
//
// Trailing rows and columns that do not fill a whole window are ignored.
// Backward routes each output gradient to the input element that won the window;
// on ties the first element in row-major order wins.
type MaxPool2D struct {
	base
	pool [2]int
	par  parallel.Config

	argmax []int // winning input position per output element
	y, dx  *tensor.Tensor
}

// NewMaxPool2D creates an unbuilt pooling layer.
func NewMaxPool2D(poolH, poolW int) *MaxPool2D {
	return &MaxPool2D{
		pool: [2]int{poolH, poolW},
		par:  parallel.DefaultConfig(),
	}
}

// Name returns "maxpool2d".
func (m *MaxPool2D) Name() string { return TypeMaxPool2D }

// SetParallel replaces the worker pool configuration.
func (m *MaxPool2D) SetParallel(cfg parallel.Config) { m.par = cfg }

// Build binds an input of shape (C, H, W).
func (m *MaxPool2D) Build(in tensor.Shape) error {
	if err := validateInput(m.Name(), in); err != nil {
		return err
	}
	ph, pw := m.pool[0], m.pool[1]
	if ph <= 0 || pw <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "maxpool2d: invalid pool %dx%d", ph, pw)
	}
	if len(in) != 3 {
		return errors.Wrapf(tensor.ErrShapeMismatch, "maxpool2d: expects (channels, height, width), got %v", in)
	}
	if in[1] < ph || in[2] < pw {
		return errors.Wrapf(tensor.ErrShapeMismatch, "maxpool2d: pool %dx%d larger than input %v", ph, pw, in)
	}

	out := tensor.Shape{in[0], in[1] / ph, in[2] / pw}
	m.argmax = make([]int, out.NumElements())
	m.y = tensor.New(out...)
	m.dx = tensor.New(in...)
	m.bind(in, out)
	return nil
}

// Forward takes the maximum of every window.
func (m *MaxPool2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := m.checkForward(m.Name(), x); err != nil {
		return nil, err
	}

	xs := x.Contiguous().Data()
	h, w := m.in[1], m.in[2]
	ph, pw := m.pool[0], m.pool[1]
	oh, ow := m.out[1], m.out[2]
	ys := m.y.Data()

	parallel.ForBatch(m.in[0], oh, func(c, i int) {
		for j := 0; j < ow; j++ {
			best, arg := math.Inf(-1), -1
			for u := 0; u < ph; u++ {
				row := (c*h+i*ph+u)*w + j*pw
				for v := 0; v < pw; v++ {
					if xs[row+v] > best || arg < 0 {
						best, arg = xs[row+v], row+v
					}
				}
			}
			o := (c*oh+i)*ow + j
			ys[o] = best
			m.argmax[o] = arg
		}
	}, m.par)

	m.forward = true
	return m.y, nil
}

// Backward scatters the gradient to the winning positions.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := m.checkBackward(m.Name(), grad); err != nil {
		return nil, err
	}

	gs := grad.Contiguous().Data()
	dxs := m.dx.Zero().Data()
	per := m.out[1] * m.out[2]

	parallel.For(m.in[0], func(c int) {
		for o := c * per; o < (c+1)*per; o++ {
			dxs[m.argmax[o]] += gs[o]
		}
	}, m.par)
	return m.dx, nil
}

func (m *MaxPool2D) NumParams() int { return 0 }

func (m *MaxPool2D) Parameters() []*Parameter { return nil }

func (m *MaxPool2D) ZeroGrad() {}

// Clone returns an independent pooling layer.
func (m *MaxPool2D) Clone() Layer {
	c := NewMaxPool2D(m.pool[0], m.pool[1])
	c.par = m.par
	if m.built {
		rebuild(c, m.in)
	}
	return c
}

// Spec describes the layer.
func (m *MaxPool2D) Spec() LayerSpec {
	return LayerSpec{Type: TypeMaxPool2D, PoolH: m.pool[0], PoolW: m.pool[1]}
}
