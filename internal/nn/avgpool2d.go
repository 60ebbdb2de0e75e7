package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// AvgPool2D is a 2D average pooling layer with stride equal to the pool size.
//
// Input shape:  [channels, height, width]
// Output shape: [channels, height / pool_h, width / pool_w]
//
// Trailing rows and columns that do not fill a whole window are ignored and receive a zero
// gradient. Backward spreads each output gradient evenly over its window.
type AvgPool2D struct {
	base
	pool [2]int
	par  parallel.Config

	y, dx *tensor.Tensor
}

// NewAvgPool2D creates an unbuilt average pooling layer.
func NewAvgPool2D(poolH, poolW int) *AvgPool2D {
	return &AvgPool2D{
		pool: [2]int{poolH, poolW},
		par:  parallel.DefaultConfig(),
	}
}

// Name returns "avgpool2d".
func (a *AvgPool2D) Name() string { return TypeAvgPool2D }

// SetParallel replaces the worker pool configuration.
func (a *AvgPool2D) SetParallel(cfg parallel.Config) { a.par = cfg }

// Build binds an input of shape (C, H, W).
func (a *AvgPool2D) Build(in tensor.Shape) error {
	if err := validateInput(a.Name(), in); err != nil {
		return err
	}
	ph, pw := a.pool[0], a.pool[1]
	if ph <= 0 || pw <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "avgpool2d: invalid pool %dx%d", ph, pw)
	}
	if len(in) != 3 {
		return errors.Wrapf(tensor.ErrShapeMismatch, "avgpool2d: expects (channels, height, width), got %v", in)
	}
	if in[1] < ph || in[2] < pw {
		return errors.Wrapf(tensor.ErrShapeMismatch, "avgpool2d: pool %dx%d larger than input %v", ph, pw, in)
	}

	out := tensor.Shape{in[0], in[1] / ph, in[2] / pw}
	a.y = tensor.New(out...)
	a.dx = tensor.New(in...)
	a.bind(in, out)
	return nil
}

// Forward averages every window.
func (a *AvgPool2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.checkForward(a.Name(), x); err != nil {
		return nil, err
	}

	xs := x.Contiguous().Data()
	h, w := a.in[1], a.in[2]
	ph, pw := a.pool[0], a.pool[1]
	oh, ow := a.out[1], a.out[2]
	area := float64(ph * pw)
	ys := a.y.Data()

	parallel.ForBatch(a.in[0], oh, func(c, i int) {
		for j := 0; j < ow; j++ {
			sum := 0.0
			for u := 0; u < ph; u++ {
				row := (c*h+i*ph+u)*w + j*pw
				for v := 0; v < pw; v++ {
					sum += xs[row+v]
				}
			}
			ys[(c*oh+i)*ow+j] = sum / area
		}
	}, a.par)

	a.forward = true
	return a.y, nil
}

// Backward gives every element of a window 1/(pool_h*pool_w) of the window's gradient.
func (a *AvgPool2D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.checkBackward(a.Name(), grad); err != nil {
		return nil, err
	}

	gs := grad.Contiguous().Data()
	dxs := a.dx.Zero().Data()
	h, w := a.in[1], a.in[2]
	ph, pw := a.pool[0], a.pool[1]
	oh, ow := a.out[1], a.out[2]
	area := float64(ph * pw)

	parallel.For(a.in[0], func(c int) {
		for i := 0; i < oh; i++ {
			for j := 0; j < ow; j++ {
				g := gs[(c*oh+i)*ow+j] / area
				for u := 0; u < ph; u++ {
					row := (c*h+i*ph+u)*w + j*pw
					for v := 0; v < pw; v++ {
						dxs[row+v] = g
					}
				}
			}
		}
	}, a.par)
	return a.dx, nil
}

func (a *AvgPool2D) NumParams() int { return 0 }

func (a *AvgPool2D) Parameters() []*Parameter { return nil }

func (a *AvgPool2D) ZeroGrad() {}

// Clone returns an independent pooling layer.
func (a *AvgPool2D) Clone() Layer {
	c := NewAvgPool2D(a.pool[0], a.pool[1])
	c.par = a.par
	if a.built {
		rebuild(c, a.in)
	}
	return c
}

// Spec describes the layer.
func (a *AvgPool2D) Spec() LayerSpec {
	return LayerSpec{Type: TypeAvgPool2D, PoolH: a.pool[0], PoolW: a.pool[1]}
}
