package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Conv2D is a 2D convolutional layer (valid padding, stride 1) followed by an activation.
//
// Performs convolution: output = act(Conv2D(input, weight) + bias)
//
// Input shape:  [in_channels, height, width]
// Weight shape: [filters, in_channels, kernel_h, kernel_w]
// Bias shape:   [filters]
// Output shape: [filters, out_h, out_w]
//
// Where:
//
//	out_h = height - kernel_h + 1
//	out_w = width - kernel_w + 1
//
// Forward and Backward run on a worker pool. Forward splits the work by (filter, output row);
// Backward splits parameter gradients by filter and the input gradient by channel, so every
// worker writes a disjoint region.
//
// Example:
//
//	conv := nn.NewConv2D(6, 5, 5, nn.ReLU{})
//	_ = conv.Build(tensor.Shape{1, 28, 28}) // output [6, 24, 24]
type Conv2D struct {
	base
	filters int
	kernel  [2]int
	act     Activation
	seed    int64
	init    Initializer
	par     parallel.Config

	weight *Parameter // [filters, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [filters]

	x, z, y, dz, dx *tensor.Tensor
}

// NewConv2D creates an unbuilt convolution. Weights are drawn at Build with the WithInit
// initializer (Glorot uniform by default). A nil activation means Linear.
func NewConv2D(filters, kernelH, kernelW int, act Activation, opts ...Option) *Conv2D {
	if act == nil {
		act = Linear{}
	}
	o := collect(opts)
	return &Conv2D{
		filters: filters,
		kernel:  [2]int{kernelH, kernelW},
		act:     act,
		seed:    o.seed,
		init:    o.init,
		par:     parallel.DefaultConfig(),
	}
}

// Name returns "conv2d".
func (c *Conv2D) Name() string { return TypeConv2D }

// SetParallel replaces the worker pool configuration.
func (c *Conv2D) SetParallel(cfg parallel.Config) { c.par = cfg }

// Build allocates parameters for an input of shape (C, H, W).
func (c *Conv2D) Build(in tensor.Shape) error {
	if err := validateInput(c.Name(), in); err != nil {
		return err
	}
	kh, kw := c.kernel[0], c.kernel[1]
	if c.filters <= 0 || kh <= 0 || kw <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "conv2d: invalid filters=%d kernel=%dx%d", c.filters, kh, kw)
	}
	if err := c.init.Validate(); err != nil {
		return errors.Wrap(err, "conv2d")
	}
	if len(in) != 3 {
		return errors.Wrapf(tensor.ErrShapeMismatch, "conv2d: expects (channels, height, width), got %v", in)
	}
	ch, h, w := in[0], in[1], in[2]
	if h < kh || w < kw {
		return errors.Wrapf(tensor.ErrShapeMismatch, "conv2d: kernel %dx%d larger than input %v", kh, kw, in)
	}

	rng := rand.New(rand.NewSource(c.seed))
	c.weight = NewParameter("conv2d.weight", c.init.New(rng, ch*kh*kw, c.filters*kh*kw, c.filters, ch, kh, kw))
	c.bias = NewParameter("conv2d.bias", tensor.New(c.filters))

	out := tensor.Shape{c.filters, h - kh + 1, w - kw + 1}
	c.x = tensor.New(in...)
	c.z = tensor.New(out...)
	c.y = tensor.New(out...)
	c.dz = tensor.New(out...)
	c.dx = tensor.New(in...)
	c.bind(in, out)
	return nil
}

// Forward computes the convolution.
func (c *Conv2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := c.checkForward(c.Name(), x); err != nil {
		return nil, err
	}
	if err := c.x.CopyFrom(x); err != nil {
		return nil, err
	}

	ch, h, w := c.in[0], c.in[1], c.in[2]
	kh, kw := c.kernel[0], c.kernel[1]
	oh, ow := c.out[1], c.out[2]
	xs, ws, bs, zs := c.x.Data(), c.weight.Value().Data(), c.bias.Value().Data(), c.z.Data()

	parallel.ForBatch(c.filters, oh, func(f, i int) {
		for j := 0; j < ow; j++ {
			sum := bs[f]
			for k := 0; k < ch; k++ {
				for u := 0; u < kh; u++ {
					wrow := ((f*ch+k)*kh + u) * kw
					xrow := (k*h+i+u)*w + j
					for v := 0; v < kw; v++ {
						sum += ws[wrow+v] * xs[xrow+v]
					}
				}
			}
			zs[(f*oh+i)*ow+j] = sum
		}
	}, c.par)

	forwardRows(c.act, c.y.Data(), zs, ow)
	c.forward = true
	return c.y, nil
}

// Backward accumulates the weight and bias gradients and returns dL/dInput.
func (c *Conv2D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := c.checkBackward(c.Name(), grad); err != nil {
		return nil, err
	}

	ch, h, w := c.in[0], c.in[1], c.in[2]
	kh, kw := c.kernel[0], c.kernel[1]
	oh, ow := c.out[1], c.out[2]
	backwardRows(c.act, c.dz.Data(), c.z.Data(), c.y.Data(), grad.Contiguous().Data(), ow)

	xs, ws, dzs := c.x.Data(), c.weight.Value().Data(), c.dz.Data()
	gw, gb := c.weight.Grad().Data(), c.bias.Grad().Data()

	parallel.For(c.filters, func(f int) {
		for i := 0; i < oh; i++ {
			for j := 0; j < ow; j++ {
				g := dzs[(f*oh+i)*ow+j]
				gb[f] += g
				for k := 0; k < ch; k++ {
					for u := 0; u < kh; u++ {
						wrow := ((f*ch+k)*kh + u) * kw
						xrow := (k*h+i+u)*w + j
						for v := 0; v < kw; v++ {
							gw[wrow+v] += g * xs[xrow+v]
						}
					}
				}
			}
		}
	}, c.par)

	dxs := c.dx.Zero().Data()
	parallel.For(ch, func(k int) {
		for f := 0; f < c.filters; f++ {
			for i := 0; i < oh; i++ {
				for j := 0; j < ow; j++ {
					g := dzs[(f*oh+i)*ow+j]
					for u := 0; u < kh; u++ {
						wrow := ((f*ch+k)*kh + u) * kw
						xrow := (k*h+i+u)*w + j
						for v := 0; v < kw; v++ {
							dxs[xrow+v] += ws[wrow+v] * g
						}
					}
				}
			}
		}
	}, c.par)
	return c.dx, nil
}

// Weight returns the kernel parameter (nil before Build).
func (c *Conv2D) Weight() *Parameter { return c.weight }

// Bias returns the bias parameter (nil before Build).
func (c *Conv2D) Bias() *Parameter { return c.bias }

func (c *Conv2D) NumParams() int {
	if !c.built {
		return 0
	}
	return paramsOf(c.weight, c.bias)
}

func (c *Conv2D) Parameters() []*Parameter {
	if !c.built {
		return nil
	}
	return []*Parameter{c.weight, c.bias}
}

func (c *Conv2D) ZeroGrad() {
	if c.built {
		c.weight.ZeroGrad()
		c.bias.ZeroGrad()
	}
}

// Clone returns a deep copy with its own parameters and buffers.
func (c *Conv2D) Clone() Layer {
	cl := NewConv2D(c.filters, c.kernel[0], c.kernel[1], c.act, WithSeed(c.seed), WithInit(c.init))
	cl.par = c.par
	if c.built {
		rebuild(cl, c.in)
		cl.weight = c.weight.Clone()
		cl.bias = c.bias.Clone()
	}
	cl.training = c.training
	return cl
}

// Spec describes the layer.
func (c *Conv2D) Spec() LayerSpec {
	return LayerSpec{
		Type:       TypeConv2D,
		Filters:    c.filters,
		KernelH:    c.kernel[0],
		KernelW:    c.kernel[1],
		Activation: actName(c.act),
		Alpha:      alphaOf(c.act),
		Seed:       c.seed,
		Init:       string(c.init),
	}
}
