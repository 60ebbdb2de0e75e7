package nn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

// ActivationLayer applies an activation to an input of any shape.
// Softmax normalizes along the last axis.
type ActivationLayer struct {
	base
	act  Activation
	x, y *tensor.Tensor
	dx   *tensor.Tensor
}

// NewActivation creates an activation layer. A nil activation means Linear.
func NewActivation(act Activation) *ActivationLayer {
	if act == nil {
		act = Linear{}
	}
	return &ActivationLayer{act: act}
}

// Name returns "activation".
func (a *ActivationLayer) Name() string { return TypeActivation }

// Build binds the input shape; the output shape is the same.
func (a *ActivationLayer) Build(in tensor.Shape) error {
	if err := validateInput(a.Name(), in); err != nil {
		return err
	}
	a.x = tensor.New(in...)
	a.y = tensor.New(in...)
	a.dx = tensor.New(in...)
	a.bind(in, in)
	return nil
}

// Forward applies the activation.
func (a *ActivationLayer) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.checkForward(a.Name(), x); err != nil {
		return nil, err
	}
	if err := a.x.CopyFrom(x); err != nil {
		return nil, err
	}
	forwardRows(a.act, a.y.Data(), a.x.Data(), a.in[len(a.in)-1])
	a.forward = true
	return a.y, nil
}

// Backward applies the activation derivative.
func (a *ActivationLayer) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.checkBackward(a.Name(), grad); err != nil {
		return nil, err
	}
	backwardRows(a.act, a.dx.Data(), a.x.Data(), a.y.Data(), grad.Contiguous().Data(), a.in[len(a.in)-1])
	return a.dx, nil
}

func (a *ActivationLayer) NumParams() int { return 0 }

func (a *ActivationLayer) Parameters() []*Parameter { return nil }

func (a *ActivationLayer) ZeroGrad() {}

// Clone returns an independent activation layer.
func (a *ActivationLayer) Clone() Layer {
	c := NewActivation(a.act)
	if a.built {
		rebuild(c, a.in)
	}
	c.training = a.training
	return c
}

// Spec describes the layer.
func (a *ActivationLayer) Spec() LayerSpec {
	return LayerSpec{Type: TypeActivation, Activation: actName(a.act), Alpha: alphaOf(a.act)}
}

// Dropout zeroes a random fraction of its input during training and scales the rest by
// 1/(1-rate), so inference is the identity.
type Dropout struct {
	base
	rate float64
	seed int64
	rng  *rand.Rand

	mask, y, dx *tensor.Tensor
}

// NewDropout creates a dropout layer. rate must be in [0, 1); it is checked at Build.
// The mask generator is seeded by WithSeed.
func NewDropout(rate float64, opts ...Option) *Dropout {
	o := collect(opts)
	return &Dropout{
		rate: rate,
		seed: o.seed,
		rng:  rand.New(rand.NewSource(o.seed)),
	}
}

// Name returns "dropout".
func (d *Dropout) Name() string { return TypeDropout }

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.rate }

// Build binds the input shape; the output shape is the same.
func (d *Dropout) Build(in tensor.Shape) error {
	if err := validateInput(d.Name(), in); err != nil {
		return err
	}
	if d.rate < 0 || d.rate >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "dropout: rate must be in [0, 1), got %g", d.rate)
	}
	d.mask = tensor.Ones(in...)
	d.y = tensor.New(in...)
	d.dx = tensor.New(in...)
	d.bind(in, in)
	return nil
}

// Forward draws a new mask in training mode and applies it.
func (d *Dropout) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := d.checkForward(d.Name(), x); err != nil {
		return nil, err
	}

	mask := d.mask.Data()
	if d.training && d.rate > 0 {
		scale := 1 / (1 - d.rate)
		for i := range mask {
			if d.rng.Float64() < d.rate {
				mask[i] = 0
			} else {
				mask[i] = scale
			}
		}
	} else {
		d.mask.Fill(1)
	}

	if err := d.y.CopyFrom(x); err != nil {
		return nil, err
	}
	if _, err := d.y.Mul(d.mask); err != nil {
		return nil, err
	}
	d.forward = true
	return d.y, nil
}

// Backward multiplies the gradient by the last mask.
func (d *Dropout) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := d.checkBackward(d.Name(), grad); err != nil {
		return nil, err
	}
	if err := d.dx.CopyFrom(grad); err != nil {
		return nil, err
	}
	if _, err := d.dx.Mul(d.mask); err != nil {
		return nil, err
	}
	return d.dx, nil
}

func (d *Dropout) NumParams() int { return 0 }

func (d *Dropout) Parameters() []*Parameter { return nil }

func (d *Dropout) ZeroGrad() {}

// Clone returns an independent dropout layer. Its mask generator restarts from the seed.
func (d *Dropout) Clone() Layer {
	c := NewDropout(d.rate, WithSeed(d.seed))
	if d.built {
		rebuild(c, d.in)
	}
	c.training = d.training
	return c
}

// Spec describes the layer.
func (d *Dropout) Spec() LayerSpec {
	return LayerSpec{Type: TypeDropout, Rate: d.rate, Seed: d.seed}
}

// Flatten reshapes any input into a rank-1 tensor.
type Flatten struct {
	base
	y, dx *tensor.Tensor
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Name returns "flatten".
func (f *Flatten) Name() string { return TypeFlatten }

// Build binds the input shape; the output shape is (numel).
func (f *Flatten) Build(in tensor.Shape) error {
	if err := validateInput(f.Name(), in); err != nil {
		return err
	}
	f.y = tensor.New(in.NumElements())
	f.dx = tensor.New(in...)
	f.bind(in, tensor.Shape{in.NumElements()})
	return nil
}

// Forward copies x in row-major order.
func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := f.checkForward(f.Name(), x); err != nil {
		return nil, err
	}
	if err := f.y.CopyFrom(x); err != nil {
		return nil, err
	}
	f.forward = true
	return f.y, nil
}

// Backward restores the input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := f.checkBackward(f.Name(), grad); err != nil {
		return nil, err
	}
	if err := f.dx.CopyFrom(grad); err != nil {
		return nil, err
	}
	return f.dx, nil
}

func (f *Flatten) NumParams() int { return 0 }

func (f *Flatten) Parameters() []*Parameter { return nil }

func (f *Flatten) ZeroGrad() {}

// Clone returns an independent flatten layer.
func (f *Flatten) Clone() Layer {
	c := NewFlatten()
	if f.built {
		rebuild(c, f.in)
	}
	return c
}

// Spec describes the layer.
func (f *Flatten) Spec() LayerSpec {
	return LayerSpec{Type: TypeFlatten}
}
