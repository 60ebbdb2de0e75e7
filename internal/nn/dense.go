package nn

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Dense is a fully connected layer followed by an activation.
//
// Performs: y = act(W @ x + b)
//
// Input shape:  [in_features]
// Weight shape: [units, in_features]
// Bias shape:   [units]
// Output shape: [units]
//
// Example:
//
//	hidden := nn.NewDense(2, nn.Sigmoid{})
//	if err := hidden.Build(tensor.Shape{2}); err != nil { ... }
//	y, err := hidden.Forward(x)
type Dense struct {
	base
	units int
	act   Activation
	seed  int64
	init  Initializer

	weight *Parameter // [units, in_features]
	bias   *Parameter // [units]

	x, z, y, dz, dx *tensor.Tensor
}

// NewDense creates an unbuilt dense layer. A nil activation means Linear.
//
// Initialization (at Build):
//   - Weights: Glorot uniform unless WithInit says otherwise, seeded by WithSeed
//     (DefaultSeed otherwise)
//   - Bias: Zeros
func NewDense(units int, act Activation, opts ...Option) *Dense {
	if act == nil {
		act = Linear{}
	}
	o := collect(opts)
	return &Dense{units: units, act: act, seed: o.seed, init: o.init}
}

// Name returns "dense".
func (d *Dense) Name() string { return TypeDense }

// Build allocates the parameters for an input of shape (n).
func (d *Dense) Build(in tensor.Shape) error {
	if err := validateInput(d.Name(), in); err != nil {
		return err
	}
	if d.units <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "dense: units must be positive, got %d", d.units)
	}
	if err := d.init.Validate(); err != nil {
		return errors.Wrap(err, "dense")
	}
	if len(in) != 1 {
		return errors.Wrapf(tensor.ErrShapeMismatch, "dense: expects a rank-1 input, got %v", in)
	}

	n := in[0]
	rng := rand.New(rand.NewSource(d.seed))
	d.weight = NewParameter("dense.weight", d.init.New(rng, n, d.units, d.units, n))
	d.bias = NewParameter("dense.bias", tensor.New(d.units))

	d.x = tensor.New(n)
	d.z = tensor.New(d.units)
	d.y = tensor.New(d.units)
	d.dz = tensor.New(d.units)
	d.dx = tensor.New(n)
	d.bind(in, tensor.Shape{d.units})
	return nil
}

// Forward computes act(W @ x + b).
func (d *Dense) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := d.checkForward(d.Name(), x); err != nil {
		return nil, err
	}
	if err := d.x.CopyFrom(x); err != nil {
		return nil, err
	}

	n := d.in[0]
	w := mat.NewDense(d.units, n, d.weight.Value().Data())
	z := mat.NewVecDense(d.units, d.z.Data())
	z.MulVec(w, mat.NewVecDense(n, d.x.Data()))
	floats.Add(d.z.Data(), d.bias.Value().Data())

	d.act.Forward(d.y.Data(), d.z.Data())
	d.forward = true
	return d.y, nil
}

// Backward accumulates dW += dz ⊗ x and db += dz, and returns W^T @ dz.
func (d *Dense) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if err := d.checkBackward(d.Name(), grad); err != nil {
		return nil, err
	}
	d.act.Backward(d.dz.Data(), d.z.Data(), d.y.Data(), grad.Contiguous().Data())

	n := d.in[0]
	dz := mat.NewVecDense(d.units, d.dz.Data())

	gw := mat.NewDense(d.units, n, d.weight.Grad().Data())
	gw.RankOne(gw, 1, dz, mat.NewVecDense(n, d.x.Data()))
	floats.Add(d.bias.Grad().Data(), d.dz.Data())

	w := mat.NewDense(d.units, n, d.weight.Value().Data())
	dx := mat.NewVecDense(n, d.dx.Data())
	dx.MulVec(w.T(), dz)
	return d.dx, nil
}

// Weight returns the weight parameter (nil before Build).
func (d *Dense) Weight() *Parameter { return d.weight }

// Bias returns the bias parameter (nil before Build).
func (d *Dense) Bias() *Parameter { return d.bias }

// Activation returns the layer's activation.
func (d *Dense) Activation() Activation { return d.act }

// Units returns the number of output units.
func (d *Dense) Units() int { return d.units }

func (d *Dense) NumParams() int {
	if !d.built {
		return 0
	}
	return paramsOf(d.weight, d.bias)
}

func (d *Dense) Parameters() []*Parameter {
	if !d.built {
		return nil
	}
	return []*Parameter{d.weight, d.bias}
}

func (d *Dense) ZeroGrad() {
	if d.built {
		d.weight.ZeroGrad()
		d.bias.ZeroGrad()
	}
}

// Clone returns a deep copy with its own parameters and buffers.
func (d *Dense) Clone() Layer {
	c := NewDense(d.units, d.act, WithSeed(d.seed), WithInit(d.init))
	if d.built {
		rebuild(c, d.in)
		c.weight = d.weight.Clone()
		c.bias = d.bias.Clone()
	}
	c.training = d.training
	return c
}

// Spec describes the layer.
func (d *Dense) Spec() LayerSpec {
	return LayerSpec{
		Type:       TypeDense,
		Units:      d.units,
		Activation: actName(d.act),
		Alpha:      alphaOf(d.act),
		Seed:       d.seed,
		Init:       string(d.init),
	}
}
