package nn

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

// DefaultSeed seeds weight initialization when no WithSeed option is given.
const DefaultSeed int64 = 1

// Initializer names a weight initialization scheme. The empty name selects GlorotUniform.
type Initializer string

// Initializers accepted by Dense and Conv2D.
const (
	GlorotUniform Initializer = "glorot_uniform" // U(±sqrt(6/(fan_in+fan_out)))
	GlorotNormal  Initializer = "glorot_normal"  // N(0, 2/(fan_in+fan_out))
	He            Initializer = "he"             // N(0, 2/fan_in)
	HeUniform     Initializer = "he_uniform"     // U(±sqrt(6/fan_in))
	LeCun         Initializer = "lecun"          // N(0, 1/fan_in)
	Gaussian      Initializer = "gaussian"       // N(0, 1)
)

// Validate reports whether the name is a known initializer.
func (in Initializer) Validate() error {
	switch in {
	case "", GlorotUniform, GlorotNormal, He, HeUniform, LeCun, Gaussian:
		return nil
	}
	return errors.Wrapf(ErrInvalidConfig, "unknown initializer %q", string(in))
}

// New draws a tensor of shape dims from rng. fanIn and fanOut are the number of inputs and
// outputs each weight connects.
//
// Panics on an unknown initializer; layers call Validate at Build.
func (in Initializer) New(rng *rand.Rand, fanIn, fanOut int, dims ...int) *tensor.Tensor {
	fi, fo := float64(fanIn), float64(fanOut)
	switch in {
	case "", GlorotUniform:
		return Xavier(rng, fanIn, fanOut, dims...)
	case GlorotNormal:
		return normal(rng, math.Sqrt(2/(fi+fo)), dims...)
	case He:
		return normal(rng, math.Sqrt(2/fi), dims...)
	case HeUniform:
		bound := math.Sqrt(6 / fi)
		return tensor.Uniform(rng, -bound, bound, dims...)
	case LeCun:
		return normal(rng, math.Sqrt(1/fi), dims...)
	case Gaussian:
		return normal(rng, 1, dims...)
	}
	panic(in.Validate())
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier(rng *rand.Rand, fanIn, fanOut int, dims ...int) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(rng, -bound, bound, dims...)
}

func normal(rng *rand.Rand, std float64, dims ...int) *tensor.Tensor {
	t := tensor.New(dims...)
	data := t.Data()
	for i := range data {
		data[i] = rng.NormFloat64() * std
	}
	return t
}

// Option configures optional layer settings.
type Option func(*options)

type options struct {
	seed int64
	init Initializer
}

// WithSeed sets the seed of the layer's weight initialization or dropout mask generator.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithInit selects the weight initializer of a Dense or Conv2D layer.
func WithInit(init Initializer) Option {
	return func(o *options) {
		o.init = init
	}
}

func collect(opts []Option) options {
	o := options{seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
