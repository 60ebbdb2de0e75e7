package nn

import (
	"math"

	"github.com/pkg/errors"
)

// Activation is an element-wise (or, for Softmax, row-wise) non-linearity.
//
// Forward writes f(x) into dst. Backward writes dL/dx into dst given the forward input x,
// the forward output y and dL/dy. All slices have the same length and dst may alias grad.
type Activation interface {
	Name() string
	Forward(dst, x []float64)
	Backward(dst, x, y, grad []float64)
}

// Activation names accepted by ActivationByName.
const (
	ActLinear    = "linear"
	ActReLU      = "relu"
	ActLeakyReLU = "leaky_relu"
	ActSigmoid   = "sigmoid"
	ActTanh      = "tanh"
	ActSoftmax   = "softmax"
	ActELU       = "elu"
	ActGELU      = "gelu"
	ActSELU      = "selu"
	ActSwish     = "swish"
	ActSoftPlus  = "softplus"
	ActAtan      = "atan"
)

// DefaultLeakyAlpha is the negative slope used when a LeakyReLU is created by name.
const DefaultLeakyAlpha = 0.01

// DefaultELUAlpha is the saturation value used when an ELU is created by name.
const DefaultELUAlpha = 1.0

// SELU constants (Klambauer et al., 2017).
const (
	seluAlpha = 1.6732632423543772
	seluScale = 1.0507009873554805
)

// ActivationByName returns the activation registered under name.
// An empty name means Linear. alpha is only used by LeakyReLU and ELU (0 selects
// DefaultLeakyAlpha and DefaultELUAlpha).
func ActivationByName(name string, alpha float64) (Activation, error) {
	switch name {
	case "", ActLinear:
		return Linear{}, nil
	case ActReLU:
		return ReLU{}, nil
	case ActLeakyReLU:
		if alpha == 0 {
			alpha = DefaultLeakyAlpha
		}
		return LeakyReLU{Alpha: alpha}, nil
	case ActSigmoid:
		return Sigmoid{}, nil
	case ActTanh:
		return Tanh{}, nil
	case ActSoftmax:
		return Softmax{}, nil
	case ActELU:
		if alpha == 0 {
			alpha = DefaultELUAlpha
		}
		return ELU{Alpha: alpha}, nil
	case ActGELU:
		return GELU{}, nil
	case ActSELU:
		return SELU{}, nil
	case ActSwish:
		return Swish{}, nil
	case ActSoftPlus:
		return SoftPlus{}, nil
	case ActAtan:
		return Atan{}, nil
	}
	return nil, errors.Wrapf(ErrInvalidConfig, "unknown activation %q", name)
}

// Linear is the identity activation.
type Linear struct{}

// Name returns "linear".
func (Linear) Name() string { return ActLinear }

// Forward copies x.
func (Linear) Forward(dst, x []float64) { copy(dst, x) }

// Backward copies grad.
func (Linear) Backward(dst, _, _, grad []float64) { copy(dst, grad) }

// ReLU is a Rectified Linear Unit activation.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct{}

// Name returns "relu".
func (ReLU) Name() string { return ActReLU }

// Forward applies ReLU activation: f(x) = max(0, x).
func (ReLU) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = math.Max(0, v)
	}
}

// Backward passes the gradient where x > 0.
func (ReLU) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = grad[i]
		} else {
			dst[i] = 0
		}
	}
}

// LeakyReLU is ReLU with a small slope Alpha for negative inputs.
type LeakyReLU struct {
	Alpha float64
}

// Name returns "leaky_relu".
func (LeakyReLU) Name() string { return ActLeakyReLU }

// Forward applies f(x) = x for x > 0, Alpha*x otherwise.
func (l LeakyReLU) Forward(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = l.Alpha * v
		}
	}
}

// Backward scales the gradient by 1 or Alpha.
func (l LeakyReLU) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = grad[i]
		} else {
			dst[i] = l.Alpha * grad[i]
		}
	}
}

// Sigmoid is a sigmoid activation.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Sigmoid squashes values to the range (0, 1), making it useful for
// binary classification outputs.
type Sigmoid struct{}

// Name returns "sigmoid".
func (Sigmoid) Name() string { return ActSigmoid }

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (Sigmoid) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = sigmoid(v)
	}
}

// Backward uses σ'(x) = y(1-y).
func (Sigmoid) Backward(dst, _, y, grad []float64) {
	for i, s := range y {
		dst[i] = grad[i] * s * (1 - s)
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Tanh is a hyperbolic tangent activation.
//
// Tanh squashes values to the range (-1, 1).
type Tanh struct{}

// Name returns "tanh".
func (Tanh) Name() string { return ActTanh }

// Forward applies tanh.
func (Tanh) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = math.Tanh(v)
	}
}

// Backward uses tanh'(x) = 1 - y².
func (Tanh) Backward(dst, _, y, grad []float64) {
	for i, t := range y {
		dst[i] = grad[i] * (1 - t*t)
	}
}

// Softmax normalizes a row into a probability distribution.
//
// Forward is shifted by the row maximum for stability. Backward applies the full
// Jacobian: dx_i = y_i * (g_i - Σ_j g_j y_j).
type Softmax struct{}

// Name returns "softmax".
func (Softmax) Name() string { return ActSoftmax }

// Forward computes exp(x - max) / Σ exp(x - max).
func (Softmax) Forward(dst, x []float64) {
	maxV := math.Inf(-1)
	for _, v := range x {
		maxV = math.Max(maxV, v)
	}
	sum := 0.0
	for i, v := range x {
		dst[i] = math.Exp(v - maxV)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// Backward applies the Jacobian-vector product.
func (Softmax) Backward(dst, _, y, grad []float64) {
	dot := 0.0
	for i, g := range grad {
		dot += g * y[i]
	}
	for i, s := range y {
		dst[i] = s * (grad[i] - dot)
	}
}

// ELU is x for x > 0 and Alpha(exp(x) - 1) otherwise.
type ELU struct {
	Alpha float64
}

// Name returns "elu".
func (ELU) Name() string { return ActELU }

// Forward applies ELU.
func (e ELU) Forward(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = e.Alpha * math.Expm1(v)
		}
	}
}

// Backward scales the gradient by 1 or Alpha*exp(x).
func (e ELU) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = grad[i]
		} else {
			dst[i] = grad[i] * e.Alpha * math.Exp(v)
		}
	}
}

// SELU is the self-normalizing ELU: scale * (x for x > 0, alpha(exp(x) - 1) otherwise).
type SELU struct{}

// Name returns "selu".
func (SELU) Name() string { return ActSELU }

// Forward applies SELU.
func (SELU) Forward(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = seluScale * v
		} else {
			dst[i] = seluScale * seluAlpha * math.Expm1(v)
		}
	}
}

// Backward scales the gradient by scale or scale*alpha*exp(x).
func (SELU) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = grad[i] * seluScale
		} else {
			dst[i] = grad[i] * seluScale * seluAlpha * math.Exp(v)
		}
	}
}

// GELU is the tanh approximation of the Gaussian error linear unit:
//
//	f(x) = 0.5x(1 + tanh(sqrt(2/π)(x + 0.044715x³)))
type GELU struct{}

const (
	geluK = 0.7978845608028654 // sqrt(2/π)
	geluC = 0.044715
)

// Name returns "gelu".
func (GELU) Name() string { return ActGELU }

// Forward applies GELU.
func (GELU) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = 0.5 * v * (1 + math.Tanh(geluK*(v+geluC*v*v*v)))
	}
}

// Backward uses the derivative of the tanh form.
func (GELU) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		t := math.Tanh(geluK * (v + geluC*v*v*v))
		d := 0.5*(1+t) + 0.5*v*(1-t*t)*geluK*(1+3*geluC*v*v)
		dst[i] = grad[i] * d
	}
}

// Swish is x·σ(x).
type Swish struct{}

// Name returns "swish".
func (Swish) Name() string { return ActSwish }

// Forward applies x·σ(x).
func (Swish) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = v * sigmoid(v)
	}
}

// Backward uses σ(x) + x·σ(x)(1-σ(x)).
func (Swish) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		s := sigmoid(v)
		dst[i] = grad[i] * (s + v*s*(1-s))
	}
}

// SoftPlus is ln(1 + exp(x)).
type SoftPlus struct{}

// Name returns "softplus".
func (SoftPlus) Name() string { return ActSoftPlus }

// Forward applies ln(1 + exp(x)) without overflowing for large x.
func (SoftPlus) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = math.Max(v, 0) + math.Log1p(math.Exp(-math.Abs(v)))
	}
}

// Backward uses softplus'(x) = σ(x).
func (SoftPlus) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		dst[i] = grad[i] * sigmoid(v)
	}
}

// Atan is the arctangent activation.
type Atan struct{}

// Name returns "atan".
func (Atan) Name() string { return ActAtan }

// Forward applies atan(x).
func (Atan) Forward(dst, x []float64) {
	for i, v := range x {
		dst[i] = math.Atan(v)
	}
}

// Backward uses 1 / (1 + x²).
func (Atan) Backward(dst, x, _, grad []float64) {
	for i, v := range x {
		dst[i] = grad[i] / (1 + v*v)
	}
}

// forwardRows applies act to consecutive rows of length row.
func forwardRows(act Activation, dst, x []float64, row int) {
	for lo := 0; lo < len(x); lo += row {
		act.Forward(dst[lo:lo+row], x[lo:lo+row])
	}
}

// backwardRows applies act.Backward to consecutive rows of length row.
func backwardRows(act Activation, dst, x, y, grad []float64, row int) {
	for lo := 0; lo < len(x); lo += row {
		hi := lo + row
		act.Backward(dst[lo:hi], x[lo:hi], y[lo:hi], grad[lo:hi])
	}
}

// alphaOf returns the LeakyReLU slope or the ELU saturation of act, or 0.
func alphaOf(act Activation) float64 {
	switch a := act.(type) {
	case LeakyReLU:
		return a.Alpha
	case ELU:
		return a.Alpha
	}
	return 0
}

func actName(act Activation) string {
	if act == nil {
		return ActLinear
	}
	return act.Name()
}
