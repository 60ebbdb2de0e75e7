package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// DefaultAdaGradAccumulator is the starting value of every AdaGrad accumulator.
const DefaultAdaGradAccumulator = 0.1

// AdaGrad divides each step by the root of the sum of all past squared gradients.
//
//	acc = acc + gradient²
//	param = param - lr * gradient / (sqrt(acc) + eps)
type AdaGrad struct {
	params []*nn.Parameter
	lr     float64
	eps    float64
	init   float64
	acc    [][]float64
}

// AdaGradConfig holds configuration for AdaGrad.
type AdaGradConfig struct {
	LR          float64 // Learning rate (default: 0.01)
	Eps         float64 // Term for numerical stability (default: 1e-7)
	Accumulator float64 // Initial accumulator value (default: DefaultAdaGradAccumulator)
}

// NewAdaGrad creates a new unbound AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	if config.Accumulator == 0 {
		config.Accumulator = DefaultAdaGradAccumulator
	}
	return &AdaGrad{lr: config.LR, eps: config.Eps, init: config.Accumulator}
}

// Name returns "adagrad".
func (a *AdaGrad) Name() string { return NameAdaGrad }

// Build binds the parameters and resets the accumulators.
func (a *AdaGrad) Build(params []*nn.Parameter) error {
	if a.lr <= 0 || a.eps <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "adagrad: lr and eps must be positive, got %g and %g", a.lr, a.eps)
	}
	if a.init < 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "adagrad: accumulator must be non-negative, got %g", a.init)
	}
	if err := checkParams(a.Name(), params); err != nil {
		return err
	}

	a.params = params
	a.acc = make([][]float64, len(params))
	for i, p := range params {
		acc := make([]float64, p.Value().Len())
		for j := range acc {
			acc[j] = a.init
		}
		a.acc[i] = acc
	}
	return nil
}

// Step applies one AdaGrad update.
func (a *AdaGrad) Step() {
	for i, p := range a.params {
		value := p.Value().Data()
		acc := a.acc[i]
		for j, g := range p.Grad().Data() {
			acc[j] += g * g
			value[j] -= a.lr * g / (math.Sqrt(acc[j]) + a.eps)
		}
	}
}

// LR returns the current learning rate.
func (a *AdaGrad) LR() float64 { return a.lr }

// SetLR updates the learning rate.
func (a *AdaGrad) SetLR(lr float64) { a.lr = lr }
