package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// RMSProp scales each step by a running root mean square of the gradients.
//
//	v = rho * v + (1-rho) * gradient²
//	param = param - lr * gradient / (sqrt(v) + eps)
type RMSProp struct {
	params []*nn.Parameter
	lr     float64
	rho    float64
	eps    float64
	v      [][]float64
}

// RMSPropConfig holds configuration for RMSProp.
type RMSPropConfig struct {
	LR  float64 // Learning rate (default: 0.001)
	Rho float64 // Decay of the squared gradient average (default: 0.995)
	Eps float64 // Term for numerical stability (default: 1e-8)
}

// NewRMSProp creates a new unbound RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.995
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &RMSProp{lr: config.LR, rho: config.Rho, eps: config.Eps}
}

// Name returns "rmsprop".
func (r *RMSProp) Name() string { return NameRMSProp }

// Build binds the parameters and zeroes the running averages.
func (r *RMSProp) Build(params []*nn.Parameter) error {
	if r.lr <= 0 || r.eps <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "rmsprop: lr and eps must be positive, got %g and %g", r.lr, r.eps)
	}
	if err := checkRate(r.Name(), "rho", r.rho); err != nil {
		return err
	}
	if err := checkParams(r.Name(), params); err != nil {
		return err
	}

	r.params = params
	r.v = make([][]float64, len(params))
	for i, p := range params {
		r.v[i] = make([]float64, p.Value().Len())
	}
	return nil
}

// Step applies one RMSProp update.
func (r *RMSProp) Step() {
	for i, p := range r.params {
		value := p.Value().Data()
		v := r.v[i]
		for j, g := range p.Grad().Data() {
			v[j] = r.rho*v[j] + (1-r.rho)*g*g
			value[j] -= r.lr * g / (math.Sqrt(v[j]) + r.eps)
		}
	}
}

// LR returns the current learning rate.
func (r *RMSProp) LR() float64 { return r.lr }

// SetLR updates the learning rate.
func (r *RMSProp) SetLR(lr float64) { r.lr = lr }
