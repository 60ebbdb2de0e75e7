package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// Adadelta adapts the step to the ratio of running RMS of updates and gradients
// (Zeiler, 2012). LR scales the computed update; 1 gives the original method.
//
//	Eg = rho * Eg + (1-rho) * gradient²
//	delta = sqrt(Edx + eps) / sqrt(Eg + eps) * gradient
//	Edx = rho * Edx + (1-rho) * delta²
//	param = param - lr * delta
type Adadelta struct {
	params []*nn.Parameter
	lr     float64
	rho    float64
	eps    float64
	eg     [][]float64
	edx    [][]float64
}

// AdadeltaConfig holds configuration for Adadelta.
type AdadeltaConfig struct {
	LR  float64 // Update scale (default: 1.0)
	Rho float64 // Decay of both running averages (default: 0.95)
	Eps float64 // Term for numerical stability (default: 1e-6)
}

// NewAdadelta creates a new unbound Adadelta optimizer.
func NewAdadelta(config AdadeltaConfig) *Adadelta {
	if config.LR == 0 {
		config.LR = 1.0
	}
	if config.Rho == 0 {
		config.Rho = 0.95
	}
	if config.Eps == 0 {
		config.Eps = 1e-6
	}
	return &Adadelta{lr: config.LR, rho: config.Rho, eps: config.Eps}
}

// Name returns "adadelta".
func (a *Adadelta) Name() string { return NameAdadelta }

// Build binds the parameters and zeroes both running averages.
func (a *Adadelta) Build(params []*nn.Parameter) error {
	if a.lr <= 0 || a.eps <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "adadelta: lr and eps must be positive, got %g and %g", a.lr, a.eps)
	}
	if err := checkRate(a.Name(), "rho", a.rho); err != nil {
		return err
	}
	if err := checkParams(a.Name(), params); err != nil {
		return err
	}

	a.params = params
	a.eg = make([][]float64, len(params))
	a.edx = make([][]float64, len(params))
	for i, p := range params {
		a.eg[i] = make([]float64, p.Value().Len())
		a.edx[i] = make([]float64, p.Value().Len())
	}
	return nil
}

// Step applies one Adadelta update.
func (a *Adadelta) Step() {
	for i, p := range a.params {
		value := p.Value().Data()
		eg, edx := a.eg[i], a.edx[i]
		for j, g := range p.Grad().Data() {
			eg[j] = a.rho*eg[j] + (1-a.rho)*g*g
			delta := math.Sqrt(edx[j]+a.eps) / math.Sqrt(eg[j]+a.eps) * g
			edx[j] = a.rho*edx[j] + (1-a.rho)*delta*delta
			value[j] -= a.lr * delta
		}
	}
}

// LR returns the current learning rate.
func (a *Adadelta) LR() float64 { return a.lr }

// SetLR updates the learning rate.
func (a *Adadelta) SetLR(lr float64) { a.lr = lr }
