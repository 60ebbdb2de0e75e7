package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// Lion moves every weight by exactly lr in the direction of an interpolated momentum
// (Chen et al., 2023, "Symbolic Discovery of Optimization Algorithms").
//
//	c = beta1 * m + (1-beta1) * gradient
//	param = param - lr * sign(c)
//	m = beta2 * m + (1-beta2) * gradient
type Lion struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	m      [][]float64
}

// LionConfig holds configuration for Lion.
type LionConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Interpolation and momentum decay (default: [0.9, 0.99])
}

// NewLion creates a new unbound Lion optimizer.
func NewLion(config LionConfig) *Lion {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.99
	}
	return &Lion{lr: config.LR, beta1: config.Betas[0], beta2: config.Betas[1]}
}

// Name returns "lion".
func (l *Lion) Name() string { return NameLion }

// Build binds the parameters and zeroes the momentum.
func (l *Lion) Build(params []*nn.Parameter) error {
	if l.lr <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "lion: learning rate must be positive, got %g", l.lr)
	}
	if err := checkRate(l.Name(), "beta1", l.beta1); err != nil {
		return err
	}
	if err := checkRate(l.Name(), "beta2", l.beta2); err != nil {
		return err
	}
	if err := checkParams(l.Name(), params); err != nil {
		return err
	}

	l.params = params
	l.m = make([][]float64, len(params))
	for i, p := range params {
		l.m[i] = make([]float64, p.Value().Len())
	}
	return nil
}

// Step applies one Lion update.
func (l *Lion) Step() {
	for i, p := range l.params {
		value := p.Value().Data()
		m := l.m[i]
		for j, g := range p.Grad().Data() {
			c := l.beta1*m[j] + (1-l.beta1)*g
			value[j] -= l.lr * sign(c)
			m[j] = l.beta2*m[j] + (1-l.beta2)*g
		}
	}
}

// LR returns the current learning rate.
func (l *Lion) LR() float64 { return l.lr }

// SetLR updates the learning rate.
func (l *Lion) SetLR(lr float64) { l.lr = lr }

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
