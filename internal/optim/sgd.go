package optim

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/seqnet/internal/nn"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// With Nesterov momentum the parameter step looks ahead:
//
//	param = param - lr * (gradient + momentum * velocity)
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	nesterov   bool
	velocities [][]float64 // aligned with params
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
	Nesterov bool    // Use Nesterov momentum (requires Momentum > 0)
}

// NewSGD creates a new unbound SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
		nesterov: config.Nesterov,
	}
}

// Name returns "sgd".
func (s *SGD) Name() string { return NameSGD }

// Build binds the parameters and zeroes the velocities.
func (s *SGD) Build(params []*nn.Parameter) error {
	if s.lr <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "sgd: learning rate must be positive, got %g", s.lr)
	}
	if s.momentum < 0 || s.momentum >= 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "sgd: momentum must be in [0, 1), got %g", s.momentum)
	}
	if s.nesterov && s.momentum == 0 {
		return errors.Wrap(nn.ErrInvalidConfig, "sgd: nesterov requires momentum")
	}
	if err := checkParams(s.Name(), params); err != nil {
		return err
	}

	s.params = params
	s.velocities = make([][]float64, len(params))
	for i, p := range params {
		s.velocities[i] = make([]float64, p.Value().Len())
	}
	return nil
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	for i, p := range s.params {
		value := p.Value().Data()
		grad := p.Grad().Data()

		if s.momentum == 0 {
			floats.AddScaled(value, -s.lr, grad)
			continue
		}

		v := s.velocities[i]
		floats.Scale(s.momentum, v)
		floats.Add(v, grad)
		if s.nesterov {
			floats.AddScaled(value, -s.lr, grad)
			floats.AddScaled(value, -s.lr*s.momentum, v)
		} else {
			floats.AddScaled(value, -s.lr, v)
		}
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Momentum returns the momentum factor.
func (s *SGD) Momentum() float64 {
	return s.momentum
}

// Nesterov reports whether Nesterov momentum is used.
func (s *SGD) Nesterov() bool {
	return s.nesterov
}
