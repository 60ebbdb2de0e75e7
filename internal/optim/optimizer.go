// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum and Nesterov momentum
//   - Adam: Adaptive Moment Estimation, with the AMSGrad and Nadam variants
//   - RMSProp, AdaGrad and Adadelta: per-weight adaptive learning rates
//   - Lion: sign of an interpolated momentum
//
// An optimizer is bound to the model's parameters once with Build. Each Step then reads the
// gradients accumulated in the parameters and updates the values in place. Resetting the
// gradients is the caller's job (the model's ZeroGrad).
//
// Example usage:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//	if err := opt.Build(model.Parameters()); err != nil { ... }
//
//	model.ZeroGrad()
//	// forward + backward accumulate gradients
//	opt.Step()
package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on accumulated gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Name returns the registry name ("sgd", "adam", ...).
	Name() string

	// Build binds the parameters to update and allocates per-parameter state.
	// Calling Build again resets that state.
	Build(params []*nn.Parameter) error

	// Step applies one update to every bound parameter from its gradient.
	Step()

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Optimizer names accepted by ByName.
const (
	NameSGD      = "sgd"
	NameAdam     = "adam"
	NameAMSGrad  = "amsgrad"
	NameNadam    = "nadam"
	NameRMSProp  = "rmsprop"
	NameAdaGrad  = "adagrad"
	NameAdadelta = "adadelta"
	NameLion     = "lion"
)

// Names returns every name accepted by ByName.
func Names() []string {
	return []string{NameSGD, NameAdam, NameAMSGrad, NameNadam, NameRMSProp, NameAdaGrad, NameAdadelta, NameLion}
}

// Config is the union of every optimizer's hyperparameters, as read from configuration files.
// Zero fields take each optimizer's defaults.
type Config struct {
	LR       float64 // Learning rate
	Momentum float64 // SGD momentum factor
	Nesterov bool    // SGD Nesterov momentum
	Beta1    float64 // Adam and Lion first decay rate
	Beta2    float64 // Adam and Lion second decay rate
	Rho      float64 // RMSProp and Adadelta decay rate
	Eps      float64 // Denominator epsilon of the adaptive optimizers
}

// ByName creates the optimizer registered under name.
func ByName(name string, cfg Config) (Optimizer, error) {
	switch name {
	case NameSGD:
		return NewSGD(SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum, Nesterov: cfg.Nesterov}), nil
	case NameAdam, NameAMSGrad, NameNadam:
		return NewAdam(AdamConfig{
			LR:       cfg.LR,
			Betas:    [2]float64{cfg.Beta1, cfg.Beta2},
			Eps:      cfg.Eps,
			AMSGrad:  name == NameAMSGrad,
			Nesterov: name == NameNadam,
		}), nil
	case NameRMSProp:
		return NewRMSProp(RMSPropConfig{LR: cfg.LR, Rho: cfg.Rho, Eps: cfg.Eps}), nil
	case NameAdaGrad:
		return NewAdaGrad(AdaGradConfig{LR: cfg.LR, Eps: cfg.Eps}), nil
	case NameAdadelta:
		return NewAdadelta(AdadeltaConfig{LR: cfg.LR, Rho: cfg.Rho, Eps: cfg.Eps}), nil
	case NameLion:
		return NewLion(LionConfig{LR: cfg.LR, Betas: [2]float64{cfg.Beta1, cfg.Beta2}}), nil
	}
	return nil, errors.Wrapf(nn.ErrInvalidConfig, "unknown optimizer %q", name)
}

// checkRate reports whether a decay rate lies in [0, 1).
func checkRate(name, what string, r float64) error {
	if r < 0 || r >= 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "%s: %s must be in [0, 1), got %g", name, what, r)
	}
	return nil
}

// checkParams validates the parameters handed to Build.
func checkParams(name string, params []*nn.Parameter) error {
	for i, p := range params {
		if p == nil {
			return errors.Wrapf(nn.ErrInvalidConfig, "%s: parameter %d is nil", name, i)
		}
	}
	return nil
}
