// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/seqnet/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config is the union of every optimizer's hyperparameters, as read from configuration files.
type Config = optim.Config

// Optimizer names accepted by ByName.
const (
	NameSGD      = optim.NameSGD
	NameAdam     = optim.NameAdam
	NameAMSGrad  = optim.NameAMSGrad
	NameNadam    = optim.NameNadam
	NameRMSProp  = optim.NameRMSProp
	NameAdaGrad  = optim.NameAdaGrad
	NameAdadelta = optim.NameAdadelta
	NameLion     = optim.NameLion
)

// Names returns every name accepted by ByName.
func Names() []string {
	return optim.Names()
}

// ByName creates the optimizer registered under name.
func ByName(name string, cfg Config) (Optimizer, error) {
	return optim.ByName(name, cfg)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional (Nesterov) momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer. It is bound to parameters by Sequential.Compile.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//	err := model.Compile(optimizer, nn.MSELoss{})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
// Set AMSGrad or Nesterov in the config for the AMSGrad and Nadam variants.
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Adaptive learning rates

// RMSProp divides each step by a running RMS of the gradients.
type RMSProp = optim.RMSProp

// RMSPropConfig contains configuration for RMSProp.
type RMSPropConfig = optim.RMSPropConfig

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	return optim.NewRMSProp(config)
}

// AdaGrad divides each step by the root of the accumulated squared gradients.
type AdaGrad = optim.AdaGrad

// AdaGradConfig contains configuration for AdaGrad.
type AdaGradConfig = optim.AdaGradConfig

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGrad {
	return optim.NewAdaGrad(config)
}

// Adadelta adapts each step to running RMS values of updates and gradients.
type Adadelta = optim.Adadelta

// AdadeltaConfig contains configuration for Adadelta.
type AdadeltaConfig = optim.AdadeltaConfig

// NewAdadelta creates a new Adadelta optimizer.
func NewAdadelta(config AdadeltaConfig) *Adadelta {
	return optim.NewAdadelta(config)
}

// Lion (EvoLved Sign Momentum)

// Lion steps by the sign of an interpolated momentum.
type Lion = optim.Lion

// LionConfig contains configuration for Lion.
type LionConfig = optim.LionConfig

// NewLion creates a new Lion optimizer.
func NewLion(config LionConfig) *Lion {
	return optim.NewLion(config)
}
