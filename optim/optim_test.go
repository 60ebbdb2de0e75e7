// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"testing"

	"github.com/born-ml/seqnet/nn"
	"github.com/born-ml/seqnet/optim"
	"github.com/born-ml/seqnet/tensor"
)

// TestOptimizerInterface verifies that every optimizer implements Optimizer.
func TestOptimizerInterface(t *testing.T) {
	tests := []struct {
		name string
		opt  optim.Optimizer
	}{
		{optim.NameSGD, optim.NewSGD(optim.SGDConfig{LR: 0.1})},
		{optim.NameAdam, optim.NewAdam(optim.AdamConfig{LR: 0.1})},
		{optim.NameAMSGrad, optim.NewAdam(optim.AdamConfig{LR: 0.1, AMSGrad: true})},
		{optim.NameNadam, optim.NewAdam(optim.AdamConfig{LR: 0.1, Nesterov: true})},
		{optim.NameRMSProp, optim.NewRMSProp(optim.RMSPropConfig{})},
		{optim.NameAdaGrad, optim.NewAdaGrad(optim.AdaGradConfig{})},
		{optim.NameAdadelta, optim.NewAdadelta(optim.AdadeltaConfig{})},
		{optim.NameLion, optim.NewLion(optim.LionConfig{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opt.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tt.opt.Name(), tt.name)
			}

			p := nn.NewParameter("w", tensor.MustFromSlice([]float64{1}, 1))
			if err := tt.opt.Build([]*nn.Parameter{p}); err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			p.Grad().Fill(1)
			tt.opt.Step()

			if got := p.Value().Item(); got >= 1 {
				t.Errorf("value after step = %v, want < 1", got)
			}
		})
	}
}

// TestByName verifies the optimizer registry through the facade.
func TestByName(t *testing.T) {
	opt, err := optim.ByName(optim.NameSGD, optim.Config{LR: 0.3})
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if opt.LR() != 0.3 {
		t.Errorf("LR() = %v, want 0.3", opt.LR())
	}

	if _, err := optim.ByName("lbfgs", optim.Config{}); err == nil {
		t.Error("expected error for unknown optimizer")
	}
}
