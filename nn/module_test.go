// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"testing"

	"github.com/born-ml/seqnet/nn"
	"github.com/born-ml/seqnet/optim"
	"github.com/born-ml/seqnet/tensor"
)

// TestLayerInterface verifies that concrete layers implement the Layer interface.
func TestLayerInterface(t *testing.T) {
	tests := []struct {
		name  string
		layer nn.Layer
		in    tensor.Shape
		out   tensor.Shape
	}{
		{"Dense", nn.NewDense(5, nn.ReLU{}), tensor.Shape{10}, tensor.Shape{5}},
		{"Conv2D", nn.NewConv2D(4, 3, 3, nn.Linear{}), tensor.Shape{1, 8, 8}, tensor.Shape{4, 6, 6}},
		{"MaxPool2D", nn.NewMaxPool2D(2, 2), tensor.Shape{2, 6, 6}, tensor.Shape{2, 3, 3}},
		{"AvgPool2D", nn.NewAvgPool2D(3, 2), tensor.Shape{2, 6, 6}, tensor.Shape{2, 2, 3}},
		{"DenseHe", nn.NewDense(4, nn.GELU{}, nn.WithInit(nn.He)), tensor.Shape{3}, tensor.Shape{4}},
		{"Flatten", nn.NewFlatten(), tensor.Shape{2, 3, 3}, tensor.Shape{18}},
		{"Dropout", nn.NewDropout(0.5), tensor.Shape{7}, tensor.Shape{7}},
		{"Activation", nn.NewActivation(nn.Softmax{}), tensor.Shape{3}, tensor.Shape{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.layer.Build(tt.in); err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if !tt.layer.OutputShape().Equal(tt.out) {
				t.Errorf("OutputShape() = %v, want %v", tt.layer.OutputShape(), tt.out)
			}

			y, err := tt.layer.Forward(tensor.Ones(tt.in...))
			if err != nil {
				t.Fatalf("Forward failed: %v", err)
			}
			if !y.Shape().Equal(tt.out) {
				t.Errorf("Forward shape = %v, want %v", y.Shape(), tt.out)
			}

			dx, err := tt.layer.Backward(tensor.Ones(tt.out...))
			if err != nil {
				t.Fatalf("Backward failed: %v", err)
			}
			if !dx.Shape().Equal(tt.in) {
				t.Errorf("Backward shape = %v, want %v", dx.Shape(), tt.in)
			}
		})
	}
}

// TestParallelizable verifies which layers accept a worker configuration.
func TestParallelizable(t *testing.T) {
	layers := []nn.Layer{nn.NewConv2D(1, 2, 2, nn.ReLU{}), nn.NewMaxPool2D(2, 2), nn.NewAvgPool2D(2, 2)}
	for _, l := range layers {
		if _, ok := l.(nn.Parallelizable); !ok {
			t.Errorf("%s does not implement Parallelizable", l.Name())
		}
	}
	if _, ok := nn.Layer(nn.NewDense(1, nn.Linear{})).(nn.Parallelizable); ok {
		t.Error("Dense should not implement Parallelizable")
	}
}

// TestNotBuilt verifies the sentinel is matchable through the facade.
func TestNotBuilt(t *testing.T) {
	_, err := nn.NewDense(3, nn.Tanh{}).Forward(tensor.New(2))
	if !errors.Is(err, nn.ErrNotBuilt) {
		t.Errorf("Forward error = %v, want ErrNotBuilt", err)
	}

	_, err = nn.FromSpec(nn.LayerSpec{Type: "lstm"})
	if !errors.Is(err, nn.ErrUnknownLayer) {
		t.Errorf("FromSpec error = %v, want ErrUnknownLayer", err)
	}
}

// TestSequential compiles and runs a model built only from the public packages.
func TestSequential(t *testing.T) {
	model := nn.NewSequential(
		nn.NewInput(2),
		nn.NewDense(3, nn.Tanh{}, nn.WithSeed(7)),
		nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(8)),
	)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	if err := model.Compile(opt, nn.MSELoss{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if got := model.NumParams(); got != 13 {
		t.Errorf("NumParams() = %d, want 13", got)
	}

	y, err := model.Forward(tensor.MustFromSlice([]float64{1, 0}, 2))
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if p := y.Item(); p <= 0 || p >= 1 {
		t.Errorf("sigmoid output %v outside (0, 1)", p)
	}
}

// TestLossByName verifies the loss registry through the facade.
func TestLossByName(t *testing.T) {
	l, err := nn.LossByName("mse", 0)
	if err != nil {
		t.Fatalf("LossByName failed: %v", err)
	}
	if _, ok := l.(nn.MSELoss); !ok {
		t.Errorf("LossByName(mse) = %T, want nn.MSELoss", l)
	}

	if _, err := nn.LossByName("hinge", 0); !errors.Is(err, nn.ErrInvalidConfig) {
		t.Errorf("LossByName error = %v, want ErrInvalidConfig", err)
	}
}
