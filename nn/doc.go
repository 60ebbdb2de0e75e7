// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Input, Dense, Conv2D, MaxPool2D, AvgPool2D, Activation, Dropout, Flatten
//   - Activations: Linear, ReLU, LeakyReLU, ELU, SELU, GELU, Swish, SoftPlus, Atan,
//     Sigmoid, Tanh, Softmax
//   - Loss functions: MSELoss, MAELoss, RMSELoss, MSLELoss, HuberLoss, BCELoss, CrossEntropyLoss
//   - Utilities: Sequential, Layer interface, Parameter, LayerSpec registry
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/seqnet/nn"
//	    "github.com/born-ml/seqnet/optim"
//	)
//
//	func main() {
//	    // Build a small convolutional classifier
//	    model := nn.NewSequential(
//	        nn.NewInput(1, 28, 28),
//	        nn.NewConv2D(8, 3, 3, nn.ReLU{}),
//	        nn.NewMaxPool2D(2, 2),
//	        nn.NewFlatten(),
//	        nn.NewDense(10, nn.Softmax{}),
//	    )
//
//	    opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//	    if err := model.Compile(opt, nn.CrossEntropyLoss{}); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Forward pass
//	    output, err := model.Forward(input)
//	}
//
// # Layers
//
// Every layer is created unbuilt from its hyperparameters. Sequential.Build (called by
// Compile) chains the output shape of each layer into the input shape of the next and
// allocates parameters.
//
// Dense: fully connected layer with a fused activation
//
//	layer := nn.NewDense(128, nn.ReLU{})
//
// Conv2D: valid convolution with stride 1 over (channels, height, width) input
//
//	conv := nn.NewConv2D(32, 3, 3, nn.LeakyReLU{Alpha: 0.1})
//
// MaxPool2D: max pooling with stride equal to the pool size
//
//	pool := nn.NewMaxPool2D(2, 2)
//
// AvgPool2D: average pooling with stride equal to the pool size
//
//	pool := nn.NewAvgPool2D(2, 2)
//
// # Gradients
//
// There is no autodiff graph. Backward takes dL/dOutput and returns dL/dInput, adding each
// parameter's gradient to its accumulator. Gradients grow until ZeroGrad is called, which
// lets a training loop sum gradients over a mini-batch before one optimizer step.
//
// # Weight Initialization
//
// Dense and Conv2D weights use Xavier/Glorot uniform initialization from a per-layer
// generator seeded with WithSeed (default 1), so two models built from the same
// specification start from the same weights. WithInit selects GlorotNormal, He, HeUniform,
// LeCun or Gaussian instead; the choice is saved with the layer spec.
package nn
