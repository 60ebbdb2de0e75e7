// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum and Nesterov momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - AMSGrad and Nadam: Adam variants selected with AdamConfig
//   - RMSProp, AdaGrad and Adadelta: per-weight adaptive learning rates
//   - Lion: sign momentum
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/seqnet/nn"
//	    "github.com/born-ml/seqnet/optim"
//	)
//
//	func main() {
//	    model := nn.NewSequential(
//	        nn.NewInput(784),
//	        nn.NewDense(10, nn.Softmax{}),
//	    )
//
//	    // Create optimizer; Compile binds it to the model parameters
//	    optimizer := optim.NewAdam(optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float64{0.9, 0.999},
//	    })
//	    if err := model.Compile(optimizer, nn.CrossEntropyLoss{}); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Training Loop Pattern
//
// The train package runs this loop. Written by hand it is:
//
//	for epoch := range numEpochs {
//	    for _, batch := range batches {
//	        // 1. Zero gradients
//	        model.ZeroGrad()
//
//	        // 2. Forward and backward pass for every sample; gradients accumulate
//	        for _, s := range batch {
//	            output, _ := model.Forward(s.Input)
//	            grad, _ := model.Loss().Backward(output, s.Target)
//	            model.Backward(grad)
//	        }
//
//	        // 3. Update parameters
//	        optimizer.Step()
//	    }
//	}
//
// # Custom Optimizers
//
// Any type implementing Optimizer can be passed to Compile. Build receives the model's
// parameters once; Step reads each Parameter's Grad and updates its Value in place.
package optim
