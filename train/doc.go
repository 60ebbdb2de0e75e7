// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the training engine, evaluation metrics and model files.
//
// # Overview
//
// This package contains:
//   - Engine: runs epochs of per-sample or mini-batch gradient descent on a compiled model
//   - Evaluator: predictions, mean loss, accuracy, confusion matrix and F1 score
//   - Dataset: paired samples with shuffling, splitting and batching
//   - SaveModel, LoadModel: ".nn" binary and ".yaml" model files
//
// # Basic Usage
//
//	model := nn.NewSequential(
//	    nn.NewInput(2),
//	    nn.NewDense(2, nn.Sigmoid{}, nn.WithSeed(1)),
//	    nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(2)),
//	)
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.5, Momentum: 0.9})
//	if err := model.Compile(opt, nn.MSELoss{}); err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := train.New(model, train.Options{Seed: 1, History: true, Logs: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Fit(xs, ys, 5000, 1); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := train.SaveModel("xor.nn", model); err != nil {
//	    log.Fatal(err)
//	}
//
// # Training Methods
//
// A batch size of 1 selects the sequential method: every sample runs forward, gradient reset,
// backward and an optimizer step. Larger batch sizes reset the gradients once per batch, let
// every sample of the batch add to them, and step once.
//
// # Early Stopping
//
//	engine, _ := train.New(model, train.Options{
//	    OnEpochEnd: train.EarlyStopping(10, 1e-4),
//	})
package train
