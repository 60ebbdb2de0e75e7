// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/seqnet/nn"
	"github.com/born-ml/seqnet/optim"
	"github.com/born-ml/seqnet/tensor"
	"github.com/born-ml/seqnet/train"
)

func xor() (xs, ys []*tensor.Tensor) {
	in := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	out := []float64{0, 1, 1, 0}
	for i := range in {
		xs = append(xs, tensor.MustFromSlice(in[i], 2))
		ys = append(ys, tensor.MustFromSlice([]float64{out[i]}, 1))
	}
	return xs, ys
}

// TestXORPublicAPI trains, evaluates, saves and reloads a model using only the public packages.
func TestXORPublicAPI(t *testing.T) {
	model := nn.NewSequential(
		nn.NewInput(2),
		nn.NewDense(2, nn.Sigmoid{}, nn.WithSeed(1)),
		nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(2)),
	)
	if err := model.Compile(optim.NewSGD(optim.SGDConfig{LR: 0.5, Momentum: 0.9}), nn.MSELoss{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	engine, err := train.New(model, train.Options{Seed: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if engine.State() != train.Compiled {
		t.Errorf("State() = %v, want %v", engine.State(), train.Compiled)
	}

	xs, ys := xor()
	if err := engine.Fit(xs, ys, 5000, 1); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	ev, err := train.NewEvaluator(model)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	trained, err := ev.MeanLoss(nn.MSELoss{}, xs, ys)
	if err != nil {
		t.Fatalf("MeanLoss failed: %v", err)
	}
	if trained > 0.05 {
		t.Errorf("mean loss after training = %v, want <= 0.05", trained)
	}

	path := filepath.Join(t.TempDir(), "xor.nn")
	if err := train.SaveModel(path, model); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}
	loaded, info, err := train.LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if info.Loss != "mse" {
		t.Errorf("info.Loss = %q, want mse", info.Loss)
	}

	lev, err := train.NewEvaluator(loaded)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	reloaded, err := lev.MeanLoss(nn.MSELoss{}, xs, ys)
	if err != nil {
		t.Fatalf("MeanLoss failed: %v", err)
	}
	if reloaded != trained {
		t.Errorf("reloaded loss = %v, want %v", reloaded, trained)
	}
}

// TestUnsupportedFormat verifies the file format sentinel through the facade.
func TestUnsupportedFormat(t *testing.T) {
	model := nn.NewSequential(nn.NewInput(1), nn.NewDense(1, nn.Linear{}))
	if err := model.Build(nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	err := train.SaveModel(filepath.Join(t.TempDir(), "model.json"), model)
	if !errors.Is(err, train.ErrUnsupportedFormat) {
		t.Errorf("SaveModel error = %v, want ErrUnsupportedFormat", err)
	}
}

// TestMetrics verifies the standalone metric helpers.
func TestMetrics(t *testing.T) {
	preds := []*tensor.Tensor{
		tensor.MustFromSlice([]float64{0.9, 0.1}, 2),
		tensor.MustFromSlice([]float64{0.2, 0.8}, 2),
	}
	targets := []*tensor.Tensor{train.OneHot(0, 2), train.OneHot(1, 2)}

	cm, err := train.ConfusionFromPredictions(preds, targets)
	if err != nil {
		t.Fatalf("ConfusionFromPredictions failed: %v", err)
	}
	if cm[0][0] != 1 || cm[1][1] != 1 || cm[0][1] != 0 || cm[1][0] != 0 {
		t.Errorf("confusion = %v, want identity", cm)
	}

	macro, sum := train.F1FromConfusion(cm)
	if macro != 1 || sum != 2 {
		t.Errorf("F1 = %v, %v, want 1, 2", macro, sum)
	}

	if _, err := train.NewDataset(preds, targets[:1]); !errors.Is(err, train.ErrLengthMismatch) {
		t.Errorf("NewDataset error = %v, want ErrLengthMismatch", err)
	}
}
