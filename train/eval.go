// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"github.com/born-ml/seqnet/internal/eval"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/tensor"
)

// Evaluator computes metrics of a built model over a sample set.
type Evaluator = eval.Evaluator

// EvalOption configures an Evaluator.
type EvalOption = eval.Option

// ClassStats holds the per-class precision, recall, F1 and support.
type ClassStats = eval.ClassStats

// WithWorkers evaluates on n goroutines, each with its own clone of the model.
func WithWorkers(n int) EvalOption {
	return eval.WithWorkers(n)
}

// NewEvaluator creates an evaluator for a built model.
//
// Example:
//
//	ev, err := train.NewEvaluator(model, train.WithWorkers(4))
//	acc, err := ev.Accuracy(xs, ys)
func NewEvaluator(m *model.Sequential, opts ...EvalOption) (*Evaluator, error) {
	return eval.New(m, opts...)
}

// ConfusionFromPredictions builds the confusion matrix, indexed [actual][predicted], of
// predictions against one-hot targets.
func ConfusionFromPredictions(preds, targets []*tensor.Tensor) ([][]int, error) {
	return eval.ConfusionFromPredictions(preds, targets)
}

// F1FromConfusion returns the macro-averaged F1 score and the sum of per-class F1 scores.
func F1FromConfusion(cm [][]int) (macro, sum float64) {
	return eval.F1FromConfusion(cm)
}
