// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/train"
	"github.com/born-ml/seqnet/tensor"
)

// Engine

// Engine drives the training of one model.
type Engine = train.Engine

// Options configures an Engine.
type Options = train.Options

// EpochInfo is handed to the OnEpochEnd callback.
type EpochInfo = train.EpochInfo

// State is the engine lifecycle state.
type State = train.State

// Engine states.
const (
	Idle     = train.Idle
	Compiled = train.Compiled
	Training = train.Training
)

// ErrStop ends training early without error when returned by OnEpochEnd.
var ErrStop = train.ErrStop

// New creates a training engine for a model.
//
// Example:
//
//	engine, err := train.New(model, train.Options{Seed: 42, Logs: true})
func New(m *model.Sequential, opts Options) (*Engine, error) {
	return train.New(m, opts)
}

// EarlyStopping returns a callback that stops training once the epoch loss has not improved
// by more than threshold for patience epochs.
func EarlyStopping(patience int, threshold float64) func(EpochInfo) error {
	return train.EarlyStopping(patience, threshold)
}

// Chain runs several epoch callbacks in order, stopping at the first error.
func Chain(fns ...func(EpochInfo) error) func(EpochInfo) error {
	return train.Chain(fns...)
}

// Data

// Sample is one input with its target.
type Sample = dataset.Sample

// Dataset is an ordered collection of samples.
type Dataset = dataset.Dataset

// Errors reported by datasets.
var (
	ErrEmpty          = dataset.ErrEmpty
	ErrLengthMismatch = dataset.ErrLengthMismatch
)

// NewDataset pairs inputs with targets.
func NewDataset(xs, ys []*tensor.Tensor) (*Dataset, error) {
	return dataset.New(xs, ys)
}

// OneHot returns a rank-1 tensor of length classes with a 1 at class.
func OneHot(class, classes int) *tensor.Tensor {
	return dataset.OneHot(class, classes)
}
