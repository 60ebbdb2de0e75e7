// Package train implements the training engine for sequential models.
//
// The engine runs a fixed number of epochs. Each epoch shuffles the samples with a
// Fisher-Yates shuffle driven by an engine-owned, seeded generator, then runs one of two
// methods:
//
//   - Sequential (batch size 1): forward, reset gradients, backward, optimizer step for every
//     sample.
//   - Mini-batch (batch size > 1): reset gradients once per batch, forward and backward every
//     sample of the batch so that the gradients accumulate, then one optimizer step.
//
// Example:
//
//	engine, err := train.New(m, train.Options{Seed: 1, History: true, Logs: true})
//	if err != nil { ... }
//	if err := engine.Fit(xs, ys, 5000, 1); err != nil { ... }
//	fmt.Println(engine.History())
package train

import (
	"log"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// State is the engine's lifecycle state.
type State int

// Engine states.
const (
	Idle     State = iota // model not compiled
	Compiled              // model compiled, ready to Fit
	Training              // Fit is running
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Compiled:
		return "compiled"
	case Training:
		return "training"
	}
	return "unknown"
}

// ErrStop can be returned by an OnEpochEnd callback to end training early without error.
var ErrStop = errors.New("train: stop requested")

// EpochInfo is handed to the OnEpochEnd callback.
type EpochInfo struct {
	Epoch  int     // 1-based
	Epochs int     // total requested
	Loss   float64 // mean sample loss of the epoch
}

// Options configures an Engine.
type Options struct {
	// Seed seeds the shuffle generator.
	Seed int64

	// History records the mean loss of every epoch.
	History bool

	// Logs prints one line per epoch with the mean loss.
	Logs bool

	// Logger receives the epoch lines. Nil means log.Default().
	Logger *log.Logger

	// AverageGradients divides the accumulated gradients by the batch length before each
	// mini-batch step. By default the summed gradients are applied.
	AverageGradients bool

	// OnEpochEnd runs after every epoch. Returning ErrStop ends training; any other error
	// aborts Fit with that error.
	OnEpochEnd func(EpochInfo) error
}

// Engine drives the training of one model.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	m       *model.Sequential
	opts    Options
	rng     *rand.Rand
	logger  *log.Logger
	history []float64
	running bool
}

// New creates an engine for m.
func New(m *model.Sequential, opts Options) (*Engine, error) {
	if m == nil {
		return nil, errors.Wrap(nn.ErrInvalidConfig, "train: model is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		m:      m,
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger,
	}, nil
}

// Model returns the model being trained.
func (e *Engine) Model() *model.Sequential { return e.m }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	switch {
	case e.running:
		return Training
	case e.m.Compiled():
		return Compiled
	}
	return Idle
}

// History returns the mean loss of every epoch trained so far with History enabled.
func (e *Engine) History() []float64 {
	return append([]float64(nil), e.history...)
}

// Fit trains the model for epochs epochs. A batchSize of 1 selects the sequential method,
// a larger one the mini-batch method.
//
// The caller's slices are not reordered. The model is in training mode while Fit runs and
// in inference mode afterwards. The first error aborts training.
func (e *Engine) Fit(xs, ys []*tensor.Tensor, epochs, batchSize int) error {
	if batchSize < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "train: batch size must be positive, got %d", batchSize)
	}
	if batchSize == 1 {
		return e.run(xs, ys, epochs, 1, e.sequentialEpoch)
	}
	return e.run(xs, ys, epochs, batchSize, e.batchEpoch)
}

// FitSequential trains with a reset and an optimizer step after every sample.
func (e *Engine) FitSequential(xs, ys []*tensor.Tensor, epochs int) error {
	return e.run(xs, ys, epochs, 1, e.sequentialEpoch)
}

// FitBatch trains with one optimizer step per mini-batch of at most batchSize samples.
func (e *Engine) FitBatch(xs, ys []*tensor.Tensor, epochs, batchSize int) error {
	if batchSize < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "train: batch size must be positive, got %d", batchSize)
	}
	return e.run(xs, ys, epochs, batchSize, e.batchEpoch)
}

type epochFunc func(data *dataset.Dataset, batchSize int) (float64, error)

func (e *Engine) run(xs, ys []*tensor.Tensor, epochs, batchSize int, epoch epochFunc) error {
	if e.running {
		return errors.Wrap(nn.ErrInvalidConfig, "train: fit already running")
	}
	if !e.m.Compiled() {
		return errors.Wrap(nn.ErrInvalidConfig, "train: model is not compiled")
	}
	if epochs < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "train: epochs must be positive, got %d", epochs)
	}
	if len(xs) == 0 {
		return errors.Wrap(nn.ErrInvalidConfig, "train: no samples")
	}
	if len(xs) != len(ys) {
		return errors.Wrapf(nn.ErrInvalidConfig, "train: %d inputs, %d targets", len(xs), len(ys))
	}
	data, err := dataset.New(xs, ys)
	if err != nil {
		return errors.Wrapf(nn.ErrInvalidConfig, "train: %v", err)
	}

	e.running = true
	e.m.SetTraining(true)
	defer func() {
		e.m.SetTraining(false)
		e.running = false
	}()

	for ep := 1; ep <= epochs; ep++ {
		data.Shuffle(e.rng)

		sum, err := epoch(data, batchSize)
		if err != nil {
			return errors.Wrapf(err, "train: epoch %d", ep)
		}
		mean := sum / float64(data.Len())

		if e.opts.History {
			e.history = append(e.history, mean)
		}
		if e.opts.Logs {
			e.logger.Printf("epoch %d/%d loss=%.6f", ep, epochs, mean)
		}
		if e.opts.OnEpochEnd != nil {
			err := e.opts.OnEpochEnd(EpochInfo{Epoch: ep, Epochs: epochs, Loss: mean})
			if errors.Is(err, ErrStop) {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "train: epoch %d callback", ep)
			}
		}
	}
	return nil
}

// tracksLoss reports whether the per-sample loss has an observer.
func (e *Engine) tracksLoss() bool {
	return e.opts.History || e.opts.Logs || e.opts.OnEpochEnd != nil
}

// sequentialEpoch updates the parameters after every sample.
func (e *Engine) sequentialEpoch(data *dataset.Dataset, _ int) (float64, error) {
	opt := e.m.Optimizer()
	total := 0.0
	for i, s := range data.Samples() {
		l, err := e.sample(s, true)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		total += l
		opt.Step()
	}
	return total, nil
}

// batchEpoch accumulates the gradients of each mini-batch and updates once per batch.
func (e *Engine) batchEpoch(data *dataset.Dataset, batchSize int) (float64, error) {
	batches, err := data.Batches(batchSize)
	if err != nil {
		return 0, err
	}

	opt := e.m.Optimizer()
	total := 0.0
	for b, batch := range batches {
		e.m.ZeroGrad()
		for i, s := range batch {
			l, err := e.sample(s, false)
			if err != nil {
				return 0, errors.Wrapf(err, "batch %d sample %d", b, i)
			}
			total += l
		}
		if e.opts.AverageGradients {
			e.scaleGradients(1 / float64(len(batch)))
		}
		opt.Step()
	}
	return total, nil
}

// sample runs the forward pass, the loss and the reverse-order backward pass for one
// sample. With reset the gradients are cleared between the forward and the backward pass.
// It returns the sample loss, or 0 when nothing observes the loss.
func (e *Engine) sample(s dataset.Sample, reset bool) (float64, error) {
	lossFn := e.m.Loss()

	pred, err := e.m.Forward(s.Input)
	if err != nil {
		return 0, err
	}

	l := 0.0
	if e.tracksLoss() {
		v, err := lossFn.Forward(pred, s.Target)
		if err != nil {
			return 0, err
		}
		l = v.Item()
	}

	if reset {
		e.m.ZeroGrad()
	}
	grad, err := lossFn.Backward(pred, s.Target)
	if err != nil {
		return 0, err
	}
	layers := e.m.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if grad, err = layers[i].Backward(grad); err != nil {
			return 0, errors.Wrapf(err, "layer %d (%s)", i, layers[i].Name())
		}
	}
	return l, nil
}

func (e *Engine) scaleGradients(f float64) {
	for _, p := range e.m.Parameters() {
		floats.Scale(f, p.Grad().Data())
	}
}
