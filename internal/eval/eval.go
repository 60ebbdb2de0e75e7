// Package eval computes aggregate metrics of a trained sequential model over a dataset.
//
// The evaluator runs the model's forward pass over every sample in inference mode. With
// more than one worker the samples are split into contiguous ranges and every worker runs
// its own clone of the model, since layers cache their last input and are not reentrant.
package eval

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Evaluator wraps a model for metric computation.
type Evaluator struct {
	m   *model.Sequential
	par parallel.Config
}

// Option configures an Evaluator.
type Option func(*Evaluator) error

// WithWorkers evaluates on n goroutines, each with its own model clone.
func WithWorkers(n int) Option {
	return func(e *Evaluator) error {
		cfg, err := parallel.New(n, 1)
		if err != nil {
			return errors.Wrapf(nn.ErrInvalidConfig, "eval: %v", err)
		}
		e.par = cfg
		return nil
	}
}

// New creates an evaluator for a built model. By default evaluation is sequential.
func New(m *model.Sequential, opts ...Option) (*Evaluator, error) {
	if m == nil {
		return nil, errors.Wrap(nn.ErrInvalidConfig, "eval: model is nil")
	}
	if !m.Built() {
		return nil, errors.Wrap(nn.ErrNotBuilt, "eval: model")
	}
	e := &Evaluator{m: m, par: parallel.Sequential()}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Workers returns the configured number of workers.
func (e *Evaluator) Workers() int {
	if !e.par.Enabled {
		return 1
	}
	return e.par.NumWorkers
}

// forEach runs the forward pass for every xs[i] and hands the prediction to fn. fn is
// called concurrently for different i and must only write state owned by index i. The
// prediction is only valid during the call.
func (e *Evaluator) forEach(xs []*tensor.Tensor, fn func(i int, pred *tensor.Tensor) error) error {
	workers := e.par.Workers(len(xs))
	models := make([]*model.Sequential, workers)
	if workers == 1 {
		models[0] = e.m
		defer e.m.SetTraining(e.m.Training())
	} else {
		for w := range models {
			models[w] = e.m.Clone()
		}
	}
	for _, m := range models {
		m.SetTraining(false)
	}

	return parallel.ForWorkers(len(xs), func(w, lo, hi int) error {
		m := models[w]
		for i := lo; i < hi; i++ {
			pred, err := m.Forward(xs[i])
			if err != nil {
				return errors.Wrapf(err, "eval: sample %d", i)
			}
			if err := fn(i, pred); err != nil {
				return errors.Wrapf(err, "eval: sample %d", i)
			}
		}
		return nil
	}, e.par)
}

// Predict returns a copy of the model output for every input.
func (e *Evaluator) Predict(xs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	preds := make([]*tensor.Tensor, len(xs))
	err := e.forEach(xs, func(i int, pred *tensor.Tensor) error {
		preds[i] = pred.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

// MeanLoss returns the mean of l over the samples.
func (e *Evaluator) MeanLoss(l loss.Loss, xs, ys []*tensor.Tensor) (float64, error) {
	if l == nil {
		return 0, errors.Wrap(nn.ErrInvalidConfig, "eval: loss is nil")
	}
	if err := checkPairs(xs, ys); err != nil {
		return 0, err
	}
	losses := make([]float64, len(xs))
	err := e.forEach(xs, func(i int, pred *tensor.Tensor) error {
		v, err := l.Forward(pred, ys[i])
		if err != nil {
			return err
		}
		losses[i] = v.Item()
		return nil
	})
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, v := range losses {
		sum += v
	}
	return sum / float64(len(losses)), nil
}

// Accuracy returns the fraction of samples whose predicted argmax equals the target argmax.
// Ties resolve to the lowest index.
func (e *Evaluator) Accuracy(xs, ys []*tensor.Tensor) (float64, error) {
	classes, err := e.classes(xs, ys)
	if err != nil {
		return 0, err
	}
	hits := 0
	for i, c := range classes {
		if c == ys[i].ArgMaxFlat() {
			hits++
		}
	}
	return float64(hits) / float64(len(classes)), nil
}

// ConfusionMatrix counts samples by [actual class][predicted class], both taken as argmax.
func (e *Evaluator) ConfusionMatrix(xs, ys []*tensor.Tensor) ([][]int, error) {
	classes, err := e.classes(xs, ys)
	if err != nil {
		return nil, err
	}
	n := ys[0].Len()
	cm := newMatrix(n)
	for i, c := range classes {
		if ys[i].Len() != n {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch, "eval: target %d has %d classes, expected %d", i, ys[i].Len(), n)
		}
		if c >= n {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch, "eval: prediction has %d classes, target %d", c+1, n)
		}
		cm[ys[i].ArgMaxFlat()][c]++
	}
	return cm, nil
}

// F1 returns the macro-averaged F1 score over all classes.
func (e *Evaluator) F1(xs, ys []*tensor.Tensor) (float64, error) {
	cm, err := e.ConfusionMatrix(xs, ys)
	if err != nil {
		return 0, err
	}
	macro, _ := F1FromConfusion(cm)
	return macro, nil
}

// F1Sum returns the sum of the per-class F1 scores.
func (e *Evaluator) F1Sum(xs, ys []*tensor.Tensor) (float64, error) {
	cm, err := e.ConfusionMatrix(xs, ys)
	if err != nil {
		return 0, err
	}
	_, sum := F1FromConfusion(cm)
	return sum, nil
}

// PerClass returns precision, recall, F1 and support for every class.
func (e *Evaluator) PerClass(xs, ys []*tensor.Tensor) ([]ClassStats, error) {
	cm, err := e.ConfusionMatrix(xs, ys)
	if err != nil {
		return nil, err
	}
	return PerClassFromConfusion(cm), nil
}

// classes returns the predicted argmax of every sample.
func (e *Evaluator) classes(xs, ys []*tensor.Tensor) ([]int, error) {
	if err := checkPairs(xs, ys); err != nil {
		return nil, err
	}
	classes := make([]int, len(xs))
	err := e.forEach(xs, func(i int, pred *tensor.Tensor) error {
		classes[i] = pred.ArgMaxFlat()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func checkPairs(xs, ys []*tensor.Tensor) error {
	if len(xs) == 0 {
		return dataset.ErrEmpty
	}
	if len(xs) != len(ys) {
		return errors.Wrapf(dataset.ErrLengthMismatch, "eval: %d inputs, %d targets", len(xs), len(ys))
	}
	return nil
}
