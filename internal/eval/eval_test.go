package eval_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/eval"
	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// constantModel always predicts class 0 of 3.
func constantModel(t *testing.T) *model.Sequential {
	t.Helper()
	dense := nn.NewDense(3, nn.Softmax{})
	m := model.New(nn.NewInput(2), dense)
	require.NoError(t, m.Build(nil))
	dense.Weight().Value().Zero()
	copy(dense.Bias().Value().Data(), []float64{1, 0, 0})
	return m
}

// tenSamples has 4 samples of class 0, 3 of class 1 and 3 of class 2.
func tenSamples() (xs, ys []*tensor.Tensor) {
	for i, class := range []int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0} {
		xs = append(xs, tensor.MustFromSlice([]float64{float64(i), 1}, 2))
		ys = append(ys, dataset.OneHot(class, 3))
	}
	return xs, ys
}

func TestConfusionMatrix_AllPredictedZero(t *testing.T) {
	for _, workers := range []int{1, 3} {
		e, err := eval.New(constantModel(t), eval.WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, workers, e.Workers())

		xs, ys := tenSamples()
		cm, err := e.ConfusionMatrix(xs, ys)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{4, 0, 0}, {3, 0, 0}, {3, 0, 0}}, cm)

		rows := make([]int, len(cm))
		for i, row := range cm {
			for _, v := range row {
				rows[i] += v
			}
		}
		assert.Equal(t, []int{4, 3, 3}, rows)

		acc, err := e.Accuracy(xs, ys)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, acc, 1e-12)
	}
}

func TestF1(t *testing.T) {
	e, err := eval.New(constantModel(t))
	require.NoError(t, err)
	xs, ys := tenSamples()

	// class 0: precision 0.4, recall 1, F1 = 0.8/1.4; classes 1 and 2 score 0
	f1Class0 := 0.8 / 1.4

	macro, err := e.F1(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, f1Class0/3, macro, 1e-12)

	sum, err := e.F1Sum(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, f1Class0, sum, 1e-12)

	stats, err := e.PerClass(xs, ys)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.InDelta(t, 0.4, stats[0].Precision, 1e-12)
	assert.Equal(t, 1.0, stats[0].Recall)
	assert.Equal(t, 4, stats[0].Support)
	assert.Equal(t, eval.ClassStats{Support: 3}, stats[1])
}

func TestF1FromConfusion_Perfect(t *testing.T) {
	macro, sum := eval.F1FromConfusion([][]int{{2, 0}, {0, 5}})
	assert.Equal(t, 1.0, macro)
	assert.Equal(t, 2.0, sum)

	macro, sum = eval.F1FromConfusion(nil)
	assert.Zero(t, macro)
	assert.Zero(t, sum)
}

func TestConfusionFromPredictions(t *testing.T) {
	preds := []*tensor.Tensor{
		tensor.MustFromSlice([]float64{0.1, 0.9}, 2),
		tensor.MustFromSlice([]float64{0.5, 0.5}, 2), // tie resolves to class 0
		tensor.MustFromSlice([]float64{0.8, 0.2}, 2),
	}
	targets := []*tensor.Tensor{dataset.OneHot(1, 2), dataset.OneHot(1, 2), dataset.OneHot(0, 2)}

	cm, err := eval.ConfusionFromPredictions(preds, targets)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 0}, {1, 1}}, cm)

	_, err = eval.ConfusionFromPredictions(preds, targets[:2])
	assert.True(t, errors.Is(err, dataset.ErrLengthMismatch))

	_, err = eval.ConfusionFromPredictions(preds, []*tensor.Tensor{dataset.OneHot(0, 3), dataset.OneHot(0, 3), dataset.OneHot(0, 3)})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	_, err = eval.ConfusionFromPredictions(nil, nil)
	assert.True(t, errors.Is(err, dataset.ErrEmpty))
}

func TestPredictAndMeanLoss(t *testing.T) {
	dense := nn.NewDense(1, nil)
	m := model.New(nn.NewInput(2), dense)
	require.NoError(t, m.Build(nil))
	copy(dense.Weight().Value().Data(), []float64{1, 1})

	xs := []*tensor.Tensor{
		tensor.MustFromSlice([]float64{1, 2}, 2),
		tensor.MustFromSlice([]float64{0, 0}, 2),
		tensor.MustFromSlice([]float64{-1, 4}, 2),
	}
	ys := []*tensor.Tensor{
		tensor.MustFromSlice([]float64{3}, 1),
		tensor.MustFromSlice([]float64{1}, 1),
		tensor.MustFromSlice([]float64{1}, 1),
	}

	for _, workers := range []int{1, 2} {
		e, err := eval.New(m, eval.WithWorkers(workers))
		require.NoError(t, err)

		preds, err := e.Predict(xs)
		require.NoError(t, err)
		require.Len(t, preds, 3)
		assert.Equal(t, []float64{3}, preds[0].Values())
		assert.Equal(t, []float64{0}, preds[1].Values())
		assert.Equal(t, []float64{3}, preds[2].Values())

		// squared errors 0, 1, 4
		mse, err := e.MeanLoss(loss.MSE{}, xs, ys)
		require.NoError(t, err)
		assert.InDelta(t, 5.0/3.0, mse, 1e-12)
	}
}

func TestEvaluator_RestoresTrainingMode(t *testing.T) {
	m := constantModel(t)
	m.SetTraining(true)
	e, err := eval.New(m)
	require.NoError(t, err)

	xs, ys := tenSamples()
	_, err = e.Accuracy(xs, ys)
	require.NoError(t, err)
	assert.True(t, m.Training())
}

func TestNew_Errors(t *testing.T) {
	_, err := eval.New(nil)
	assert.True(t, errors.Is(err, nn.ErrInvalidConfig))

	_, err = eval.New(model.New(nn.NewInput(2)))
	assert.True(t, errors.Is(err, nn.ErrNotBuilt))

	_, err = eval.New(constantModel(t), eval.WithWorkers(0))
	assert.True(t, errors.Is(err, nn.ErrInvalidConfig))

	e, err := eval.New(constantModel(t))
	require.NoError(t, err)
	_, err = e.MeanLoss(nil, nil, nil)
	assert.True(t, errors.Is(err, nn.ErrInvalidConfig))

	xs, ys := tenSamples()
	_, err = e.Accuracy(xs, ys[:5])
	assert.True(t, errors.Is(err, dataset.ErrLengthMismatch))

	_, err = e.Accuracy([]*tensor.Tensor{tensor.New(3)}, ys[:1])
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestConfusionMatrix_RaggedTargets(t *testing.T) {
	for _, workers := range []int{1, 3} {
		e, err := eval.New(constantModel(t), eval.WithWorkers(workers))
		require.NoError(t, err)

		xs, ys := tenSamples()
		ys[1] = dataset.OneHot(3, 4)

		_, err = e.ConfusionMatrix(xs, ys)
		assert.True(t, errors.Is(err, tensor.ErrShapeMismatch), "got %v", err)

		_, err = e.F1(xs, ys)
		assert.True(t, errors.Is(err, tensor.ErrShapeMismatch), "got %v", err)
	}
}
