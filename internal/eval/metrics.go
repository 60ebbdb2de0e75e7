package eval

import (
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

// ClassStats holds the metrics of one class.
type ClassStats struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int // number of samples whose actual class is this one
}

func newMatrix(n int) [][]int {
	cm := make([][]int, n)
	for i := range cm {
		cm[i] = make([]int, n)
	}
	return cm
}

// ConfusionFromPredictions builds the [actual][predicted] confusion matrix from paired
// prediction and target vectors, taking the argmax of each. All vectors must have the same
// length, which is the number of classes.
func ConfusionFromPredictions(preds, targets []*tensor.Tensor) ([][]int, error) {
	if err := checkPairs(preds, targets); err != nil {
		return nil, err
	}
	n := targets[0].Len()
	cm := newMatrix(n)
	for i := range preds {
		if preds[i].Len() != n || targets[i].Len() != n {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch,
				"eval: sample %d has %d predicted and %d target classes, expected %d", i, preds[i].Len(), targets[i].Len(), n)
		}
		cm[targets[i].ArgMaxFlat()][preds[i].ArgMaxFlat()]++
	}
	return cm, nil
}

// PerClassFromConfusion derives per-class metrics from a confusion matrix. A ratio with a
// zero denominator is 0.
func PerClassFromConfusion(cm [][]int) []ClassStats {
	stats := make([]ClassStats, len(cm))
	for c := range cm {
		tp := cm[c][c]
		actual, predicted := 0, 0
		for k := range cm {
			actual += cm[c][k]
			predicted += cm[k][c]
		}

		s := ClassStats{Support: actual}
		if predicted > 0 {
			s.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			s.Recall = float64(tp) / float64(actual)
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		stats[c] = s
	}
	return stats
}

// F1FromConfusion returns the macro average and the sum of the per-class F1 scores.
func F1FromConfusion(cm [][]int) (macro, sum float64) {
	if len(cm) == 0 {
		return 0, 0
	}
	for _, s := range PerClassFromConfusion(cm) {
		sum += s.F1
	}
	return sum / float64(len(cm)), sum
}
