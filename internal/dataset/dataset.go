// Package dataset holds paired training samples and the operations the training engine
// needs on them: shuffling, splitting, sub-ranges and mini-batches.
package dataset

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

var (
	// ErrEmpty is returned when a dataset operation needs at least one sample.
	ErrEmpty = errors.New("dataset: empty")

	// ErrLengthMismatch is returned when inputs and targets differ in count.
	ErrLengthMismatch = errors.New("dataset: inputs and targets length mismatch")
)

// Sample is an input paired with its target.
type Sample struct {
	Input  *tensor.Tensor
	Target *tensor.Tensor
}

// Dataset is an ordered sequence of samples. Shuffle reorders it in place.
//
// The dataset holds references to the caller's tensors; reordering never touches their
// contents.
type Dataset struct {
	samples []Sample
}

// New pairs xs[i] with ys[i].
func New(xs, ys []*tensor.Tensor) (*Dataset, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d inputs, %d targets", len(xs), len(ys))
	}
	samples := make([]Sample, len(xs))
	for i := range xs {
		if xs[i] == nil || ys[i] == nil {
			return nil, errors.Errorf("dataset: sample %d has a nil tensor", i)
		}
		samples[i] = Sample{Input: xs[i], Target: ys[i]}
	}
	return &Dataset{samples: samples}, nil
}

// FromSamples creates a dataset over a copy of samples.
func FromSamples(samples []Sample) *Dataset {
	return &Dataset{samples: append([]Sample(nil), samples...)}
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// At returns sample i.
//
// Panics if i is out of range.
func (d *Dataset) At(i int) Sample {
	if i < 0 || i >= len(d.samples) {
		panic(errors.Wrapf(tensor.ErrIndexOutOfRange, "dataset: sample %d of %d", i, len(d.samples)))
	}
	return d.samples[i]
}

// Samples returns the samples in the current order. The slice must not be modified.
func (d *Dataset) Samples() []Sample { return d.samples }

// Inputs returns the inputs in the current order.
func (d *Dataset) Inputs() []*tensor.Tensor {
	xs := make([]*tensor.Tensor, len(d.samples))
	for i, s := range d.samples {
		xs[i] = s.Input
	}
	return xs
}

// Targets returns the targets in the current order.
func (d *Dataset) Targets() []*tensor.Tensor {
	ys := make([]*tensor.Tensor, len(d.samples))
	for i, s := range d.samples {
		ys[i] = s.Target
	}
	return ys
}

// Shuffle permutes the samples in place with a Fisher-Yates shuffle driven by rng.
// Inputs and targets move together.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	for i := len(d.samples) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.samples[i], d.samples[j] = d.samples[j], d.samples[i]
	}
}

// Range returns the samples [lo, hi) as a new dataset sharing the sample tensors.
func (d *Dataset) Range(lo, hi int) (*Dataset, error) {
	if lo < 0 || hi > len(d.samples) || lo > hi {
		return nil, errors.Wrapf(tensor.ErrIndexOutOfRange, "dataset: range [%d, %d) of %d", lo, hi, len(d.samples))
	}
	return FromSamples(d.samples[lo:hi]), nil
}

// Split divides the dataset at ratio: the first part holds round(ratio*Len) samples, the
// second the rest. ratio must be in [0, 1].
func (d *Dataset) Split(ratio float64) (first, second *Dataset, err error) {
	if len(d.samples) == 0 {
		return nil, nil, ErrEmpty
	}
	if ratio < 0 || ratio > 1 {
		return nil, nil, errors.Errorf("dataset: split ratio %g outside [0, 1]", ratio)
	}
	cut := int(ratio*float64(len(d.samples)) + 0.5)
	return FromSamples(d.samples[:cut]), FromSamples(d.samples[cut:]), nil
}

// Batches splits the samples into contiguous groups of at most size samples, in the current
// order. The last batch may be shorter.
func (d *Dataset) Batches(size int) ([][]Sample, error) {
	if size < 1 {
		return nil, errors.Errorf("dataset: batch size must be positive, got %d", size)
	}
	if len(d.samples) == 0 {
		return nil, ErrEmpty
	}

	n := len(d.samples)
	batches := make([][]Sample, 0, (n+size-1)/size)
	for i := 0; i < n; i += size {
		end := min(i+size, n)
		batches = append(batches, d.samples[i:end:end])
	}
	return batches, nil
}

// OneHot returns a vector of length classes with a 1 at index class.
//
// Panics if class is out of range.
func OneHot(class, classes int) *tensor.Tensor {
	if class < 0 || class >= classes {
		panic(errors.Wrapf(tensor.ErrIndexOutOfRange, "dataset: class %d of %d", class, classes))
	}
	t := tensor.New(classes)
	t.Set(1, class)
	return t
}
