package train

import "math"

// EarlyStopping returns an OnEpochEnd callback that stops training once the epoch loss has
// not improved by more than threshold for patience consecutive epochs.
func EarlyStopping(patience int, threshold float64) func(EpochInfo) error {
	best := math.Inf(1)
	bad := 0
	return func(info EpochInfo) error {
		if info.Loss < best-threshold {
			best = info.Loss
			bad = 0
			return nil
		}
		bad++
		if bad >= patience {
			return ErrStop
		}
		return nil
	}
}

// Chain runs several OnEpochEnd callbacks in order and returns the first error.
func Chain(fns ...func(EpochInfo) error) func(EpochInfo) error {
	return func(info EpochInfo) error {
		for _, fn := range fns {
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	}
}
