// Package parallel provides the fixed-size worker loops used by the convolution and pooling
// layers and by the evaluator.
//
// Every helper hands each goroutine a disjoint index range, so callers only need to make sure
// that work item i writes to an output region no other item touches.
package parallel

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrInvalidWorkers is returned when a configuration asks for fewer than one worker.
var ErrInvalidWorkers = errors.New("worker count must be at least 1")

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a configuration that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// New builds a configuration with the given worker count. Parallelism is enabled when more
// than one worker is requested.
func New(workers, minChunk int) (Config, error) {
	cfg := Config{
		Enabled:      workers > 1,
		NumWorkers:   workers,
		MinChunkSize: max(minChunk, 1),
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations without workers.
func (c Config) Validate() error {
	if c.NumWorkers < 1 {
		return errors.Wrapf(ErrInvalidWorkers, "got %d", c.NumWorkers)
	}
	return nil
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch is For over a channels x positions grid.
// Conv2D uses it with (filters, output rows), MaxPool2D with (channels, output rows).
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	n := batch * channels
	For(n, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}

// ForWorkers splits [0, n) into at most cfg.NumWorkers contiguous ranges and runs
// f(worker, lo, hi) for each range on its own goroutine. Worker indices are dense from 0, so
// callers can keep per-worker state (for example a cloned model) in a slice.
//
// It returns the first error reported by any worker after all of them finished.
func ForWorkers(n int, f func(worker, lo, hi int) error, cfg Config) error {
	workers := 1
	if cfg.Enabled {
		workers = max(min(cfg.NumWorkers, n), 1)
	}
	if workers == 1 {
		return f(0, 0, n)
	}

	errs := make([]error, workers)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			errs[w] = f(w, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Workers reports how many workers ForWorkers will use for n items.
func (c Config) Workers(n int) int {
	if !c.Enabled {
		return 1
	}
	return max(min(c.NumWorkers, n), 1)
}
