package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForBatch(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	batch, channels := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, channels)
	}

	ForBatch(batch, channels, func(b, c int) {
		results[b][c] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			assert.True(t, results[b][c], "missing result at [%d][%d]", b, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, Sequential())

	assert.Equal(t, int64(100), counter)
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForWorkers_DisjointRanges(t *testing.T) {
	cfg, err := New(3, 1)
	require.NoError(t, err)

	n := 10
	hits := make([]int, n)
	owner := make([]int, n)
	err = ForWorkers(n, func(w, lo, hi int) error {
		for i := lo; i < hi; i++ {
			hits[i]++
			owner[i] = w
		}
		return nil
	}, cfg)
	require.NoError(t, err)

	for i := range hits {
		assert.Equal(t, 1, hits[i], "item %d", i)
		assert.Less(t, owner[i], cfg.Workers(n))
	}
	assert.Equal(t, 3, cfg.Workers(n))
	assert.Equal(t, 2, cfg.Workers(2))
}

func TestForWorkers_Error(t *testing.T) {
	cfg, err := New(4, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = ForWorkers(8, func(w, _, _ int) error {
		if w == 2 {
			return boom
		}
		return nil
	}, cfg)
	assert.Equal(t, boom, err)
}

func TestNew_RejectsZeroWorkers(t *testing.T) {
	_, err := New(0, 1)
	assert.True(t, errors.Is(err, ErrInvalidWorkers))

	cfg, err := New(1, 0)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.MinChunkSize)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
