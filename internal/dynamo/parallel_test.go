package dynamo

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, MinChunk, 3*MinChunk + 5} {
		hits := make([]int32, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestForEach(t *testing.T) {
	n := 5000
	out := make([]float64, n)
	ForEach(n, func(i int) { out[i] = float64(i) * 2 })
	for i, v := range out {
		if v != float64(i)*2 {
			t.Fatalf("index %d: got %f", i, v)
		}
	}
}

func TestConfigErrorUnwraps(t *testing.T) {
	err := &ConfigError{Key: "kappa", Value: -1.0, Reason: "must be positive"}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("expected ConfigError to unwrap to ErrInvalidConfig")
	}
	wrapped := &IterationError{Iteration: 3, Wrapped: ErrNotConverged}
	if !errors.Is(wrapped, ErrNotConverged) {
		t.Error("expected IterationError to unwrap to its cause")
	}
}
