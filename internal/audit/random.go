package audit

import (
	"math/rand/v2"
)

// RandomSource is the randomness an audit draws from. *rand.Rand from
// math/rand/v2 satisfies it, which lets tests pass a seeded generator or a
// scripted fake.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// globalSource delegates to the top-level math/rand/v2 functions, which are
// safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// choose picks one element of items uniformly.
func choose[T any](src RandomSource, items []T) T {
	return items[src.IntN(len(items))]
}

// weightedIndex picks an index with probability proportional to weights.
// It scales a uniform float by the weight total and bisects the cumulative
// weights, returning the first index whose cumulative weight exceeds it.
func weightedIndex(src RandomSource, weights []float64) int {
	cumulative := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}

	x := src.Float64() * total
	lo, hi := 0, len(cumulative)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if x < cumulative[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
