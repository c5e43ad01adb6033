package grammar

import (
	"fmt"
	"math"
	"math/rand"
)

// newRand returns a private source; generators never touch the global one.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// cumulative normalizes non-negative weights by their sum and returns the
// running totals. The last total is forced to 1.
func cumulative(weights []float64) ([]float64, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("no weights")
	}
	var sum float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight %d is %v, want a finite non-negative number", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("weights sum to %v, want a positive total", sum)
	}

	out := make([]float64, len(weights))
	var acc float64
	for i, w := range weights {
		acc += w / sum
		out[i] = acc
	}
	out[len(out)-1] = 1
	return out, nil
}

// normalize scales non-negative weights to sum to 1.
func normalize(weights []float64) ([]float64, error) {
	cum, err := cumulative(weights)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cum))
	prev := 0.0
	for i, c := range cum {
		out[i] = c - prev
		prev = c
	}
	return out, nil
}

// draw returns the first index whose running total exceeds one uniform
// sample.
func draw(rng *rand.Rand, cum []float64) int {
	x := rng.Float64()
	for i, c := range cum {
		if x < c {
			return i
		}
	}
	return len(cum) - 1
}
