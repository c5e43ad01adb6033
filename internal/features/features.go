// Package features computes the topological fingerprint of a quad mesh and
// renders it as a string key for deduplication.
package features

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/lizard/internal/mesh"
)

// TopoIndices are the histogram centres for vertex topological indices.
var TopoIndices = []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1}

// GlobalCount is the number of leading global counts in a Vector.
const GlobalCount = 4

// Vector is a feature vector: vertices, edges, strips and singularities,
// then one or two histograms of len(TopoIndices)+2 buckets each.
type Vector []float64

// Options selects optional features.
type Options struct {
	// Neighborhood appends the histogram of neighbour-summed indices.
	Neighborhood bool
}

// Histogram counts samples per bin centre. The result has len(bins)+2
// entries: the low overflow, one count per centre, the high overflow.
// Matching is exact float equality. Samples below the first centre go to
// the low overflow and samples above the last centre to the high one. A
// sample inside the range that equals no centre also overflows: to the
// low bucket when it lies below the middle of the range, else to the high
// bucket. Every sample is counted exactly once.
func Histogram(samples, bins []float64) []int {
	counts := make([]int, len(bins)+2)
	low, high := 0, len(counts)-1
	mid := (bins[0] + bins[len(bins)-1]) / 2
	for _, s := range samples {
		switch {
		case s < bins[0]:
			counts[low]++
		case s > bins[len(bins)-1]:
			counts[high]++
		default:
			if i := slices.Index(bins, s); i >= 0 {
				counts[i+1]++
			} else if s < mid {
				counts[low]++
			} else {
				counts[high]++
			}
		}
	}
	return counts
}

// Compute returns the feature vector of m.
func Compute(m *mesh.Mesh, opts Options) Vector {
	v := Vector{
		float64(m.NumVertices()),
		float64(m.NumEdges()),
		float64(m.NumStrips()),
		float64(len(m.Singularities())),
	}
	for _, c := range Histogram(m.TopoIndices(), TopoIndices) {
		v = append(v, float64(c))
	}
	if opts.Neighborhood {
		for _, c := range Histogram(m.TopoIndicesNeighborhood(), TopoIndices) {
			v = append(v, float64(c))
		}
	}
	return v
}

// Precision controls how Key renders elements. The zero value truncates to
// integers.
type Precision struct {
	decimals int
}

// PrecisionInteger truncates every element toward zero.
var PrecisionInteger = Precision{}

// Decimals renders every element with n digits after the point.
func Decimals(n int) Precision {
	if n < 0 {
		n = 0
	}
	return Precision{decimals: n + 1}
}

func (p Precision) String() string {
	if p.decimals == 0 {
		return "integer"
	}
	return fmt.Sprintf("%d decimals", p.decimals-1)
}

// Key renders v as comma-separated elements at precision p. Vectors with
// equal keys are treated as the same topology.
func Key(v Vector, p Precision) string {
	parts := make([]string, len(v))
	for i, x := range v {
		if p.decimals == 0 {
			parts[i] = strconv.FormatInt(int64(x), 10)
		} else {
			parts[i] = strconv.FormatFloat(x, 'f', p.decimals-1, 64)
		}
	}
	return strings.Join(parts, ",")
}

// RevertKey parses a key back into a vector.
func RevertKey(key string) (Vector, error) {
	if key == "" {
		return Vector{}, nil
	}
	parts := strings.Split(key, ",")
	v := make(Vector, len(parts))
	for i, s := range parts {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("revert key: element %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}

// Fingerprint computes the key of m in one step.
func Fingerprint(m *mesh.Mesh, opts Options, p Precision) (Vector, string) {
	v := Compute(m, opts)
	return v, Key(v, p)
}
