package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquilibrium(t *testing.T) {
	tests := []struct {
		name string
		p    [][]float64
		want []float64
	}{
		{"symmetric two state", [][]float64{{0.6, 0.4}, {0.4, 0.6}}, []float64{0.5, 0.5}},
		{"identical rows", [][]float64{{0.2, 0.4, 0.4}, {0.2, 0.4, 0.4}, {0.2, 0.4, 0.4}}, []float64{0.2, 0.4, 0.4}},
		{"skewed", [][]float64{{0.9, 0.1}, {0.5, 0.5}}, []float64{5.0 / 6, 1.0 / 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi, err := Equilibrium(tt.p)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, pi, 1e-9)
		})
	}
}

func TestEquilibriumIsStationary(t *testing.T) {
	p := [][]float64{
		{0.1, 0.6, 0.3},
		{0.4, 0.4, 0.2},
		{0.5, 0.25, 0.25},
	}
	pi, err := Equilibrium(p)
	require.NoError(t, err)

	var sum float64
	for j := range p {
		var next float64
		for i := range p {
			next += pi[i] * p[i][j]
		}
		assert.InDelta(t, pi[j], next, 1e-6)
		sum += pi[j]
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestEquilibriumSingular(t *testing.T) {
	_, err := Equilibrium([][]float64{{1, 0}, {0, 1}})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestEquilibriumRejectsShape(t *testing.T) {
	_, err := Equilibrium(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Equilibrium([][]float64{{0.5, 0.5}, {1}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestEquilibriumReducibleChain(t *testing.T) {
	// Two closed classes: every mixture of their distributions is stationary.
	p := [][]float64{
		{0.5, 0.5, 0, 0},
		{0.5, 0.5, 0, 0},
		{0, 0, 0.3, 0.7},
		{0, 0, 0.7, 0.3},
	}
	_, err := Equilibrium(p)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestEquilibriumAbsorbingState(t *testing.T) {
	pi, err := Equilibrium([][]float64{{1, 0}, {0.5, 0.5}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0}, pi, 1e-9)
}
