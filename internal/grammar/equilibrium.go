package grammar

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
)

// pivotTolerance bounds the smallest usable pivot of the normal matrix,
// relative to its largest diagonal entry.
const pivotTolerance = 1e-12

// Equilibrium returns the stationary distribution π of a square transition
// matrix, satisfying π·P = π and Σπ = 1.
//
// It stacks A = [Pᵀ − I ; 1ᵀ] and b = [0 … 0, 1] and solves the normal
// equations AᵀA x = Aᵀb. Chains without a unique stationary distribution
// return ErrSingular.
func Equilibrium(p [][]float64) ([]float64, error) {
	n := len(p)
	if n == 0 {
		return nil, fmt.Errorf("%w: equilibrium: empty matrix", ErrInvalidParams)
	}
	for i, row := range p {
		if len(row) != n {
			return nil, fmt.Errorf("%w: equilibrium: row %d has %d entries, want %d", ErrInvalidParams, i, len(row), n)
		}
	}

	a, err := stationarySystem(p)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}
	at, err := matrix.Transpose(a)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}
	ata, err := matrix.Mul(at, a)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}
	b := make([]float64, n+1)
	b[n] = 1
	atb, err := matrix.MatVec(at, b)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}

	x, err := solveNormal(ata, atb)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}
	for i, v := range x {
		// Round-off can leave tiny negatives on absent states.
		if v < 0 && v > -1e-9 {
			x[i] = 0
		}
	}
	return x, nil
}

// stationarySystem builds the (n+1) x n matrix [Pᵀ − I ; 1ᵀ].
func stationarySystem(p [][]float64) (*matrix.Dense, error) {
	n := len(p)
	a, err := matrix.NewDense(n+1, n)
	if err != nil {
		return nil, err
	}
	for i := range n {
		for j := range n {
			v := p[j][i]
			if i == j {
				v--
			}
			if err := a.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}
	for j := range n {
		if err := a.Set(n, j, 1); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// solveNormal solves m x = b for the symmetric positive semi-definite
// normal matrix m. The LU factorization runs without pivoting, which is
// stable for positive definite m; a vanishing pivot means m is singular.
func solveNormal(m matrix.Matrix, b []float64) ([]float64, error) {
	_, u, err := matrix.LU(m)
	if errors.Is(err, matrix.ErrSingular) {
		return nil, fmt.Errorf("%w: %w", ErrSingular, err)
	}
	if err != nil {
		return nil, err
	}

	n := m.Rows()
	diag := make([]float64, n)
	scale := 0.0
	for i := range n {
		d, err := m.At(i, i)
		if err != nil {
			return nil, err
		}
		scale = math.Max(scale, math.Abs(d))
		if diag[i], err = u.At(i, i); err != nil {
			return nil, err
		}
	}
	for i, d := range diag {
		if math.Abs(d) <= pivotTolerance*scale {
			return nil, fmt.Errorf("%w: zero pivot in column %d", ErrSingular, i)
		}
	}

	inv, err := matrix.Inverse(m)
	if errors.Is(err, matrix.ErrSingular) {
		return nil, fmt.Errorf("%w: %w", ErrSingular, err)
	}
	if err != nil {
		return nil, err
	}
	return matrix.MatVec(inv, b)
}
