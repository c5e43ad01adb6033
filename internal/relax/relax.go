// Package relax smooths quad meshes with the unit force-density method.
//
// The longest boundary loop is pinned to a circle, other boundary vertices
// stay where they are, and interior vertices move to the equilibrium of
// unit-stiffness edges: each ends at the mean of its neighbours.
package relax

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"

	"github.com/roach88/lizard/internal/mesh"
)

var (
	// ErrDegenerate indicates a mesh the method cannot be applied to.
	ErrDegenerate = errors.New("degenerate mesh")

	// ErrNotConverged indicates the refinement budget ran out.
	ErrNotConverged = errors.New("relaxation did not converge")
)

// Defaults.
const (
	DefaultMaxIterations = 10000
	DefaultTolerance     = 1e-7
	DefaultRadius        = 0.5
)

// Relaxer solves the force-density equilibrium directly and refines the
// solution until its residual is below Tolerance.
type Relaxer struct {
	MaxIterations int // refinement budget
	Tolerance     float64
	Radius        float64
}

// New returns a Relaxer with default settings.
func New() Relaxer {
	return Relaxer{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		Radius:        DefaultRadius,
	}
}

// Smooth moves the vertices of m in place. Only positions change.
func (r Relaxer) Smooth(m *mesh.Mesh) error {
	loops := m.BoundaryLoops()
	if len(loops) == 0 {
		return fmt.Errorf("%w: no boundary to pin", ErrDegenerate)
	}
	longest := loops[0]
	for _, loop := range loops[1:] {
		if len(loop) > len(longest) {
			longest = loop
		}
	}

	radius := r.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	n := float64(len(longest))
	for i, v := range longest {
		angle := float64(i) / n * 2 * math.Pi
		m.SetPosition(v, mesh.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
	}

	var free []mesh.VertexID
	for _, v := range m.Vertices() {
		if !m.IsBoundaryVertex(v) {
			free = append(free, v)
		}
	}
	if err := anchored(m); err != nil {
		return err
	}

	if len(free) == 0 {
		return nil
	}

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := r.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	lap, rhs, err := laplacian(m, free)
	if err != nil {
		return err
	}
	inv, err := matrix.Inverse(lap)
	if errors.Is(err, matrix.ErrSingular) {
		return fmt.Errorf("%w: %w", ErrDegenerate, err)
	}
	if err != nil {
		return err
	}

	var coords [3][]float64
	for c := range coords {
		if coords[c], err = solve(lap, inv, rhs[c], maxIter, tol); err != nil {
			return err
		}
	}
	for i, v := range free {
		p := mesh.Point{X: coords[0][i], Y: coords[1][i], Z: coords[2][i]}
		if !finite(p) {
			return fmt.Errorf("%w: vertex %d moved to a non-finite position", ErrDegenerate, v)
		}
		m.SetPosition(v, p)
	}
	return nil
}

// laplacian builds the unit force-density system over the free vertices:
// degree on the diagonal, -1 between free neighbours, and per coordinate
// the sum of the fixed neighbours' positions on the right.
func laplacian(m *mesh.Mesh, free []mesh.VertexID) (*matrix.Dense, [3][]float64, error) {
	var rhs [3][]float64
	index := make(map[mesh.VertexID]int, len(free))
	for i, v := range free {
		index[v] = i
	}
	lap, err := matrix.NewDense(len(free), len(free))
	if err != nil {
		return nil, rhs, err
	}
	for c := range rhs {
		rhs[c] = make([]float64, len(free))
	}
	for i, v := range free {
		nbrs := m.Neighbors(v)
		if err := lap.Set(i, i, float64(len(nbrs))); err != nil {
			return nil, rhs, err
		}
		for _, u := range nbrs {
			if j, ok := index[u]; ok {
				if err := lap.Set(i, j, -1); err != nil {
					return nil, rhs, err
				}
				continue
			}
			p := m.Position(u)
			rhs[0][i] += p.X
			rhs[1][i] += p.Y
			rhs[2][i] += p.Z
		}
	}
	return lap, rhs, nil
}

// solve returns inv·b refined until the residual of lap·x = b is below tol
// in every component, or ErrNotConverged after maxIter residual checks.
func solve(lap, inv matrix.Matrix, b []float64, maxIter int, tol float64) ([]float64, error) {
	x, err := matrix.MatVec(inv, b)
	if err != nil {
		return nil, err
	}
	for range maxIter {
		ax, err := matrix.MatVec(lap, x)
		if err != nil {
			return nil, err
		}
		res := make([]float64, len(b))
		worst := 0.0
		for i := range b {
			res[i] = b[i] - ax[i]
			worst = math.Max(worst, math.Abs(res[i]))
		}
		if worst < tol {
			return x, nil
		}
		dx, err := matrix.MatVec(inv, res)
		if err != nil {
			return nil, err
		}
		for i := range x {
			x[i] += dx[i]
		}
	}
	return nil, fmt.Errorf("%w after %d refinements", ErrNotConverged, maxIter)
}

// anchored checks that every vertex reaches the boundary through edges.
func anchored(m *mesh.Mesh) error {
	seen := make(map[mesh.VertexID]bool)
	var queue []mesh.VertexID
	for _, v := range m.Vertices() {
		if m.IsBoundaryVertex(v) {
			seen[v] = true
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range m.Neighbors(v) {
			if !seen[u] {
				seen[u] = true
				queue = append(queue, u)
			}
		}
	}
	for _, v := range m.Vertices() {
		if !seen[v] {
			return fmt.Errorf("%w: vertex %d is not connected to the boundary", ErrDegenerate, v)
		}
	}
	return nil
}

func finite(p mesh.Point) bool {
	for _, x := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
