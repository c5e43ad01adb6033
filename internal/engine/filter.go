package engine

import (
	"fmt"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/mesh"
)

// Smoother relaxes vertex positions in place.
type Smoother interface {
	Smooth(m *mesh.Mesh) error
}

// Filter decides whether a replayed mesh is kept. Checks run in order and
// stop at the first rejection:
//
//  1. Smoother (skipped when nil)  -> SMOOTHING_FAILED
//  2. manifold check               -> NON_MANIFOLD
//  3. boundary loop count          -> BOUNDARY_COUNT_CHANGED
type Filter struct {
	Smoother  Smoother
	SeedLoops int
}

// Check returns nil when m passes, or the rejection.
func (f Filter) Check(m *mesh.Mesh) *ir.AttemptError {
	if f.Smoother != nil {
		if err := f.Smoother.Smooth(m); err != nil {
			return ir.NewStageError(ir.CodeSmoothingFailed, err)
		}
	}
	if err := m.CheckManifold(); err != nil {
		return ir.NewStageError(ir.CodeNonManifold, err)
	}
	if n := len(m.BoundaryLoops()); n != f.SeedLoops {
		return ir.NewStageError(ir.CodeBoundaryChanged,
			fmt.Errorf("mesh has %d boundary loops, seed has %d", n, f.SeedLoops))
	}
	return nil
}
