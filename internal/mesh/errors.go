package mesh

import "errors"

// Sentinel errors. Call sites wrap them with %w and add context.
var (
	// ErrNotFound indicates a vertex, edge or face that is not in the mesh.
	ErrNotFound = errors.New("not found")

	// ErrNoFace indicates a rotation that would cross the boundary.
	ErrNoFace = errors.New("no face")

	// ErrInvalidMesh indicates malformed input geometry.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrPrecondition indicates a topological edit whose preconditions do
	// not hold on the current mesh.
	ErrPrecondition = errors.New("precondition violated")

	// ErrNonManifold indicates an edge shared by more than two faces or a
	// vertex whose faces do not form a single fan.
	ErrNonManifold = errors.New("non-manifold")

	// ErrOrientation indicates that face cycles cannot be made consistent.
	ErrOrientation = errors.New("inconsistent orientation")
)
