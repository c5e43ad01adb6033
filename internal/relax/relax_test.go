package relax

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/mesh"
)

func TestSmoothGrid(t *testing.T) {
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)

	require.NoError(t, New().Smooth(m))

	for _, v := range m.BoundaryLoops()[0] {
		p := m.Position(v)
		assert.InDelta(t, 0.5, math.Hypot(p.X, p.Y), 1e-12, "vertex %d", v)
	}
	// The centre is the mean of four symmetric midpoints.
	c := m.Position(4)
	assert.InDelta(t, 0, c.X, 1e-6)
	assert.InDelta(t, 0, c.Y, 1e-6)
}

func TestSmoothConvergesOnLargerMesh(t *testing.T) {
	m, err := mesh.Grid(4, 3)
	require.NoError(t, err)

	require.NoError(t, New().Smooth(m))
	for _, v := range m.Vertices() {
		if m.IsBoundaryVertex(v) {
			continue
		}
		var sx, sy float64
		nbrs := m.Neighbors(v)
		for _, u := range nbrs {
			sx += m.Position(u).X
			sy += m.Position(u).Y
		}
		p := m.Position(v)
		assert.InDelta(t, sx/float64(len(nbrs)), p.X, 1e-9)
		assert.InDelta(t, sy/float64(len(nbrs)), p.Y, 1e-9)
	}
}

func TestSmoothNotConverged(t *testing.T) {
	m, err := mesh.Grid(6, 6)
	require.NoError(t, err)

	err = Relaxer{MaxIterations: 1, Tolerance: 1e-300}.Smooth(m)
	assert.ErrorIs(t, err, ErrNotConverged)
}

func TestSmoothSingleRefinementIsEnough(t *testing.T) {
	m, err := mesh.Grid(6, 6)
	require.NoError(t, err)

	require.NoError(t, Relaxer{MaxIterations: 1}.Smooth(m))
}

func TestSmoothWithoutInteriorVertices(t *testing.T) {
	m, err := mesh.Grid(1, 3)
	require.NoError(t, err)

	require.NoError(t, New().Smooth(m))
	for _, v := range m.Vertices() {
		p := m.Position(v)
		assert.InDelta(t, 0.5, math.Hypot(p.X, p.Y), 1e-12, "vertex %d", v)
	}
}

func torus(t *testing.T, n int) *mesh.Mesh {
	t.Helper()
	id := func(i, j int) mesh.VertexID { return mesh.VertexID((j%n)*n + i%n) }
	points := make([]mesh.Point, n*n)
	var faces [][]mesh.VertexID
	for j := range n {
		for i := range n {
			faces = append(faces, []mesh.VertexID{id(i, j), id(i+1, j), id(i+1, j+1), id(i, j+1)})
		}
	}
	m, err := mesh.FromVerticesAndFaces(points, faces)
	require.NoError(t, err)
	return m
}

func TestSmoothClosedMesh(t *testing.T) {
	m := torus(t, 3)
	require.True(t, m.IsManifold())
	require.Empty(t, m.BoundaryLoops())

	assert.ErrorIs(t, New().Smooth(m), ErrDegenerate)
}
