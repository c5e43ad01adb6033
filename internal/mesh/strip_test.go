package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStripOpen(t *testing.T) {
	m := mustGrid(t, 2, 2)

	dup, err := m.AddStrip([]VertexID{3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, map[VertexID]VertexID{3: 9, 4: 10, 5: 11}, dup)

	// Topologically a 2x3 grid.
	assert.Equal(t, 12, m.NumVertices())
	assert.Equal(t, 17, m.NumEdges())
	assert.Equal(t, 6, m.NumFaces())
	assert.Equal(t, 5, m.NumStrips())
	assert.True(t, m.IsManifold())
	assert.Len(t, m.BoundaryLoops(), 1)

	assert.Equal(t, []VertexID{0, 1, 10, 9}, m.FaceVertices(0))
	assert.Equal(t, []VertexID{1, 2, 11, 10}, m.FaceVertices(1))
	assert.Equal(t, []VertexID{3, 9, 10, 4}, m.FaceVertices(4))
	assert.Equal(t, []VertexID{4, 10, 11, 5}, m.FaceVertices(5))

	ref := mustGrid(t, 2, 3)
	assert.ElementsMatch(t, ref.TopoIndices(), m.TopoIndices())
	assert.Equal(t, m.Position(4), m.Position(10))
}

func TestAddStripAroundFace(t *testing.T) {
	m := mustGrid(t, 2, 2)

	// Wraps face 0 from boundary to boundary with the face on the right.
	_, err := m.AddStrip([]VertexID{3, 4, 1, 0})
	require.NoError(t, err)

	assert.Equal(t, 13, m.NumVertices())
	assert.Equal(t, 7, m.NumFaces())
	assert.True(t, m.IsManifold())
	assert.Len(t, m.BoundaryLoops(), 1)
	assert.Equal(t, 5, m.Degree(4))
}

func TestAddStripClosed(t *testing.T) {
	m := mustGrid(t, 3, 3)

	_, err := m.AddStrip([]VertexID{5, 6, 10, 9, 5})
	require.NoError(t, err)

	assert.Equal(t, 20, m.NumVertices())
	assert.Equal(t, 13, m.NumFaces())
	assert.Equal(t, 7, m.NumStrips())
	assert.True(t, m.IsManifold())
	assert.Len(t, m.BoundaryLoops(), 1)
	assert.Len(t, m.Singularities(), 12)
	assert.Equal(t, 3, m.Degree(5))
}

func TestAddStripRejects(t *testing.T) {
	tests := []struct {
		name     string
		polyedge []VertexID
	}{
		{"single vertex", []VertexID{3}},
		{"not an edge", []VertexID{0, 2}},
		{"interior start", []VertexID{4, 5}},
		{"interior end", []VertexID{3, 4}},
		{"revisits vertex", []VertexID{3, 4, 3}},
		{"short closed", []VertexID{0, 1, 0}},
		{"unknown vertex", []VertexID{3, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustGrid(t, 2, 2)
			before := m.Edges()

			_, err := m.AddStrip(tt.polyedge)
			require.ErrorIs(t, err, ErrPrecondition)
			assert.Equal(t, before, m.Edges(), "mesh must be unchanged")
			assert.Equal(t, 9, m.NumVertices())
		})
	}
}

func TestDeleteStrip(t *testing.T) {
	m := mustGrid(t, 2, 2)

	merged, err := m.DeleteStrip(0, 1)
	require.NoError(t, err)
	assert.Equal(t, VertexID(0), merged[1])
	assert.Equal(t, VertexID(3), merged[4])
	assert.Equal(t, VertexID(6), merged[7])

	assert.Equal(t, 6, m.NumVertices())
	assert.Equal(t, 7, m.NumEdges())
	assert.Equal(t, 2, m.NumFaces())
	assert.False(t, m.HasVertex(1))
	assert.Equal(t, []VertexID{0, 2, 5, 3}, m.FaceVertices(1))
	assert.Equal(t, []VertexID{3, 5, 8, 6}, m.FaceVertices(3))
	assert.Nil(t, m.FaceVertices(0))
	assert.InDelta(t, -0.25, m.Position(0).X, 1e-12)
	assert.True(t, m.IsManifold())
}

func TestDeleteStripRejects(t *testing.T) {
	t.Run("missing edge", func(t *testing.T) {
		m := mustGrid(t, 2, 2)
		_, err := m.DeleteStrip(0, 4)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("no face left", func(t *testing.T) {
		m := mustGrid(t, 2, 1)
		_, err := m.DeleteStrip(0, 3)
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Contains(t, err.Error(), "leaves no face")
		assert.Equal(t, 2, m.NumFaces())
		assert.Equal(t, 6, m.NumVertices())
	})
}

func TestAddThenDeleteStripRestoresCounts(t *testing.T) {
	m := mustGrid(t, 2, 2)

	dup, err := m.AddStrip([]VertexID{3, 4, 5})
	require.NoError(t, err)
	_, err = m.DeleteStrip(3, dup[3])
	require.NoError(t, err)

	assert.Equal(t, 9, m.NumVertices())
	assert.Equal(t, 12, m.NumEdges())
	assert.Equal(t, 4, m.NumFaces())
	assert.True(t, m.IsManifold())
}
