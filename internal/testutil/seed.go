package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
)

// GridConfigYAML is a minimal run configuration: a 2x2 grid explored with
// the reference rules over "atp", without generators beyond a given list.
const GridConfigYAML = `alphabet: atp
seed_mesh:
  grid: {nx: 2, ny: 2}
workers: 2
generators:
  given: [tttt, atta, ppp, tp, tttt]
`

// Grid returns an nx by ny grid seed.
func Grid(t testing.TB, nx, ny int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Grid(nx, ny)
	require.NoError(t, err)
	return m
}

// GridCorner is the corner cursor CornerCursor picks on an nx-wide grid:
// from vertex 0 towards the vertex above it.
func GridCorner(nx int) lizard.Cursor {
	return lizard.Cursor{Tail: 0, Head: mesh.VertexID(nx + 1)}
}

// Bowtie returns two quads sharing only vertex 0. It is not manifold.
func Bowtie(t testing.TB) *mesh.Mesh {
	t.Helper()
	points := make([]mesh.Point, 7)
	m, err := mesh.FromVerticesAndFaces(points, [][]mesh.VertexID{{0, 1, 2, 3}, {0, 4, 5, 6}})
	require.NoError(t, err)
	return m
}

// Strings converts literals to grammar strings.
func Strings(ss ...string) []ir.GrammarString {
	out := make([]ir.GrammarString, len(ss))
	for i, s := range ss {
		out[i] = ir.GrammarString(s)
	}
	return out
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
