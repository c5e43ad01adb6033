package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
)

func TestGridCorner_MatchesCornerCursor(t *testing.T) {
	for _, nx := range []int{1, 2, 3} {
		m := Grid(t, nx, 2)
		tail, head, err := lizard.CornerCursor(m)
		require.NoError(t, err)
		assert.Equal(t, GridCorner(nx), lizard.Cursor{Tail: tail, Head: head}, "nx=%d", nx)
	}
}

func TestBowtie_IsNotManifold(t *testing.T) {
	assert.False(t, Bowtie(t).IsManifold())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []ir.GrammarString{"at", "p"}, Strings("at", "p"))
	assert.Empty(t, Strings())
}
