package grammar

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
)

func TestStructuredRunsClose(t *testing.T) {
	p := StructuredParams{
		Alphabet: ir.MustAlphabet("atp"),
		Number:   500,
		Length:   10,
		Seed:     43,
	}
	seq, err := Structured(p)
	require.NoError(t, err)
	strs := slices.Collect(seq)

	assert.Len(t, strs, 500)
	assertClosed(t, p.Alphabet, strs)
	for _, s := range strs {
		assert.Equal(t, 10, s.Len())
		// A run still open before the last position is force-closed, so
		// an odd toggle count means the last symbol opened a fresh run.
		if !strings.HasSuffix(string(s), "a") {
			assert.Zero(t, strings.Count(string(s), "a")%2, "unbalanced toggles in %q", s)
		}
	}

	again, err := Structured(p)
	require.NoError(t, err)
	assert.Equal(t, strs, slices.Collect(again))
}

func TestStructuredCustomSymbols(t *testing.T) {
	seq, err := Structured(StructuredParams{
		Alphabet: ir.MustAlphabet("xyz"),
		Number:   20,
		Length:   6,
		Seed:     1,
		Symbols:  Symbols{Toggle: 'x', Extend: 'y', Hold: 'z'},
	})
	require.NoError(t, err)
	assertClosed(t, ir.MustAlphabet("xyz"), slices.Collect(seq))
}

func TestStructuredRejectsForeignSymbols(t *testing.T) {
	_, err := Structured(StructuredParams{
		Alphabet: ir.MustAlphabet("tp"),
		Number:   1,
		Length:   4,
	})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
