package grammar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
)

func TestCollectMergesInSourceOrder(t *testing.T) {
	brute, err := Brute(ir.MustAlphabet("tp"), 1)
	require.NoError(t, err)

	c, err := Collect(context.Background(),
		Source{Name: "given", Seq: Given("attta", "t", "attta")},
		Source{Name: "brute", Seq: brute},
		Source{Name: "more", Seq: Given("p", "d")},
	)
	require.NoError(t, err)

	assert.Equal(t, 7, c.Generated)
	assert.Equal(t, []ir.GrammarString{"attta", "t", "p", "d"}, c.Unique)
	assert.Equal(t, map[string]int{"given": 3, "brute": 2, "more": 2}, c.PerSource)
	assert.InDelta(t, 4.0/7, c.UniqueRatio(), 1e-12)
}

func TestCollectIsDeterministic(t *testing.T) {
	build := func() []Source {
		var sources []Source
		for seed := range int64(8) {
			seq, err := Random(RandomParams{Alphabet: ir.MustAlphabet("atp"), Number: 100, Length: 4, Seed: seed})
			require.NoError(t, err)
			sources = append(sources, Source{Name: "random", Seq: seq})
		}
		return sources
	}

	first, err := Collect(context.Background(), build()...)
	require.NoError(t, err)
	second, err := Collect(context.Background(), build()...)
	require.NoError(t, err)

	assert.Equal(t, 800, first.Generated)
	assert.Equal(t, 800, first.PerSource["random"])
	assert.Equal(t, first.Unique, second.Unique)
	assert.LessOrEqual(t, len(first.Unique), 81)
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, Source{Name: "given", Seq: Given("a")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectEmpty(t *testing.T) {
	c, err := Collect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.Generated)
	assert.Empty(t, c.Unique)
	assert.Zero(t, c.UniqueRatio())
}
