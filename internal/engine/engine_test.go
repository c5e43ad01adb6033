package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/features"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
)

var corner = lizard.Cursor{Tail: 0, Head: 3}

func grid(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Grid(2, 2)
	require.NoError(t, err)
	return m
}

// bowtie is two quads sharing only vertex 0.
func bowtie(t *testing.T) *mesh.Mesh {
	t.Helper()
	points := make([]mesh.Point, 7)
	m, err := mesh.FromVerticesAndFaces(points, [][]mesh.VertexID{{0, 1, 2, 3}, {0, 4, 5, 6}})
	require.NoError(t, err)
	return m
}

func newEngine(t *testing.T, alphabet string, opts ...EngineOption) *Engine {
	t.Helper()
	registry := lizard.DefaultRegistry(ir.MustAlphabet(alphabet))
	opts = append([]EngineOption{WithRunIDGenerator(NewFixedGenerator("run-1", "run-2"))}, opts...)
	e, err := New(grid(t), corner, registry, opts...)
	require.NoError(t, err)
	return e
}

func strs(ss ...string) []ir.GrammarString {
	out := make([]ir.GrammarString, len(ss))
	for i, s := range ss {
		out[i] = ir.GrammarString(s)
	}
	return out
}

func TestEngine_New_RejectsBadSetup(t *testing.T) {
	registry := lizard.DefaultRegistry(ir.MustAlphabet("atp"))

	tests := []struct {
		name   string
		seed   *mesh.Mesh
		cursor lizard.Cursor
		code   RuntimeErrorCode
	}{
		{"nil seed", nil, corner, ErrCodeInvalidSeed},
		{"non-manifold seed", bowtie(t), lizard.Cursor{Tail: 0, Head: 1}, ErrCodeInvalidSeed},
		{"diagonal cursor", grid(t), lizard.Cursor{Tail: 0, Head: 4}, ErrCodeInvalidCursor},
		{"collecting cursor", grid(t), lizard.Cursor{Tail: 0, Head: 3, Polyedge: []mesh.VertexID{3}}, ErrCodeInvalidCursor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.seed, tt.cursor, registry)
			require.Error(t, err)
			assert.True(t, IsSetupError(err))

			var re *RuntimeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestEngine_Run_UnknownSymbol(t *testing.T) {
	e := newEngine(t, "atp")

	res, err := e.Run(context.Background(), strs("x"))
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.False(t, res.Interrupted)
	assert.Equal(t, 1, res.Stats.Attempted)
	assert.Equal(t, 0, res.Stats.Succeeded)
	assert.Equal(t, 1, res.Stats.Failures[ir.CodeUnknownSymbol])
	assert.Equal(t, 0, res.Stats.Survivors)
	assert.Equal(t, 0, res.Stats.UniqueMeshes)
	require.NoError(t, res.Stats.Check())

	require.Len(t, res.Attempts, 1)
	rec := res.Attempts[0]
	assert.Equal(t, ir.CodeUnknownSymbol, rec.Code)
	assert.Equal(t, 'x', rec.Symbol)
	assert.Equal(t, 0, rec.Position)
	assert.Empty(t, rec.Key)
}

func TestEngine_Run_SequenceFollowsInputOrder(t *testing.T) {
	e := newEngine(t, "atp", WithWorkers(4))
	input := strs("t", "tt", "ttt", "tttt", "p", "pp", "x", "atta")

	res, err := e.Run(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, res.Attempts, len(input))

	for _, rec := range res.Attempts {
		want := int64(slices.Index(input, rec.String) + 1)
		assert.Equal(t, want, rec.Seq, string(rec.String))
	}
}

func TestEngine_Run_Accounting(t *testing.T) {
	e := newEngine(t, "atp")

	res, err := e.Run(context.Background(), strs("tttt", "x", "atta", "ppp", "tp", "tttt"))
	require.NoError(t, err)
	s := res.Stats

	assert.Equal(t, 6, s.Generated)
	assert.Equal(t, 5, s.Unique)
	assert.Equal(t, 5, s.Attempted)
	assert.Equal(t, 3, s.Succeeded)
	assert.Equal(t, 1, s.Failures[ir.CodeUnknownSymbol])
	assert.Equal(t, 1, s.Failures[ir.CodeRulePrecondition])
	assert.Equal(t, 3, s.Survivors)
	assert.Equal(t, 2, s.UniqueMeshesPre)
	assert.Equal(t, 2, s.UniqueMeshes)
	assert.Equal(t, 1, s.Duplicates)
	require.NoError(t, s.Check())

	bySeq := make(map[ir.GrammarString]AttemptRecord)
	for _, rec := range res.Attempts {
		bySeq[rec.String] = rec
	}
	assert.Equal(t, int64(1), bySeq["tttt"].Seq)
	assert.Equal(t, int64(5), bySeq["tp"].Seq)
	assert.Equal(t, 2, bySeq["ppp"].Position)
	assert.Equal(t, bySeq["tttt"].Key, bySeq["tp"].Key, "both leave the seed unchanged")
	assert.NotEqual(t, bySeq["tttt"].Key, bySeq["atta"].Key)

	b, ok := res.Pool.Bucket(bySeq["tttt"].Key)
	require.True(t, ok)
	assert.Equal(t, ir.GrammarString("tttt"), b.Claimant().String)
	require.Len(t, b.Duplicates(), 1)
	assert.Equal(t, ir.GrammarString("tp"), b.Duplicates()[0].String)
	assert.NotNil(t, b.Claimant().Mesh)
}

func TestEngine_Run_SeedUntouched(t *testing.T) {
	seed := grid(t)
	before, err := seed.MarshalJSON()
	require.NoError(t, err)

	e, err := New(seed, corner, lizard.DefaultRegistry(ir.MustAlphabet("atpd")))
	require.NoError(t, err)
	_, err = e.Run(context.Background(), strs("atta", "d", "attta"))
	require.NoError(t, err)

	after, err := seed.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestEngine_Run_DeterministicAcrossWorkers(t *testing.T) {
	seq, err := grammar.Brute(ir.MustAlphabet("atpd"), 3)
	require.NoError(t, err)
	batch := slices.Collect(seq)

	run := func(workers int) *Result {
		e := newEngine(t, "atpd", WithWorkers(workers))
		res, err := e.Run(context.Background(), batch)
		require.NoError(t, err)
		return res
	}
	one, many := run(1), run(4)

	assert.Equal(t, one.Stats, many.Stats)
	assert.Equal(t, one.Attempts, many.Attempts)
	assert.Equal(t, one.Pool.Keys(), many.Pool.Keys())
	for _, key := range one.Pool.Keys() {
		a, _ := one.Pool.Bucket(key)
		b, _ := many.Pool.Bucket(key)
		assert.Equal(t, a.Claimant().String, b.Claimant().String, "claimant of %s", key)
		assert.Len(t, b.Members, len(a.Members))
	}
	require.NoError(t, one.Stats.Check())
}

type failingSmoother struct{}

func (failingSmoother) Smooth(*mesh.Mesh) error { return errors.New("no equilibrium") }

func TestEngine_Run_FilterRejections(t *testing.T) {
	e := newEngine(t, "atp", WithSmoother(failingSmoother{}))

	res, err := e.Run(context.Background(), strs("tttt", "atta", "tp"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Succeeded)
	assert.Equal(t, 3, res.Stats.Failures[ir.CodeSmoothingFailed])
	assert.Equal(t, 0, res.Stats.Survivors)
	assert.Equal(t, 2, res.Stats.UniqueMeshesPre)
	assert.Equal(t, 0, res.Stats.UniqueMeshes)
	assert.Equal(t, 0, res.Pool.Len())
	require.NoError(t, res.Stats.Check())

	for _, rec := range res.Attempts {
		assert.NotEmpty(t, rec.Key, "filter rejections are fingerprinted")
		assert.Equal(t, ir.NoPosition, rec.Position)
	}
}

func TestEngine_Run_WithoutSmoothing(t *testing.T) {
	e := newEngine(t, "atp", WithSmoother(failingSmoother{}), WithoutSmoothing())

	res, err := e.Run(context.Background(), strs("tttt"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Survivors)
}

func TestEngine_Run_NeighborhoodFeatures(t *testing.T) {
	e := newEngine(t, "atp", WithFeatures(features.Options{Neighborhood: true}, features.Decimals(2)))

	res, err := e.Run(context.Background(), strs("tttt"))
	require.NoError(t, err)
	require.Len(t, res.Attempts, 1)

	v, err := features.RevertKey(res.Attempts[0].Key)
	require.NoError(t, err)
	assert.Len(t, v, features.GlobalCount+2*(len(features.TopoIndices)+2))
	assert.Contains(t, res.Attempts[0].Key, "9.00,12.00")
}

func TestEngine_Run_Interrupted(t *testing.T) {
	e := newEngine(t, "atp")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx, strs("tttt", "atta", "tp"))
	require.NoError(t, err)

	assert.True(t, res.Interrupted)
	assert.Equal(t, 0, res.Stats.Attempted)
	assert.Equal(t, 3, res.Stats.Unique)
	assert.Empty(t, res.Attempts)
	require.NoError(t, res.Stats.Check())
}

func TestEngine_RunCollection(t *testing.T) {
	e := newEngine(t, "atp")
	c, err := grammar.Collect(context.Background(),
		grammar.Source{Name: "given", Seq: grammar.Given("tttt", "tp")},
		grammar.Source{Name: "again", Seq: grammar.Given("tttt")},
	)
	require.NoError(t, err)

	res, err := e.RunCollection(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Generated)
	assert.Equal(t, 2, res.Stats.Unique)
	assert.Equal(t, 1, res.Stats.UniqueMeshes)
	assert.Equal(t, 1, res.Stats.Duplicates)
}

func TestEngine_Run_LogsRejections(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newEngine(t, "atp", WithLogger(logger))

	_, err := e.Run(context.Background(), strs("x"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "batch started")
	assert.Contains(t, out, "attempt rejected")
	assert.Contains(t, out, "code=UNKNOWN_SYMBOL")
	assert.Contains(t, out, "run_id=run-1")
}
