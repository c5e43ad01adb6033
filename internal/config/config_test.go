package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/features"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
)

func TestLoad_CUEAndYAMLAgree(t *testing.T) {
	fromCUE, err := Load(filepath.Join("testdata", "grid.cue"))
	require.NoError(t, err)
	fromYAML, err := Load(filepath.Join("testdata", "grid.yaml"))
	require.NoError(t, err)

	assert.Equal(t, fromCUE.Canonical(), fromYAML.Canonical())

	h1, err := fromCUE.Hash()
	require.NoError(t, err)
	h2, err := fromYAML.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "grid.cue"))
	require.NoError(t, err)

	assert.Equal(t, "grid2", c.ExportPrefix)
	require.NotNil(t, c.Filter.Smoothing)
	assert.True(t, *c.Filter.Smoothing)
	assert.Equal(t, 10000, c.Filter.MaxIterations)
	assert.Equal(t, 1e-7, c.Filter.Tolerance)
	assert.Equal(t, 30*time.Second, c.TimeoutDuration())
	assert.Equal(t, features.Decimals(1), c.Precision())

	b := c.Generators.MarkovBudget
	require.NotNil(t, b)
	assert.Equal(t, 0.5, *b.BoundaryProbability)
	assert.True(t, *b.ForceFinalBoundary)
}

func TestLoad_Sources(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "grid.cue"))
	require.NoError(t, err)

	sources, err := c.Sources()
	require.NoError(t, err)

	var names []string
	for _, s := range sources {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"given", "brute", "random", "structured", "markov", "markov_budget"}, names)

	alphabet, err := c.ParseAlphabet()
	require.NoError(t, err)
	for _, src := range sources {
		for s := range src.Seq {
			assert.NoError(t, alphabet.Validate(s), "source %s", src.Name)
		}
	}
}

func TestLoad_SeedAndCursor(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "grid.cue"))
	require.NoError(t, err)

	m, err := c.Mesh()
	require.NoError(t, err)
	assert.Equal(t, 9, m.NumVertices())

	start, err := c.Start(m)
	require.NoError(t, err)
	assert.Equal(t, lizard.Cursor{Tail: 0, Head: 3}, start)
}

func TestLoad_ExplicitMesh(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "explicit.yaml"))
	require.NoError(t, err)

	m, err := c.Mesh()
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 1, m.NumFaces())

	start, err := c.Start(m)
	require.NoError(t, err)
	assert.Equal(t, lizard.Cursor{Tail: 1, Head: 2}, start)

	assert.False(t, *c.Filter.Smoothing)
	assert.Equal(t, features.PrecisionInteger, c.Precision())
	assert.Equal(t, DefaultExportPrefix, c.ExportPrefix)
	assert.Zero(t, c.TimeoutDuration())
	assert.Len(t, c.EngineOptions(), 2)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "unknown field",
			doc:   "alphabet: atp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {given: [t]}\ncolour: red\n",
			field: "colour",
		},
		{
			name:  "duplicate symbol",
			doc:   "alphabet: att\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {given: [t]}\n",
			field: "alphabet",
		},
		{
			name:  "stop state outside symbols",
			doc:   "alphabet: tp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {markov_budget: {symbols: tp, sentences: 1, words: 1, characters: 2, transition: [[1, 1], [1, 1]], stop_state: 2}}\n",
			field: "generators.markov_budget",
		},
		{
			name:  "no generators",
			doc:   "alphabet: atp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {}\n",
			field: "generators",
		},
		{
			name:  "structured symbol outside alphabet",
			doc:   "alphabet: tp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {structured: {number: 1, length: 3}}\n",
			field: "generators.structured",
		},
		{
			name:  "markov matrix not square",
			doc:   "alphabet: tp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {markov: {symbols: tp, number: 1, length: 2, transition: [[1, 0]]}}\n",
			field: "generators.markov",
		},
		{
			name:  "bad timeout",
			doc:   "alphabet: tp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ntimeout: soon\ngenerators: {given: [t]}\n",
			field: "timeout",
		},
		{
			name:  "cursor not an edge",
			doc:   "alphabet: tp\nseed_mesh: {grid: {nx: 2, ny: 2}}\ncursor: {tail: 0, head: 4}\ngenerators: {given: [t]}\n",
			field: "cursor",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "inline.yaml")
			require.Error(t, err)

			var ce *Error
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Contains(t, ce.Field, tt.field)
		})
	}
}

func TestParse_GivenStringsAreNotValidated(t *testing.T) {
	// Foreign symbols fail per string at replay time, not at load time.
	c, err := Parse([]byte("alphabet: atp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {given: [tx, x]}\n"), "c.yaml")
	require.NoError(t, err)

	sources, err := c.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	var got []ir.GrammarString
	for s := range sources[0].Seq {
		got = append(got, s)
	}
	assert.Equal(t, []ir.GrammarString{"tx", "x"}, got)
}

func TestParse_StopState(t *testing.T) {
	doc := "alphabet: atp\nseed_mesh: {grid: {nx: 1, ny: 1}}\n" +
		"generators: {markov_budget: {symbols: tpa, sentences: 20, words: 2, characters: 5, " +
		"transition: [[2, 2, 1], [2, 2, 1], [2, 2, 1]], seed: 5, stop_state: 2, boundary_probability: 0, force_final_boundary: false}}\n"
	c, err := Parse([]byte(doc), "c.yaml")
	require.NoError(t, err)
	require.NotNil(t, c.Generators.MarkovBudget.StopState)
	assert.Equal(t, 2, *c.Generators.MarkovBudget.StopState)

	sources, err := c.Sources()
	require.NoError(t, err)
	for s := range sources[0].Seq {
		assert.NotContains(t, string(s), "a")
		assert.LessOrEqual(t, s.Len(), 10)
	}

	js, err := c.CanonicalJSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"stop_state":2`)
}

func TestParse_CursorErrorWrapsSentinel(t *testing.T) {
	doc := "alphabet: tp\nseed_mesh: {grid: {nx: 2, ny: 2}}\ncursor: {tail: 0, head: 4}\ngenerators: {given: [t]}\n"
	_, err := Parse([]byte(doc), "inline.yml")
	assert.True(t, errors.Is(err, mesh.ErrNotFound))
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("{}"), "config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestCanonical_IgnoresSpeedSettings(t *testing.T) {
	base := "alphabet: tp\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {given: [t]}\n"
	a, err := Parse([]byte(base), "a.yaml")
	require.NoError(t, err)
	b, err := Parse([]byte(base+"workers: 8\ntimeout: 1m\n"), "b.yaml")
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	js, err := a.CanonicalJSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"tolerance":"1e-07"`)
	assert.Contains(t, js, `"given":["t"]`)
}

func TestRegistry(t *testing.T) {
	c, err := Parse([]byte("alphabet: tpx\nseed_mesh: {grid: {nx: 1, ny: 1}}\ngenerators: {given: [t]}\n"), "c.yaml")
	require.NoError(t, err)

	reg, err := c.Registry()
	require.NoError(t, err)
	_, ok := reg.Lookup('t')
	assert.True(t, ok)
	assert.Equal(t, []rune{'x'}, reg.Unbound())
	assert.Equal(t, ir.MustAlphabet("tpx").String(), reg.Alphabet().String())
}
