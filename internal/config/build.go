package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/features"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
	"github.com/roach88/lizard/internal/relax"
)

// Validate checks what the schema cannot express. Every generator is
// constructed once so that its parameter errors surface here. Given
// strings are not checked against the alphabet: a foreign symbol fails
// its own string at replay time.
func (c *Config) Validate() error {
	if _, err := c.ParseAlphabet(); err != nil {
		return err
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fieldError("timeout", err)
		}
		if d <= 0 {
			return &Error{Field: "timeout", Message: fmt.Sprintf("must be positive, got %s", c.Timeout)}
		}
	}
	sources, err := c.Sources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return &Error{Field: "generators", Message: "at least one generator is required"}
	}

	m, err := c.Mesh()
	if err != nil {
		return err
	}
	if _, err := c.Start(m); err != nil {
		return err
	}
	return nil
}

// ParseAlphabet returns the configured alphabet.
func (c *Config) ParseAlphabet() (ir.Alphabet, error) {
	a, err := ir.NewAlphabet(c.Alphabet)
	if err != nil {
		return ir.Alphabet{}, fieldError("alphabet", err)
	}
	return a, nil
}

// Registry returns the reference rules for the configured alphabet.
func (c *Config) Registry() (*lizard.Registry, error) {
	a, err := c.ParseAlphabet()
	if err != nil {
		return nil, err
	}
	return lizard.DefaultRegistry(a), nil
}

// Mesh builds the seed mesh.
func (c *Config) Mesh() (*mesh.Mesh, error) {
	sm := c.SeedMesh
	if sm.Grid != nil {
		m, err := mesh.Grid(sm.Grid.NX, sm.Grid.NY)
		if err != nil {
			return nil, fieldError("seed_mesh.grid", err)
		}
		return m, nil
	}

	points := make([]mesh.Point, len(sm.Vertices))
	for i, xyz := range sm.Vertices {
		if len(xyz) != 3 {
			return nil, &Error{Field: "seed_mesh.vertices", Message: fmt.Sprintf("vertex %d has %d coordinates, want 3", i, len(xyz))}
		}
		points[i] = mesh.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}
	faces := make([][]mesh.VertexID, len(sm.Faces))
	for i, face := range sm.Faces {
		faces[i] = make([]mesh.VertexID, len(face))
		for k, v := range face {
			faces[i][k] = mesh.VertexID(v)
		}
	}
	m, err := mesh.FromVerticesAndFaces(points, faces)
	if err != nil {
		return nil, fieldError("seed_mesh", err)
	}
	if err := m.CheckManifold(); err != nil {
		return nil, fieldError("seed_mesh", err)
	}
	return m, nil
}

// Start returns the starting cursor on m: the configured edge, or the
// boundary corner when none is configured.
func (c *Config) Start(m *mesh.Mesh) (lizard.Cursor, error) {
	if c.Cursor == nil {
		tail, head, err := lizard.CornerCursor(m)
		if err != nil {
			return lizard.Cursor{}, fieldError("cursor", err)
		}
		return lizard.Cursor{Tail: tail, Head: head}, nil
	}
	tail, head := mesh.VertexID(c.Cursor.Tail), mesh.VertexID(c.Cursor.Head)
	if !m.HasEdge(tail, head) {
		return lizard.Cursor{}, &Error{
			Field:   "cursor",
			Message: fmt.Sprintf("%d->%d is not an edge of the seed mesh", tail, head),
			Err:     mesh.ErrNotFound,
		}
	}
	return lizard.Cursor{Tail: tail, Head: head}, nil
}

// Precision returns the fingerprint key precision.
func (c *Config) Precision() features.Precision {
	if c.Features.Decimals == nil {
		return features.PrecisionInteger
	}
	return features.Decimals(*c.Features.Decimals)
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions() []engine.EngineOption {
	opts := []engine.EngineOption{
		engine.WithFeatures(features.Options{Neighborhood: c.Features.Neighborhood}, c.Precision()),
	}
	if c.Workers > 0 {
		opts = append(opts, engine.WithWorkers(c.Workers))
	}
	if c.Filter.Smoothing != nil && !*c.Filter.Smoothing {
		opts = append(opts, engine.WithoutSmoothing())
	} else {
		r := relax.New()
		r.MaxIterations = c.Filter.MaxIterations
		r.Tolerance = c.Filter.Tolerance
		opts = append(opts, engine.WithSmoother(r))
	}
	return opts
}

// Sources builds the configured generators in declaration order: given,
// brute, random, structured, markov, markov_budget.
func (c *Config) Sources() ([]grammar.Source, error) {
	alphabet, err := c.ParseAlphabet()
	if err != nil {
		return nil, err
	}
	g := c.Generators

	var sources []grammar.Source
	add := func(name string, build func() (grammar.Source, error)) error {
		src, err := build()
		if err != nil {
			return fieldError("generators."+name, err)
		}
		src.Name = name
		sources = append(sources, src)
		return nil
	}

	if g.Given != nil {
		sources = append(sources, grammar.Source{Name: "given", Seq: grammar.Given(g.Given...)})
	}
	if b := g.Brute; b != nil {
		if err := add("brute", func() (grammar.Source, error) {
			seq, err := grammar.Brute(alphabet, b.Length)
			return grammar.Source{Seq: seq}, err
		}); err != nil {
			return nil, err
		}
	}
	if r := g.Random; r != nil {
		if err := add("random", func() (grammar.Source, error) {
			seq, err := grammar.Random(grammar.RandomParams{
				Alphabet: alphabet,
				Number:   r.Number,
				Length:   r.Length,
				Ratios:   r.Ratios,
				Seed:     r.Seed,
			})
			return grammar.Source{Seq: seq}, err
		}); err != nil {
			return nil, err
		}
	}
	if s := g.Structured; s != nil {
		if err := add("structured", func() (grammar.Source, error) {
			syms, err := structuredSymbols(s.Symbols)
			if err != nil {
				return grammar.Source{}, err
			}
			seq, err := grammar.Structured(grammar.StructuredParams{
				Alphabet: alphabet,
				Number:   s.Number,
				Length:   s.Length,
				Seed:     s.Seed,
				Symbols:  syms,
			})
			return grammar.Source{Seq: seq}, err
		}); err != nil {
			return nil, err
		}
	}
	if m := g.Markov; m != nil {
		if err := add("markov", func() (grammar.Source, error) {
			seq, err := grammar.Markov(grammar.MarkovParams{
				Alphabet:   alphabet,
				Symbols:    []rune(m.Symbols),
				Number:     m.Number,
				Length:     m.Length,
				Init:       m.Init,
				Transition: m.Transition,
				Seed:       m.Seed,
			})
			return grammar.Source{Seq: seq}, err
		}); err != nil {
			return nil, err
		}
	}
	if b := g.MarkovBudget; b != nil {
		if err := add("markov_budget", func() (grammar.Source, error) {
			var marker rune
			if b.Marker != "" {
				marker = []rune(b.Marker)[0]
			}
			p := grammar.BudgetParams{
				Alphabet:   alphabet,
				Symbols:    []rune(b.Symbols),
				Sentences:  b.Sentences,
				Words:      b.Words,
				Characters: b.Characters,
				Init:       b.Init,
				Transition: b.Transition,
				Seed:       b.Seed,
				StopState:  grammar.NoStopState,
				Marker:     marker,
			}
			if b.StopState != nil {
				p.StopState = *b.StopState
			}
			if b.BoundaryProbability != nil {
				p.BoundaryProbability = *b.BoundaryProbability
			}
			if b.ForceFinalBoundary != nil {
				p.ForceFinalBoundary = *b.ForceFinalBoundary
			}
			seq, err := grammar.MarkovBudget(p)
			return grammar.Source{Seq: seq}, err
		}); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

func structuredSymbols(s *StructuredSymbols) (grammar.Symbols, error) {
	syms := grammar.DefaultSymbols
	if s == nil {
		return syms, nil
	}
	for _, o := range []struct {
		value string
		dst   *rune
	}{
		{s.Toggle, &syms.Toggle},
		{s.Extend, &syms.Extend},
		{s.Hold, &syms.Hold},
	} {
		if o.value == "" {
			continue
		}
		r := []rune(o.value)
		if len(r) != 1 {
			return grammar.Symbols{}, errors.New("structured symbols must be single characters")
		}
		*o.dst = r[0]
	}
	return syms, nil
}
