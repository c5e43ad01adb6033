package config

import (
	"strconv"

	"github.com/roach88/lizard/internal/ir"
)

// Canonical renders the defaulted configuration as an IR object. Floats
// are not allowed in canonical JSON, so they are rendered as shortest
// round-trip decimal strings. Workers and timeout are omitted: they change
// how fast a run finishes, not what it produces.
func (c *Config) Canonical() ir.IRObject {
	obj := ir.IRObject{
		"alphabet":      ir.IRString(c.Alphabet),
		"seed_mesh":     c.SeedMesh.canonical(),
		"export_prefix": ir.IRString(c.ExportPrefix),
		"features":      c.Features.canonical(),
		"filter":        c.Filter.canonical(),
		"generators":    c.Generators.canonical(),
	}
	if c.Cursor != nil {
		obj["cursor"] = ir.IRObject{
			"tail": ir.IRInt(c.Cursor.Tail),
			"head": ir.IRInt(c.Cursor.Head),
		}
	}
	return obj
}

// Hash returns the content hash of Canonical.
func (c *Config) Hash() (string, error) {
	return ir.ConfigHash(c.Canonical())
}

// CanonicalJSON returns the canonical JSON of the configuration.
func (c *Config) CanonicalJSON() (string, error) {
	data, err := ir.MarshalCanonical(c.Canonical())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func float(x float64) ir.IRString {
	return ir.IRString(strconv.FormatFloat(x, 'g', -1, 64))
}

func floats(xs []float64) ir.IRArray {
	out := make(ir.IRArray, len(xs))
	for i, x := range xs {
		out[i] = float(x)
	}
	return out
}

func matrix(rows [][]float64) ir.IRArray {
	out := make(ir.IRArray, len(rows))
	for i, row := range rows {
		out[i] = floats(row)
	}
	return out
}

func (s SeedMesh) canonical() ir.IRObject {
	if s.Grid != nil {
		return ir.IRObject{"grid": ir.IRObject{
			"nx": ir.IRInt(s.Grid.NX),
			"ny": ir.IRInt(s.Grid.NY),
		}}
	}
	faces := make(ir.IRArray, len(s.Faces))
	for i, f := range s.Faces {
		faces[i] = ir.IntArray(f)
	}
	return ir.IRObject{
		"vertices": matrix(s.Vertices),
		"faces":    faces,
	}
}

func (f Features) canonical() ir.IRObject {
	obj := ir.IRObject{"neighborhood": ir.IRBool(f.Neighborhood)}
	if f.Decimals != nil {
		obj["decimals"] = ir.IRInt(*f.Decimals)
	}
	return obj
}

func (f Filter) canonical() ir.IRObject {
	smoothing := f.Smoothing == nil || *f.Smoothing
	return ir.IRObject{
		"smoothing":      ir.IRBool(smoothing),
		"max_iterations": ir.IRInt(f.MaxIterations),
		"tolerance":      float(f.Tolerance),
	}
}

func (g Generators) canonical() ir.IRObject {
	obj := ir.IRObject{}
	if g.Given != nil {
		obj["given"] = ir.StringArray(g.Given)
	}
	if b := g.Brute; b != nil {
		obj["brute"] = ir.IRObject{"length": ir.IRInt(b.Length)}
	}
	if r := g.Random; r != nil {
		o := ir.IRObject{
			"number": ir.IRInt(r.Number),
			"length": ir.IRInt(r.Length),
			"seed":   ir.IRInt(r.Seed),
		}
		if r.Ratios != nil {
			o["ratios"] = floats(r.Ratios)
		}
		obj["random"] = o
	}
	if s := g.Structured; s != nil {
		syms, _ := structuredSymbols(s.Symbols)
		obj["structured"] = ir.IRObject{
			"number":  ir.IRInt(s.Number),
			"length":  ir.IRInt(s.Length),
			"seed":    ir.IRInt(s.Seed),
			"symbols": ir.IRString(string([]rune{syms.Toggle, syms.Extend, syms.Hold})),
		}
	}
	if m := g.Markov; m != nil {
		o := ir.IRObject{
			"symbols":    ir.IRString(m.Symbols),
			"number":     ir.IRInt(m.Number),
			"length":     ir.IRInt(m.Length),
			"transition": matrix(m.Transition),
			"seed":       ir.IRInt(m.Seed),
		}
		if m.Init != nil {
			o["init"] = floats(m.Init)
		}
		obj["markov"] = o
	}
	if b := g.MarkovBudget; b != nil {
		o := ir.IRObject{
			"symbols":    ir.IRString(b.Symbols),
			"sentences":  ir.IRInt(b.Sentences),
			"words":      ir.IRInt(b.Words),
			"characters": ir.IRInt(b.Characters),
			"transition": matrix(b.Transition),
			"seed":       ir.IRInt(b.Seed),
			"marker":     ir.IRString(b.Marker),
		}
		if b.Init != nil {
			o["init"] = floats(b.Init)
		}
		if b.StopState != nil {
			o["stop_state"] = ir.IRInt(*b.StopState)
		}
		if b.BoundaryProbability != nil {
			o["boundary_probability"] = float(*b.BoundaryProbability)
		}
		if b.ForceFinalBoundary != nil {
			o["force_final_boundary"] = ir.IRBool(*b.ForceFinalBoundary)
		}
		obj["markov_budget"] = o
	}
	return obj
}
