package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lizard/internal/relax"
)

//go:embed schema.cue
var schemaCUE string

// DefaultExportPrefix names exported meshes when the configuration does not.
const DefaultExportPrefix = "lizard"

// Config is a decoded run configuration. Pointer fields are optional;
// Load fills them with defaults.
type Config struct {
	Alphabet     string     `json:"alphabet"`
	SeedMesh     SeedMesh   `json:"seed_mesh"`
	Cursor       *Cursor    `json:"cursor,omitempty"`
	Workers      int        `json:"workers,omitempty"`
	Timeout      string     `json:"timeout,omitempty"`
	ExportPrefix string     `json:"export_prefix,omitempty"`
	Features     Features   `json:"features"`
	Filter       Filter     `json:"filter"`
	Generators   Generators `json:"generators"`
}

// SeedMesh is either a grid or an explicit vertex/face list.
type SeedMesh struct {
	Grid     *Grid       `json:"grid,omitempty"`
	Vertices [][]float64 `json:"vertices,omitempty"`
	Faces    [][]int     `json:"faces,omitempty"`
}

// Grid is an nx by ny grid seed.
type Grid struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

// Cursor is an explicit starting edge tail->head.
type Cursor struct {
	Tail int `json:"tail"`
	Head int `json:"head"`
}

// Features configures the fingerprint.
type Features struct {
	Neighborhood bool `json:"neighborhood,omitempty"`
	Decimals     *int `json:"decimals,omitempty"`
}

// Filter configures the validity filter.
type Filter struct {
	Smoothing     *bool   `json:"smoothing,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
}

// Generators lists the string sources of a run. Sources run in the order
// of the fields below.
type Generators struct {
	Given        []string      `json:"given,omitempty"`
	Brute        *Brute        `json:"brute,omitempty"`
	Random       *Random       `json:"random,omitempty"`
	Structured   *Structured   `json:"structured,omitempty"`
	Markov       *Markov       `json:"markov,omitempty"`
	MarkovBudget *MarkovBudget `json:"markov_budget,omitempty"`
}

// Brute enumerates every string of Length.
type Brute struct {
	Length int `json:"length"`
}

// Random draws symbols independently.
type Random struct {
	Number int       `json:"number"`
	Length int       `json:"length"`
	Ratios []float64 `json:"ratios,omitempty"`
	Seed   int64     `json:"seed,omitempty"`
}

// Structured draws polyedge-shaped strings.
type Structured struct {
	Number  int                `json:"number"`
	Length  int                `json:"length"`
	Seed    int64              `json:"seed,omitempty"`
	Symbols *StructuredSymbols `json:"symbols,omitempty"`
}

// StructuredSymbols overrides the toggle, extend and hold symbols.
type StructuredSymbols struct {
	Toggle string `json:"toggle,omitempty"`
	Extend string `json:"extend,omitempty"`
	Hold   string `json:"hold,omitempty"`
}

// Markov walks a Markov chain over Symbols.
type Markov struct {
	Symbols    string      `json:"symbols"`
	Number     int         `json:"number"`
	Length     int         `json:"length"`
	Init       []float64   `json:"init,omitempty"`
	Transition [][]float64 `json:"transition"`
	Seed       int64       `json:"seed,omitempty"`
}

// MarkovBudget composes sentences of Markov words.
type MarkovBudget struct {
	Symbols             string      `json:"symbols"`
	Sentences           int         `json:"sentences"`
	Words               int         `json:"words"`
	Characters          int         `json:"characters"`
	Init                []float64   `json:"init,omitempty"`
	Transition          [][]float64 `json:"transition"`
	Seed                int64       `json:"seed,omitempty"`
	StopState           *int        `json:"stop_state,omitempty"`
	Marker              string      `json:"marker,omitempty"`
	BoundaryProbability *float64    `json:"boundary_probability,omitempty"`
	ForceFinalBoundary  *bool       `json:"force_final_boundary,omitempty"`
}

// Load reads, validates and defaults the configuration at path. The
// format follows the extension: .cue, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse is Load on an in-memory document; filename selects the format and
// appears in error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	var doc cue.Value
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".cue":
		doc = ctx.CompileBytes(data, cue.Filename(filename))
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &Error{Field: "yaml", Message: filename, Err: err}
		}
		doc = ctx.Encode(raw)
	default:
		return nil, &Error{Field: "file", Message: fmt.Sprintf("unsupported config format %q (want .cue, .yaml or .yml)", ext)}
	}
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var c Config
	if err := v.Decode(&c); err != nil {
		return nil, formatCUEError(err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.ExportPrefix == "" {
		c.ExportPrefix = DefaultExportPrefix
	}
	if c.Filter.Smoothing == nil {
		on := true
		c.Filter.Smoothing = &on
	}
	if c.Filter.MaxIterations == 0 {
		c.Filter.MaxIterations = relax.DefaultMaxIterations
	}
	if c.Filter.Tolerance == 0 {
		c.Filter.Tolerance = relax.DefaultTolerance
	}
	if b := c.Generators.MarkovBudget; b != nil {
		if b.BoundaryProbability == nil {
			p := 0.5
			b.BoundaryProbability = &p
		}
		if b.ForceFinalBoundary == nil {
			force := true
			b.ForceFinalBoundary = &force
		}
	}
}

// TimeoutDuration returns the run deadline, zero when unbounded.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Timeout)
	return d
}
