package grammar

import (
	"fmt"
	"iter"
	"math/rand"

	"github.com/roach88/lizard/internal/ir"
)

// MarkovParams configures Markov.
type MarkovParams struct {
	Alphabet ir.Alphabet
	// Symbols maps state i to Symbols[i]. Empty means alphabet order.
	Symbols []rune
	Number  int
	Length  int
	// Init is the distribution of the first state. Nil means the
	// stationary distribution of Transition.
	Init []float64
	// Transition rows are renormalized to sum to 1.
	Transition [][]float64
	Seed       int64
}

// Markov yields Number strings of Length symbols, each a walk of the chain.
func Markov(p MarkovParams) (iter.Seq[ir.GrammarString], error) {
	if err := validateShape("markov", p.Alphabet, p.Number, p.Length); err != nil {
		return nil, err
	}
	c, err := newChain("markov", p.Alphabet, p.Symbols, p.Init, p.Transition, NoStopState)
	if err != nil {
		return nil, err
	}

	return func(yield func(ir.GrammarString) bool) {
		rng := newRand(p.Seed)
		for range p.Number {
			if !yield(ir.GrammarString(c.walk(rng, p.Length))) {
				return
			}
		}
	}, nil
}

// chain is a validated, normalized Markov chain ready for sampling.
type chain struct {
	symbols []rune
	init    []float64   // cumulative
	rows    [][]float64 // cumulative
	// stop is the index of the state that ends a walk, or -1.
	stop int
}

// newChain validates the chain. A non-negative stop designates the state
// that ends a walk; it must index symbols.
func newChain(name string, alphabet ir.Alphabet, symbols []rune, init []float64, transition [][]float64, stop int) (*chain, error) {
	if len(symbols) == 0 {
		symbols = alphabet.Symbols()
	}
	if err := alphabet.ValidateSymbols(name, symbols); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	n := len(symbols)
	if stop >= n {
		return nil, fmt.Errorf("%w: %s: stop state %d outside [0, %d)", ErrInvalidParams, name, stop, n)
	}
	c := &chain{symbols: symbols, stop: max(stop, NoStopState)}

	if len(transition) != n {
		return nil, fmt.Errorf("%w: %s: transition has %d rows, want %d", ErrInvalidParams, name, len(transition), n)
	}
	for i, row := range transition {
		if len(row) != n {
			return nil, fmt.Errorf("%w: %s: transition row %d has %d entries, want %d", ErrInvalidParams, name, i, len(row), n)
		}
		cum, err := cumulative(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: transition row %d: %w", ErrInvalidParams, name, i, err)
		}
		c.rows = append(c.rows, cum)
	}

	if init == nil {
		normalized := make([][]float64, n)
		for i, row := range transition {
			normalized[i], _ = normalize(row)
		}
		eq, err := Equilibrium(normalized)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParams, name, err)
		}
		init = eq
	}
	if len(init) != n {
		return nil, fmt.Errorf("%w: %s: init has %d entries, want %d", ErrInvalidParams, name, len(init), n)
	}
	cum, err := cumulative(init)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: init: %w", ErrInvalidParams, name, err)
	}
	c.init = cum
	return c, nil
}

// walk samples up to length states and renders them as symbols. Reaching
// the stop state ends the walk; the stop state itself is not emitted.
func (c *chain) walk(rng *rand.Rand, length int) []rune {
	out := make([]rune, 0, length)
	if length == 0 {
		return out
	}
	state := draw(rng, c.init)
	for {
		if state == c.stop {
			return out
		}
		out = append(out, c.symbols[state])
		if len(out) == length {
			return out
		}
		state = draw(rng, c.rows[state])
	}
}
