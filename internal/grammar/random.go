package grammar

import (
	"fmt"
	"iter"

	"github.com/roach88/lizard/internal/ir"
)

// RandomParams configures Random.
type RandomParams struct {
	Alphabet ir.Alphabet
	Number   int
	Length   int
	// Ratios weights each alphabet symbol in order. Empty means uniform.
	// Weights are normalized by their sum.
	Ratios []float64
	Seed   int64
}

// Random yields Number strings of Length symbols, each symbol drawn
// independently according to Ratios.
func Random(p RandomParams) (iter.Seq[ir.GrammarString], error) {
	if err := validateShape("random", p.Alphabet, p.Number, p.Length); err != nil {
		return nil, err
	}

	weights := p.Ratios
	if len(weights) == 0 {
		weights = make([]float64, p.Alphabet.Size())
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != p.Alphabet.Size() {
		return nil, fmt.Errorf("%w: random: %d ratios for %d symbols", ErrInvalidParams, len(weights), p.Alphabet.Size())
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("%w: random: ratio %d is %v, want > 0", ErrInvalidParams, i, w)
		}
	}
	cum, err := cumulative(weights)
	if err != nil {
		return nil, fmt.Errorf("%w: random: %w", ErrInvalidParams, err)
	}

	symbols := p.Alphabet.Symbols()
	return func(yield func(ir.GrammarString) bool) {
		rng := newRand(p.Seed)
		buf := make([]rune, p.Length)
		for range p.Number {
			for i := range buf {
				buf[i] = symbols[draw(rng, cum)]
			}
			if !yield(ir.GrammarString(buf)) {
				return
			}
		}
	}, nil
}

func validateShape(name string, alphabet ir.Alphabet, number, length int) error {
	if alphabet.Size() == 0 {
		return fmt.Errorf("%w: %s: empty alphabet", ErrInvalidParams, name)
	}
	if number < 0 {
		return fmt.Errorf("%w: %s: negative number %d", ErrInvalidParams, name, number)
	}
	if length < 0 {
		return fmt.Errorf("%w: %s: negative length %d", ErrInvalidParams, name, length)
	}
	return nil
}
