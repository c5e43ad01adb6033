package grammar

import (
	"fmt"
	"iter"

	"github.com/roach88/lizard/internal/ir"
)

// Budget defaults.
const (
	DefaultMarker              = 'a'
	DefaultBoundaryProbability = 0.5
	NoStopState                = -1
)

// BudgetParams configures MarkovBudget.
type BudgetParams struct {
	Alphabet   ir.Alphabet
	Symbols    []rune
	Sentences  int
	Words      int
	Characters int
	Init       []float64
	Transition [][]float64
	Seed       int64

	// StopState is the index of the state that ends a word early; the
	// state itself is not emitted. NoStopState, or any negative value,
	// disables it.
	StopState int

	// Marker wraps boundary words. Zero means DefaultMarker.
	Marker rune
	// BoundaryProbability is the chance a word is wrapped.
	BoundaryProbability float64
	// ForceFinalBoundary always wraps the last word of a sentence.
	ForceFinalBoundary bool
}

// MarkovBudget yields Sentences strings, each the concatenation of Words
// Markov words of at most Characters symbols. A wrapped word keeps its
// length: its first and last symbols are replaced by the marker, so it
// becomes marker + word[:len-2] + marker, or two markers when the word is
// shorter than two symbols.
func MarkovBudget(p BudgetParams) (iter.Seq[ir.GrammarString], error) {
	if err := validateShape("markov_budget", p.Alphabet, p.Sentences, p.Characters); err != nil {
		return nil, err
	}
	if p.Words < 0 {
		return nil, fmt.Errorf("%w: markov_budget: negative words %d", ErrInvalidParams, p.Words)
	}
	if p.BoundaryProbability < 0 || p.BoundaryProbability > 1 {
		return nil, fmt.Errorf("%w: markov_budget: boundary probability %v outside [0, 1]", ErrInvalidParams, p.BoundaryProbability)
	}
	marker := p.Marker
	if marker == 0 {
		marker = DefaultMarker
	}
	if err := p.Alphabet.ValidateSymbols("markov_budget marker", []rune{marker}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	c, err := newChain("markov_budget", p.Alphabet, p.Symbols, p.Init, p.Transition, p.StopState)
	if err != nil {
		return nil, err
	}

	return func(yield func(ir.GrammarString) bool) {
		rng := newRand(p.Seed)
		for range p.Sentences {
			var sentence []rune
			for j := range p.Words {
				word := c.walk(rng, p.Characters)
				x := rng.Float64()
				if x < p.BoundaryProbability || (j == p.Words-1 && p.ForceFinalBoundary) {
					word = wrap(word, marker)
				}
				sentence = append(sentence, word...)
			}
			if !yield(ir.GrammarString(sentence)) {
				return
			}
		}
	}, nil
}

func wrap(word []rune, marker rune) []rune {
	if len(word) < 2 {
		return []rune{marker, marker}
	}
	out := make([]rune, 0, len(word))
	out = append(out, marker)
	out = append(out, word[:len(word)-2]...)
	return append(out, marker)
}
