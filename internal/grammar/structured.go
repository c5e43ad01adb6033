package grammar

import (
	"fmt"
	"iter"

	"github.com/roach88/lizard/internal/ir"
)

// Symbols names the three roles of the structured generator.
type Symbols struct {
	// Toggle opens and closes a polyedge run.
	Toggle rune
	// Extend lengthens the run.
	Extend rune
	// Hold changes direction without lengthening the run.
	Hold rune
}

// DefaultSymbols are the add, turn and pivot symbols of the reference rules.
var DefaultSymbols = Symbols{Toggle: 'a', Extend: 't', Hold: 'p'}

// StructuredParams configures Structured.
type StructuredParams struct {
	Alphabet ir.Alphabet
	Number   int
	Length   int
	Seed     int64
	// Symbols defaults to DefaultSymbols when zero.
	Symbols Symbols
}

// Structured yields strings that tend to open a polyedge, extend it and
// close it again. An open run is force-closed at the final position.
func Structured(p StructuredParams) (iter.Seq[ir.GrammarString], error) {
	if err := validateShape("structured", p.Alphabet, p.Number, p.Length); err != nil {
		return nil, err
	}
	syms := p.Symbols
	if syms == (Symbols{}) {
		syms = DefaultSymbols
	}
	if err := p.Alphabet.ValidateSymbols("structured", []rune{syms.Toggle, syms.Extend, syms.Hold}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return func(yield func(ir.GrammarString) bool) {
		rng := newRand(p.Seed)
		buf := make([]rune, p.Length)
		for range p.Number {
			run := 0
			for i := range buf {
				if i == p.Length-1 && run != 0 {
					buf[i] = syms.Toggle
					run = 0
					continue
				}

				x := rng.Float64()
				switch {
				case run == 0:
					switch {
					case x < 0.33:
						buf[i] = syms.Extend
					case x < 0.67:
						buf[i] = syms.Hold
					default:
						buf[i] = syms.Toggle
						run = 1
					}
				case run == 1:
					// A single-vertex run may not close yet.
					if x < 0.5 {
						buf[i] = syms.Extend
						run = 2
					} else {
						buf[i] = syms.Hold
					}
				default:
					switch {
					case x < 0.4:
						buf[i] = syms.Extend
						run++
					case x < 0.8:
						buf[i] = syms.Hold
					default:
						buf[i] = syms.Toggle
						run = 0
					}
				}
			}
			if !yield(ir.GrammarString(buf)) {
				return
			}
		}
	}, nil
}
