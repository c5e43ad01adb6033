package ir

import (
	"fmt"
	"strings"
)

// GrammarString is an ordered, immutable sequence of alphabet symbols.
// Identity is by value.
type GrammarString string

// Runes returns the symbols of the string in order.
func (s GrammarString) Runes() []rune {
	return []rune(string(s))
}

// Len returns the number of symbols (not bytes).
func (s GrammarString) Len() int {
	return len([]rune(string(s)))
}

// Alphabet is an ordered set of distinct symbols, fixed per run.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// NewAlphabet builds an Alphabet from the symbols of s, in order.
// Returns an error if s is empty, contains whitespace, or repeats a symbol.
func NewAlphabet(s string) (Alphabet, error) {
	if s == "" {
		return Alphabet{}, fmt.Errorf("alphabet: must contain at least one symbol")
	}

	a := Alphabet{index: make(map[rune]int)}
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return Alphabet{}, fmt.Errorf("alphabet: whitespace is not a valid symbol")
		}
		if _, dup := a.index[r]; dup {
			return Alphabet{}, fmt.Errorf("alphabet: duplicate symbol %q", r)
		}
		a.index[r] = len(a.symbols)
		a.symbols = append(a.symbols, r)
	}
	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error.
// Use only in tests or with literal inputs.
func MustAlphabet(s string) Alphabet {
	a, err := NewAlphabet(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols.
func (a Alphabet) Size() int {
	return len(a.symbols)
}

// Symbols returns a copy of the symbols in alphabet order.
func (a Alphabet) Symbols() []rune {
	out := make([]rune, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Contains reports whether r is a member of the alphabet.
func (a Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Index returns the position of r in the alphabet, or -1.
func (a Alphabet) Index(r rune) int {
	i, ok := a.index[r]
	if !ok {
		return -1
	}
	return i
}

// String renders the alphabet as its symbols concatenated in order.
func (a Alphabet) String() string {
	var b strings.Builder
	for _, r := range a.symbols {
		b.WriteRune(r)
	}
	return b.String()
}

// Validate checks that every symbol of s is a member of the alphabet.
// The first offending symbol is reported as an UNKNOWN_SYMBOL AttemptError.
func (a Alphabet) Validate(s GrammarString) error {
	for pos, r := range s.Runes() {
		if !a.Contains(r) {
			return NewUnknownSymbolError(r, pos)
		}
	}
	return nil
}

// ValidateSymbols checks that every rune of symbols is in the alphabet.
// Used for up-front configuration checks, where a failure is fatal.
func (a Alphabet) ValidateSymbols(what string, symbols []rune) error {
	for _, r := range symbols {
		if !a.Contains(r) {
			return fmt.Errorf("%s: symbol %q is not in alphabet %q", what, r, a.String())
		}
	}
	return nil
}
