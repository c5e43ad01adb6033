package lizard

import (
	"fmt"
	"slices"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/mesh"
)

// Rule is one rewriting step of the automaton. Apply must validate every
// precondition before it mutates m; a returned error means m is unchanged.
type Rule interface {
	Name() string
	Apply(m *mesh.Mesh, c Cursor) (Cursor, Mutation, error)
}

// Registry maps alphabet symbols to rules.
type Registry struct {
	alphabet ir.Alphabet
	rules    map[rune]Rule
}

// NewRegistry returns an empty registry for alphabet.
func NewRegistry(alphabet ir.Alphabet) *Registry {
	return &Registry{alphabet: alphabet, rules: make(map[rune]Rule)}
}

// DefaultRegistry installs the reference rules for every reference symbol
// the alphabet contains.
func DefaultRegistry(alphabet ir.Alphabet) *Registry {
	r := NewRegistry(alphabet)
	for symbol, rule := range ReferenceRules() {
		if alphabet.Contains(symbol) {
			r.rules[symbol] = rule
		}
	}
	return r
}

// ReferenceRules returns a fresh map of the reference rule set.
func ReferenceRules() map[rune]Rule {
	return map[rune]Rule{
		't': Turn{},
		'p': Pivot{},
		'a': Add{},
		'd': Delete{},
	}
}

// Register binds symbol to rule, replacing any previous binding.
func (r *Registry) Register(symbol rune, rule Rule) error {
	if !r.alphabet.Contains(symbol) {
		return fmt.Errorf("register %q: symbol is not in alphabet %q", symbol, r.alphabet.String())
	}
	if rule == nil {
		return fmt.Errorf("register %q: nil rule", symbol)
	}
	r.rules[symbol] = rule
	return nil
}

// Lookup returns the rule bound to symbol. Symbols outside the alphabet
// never resolve.
func (r *Registry) Lookup(symbol rune) (Rule, bool) {
	if !r.alphabet.Contains(symbol) {
		return nil, false
	}
	rule, ok := r.rules[symbol]
	return rule, ok
}

// Alphabet returns the registry's alphabet.
func (r *Registry) Alphabet() ir.Alphabet {
	return r.alphabet
}

// Unbound returns the alphabet symbols without a rule, in alphabet order.
func (r *Registry) Unbound() []rune {
	var out []rune
	for _, s := range r.alphabet.Symbols() {
		if _, ok := r.rules[s]; !ok {
			out = append(out, s)
		}
	}
	return slices.Clip(out)
}
