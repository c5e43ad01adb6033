package grammar

import (
	"iter"
	"slices"

	"github.com/roach88/lizard/internal/ir"
)

// Given yields the strings exactly as supplied. They are not checked
// against any alphabet; unknown symbols surface when a string is replayed.
func Given(strs ...string) iter.Seq[ir.GrammarString] {
	strs = slices.Clone(strs)
	return func(yield func(ir.GrammarString) bool) {
		for _, s := range strs {
			if !yield(ir.GrammarString(s)) {
				return
			}
		}
	}
}
