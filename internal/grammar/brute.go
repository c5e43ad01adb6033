package grammar

import (
	"fmt"
	"iter"

	"github.com/roach88/lizard/internal/ir"
)

// Brute enumerates every string of the given length over the alphabet, in
// lexicographic order by alphabet order. A length of zero yields the empty
// string once.
func Brute(alphabet ir.Alphabet, length int) (iter.Seq[ir.GrammarString], error) {
	if alphabet.Size() == 0 {
		return nil, fmt.Errorf("%w: brute: empty alphabet", ErrInvalidParams)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: brute: negative length %d", ErrInvalidParams, length)
	}

	symbols := alphabet.Symbols()
	return func(yield func(ir.GrammarString) bool) {
		digits := make([]int, length)
		buf := make([]rune, length)
		for {
			for i, d := range digits {
				buf[i] = symbols[d]
			}
			if !yield(ir.GrammarString(buf)) {
				return
			}

			// Odometer: last position turns fastest.
			i := length - 1
			for ; i >= 0; i-- {
				digits[i]++
				if digits[i] < len(symbols) {
					break
				}
				digits[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}, nil
}

// BruteCount returns |alphabet|^length, the number of strings Brute yields.
func BruteCount(alphabet ir.Alphabet, length int) int {
	n := 1
	for range length {
		n *= alphabet.Size()
	}
	return n
}
