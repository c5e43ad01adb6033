// Package grammar generates candidate grammar strings.
//
// Every generator validates its parameters when called and returns a lazy,
// finite sequence. Randomized generators own a private source seeded from
// their parameters; iterating the same sequence twice yields the same
// strings, and concurrent generators never share random state.
//
// Collect drains several sources concurrently and merges them into one
// ordered, deduplicated batch.
package grammar
