// Package ir provides the foundational types shared by every stage of the
// lizard pipeline.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal, so it stays the bottom layer of
// the dependency graph.
//
// It defines:
//   - Alphabet and GrammarString, the symbolic input of the automaton
//   - FailureCode and AttemptError, the per-string error taxonomy
//   - IRValue and MarshalCanonical, RFC 8785 canonical JSON used for
//     content-addressed identity (ConfigHash, StringID, BucketID)
//
// Key design constraints:
//   - NO float types in canonical values; floats are rendered as strings by
//     the caller before hashing
//   - Alphabet order is significant: it fixes brute-force enumeration order
//     and the state-to-symbol mapping of the Markov generators
package ir
