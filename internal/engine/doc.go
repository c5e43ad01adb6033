// Package engine runs a batch of grammar strings through the pipeline.
//
// For each unique string, in parallel and independently:
//
//	automaton replay -> orientation unification -> fingerprint -> validity filter
//
// Every attempt works on a private copy of the seed mesh, which is never
// written. Workers fill private partial pools; a single merge step combines
// them into the candidate pool. Results do not depend on the number of
// workers or on scheduling.
//
// Every failure is attributed to its string and counted by category; none
// stops the batch. Stats.Check verifies that every attempted string is
// accounted for exactly once.
package engine
