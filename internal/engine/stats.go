package engine

import "github.com/roach88/lizard/internal/ir"

// Stats counts what happened to a batch.
type Stats struct {
	// Generated counts strings produced by the generators, duplicates
	// included.
	Generated int
	// Unique counts distinct strings handed to the engine.
	Unique int
	// Attempted counts strings actually replayed. It is below Unique only
	// when the run was interrupted.
	Attempted int
	// Succeeded counts replays that passed orientation unification.
	Succeeded int
	// Failures counts attempts per failure code.
	Failures map[ir.FailureCode]int
	// Survivors counts attempts that passed the validity filter.
	Survivors int
	// UniqueMeshesPre counts distinct feature keys among successful
	// replays, before the validity filter.
	UniqueMeshesPre int
	// UniqueMeshes counts distinct feature keys among survivors.
	UniqueMeshes int
	// Duplicates counts survivors that are not the claimant of their key.
	Duplicates int
}

func newStats() Stats {
	s := Stats{Failures: make(map[ir.FailureCode]int, len(ir.FailureCodes))}
	for _, code := range ir.FailureCodes {
		s.Failures[code] = 0
	}
	return s
}

// Failed returns the number of failures across all codes.
func (s Stats) Failed() int {
	n := 0
	for _, c := range s.Failures {
		n += c
	}
	return n
}

// ReplayFailures returns the failures produced before the validity filter.
func (s Stats) ReplayFailures() int {
	n := 0
	for code, c := range s.Failures {
		if code.IsReplayFailure() {
			n += c
		}
	}
	return n
}

// Rejected returns the failures produced by the validity filter.
func (s Stats) Rejected() int {
	return s.Failed() - s.ReplayFailures()
}

// Ratio returns n as a share of the attempted strings.
func (s Stats) Ratio(n int) float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(n) / float64(s.Attempted)
}

// Check verifies that every attempted string is accounted for exactly once.
func (s Stats) Check() error {
	if got := s.Succeeded + s.ReplayFailures(); got != s.Attempted {
		return NewAccountingError("succeeded + replay failures", got, s.Attempted)
	}
	if got := s.Survivors + s.Failed(); got != s.Attempted {
		return NewAccountingError("survivors + failures", got, s.Attempted)
	}
	if got := s.UniqueMeshes + s.Duplicates; got != s.Survivors {
		return NewAccountingError("unique meshes + duplicates", got, s.Survivors)
	}
	if s.Attempted > s.Unique {
		return NewAccountingError("attempted within unique", s.Attempted, s.Unique)
	}
	if s.Unique > s.Generated {
		return NewAccountingError("unique within generated", s.Unique, s.Generated)
	}
	return nil
}
