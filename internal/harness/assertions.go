package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes the attempt log to help debug the failure.
type AssertionError struct {
	Type     string                 // Assertion type for categorization
	Expected string                 // Human-readable expected outcome
	Actual   string                 // Human-readable actual outcome
	Attempts []engine.AttemptRecord // Attempt log for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Attempts) > 0 {
		fmt.Fprintf(&buf, "\nAttempts:\n")
		for _, a := range e.Attempts {
			fmt.Fprintf(&buf, "  [%d] %q %s\n", a.Seq, a.String, outcomeOf(a))
		}
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOutcome:
			err = assertOutcome(result.Run, assertion)
		case AssertStats:
			err = assertStats(result.Run, assertion)
		case AssertSameBucket:
			err = assertSameBucket(result.Run, assertion)
		case AssertDistinctBuckets:
			err = assertDistinctBuckets(result.Run, assertion)
		case AssertStoredCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored_count requires database context", i)
			} else {
				err = assertStoredCount(actx.Ctx, actx.Store, result.Run.RunID, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func outcomeOf(a engine.AttemptRecord) string {
	if a.Survived() {
		return engine.OutcomeSurvived
	}
	return string(a.Code)
}

func findAttempt(run *engine.Result, s string) (engine.AttemptRecord, bool) {
	for _, a := range run.Attempts {
		if string(a.String) == s {
			return a, true
		}
	}
	return engine.AttemptRecord{}, false
}

// assertOutcome checks how one string ended and, optionally, where.
func assertOutcome(run *engine.Result, assertion Assertion) error {
	a, ok := findAttempt(run, assertion.String)
	if !ok {
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("%q attempted", assertion.String),
			Actual:   "not attempted",
			Attempts: run.Attempts,
		}
	}
	if got := outcomeOf(a); got != assertion.Code {
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("%q ends with %s", assertion.String, assertion.Code),
			Actual:   fmt.Sprintf("%s (%s)", got, a.Message),
			Attempts: run.Attempts,
		}
	}
	if assertion.Position != nil && *assertion.Position != a.Position {
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("%q fails at position %d", assertion.String, *assertion.Position),
			Actual:   fmt.Sprintf("position %d", a.Position),
			Attempts: run.Attempts,
		}
	}
	return nil
}

// counter returns a named stats counter.
func counter(s engine.Stats, name string) int {
	switch name {
	case "generated":
		return s.Generated
	case "unique":
		return s.Unique
	case "attempted":
		return s.Attempted
	case "succeeded":
		return s.Succeeded
	case "survivors":
		return s.Survivors
	case "unique_meshes_pre":
		return s.UniqueMeshesPre
	case "unique_meshes":
		return s.UniqueMeshes
	case "duplicates":
		return s.Duplicates
	default:
		return s.Failures[ir.FailureCode(name)]
	}
}

// assertStats compares the listed counters. Names are checked in sorted
// order so the first mismatch reported is stable.
func assertStats(run *engine.Result, assertion Assertion) error {
	names := make([]string, 0, len(assertion.Expect))
	for name := range assertion.Expect {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		want := assertion.Expect[name]
		if got := counter(run.Stats, name); got != want {
			return &AssertionError{
				Type:     AssertStats,
				Expected: fmt.Sprintf("%s = %d", name, want),
				Actual:   fmt.Sprintf("%s = %d", name, got),
			}
		}
	}
	return nil
}

// keysOf returns the feature key of every listed string. Strings that were
// not attempted or not fingerprinted are reported as errors.
func keysOf(run *engine.Result, assertion Assertion) ([]string, error) {
	keys := make([]string, len(assertion.Strings))
	for i, s := range assertion.Strings {
		a, ok := findAttempt(run, s)
		if !ok || a.Key == "" {
			return nil, &AssertionError{
				Type:     assertion.Type,
				Expected: fmt.Sprintf("%q fingerprinted", s),
				Actual:   "no feature key",
				Attempts: run.Attempts,
			}
		}
		keys[i] = a.Key
	}
	return keys, nil
}

func assertSameBucket(run *engine.Result, assertion Assertion) error {
	keys, err := keysOf(run, assertion)
	if err != nil {
		return err
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[0] {
			return &AssertionError{
				Type:     AssertSameBucket,
				Expected: fmt.Sprintf("%q and %q share a feature key", assertion.Strings[0], assertion.Strings[i]),
				Actual:   fmt.Sprintf("%s != %s", keys[0], keys[i]),
			}
		}
	}
	return nil
}

func assertDistinctBuckets(run *engine.Result, assertion Assertion) error {
	keys, err := keysOf(run, assertion)
	if err != nil {
		return err
	}
	seen := make(map[string]string, len(keys))
	for i, key := range keys {
		if other, dup := seen[key]; dup {
			return &AssertionError{
				Type:     AssertDistinctBuckets,
				Expected: fmt.Sprintf("%q and %q have different feature keys", other, assertion.Strings[i]),
				Actual:   fmt.Sprintf("both %s", key),
			}
		}
		seen[key] = assertion.Strings[i]
	}
	return nil
}

// assertStoredCount counts the rows stored for the run.
func assertStoredCount(ctx context.Context, st *store.Store, runID string, assertion Assertion) error {
	var got int
	switch assertion.Table {
	case "runs":
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return err
		}
		for _, r := range runs {
			if r.ID == runID {
				got++
			}
		}
	case "attempts":
		filter := ir.FailureCode(assertion.Code)
		if assertion.Code == engine.OutcomeSurvived {
			filter = ""
		}
		attempts, err := st.ReadAttempts(ctx, runID, filter)
		if err != nil {
			return err
		}
		for _, a := range attempts {
			if assertion.Code != engine.OutcomeSurvived || a.Code == "" {
				got++
			}
		}
	case "buckets":
		buckets, err := st.ReadBuckets(ctx, runID)
		if err != nil {
			return err
		}
		got = len(buckets)
	case "meshes":
		meshes, err := st.ReadMeshes(ctx, runID)
		if err != nil {
			return err
		}
		got = len(meshes)
	}

	if got != *assertion.Count {
		what := assertion.Table
		if assertion.Code != "" {
			what += " with code " + assertion.Code
		}
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: fmt.Sprintf("%d %s", *assertion.Count, what),
			Actual:   fmt.Sprintf("%d stored", got),
		}
	}
	return nil
}
