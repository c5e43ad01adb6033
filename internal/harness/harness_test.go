package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/testutil"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"grid_basics", "brute_length2"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			require.NoError(t, result.Run.Stats.Check())
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "grid_basics")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := (&Snapshot{ScenarioName: s.Name, Run: first.Run, Traces: first.Traces}).Marshal()
	require.NoError(t, err)
	b, err := (&Snapshot{ScenarioName: s.Name, Run: second.Run, Traces: second.Traces}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	assert.Equal(t, testutil.Epoch, first.Run.StartedAt)
	assert.Equal(t, first.Run.Duration, second.Run.Duration)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := loadScenario(t, "grid_basics")
	two := 2
	s.Assertions = []Assertion{
		{Type: AssertOutcome, String: "tttt", Code: string(ir.CodeNonManifold)},
		{Type: AssertOutcome, String: "never", Code: "survived"},
		{Type: AssertStats, Expect: map[string]int{"attempted": 4}},
		{Type: AssertSameBucket, Strings: []string{"tttt", "atta"}},
		{Type: AssertDistinctBuckets, Strings: []string{"tttt", "tp"}},
		{Type: AssertSameBucket, Strings: []string{"tttt", "x"}},
		{Type: AssertStoredCount, Table: "buckets", Count: &two},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6, "only the stored_count assertion holds")

	assert.Contains(t, result.Errors[0], "Assertion failed: outcome")
	assert.Contains(t, result.Errors[0], `"tttt" ends with NON_MANIFOLD`)
	assert.Contains(t, result.Errors[0], "Attempts:")
	assert.Contains(t, result.Errors[1], "not attempted")
	assert.Contains(t, result.Errors[2], "attempted = 5")
	assert.Contains(t, result.Errors[3], "share a feature key")
	assert.Contains(t, result.Errors[4], "different feature keys")
	assert.Contains(t, result.Errors[5], "no feature key")
}

func TestRun_TraceOfUnattemptedString(t *testing.T) {
	s := loadScenario(t, "grid_basics")
	s.Trace = []string{"ttd"}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Traces, 1)

	// 'd' is not in the configured alphabet, so it has no rule.
	tr := result.Traces[0]
	assert.Equal(t, string(ir.CodeUnknownSymbol), tr.Outcome)
	assert.Equal(t, 2, tr.Position)
	assert.Len(t, tr.Steps, 2)
}
