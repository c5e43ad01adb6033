package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/lizard/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run whose statistics satisfy the accounting
// identities for the attempts built by createTestAttempts.
func createTestRun(id string) RunRecord {
	return RunRecord{
		ID:              id,
		ConfigHash:      "hash-" + id,
		Config:          `{"alphabet":"atp"}`,
		Alphabet:        "atp",
		ExportPrefix:    "test",
		StartedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:        1500 * time.Millisecond,
		Generated:       4,
		Unique:          3,
		Attempted:       3,
		Succeeded:       2,
		Survivors:       2,
		UniqueMeshesPre: 1,
		UniqueMeshes:    1,
		Duplicates:      1,
		Failures:        map[ir.FailureCode]int{ir.CodeUnknownSymbol: 1},
	}
}

func createTestAttempts(runID string) []AttemptRecord {
	return []AttemptRecord{
		{RunID: runID, Seq: 1, StringID: "s1", String: "tttt", Position: ir.NoPosition, FeatureKey: "9,12"},
		{RunID: runID, Seq: 2, StringID: "s2", String: "x", Code: ir.CodeUnknownSymbol, Symbol: "x", Position: 0, Message: "unknown"},
		{RunID: runID, Seq: 3, StringID: "s3", String: "tp", Position: ir.NoPosition, FeatureKey: "9,12"},
	}
}
