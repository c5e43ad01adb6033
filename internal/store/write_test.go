package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/lizard/internal/ir"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	buckets := []BucketRecord{{ID: "b1", FeatureKey: "9,12", ClaimantSeq: 1, Claimant: "tttt", Members: 2}}
	meshes := []MeshRecord{{Seq: 1, BucketID: "b1", String: "tttt", Signature: "V=9 E=12 F=4", Data: []byte(`{"vertices":[],"faces":[]}`)}}

	if err := s.WriteRun(ctx, run, createTestAttempts(run.ID), buckets, meshes); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.ConfigHash != run.ConfigHash || got.Alphabet != "atp" || got.ExportPrefix != "test" {
		t.Errorf("ReadRun() = %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.Duration != run.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, run.Duration)
	}
	if got.Survivors != 2 || got.UniqueMeshes != 1 || got.Duplicates != 1 {
		t.Errorf("stats not preserved: %+v", got)
	}
	if got.Failures[ir.CodeUnknownSymbol] != 1 {
		t.Errorf("Failures[UNKNOWN_SYMBOL] = %d, want 1", got.Failures[ir.CodeUnknownSymbol])
	}
	if n, ok := got.Failures[ir.CodeNonManifold]; !ok || n != 0 {
		t.Errorf("zero counts must be stored, got %d (present=%v)", n, ok)
	}

	gotMeshes, err := s.ReadMeshes(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadMeshes() failed: %v", err)
	}
	if len(gotMeshes) != 1 || gotMeshes[0].RunID != "run-1" || string(gotMeshes[0].Data) != string(meshes[0].Data) {
		t.Errorf("ReadMeshes() = %+v", gotMeshes)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun("run-1")

	for i := range 2 {
		if err := s.WriteRun(ctx, run, createTestAttempts(run.ID), nil, nil); err != nil {
			t.Fatalf("WriteRun() #%d failed: %v", i+1, err)
		}
	}

	attempts, err := s.ReadAttempts(ctx, run.ID, "")
	if err != nil {
		t.Fatalf("ReadAttempts() failed: %v", err)
	}
	if len(attempts) != 3 {
		t.Errorf("len(attempts) = %d, want 3", len(attempts))
	}
}

func TestWriteRun_AtomicOnFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun("run-1")

	// Without the meshes table the last step fails after the run row was
	// inserted; the transaction must leave nothing behind.
	if _, err := s.DB().Exec("DROP TABLE meshes"); err != nil {
		t.Fatalf("drop meshes: %v", err)
	}
	meshes := []MeshRecord{{Seq: 1, BucketID: "b", String: "t", Data: []byte("{}")}}
	if err := s.WriteRun(ctx, run, createTestAttempts(run.ID), nil, meshes); err == nil {
		t.Fatal("WriteRun() succeeded without a meshes table")
	}

	_, err := s.ReadRun(ctx, run.ID)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("ReadRun() error = %v, want ErrRunNotFound", err)
	}
	attempts, err := s.ReadAttempts(ctx, run.ID, "")
	if err != nil {
		t.Fatalf("ReadAttempts() failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("len(attempts) = %d, want 0 after rollback", len(attempts))
	}
}
