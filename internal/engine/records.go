package engine

import (
	"context"
	"fmt"
	"maps"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/store"
)

// RunMeta identifies the configuration a Result was produced from.
type RunMeta struct {
	ConfigHash string
	// Config is the canonical JSON of the configuration.
	Config       string
	Alphabet     string
	ExportPrefix string
}

// Records converts r into store rows. Every surviving bucket contributes
// its claimant's mesh.
func (r *Result) Records(meta RunMeta) (store.RunRecord, []store.AttemptRecord, []store.BucketRecord, []store.MeshRecord, error) {
	run := store.RunRecord{
		ID:              r.RunID,
		ConfigHash:      meta.ConfigHash,
		Config:          meta.Config,
		Alphabet:        meta.Alphabet,
		ExportPrefix:    meta.ExportPrefix,
		StartedAt:       r.StartedAt,
		Duration:        r.Duration,
		Interrupted:     r.Interrupted,
		Generated:       r.Stats.Generated,
		Unique:          r.Stats.Unique,
		Attempted:       r.Stats.Attempted,
		Succeeded:       r.Stats.Succeeded,
		Survivors:       r.Stats.Survivors,
		UniqueMeshesPre: r.Stats.UniqueMeshesPre,
		UniqueMeshes:    r.Stats.UniqueMeshes,
		Duplicates:      r.Stats.Duplicates,
		Failures:        maps.Clone(r.Stats.Failures),
	}

	attempts := make([]store.AttemptRecord, len(r.Attempts))
	for i, a := range r.Attempts {
		symbol := ""
		if a.Position != ir.NoPosition {
			symbol = string(a.Symbol)
		}
		attempts[i] = store.AttemptRecord{
			RunID:      r.RunID,
			Seq:        a.Seq,
			StringID:   ir.StringID(meta.ExportPrefix, a.String),
			String:     a.String,
			Code:       a.Code,
			Symbol:     symbol,
			Position:   a.Position,
			Message:    a.Message,
			FeatureKey: a.Key,
		}
	}

	var (
		buckets []store.BucketRecord
		meshes  []store.MeshRecord
	)
	for _, b := range r.Pool.Buckets() {
		claimant := b.Claimant()
		id := ir.BucketID(b.Key)
		buckets = append(buckets, store.BucketRecord{
			RunID:       r.RunID,
			ID:          id,
			FeatureKey:  b.Key,
			ClaimantSeq: claimant.Seq,
			Claimant:    claimant.String,
			Members:     len(b.Members),
		})

		data, err := claimant.Mesh.MarshalJSON()
		if err != nil {
			return store.RunRecord{}, nil, nil, nil, fmt.Errorf("encode mesh of %q: %w", claimant.String, err)
		}
		meshes = append(meshes, store.MeshRecord{
			RunID:     r.RunID,
			Seq:       claimant.Seq,
			BucketID:  id,
			String:    claimant.String,
			Signature: claimant.Mesh.Signature(),
			Data:      data,
		})
	}
	return run, attempts, buckets, meshes, nil
}

// Save writes r to s in one transaction.
func (r *Result) Save(ctx context.Context, s *store.Store, meta RunMeta) error {
	run, attempts, buckets, meshes, err := r.Records(meta)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	if err := s.WriteRun(ctx, run, attempts, buckets, meshes); err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}
