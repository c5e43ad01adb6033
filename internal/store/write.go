package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WriteRun inserts a run with its attempts, buckets and meshes in one
// transaction. Uses ON CONFLICT DO NOTHING for idempotency - writing the
// same run twice is silently ignored. Either everything is written or
// nothing is.
func (s *Store) WriteRun(ctx context.Context, run RunRecord, attempts []AttemptRecord, buckets []BucketRecord, meshes []MeshRecord) error {
	failuresJSON, err := marshalFailures(run.Failures)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, config_hash, config, alphabet, export_prefix, started_at, duration_ms, interrupted,
		 generated, unique_strings, attempted, succeeded, survivors, unique_meshes_pre, unique_meshes, duplicates, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ConfigHash,
		run.Config,
		run.Alphabet,
		run.ExportPrefix,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		boolToInt(run.Interrupted),
		run.Generated,
		run.Unique,
		run.Attempted,
		run.Succeeded,
		run.Survivors,
		run.UniqueMeshesPre,
		run.UniqueMeshes,
		run.Duplicates,
		failuresJSON,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	if err := writeAttempts(ctx, tx, run.ID, attempts); err != nil {
		return err
	}
	if err := writeBuckets(ctx, tx, run.ID, buckets); err != nil {
		return err
	}
	if err := writeMeshes(ctx, tx, run.ID, meshes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func writeAttempts(ctx context.Context, tx *sql.Tx, runID string, attempts []AttemptRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attempts
		(run_id, seq, string_id, string, code, symbol, position, message, feature_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write attempts: prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range attempts {
		_, err := stmt.ExecContext(ctx,
			runID,
			a.Seq,
			a.StringID,
			string(a.String),
			string(a.Code),
			a.Symbol,
			a.Position,
			a.Message,
			a.FeatureKey,
		)
		if err != nil {
			return fmt.Errorf("write attempt %d: %w", a.Seq, err)
		}
	}
	return nil
}

func writeBuckets(ctx context.Context, tx *sql.Tx, runID string, buckets []BucketRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO buckets
		(run_id, id, feature_key, claimant_seq, claimant, members)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write buckets: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range buckets {
		_, err := stmt.ExecContext(ctx,
			runID,
			b.ID,
			b.FeatureKey,
			b.ClaimantSeq,
			string(b.Claimant),
			b.Members,
		)
		if err != nil {
			return fmt.Errorf("write bucket %s: %w", b.FeatureKey, err)
		}
	}
	return nil
}

func writeMeshes(ctx context.Context, tx *sql.Tx, runID string, meshes []MeshRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meshes
		(run_id, seq, bucket_id, string, signature, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write meshes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range meshes {
		_, err := stmt.ExecContext(ctx,
			runID,
			m.Seq,
			m.BucketID,
			string(m.String),
			m.Signature,
			string(m.Data),
		)
		if err != nil {
			return fmt.Errorf("write mesh %d: %w", m.Seq, err)
		}
	}
	return nil
}
