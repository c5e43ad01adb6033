package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/lizard/internal/ir"
)

// ErrRunNotFound indicates a run id with no stored run.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `
	id, config_hash, config, alphabet, export_prefix, started_at, duration_ms, interrupted,
	generated, unique_strings, attempted, succeeded, survivors, unique_meshes_pre, unique_meshes, duplicates, failures
`

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently started run. Run ids are UUIDv7, so
// the greatest id is the latest run.
func (s *Store) LatestRun(ctx context.Context) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id COLLATE BINARY DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run ordered by id.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadAttempts returns the attempts of a run ordered by seq. A non-empty
// code restricts the result to that failure code.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadAttempts(ctx context.Context, runID string, code ir.FailureCode) ([]AttemptRecord, error) {
	query := `
		SELECT run_id, seq, string_id, string, code, symbol, position, message, feature_key
		FROM attempts
		WHERE run_id = ?`
	args := []any{runID}
	if code != "" {
		query += ` AND code = ?`
		args = append(args, string(code))
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []AttemptRecord{}
	for rows.Next() {
		var (
			a        AttemptRecord
			str, cde string
		)
		if err := rows.Scan(&a.RunID, &a.Seq, &a.StringID, &str, &cde, &a.Symbol, &a.Position, &a.Message, &a.FeatureKey); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.String = ir.GrammarString(str)
		a.Code = ir.FailureCode(cde)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// ReadBuckets returns the buckets of a run ordered by feature key.
//
// Returns an empty slice (not nil) if the run has no buckets.
func (s *Store) ReadBuckets(ctx context.Context, runID string) ([]BucketRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, id, feature_key, claimant_seq, claimant, members
		FROM buckets
		WHERE run_id = ?
		ORDER BY feature_key COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	buckets := []BucketRecord{}
	for rows.Next() {
		var (
			b        BucketRecord
			claimant string
		)
		if err := rows.Scan(&b.RunID, &b.ID, &b.FeatureKey, &b.ClaimantSeq, &claimant, &b.Members); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b.Claimant = ir.GrammarString(claimant)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buckets: %w", err)
	}
	return buckets, nil
}

// ReadMeshes returns the exported meshes of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no meshes.
func (s *Store) ReadMeshes(ctx context.Context, runID string) ([]MeshRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, bucket_id, string, signature, data
		FROM meshes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query meshes: %w", err)
	}
	defer rows.Close()

	meshes := []MeshRecord{}
	for rows.Next() {
		var (
			m         MeshRecord
			str, data string
		)
		if err := rows.Scan(&m.RunID, &m.Seq, &m.BucketID, &str, &m.Signature, &data); err != nil {
			return nil, fmt.Errorf("scan mesh: %w", err)
		}
		m.String = ir.GrammarString(str)
		m.Data = []byte(data)
		meshes = append(meshes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meshes: %w", err)
	}
	return meshes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		run          RunRecord
		startedAt    string
		durationMS   int64
		interrupted  int
		failuresJSON string
	)
	err := row.Scan(
		&run.ID,
		&run.ConfigHash,
		&run.Config,
		&run.Alphabet,
		&run.ExportPrefix,
		&startedAt,
		&durationMS,
		&interrupted,
		&run.Generated,
		&run.Unique,
		&run.Attempted,
		&run.Succeeded,
		&run.Survivors,
		&run.UniqueMeshesPre,
		&run.UniqueMeshes,
		&run.Duplicates,
		&failuresJSON,
	)
	if err != nil {
		return RunRecord{}, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Interrupted = interrupted != 0
	run.Failures, err = unmarshalFailures(failuresJSON)
	if err != nil {
		return RunRecord{}, err
	}
	return run, nil
}
