package store

import (
	"time"

	"github.com/roach88/lizard/internal/ir"
)

// RunRecord is one exploration run.
type RunRecord struct {
	ID         string
	ConfigHash string
	// Config is the canonical JSON of the run configuration.
	Config       string
	Alphabet     string
	ExportPrefix string
	StartedAt    time.Time
	Duration     time.Duration
	Interrupted  bool

	Generated       int
	Unique          int
	Attempted       int
	Succeeded       int
	Survivors       int
	UniqueMeshesPre int
	UniqueMeshes    int
	Duplicates      int
	Failures        map[ir.FailureCode]int
}

// AttemptRecord is the outcome of one string. Code is empty for survivors.
type AttemptRecord struct {
	RunID      string           `json:"run_id"`
	Seq        int64            `json:"seq"`
	StringID   string           `json:"string_id"`
	String     ir.GrammarString `json:"string"`
	Code       ir.FailureCode   `json:"code,omitempty"`
	Symbol     string           `json:"symbol,omitempty"`
	Position   int              `json:"position"`
	Message    string           `json:"message,omitempty"`
	FeatureKey string           `json:"feature_key,omitempty"`
}

// BucketRecord is one surviving feature key.
type BucketRecord struct {
	RunID       string           `json:"run_id"`
	ID          string           `json:"id"`
	FeatureKey  string           `json:"feature_key"`
	ClaimantSeq int64            `json:"claimant_seq"`
	Claimant    ir.GrammarString `json:"claimant"`
	Members     int              `json:"members"`
}

// MeshRecord is the exported mesh of a bucket claimant.
type MeshRecord struct {
	RunID     string
	Seq       int64
	BucketID  string
	String    ir.GrammarString
	Signature string
	// Data is the mesh JSON document.
	Data []byte
}
