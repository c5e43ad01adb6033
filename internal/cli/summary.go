package cli

import (
	"io"
	"maps"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/store"
)

// Summary is the end-of-run report.
type Summary struct {
	RunID            string                 `json:"run_id"`
	ConfigHash       string                 `json:"config_hash,omitempty"`
	Interrupted      bool                   `json:"interrupted"`
	DurationMS       int64                  `json:"duration_ms"`
	Generated        int                    `json:"generated"`
	Unique           int                    `json:"unique"`
	Attempted        int                    `json:"attempted"`
	Succeeded        int                    `json:"succeeded"`
	Survivors        int                    `json:"survivors"`
	MeshesPre        int                    `json:"unique_meshes_pre"`
	Meshes           int                    `json:"unique_meshes"`
	DuplicatedMeshes int                    `json:"duplicated_meshes"` // successful replays minus MeshesPre
	Duplicates       int                    `json:"duplicates"`        // survivors that are not the claimant of their key
	Failures         map[ir.FailureCode]int `json:"failures"`
}

func summaryFromResult(res *engine.Result, hash string) Summary {
	return newSummary(res.RunID, hash, res.Interrupted, res.Duration, res.Stats)
}

func summaryFromRun(run store.RunRecord) Summary {
	return newSummary(run.ID, run.ConfigHash, run.Interrupted, run.Duration, engine.Stats{
		Generated:       run.Generated,
		Unique:          run.Unique,
		Attempted:       run.Attempted,
		Succeeded:       run.Succeeded,
		Failures:        run.Failures,
		Survivors:       run.Survivors,
		UniqueMeshesPre: run.UniqueMeshesPre,
		UniqueMeshes:    run.UniqueMeshes,
		Duplicates:      run.Duplicates,
	})
}

func newSummary(id, hash string, interrupted bool, d time.Duration, s engine.Stats) Summary {
	return Summary{
		RunID:            id,
		ConfigHash:       hash,
		Interrupted:      interrupted,
		DurationMS:       d.Milliseconds(),
		Generated:        s.Generated,
		Unique:           s.Unique,
		Attempted:        s.Attempted,
		Succeeded:        s.Succeeded,
		Survivors:        s.Survivors,
		MeshesPre:        s.UniqueMeshesPre,
		Meshes:           s.UniqueMeshes,
		Duplicates:       s.Duplicates,
		DuplicatedMeshes: max(s.Succeeded-s.UniqueMeshesPre, 0),
		Failures:         maps.Clone(s.Failures),
	}
}

// percent returns n/d in percent, 0 when d is 0.
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}

// writeSummary prints s in the text layout. Counts use English digit
// grouping. Mesh ratios are relative to the attempted strings.
func writeSummary(w io.Writer, s Summary) {
	p := message.NewPrinter(language.English)
	f := s.Failures
	lizard := f[ir.CodeUnknownSymbol] + f[ir.CodeRulePrecondition] + f[ir.CodeCursorInvariant]
	unsuccessful := s.Attempted - s.Meshes

	p.Fprintf(w, "Run %s\n", s.RunID)
	p.Fprintf(w, "Generated strings: %d\n", s.Generated)
	p.Fprintf(w, "Unique strings: %.2f%% [%d / %d generated strings]\n",
		percent(s.Unique, s.Generated), s.Unique, s.Generated)
	if s.Interrupted {
		p.Fprintf(w, "Interrupted: %d of %d unique strings attempted\n", s.Attempted, s.Unique)
	}
	p.Fprintf(w, "Lizard meshes: %.2f%% [%d / %d strings]\n",
		percent(s.Succeeded, s.Attempted), s.Succeeded, s.Attempted)
	p.Fprintf(w, "Unique meshes: %.2f%% [%d / %d strings]\n",
		percent(s.MeshesPre, s.Attempted), s.MeshesPre, s.Attempted)
	p.Fprintf(w, "Post-processed meshes: %.2f%% [%d / %d strings]\n",
		percent(s.Meshes, s.Attempted), s.Meshes, s.Attempted)
	p.Fprintf(w, "Unsuccessful meshes: %.2f%% [Lizard %.2f%%  Unify %.2f%% | Duplicated meshes: %.2f%% | Smoothing %.2f%%  Non-manifold %.2f%%  Boundaries %.2f%%]\n",
		percent(unsuccessful, s.Attempted),
		percent(lizard, s.Attempted),
		percent(f[ir.CodeUnificationFailed], s.Attempted),
		percent(s.DuplicatedMeshes, s.Attempted),
		percent(f[ir.CodeSmoothingFailed], s.Attempted),
		percent(f[ir.CodeNonManifold], s.Attempted),
		percent(f[ir.CodeBoundaryChanged], s.Attempted))
	p.Fprintf(w, "Duplicate survivors: %.2f%% [%d / %d strings]\n",
		percent(s.Duplicates, s.Attempted), s.Duplicates, s.Attempted)
}
