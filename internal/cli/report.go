package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	Code     string // optional - list attempts with this failure code
	List     bool
}

// ReportResult is the JSON payload of the report command.
type ReportResult struct {
	Summary  Summary               `json:"summary"`
	Buckets  []store.BucketRecord  `json:"buckets"`
	Attempts []store.AttemptRecord `json:"attempts,omitempty"`
}

// RunListing is one row of report --list.
type RunListing struct {
	ID           string `json:"id"`
	ConfigHash   string `json:"config_hash"`
	StartedAt    string `json:"started_at"`
	Attempted    int    `json:"attempted"`
	UniqueMeshes int    `json:"unique_meshes"`
	Interrupted  bool   `json:"interrupted"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a stored run",
		Long: `Print the summary and the surviving fingerprint buckets of a run stored
with "lizard run --db". Without --run the latest run is reported.

Examples:
  lizard report --db ./lizard.db
  lizard report --db ./lizard.db --run 0190... --code NON_MANIFOLD
  lizard report --db ./lizard.db --list`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().StringVar(&opts.Code, "code", "", "list attempts that failed with this code")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored runs instead")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	code := ir.FailureCode(opts.Code)
	if code != "" && !slices.Contains(ir.FailureCodes, code) {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "invalid --code",
			fmt.Errorf("unknown failure code %q, want one of %v", opts.Code, ir.FailureCodes))
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return commandError(formatter, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if opts.List {
		return listRuns(ctx, formatter, st)
	}

	run, err := findRun(ctx, st, opts.RunID)
	if err != nil {
		return commandError(formatter, "failed to read run", err)
	}
	formatter.RunID = run.ID
	buckets, err := st.ReadBuckets(ctx, run.ID)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read buckets", err)
	}
	result := ReportResult{Summary: summaryFromRun(run), Buckets: buckets}
	if code != "" {
		result.Attempts, err = st.ReadAttempts(ctx, run.ID, code)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read attempts", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	writeSummary(w, result.Summary)
	fmt.Fprintf(w, "\nBuckets (%d):\n", len(buckets))
	for _, b := range buckets {
		fmt.Fprintf(w, "  %-20s %4d  %s\n", b.Claimant, b.Members, b.FeatureKey)
	}
	if code != "" {
		fmt.Fprintf(w, "\n%s (%d):\n", code, len(result.Attempts))
		for _, a := range result.Attempts {
			fmt.Fprintf(w, "  %-20s pos %-3d %s\n", a.String, a.Position, a.Message)
		}
	}
	return nil
}

func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to list runs", err)
	}

	listing := make([]RunListing, len(runs))
	for i, r := range runs {
		listing[i] = RunListing{
			ID:           r.ID,
			ConfigHash:   r.ConfigHash,
			StartedAt:    r.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Attempted:    r.Attempted,
			UniqueMeshes: r.UniqueMeshes,
			Interrupted:  r.Interrupted,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}
	if len(listing) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs stored.")
		return nil
	}
	for _, r := range listing {
		mark := ""
		if r.Interrupted {
			mark = " (interrupted)"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s  %d attempted, %d meshes%s\n",
			r.ID, r.StartedAt, r.Attempted, r.UniqueMeshes, mark)
	}
	return nil
}

// findRun returns the run with id, or the latest run when id is empty.
func findRun(ctx context.Context, st *store.Store, id string) (store.RunRecord, error) {
	if id == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, id)
}

// openExisting opens a database that must already exist; store.Open would
// create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
