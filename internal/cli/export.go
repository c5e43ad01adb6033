package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/ir"
)

// safeName matches strings usable verbatim in a file name.
var safeName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	Dir      string
}

// ExportResult is the JSON payload of the export command.
type ExportResult struct {
	RunID string   `json:"run_id"`
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the unique meshes of a stored run as JSON files",
		Long: `Write one JSON file per surviving fingerprint bucket of a stored run,
holding the mesh of the bucket's claimant. Files are named
<export_prefix>_<string>.json; strings that are not file-name safe use
their string id instead.

Examples:
  lizard export --db ./lizard.db --dir ./meshes
  lizard export --db ./lizard.db --run 0190... --dir ./meshes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "output directory (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return commandError(formatter, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	run, err := findRun(ctx, st, opts.RunID)
	if err != nil {
		return commandError(formatter, "failed to read run", err)
	}
	formatter.RunID = run.ID
	meshes, err := st.ReadMeshes(ctx, run.ID)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read meshes", err)
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to create output directory", err)
	}

	result := ExportResult{RunID: run.ID, Dir: opts.Dir, Files: []string{}}
	for _, m := range meshes {
		name := exportName(run.ExportPrefix, m.String)
		if err := os.WriteFile(filepath.Join(opts.Dir, name), m.Data, 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to write mesh", err)
		}
		formatter.VerboseLog("Wrote %s (%s)", name, m.Signature)
		result.Files = append(result.Files, name)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported %d meshes of run %s to %s\n", len(result.Files), run.ID, opts.Dir)
	return nil
}

// exportName returns <prefix>_<string>.json, or <prefix>_<string id>.json
// when the string is empty or not file-name safe.
func exportName(prefix string, s ir.GrammarString) string {
	if safeName.MatchString(string(s)) {
		return fmt.Sprintf("%s_%s.json", prefix, s)
	}
	return fmt.Sprintf("%s_%s.json", prefix, ir.StringID(prefix, s))
}
