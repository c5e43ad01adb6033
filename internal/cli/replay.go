package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/ir"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Output string // optional - mesh JSON destination
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <config> <string>",
		Short: "Replay one string and show every cursor step",
		Long: `Replay a single string on the configured seed mesh and print the rule
applied at every position, the cursor after it, and the outcome of the
validity filter and fingerprint.

Exit codes:
  0 - The string survived
  1 - The string was rejected (the report says where and why)
  2 - Command error (invalid config, unwritable output, etc.)

Examples:
  lizard replay configs/grid.yaml atta
  lizard replay configs/grid.yaml atta --out atta.json
  lizard replay configs/grid.yaml ppp --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write the resulting mesh as JSON to this file")

	return cmd
}

func runReplay(opts *ReplayOptions, path, str string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ws, err := loadWorkspace(path)
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}
	eng, err := ws.engine(logger)
	if err != nil {
		return commandError(formatter, "invalid seed", err)
	}

	replay := eng.Replay(ir.GrammarString(str))
	report := replay.Report()

	if opts.Output != "" && replay.Mesh != nil {
		data, err := replay.Mesh.MarshalJSON()
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to encode mesh", err)
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to write mesh", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		writeReplayReport(formatter.Writer, report)
	}

	if report.Outcome != engine.OutcomeSurvived {
		return NewExitError(ExitFailure, fmt.Sprintf("%q rejected: %s", str, report.Outcome))
	}
	return nil
}

func writeReplayReport(w io.Writer, r engine.ReplayReport) {
	fmt.Fprintf(w, "String: %s\n", r.String)
	fmt.Fprintf(w, "Start:  %d->%d\n", r.Start[0], r.Start[1])
	for _, s := range r.Steps {
		line := fmt.Sprintf("  %3d %s %-6s %d->%d", s.Position, s.Symbol, s.Rule, s.Tail, s.Head)
		if s.Polyedge != nil {
			line += fmt.Sprintf(" polyedge=%v", s.Polyedge)
		}
		if s.Mutation != "" {
			line += " " + s.Mutation
		}
		fmt.Fprintln(w, line)
	}

	if r.Outcome == engine.OutcomeSurvived {
		fmt.Fprintln(w, "✓ survived")
	} else {
		fmt.Fprintf(w, "✗ %s", r.Outcome)
		if r.Position != ir.NoPosition {
			fmt.Fprintf(w, " at position %d", r.Position)
		}
		fmt.Fprintf(w, ": %s\n", r.Message)
	}
	if r.Signature != "" {
		fmt.Fprintf(w, "Mesh:        %s\n", r.Signature)
	}
	if r.FeatureKey != "" {
		fmt.Fprintf(w, "Feature key: %s\n", r.FeatureKey)
	}
}
