package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Generate strings and replay them on the seed mesh",
		Long: `Run a full exploration: generate the configured strings, replay every
unique string on its own copy of the seed mesh, filter the results and
group the survivors by topological fingerprint.

With --db the run, every attempt and one mesh per fingerprint are stored
in a SQLite database (created if it doesn't exist). Ctrl-C or the
configured timeout stops the run early; the summary then covers the
strings attempted so far.

Example:
  lizard run configs/brute.cue
  lizard run --db ./lizard.db configs/markov.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExploration(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (optional)")

	return cmd
}

func runExploration(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ws, err := loadWorkspace(path)
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}
	sources, err := ws.cfg.Sources()
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}
	meta, err := ws.meta()
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}

	var extra []engine.EngineOption
	if opts.RunIDs != nil {
		extra = append(extra, engine.WithRunIDGenerator(opts.RunIDs))
	}
	eng, err := ws.engine(logger, extra...)
	if err != nil {
		return commandError(formatter, "invalid seed", err)
	}

	// Open the database before running so a bad path fails fast.
	var st *store.Store
	if opts.Database != "" {
		logger.Info("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	if d := ws.cfg.TimeoutDuration(); d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	stopSignals := cancelOnSignal(ctx, cancel, logger)
	defer stopSignals()

	logger.Info("generating strings", "config", path, "hash", ws.hash)
	collection, err := grammar.Collect(ctx, sources...)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeRunFailed, "generation aborted", err)
	}
	logger.Info("strings generated", "generated", collection.Generated, "unique", len(collection.Unique))

	res, err := eng.RunCollection(ctx, collection)
	if err != nil {
		return fail(formatter, ExitFailure, codeFor(err), "run failed", err)
	}
	formatter.RunID = res.RunID

	if st != nil {
		// The run context may have expired; the result still gets stored.
		if err := res.Save(context.WithoutCancel(ctx), st, meta); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to store run", err)
		}
		logger.Info("run stored", "run_id", res.RunID, "db", opts.Database)
	}

	summary := summaryFromResult(res, ws.hash)
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	writeSummary(formatter.Writer, summary)
	if res.Interrupted {
		fmt.Fprintln(formatter.Writer, "Run interrupted; counts cover the attempted strings only.")
	}
	return nil
}

// cancelOnSignal cancels the run on SIGINT or SIGTERM. The returned
// function stops listening.
func cancelOnSignal(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
