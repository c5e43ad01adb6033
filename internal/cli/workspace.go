package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/config"
	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
)

// workspace is a loaded configuration with its seed mesh, start cursor and
// rule registry built.
type workspace struct {
	cfg      *config.Config
	hash     string
	seed     *mesh.Mesh
	start    lizard.Cursor
	registry *lizard.Registry
}

func loadWorkspace(path string) (*workspace, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	hash, err := cfg.Hash()
	if err != nil {
		return nil, err
	}
	seed, err := cfg.Mesh()
	if err != nil {
		return nil, err
	}
	start, err := cfg.Start(seed)
	if err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	return &workspace{cfg: cfg, hash: hash, seed: seed, start: start, registry: registry}, nil
}

// engine builds an engine for the workspace; extra options apply after the
// configured ones.
func (w *workspace) engine(logger *slog.Logger, extra ...engine.EngineOption) (*engine.Engine, error) {
	opts := append(w.cfg.EngineOptions(), engine.WithLogger(logger))
	opts = append(opts, extra...)
	return engine.New(w.seed, w.start, w.registry, opts...)
}

// meta returns the provenance stored with a run.
func (w *workspace) meta() (engine.RunMeta, error) {
	canonical, err := w.cfg.CanonicalJSON()
	if err != nil {
		return engine.RunMeta{}, err
	}
	return engine.RunMeta{
		ConfigHash:   w.hash,
		Config:       canonical,
		Alphabet:     w.cfg.Alphabet,
		ExportPrefix: w.cfg.ExportPrefix,
	}, nil
}

// newLogger returns a text logger on w at Info, or Debug when verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
