package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lizard/internal/config"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/ir"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Unique bool
}

// GenerateResult is the JSON payload of the generate command.
type GenerateResult struct {
	Generated int                `json:"generated"`
	Unique    int                `json:"unique"`
	PerSource map[string]int     `json:"per_source"`
	Strings   []ir.GrammarString `json:"strings"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <config>",
		Short: "Print the strings the configured generators produce",
		Long: `Run the configured generators and print their strings, one per line,
in generator order. With --unique each string is printed once, at its
first occurrence.

Example:
  lizard generate configs/brute.cue
  lizard generate --unique --format json configs/markov.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Unique, "unique", false, "drop repeated strings")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := config.Load(path)
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}
	sources, err := cfg.Sources()
	if err != nil {
		return commandError(formatter, "invalid configuration", err)
	}

	ctx := commandContext(cmd)
	collection, err := grammar.Collect(ctx, sources...)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeRunFailed, "generation aborted", err)
	}

	result := GenerateResult{
		Generated: collection.Generated,
		Unique:    len(collection.Unique),
		PerSource: collection.PerSource,
		Strings:   collection.Unique,
	}
	if !opts.Unique {
		// Sources are deterministic; draining them again reproduces the
		// sequence Collect deduplicated.
		result.Strings = make([]ir.GrammarString, 0, collection.Generated)
		for _, src := range sources {
			for s := range src.Seq {
				result.Strings = append(result.Strings, s)
			}
		}
	}
	formatter.VerboseLog("generated %d strings, %d unique", result.Generated, result.Unique)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, s := range result.Strings {
		fmt.Fprintln(formatter.Writer, s)
	}
	return nil
}
