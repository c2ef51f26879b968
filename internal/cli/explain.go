package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/optimize"
	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/sparql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Dialect           string
	ProfileDir        string
	SimulateInference bool
	ExplicitOnly      bool
	SkipOptimize      bool
}

// ExplainResult is the JSON payload of a successful explain.
type ExplainResult struct {
	Dialect      string `json:"dialect"`
	Family       string `json:"family"`
	DefaultGraph string `json:"default_graph,omitempty"`
	SPARQL       string `json:"sparql"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query.yaml>",
		Short: "Transform a query file and print the resulting SPARQL",
		Long: `Transform a YAML query file for the selected dialect and print the
SPARQL a store of that dialect would receive.

The query is validated, rewritten for the dialect (inference simulation,
explicit-graph handling, full-text index invocation), reordered by the
optimizer, and rendered as a SELECT query.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "dialect name (overrides config)")
	cmd.Flags().StringVar(&opts.ProfileDir, "profiles", "", "directory of custom dialect profiles (overrides config)")
	cmd.Flags().BoolVar(&opts.SimulateInference, "simulate-inference", false, "emulate subsumption with property paths")
	cmd.Flags().BoolVar(&opts.ExplicitOnly, "explicit-only", false, "match only explicitly asserted statements")
	cmd.Flags().BoolVar(&opts.SkipOptimize, "no-optimize", false, "skip pattern reordering")

	return cmd
}

func runExplain(opts *ExplainOptions, queryPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if opts.Dialect != "" {
		cfg.Dialect = opts.Dialect
	}
	if opts.ProfileDir != "" {
		cfg.ProfileDir = opts.ProfileDir
	}

	profile, err := cfg.ResolveDialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDialect, err.Error(), nil)
	}
	formatter.VerboseLog("Dialect %s (family %s)", profile.Name, profile.Family)

	query, err := LoadQueryFile(queryPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadQuery, err.Error(), nil)
	}
	if err := rdf.ValidateBlock(query.Block); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeBadQuery, err.Error(), nil)
	}

	res, err := dialect.Transform(query.Block, profile, dialect.Options{
		SimulateInference: opts.SimulateInference,
		ExplicitOnly:      opts.ExplicitOnly,
	})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDialect, err.Error(), nil)
	}
	query.Block = res.Block
	query.DefaultGraph = res.DefaultGraph
	if !opts.SkipOptimize {
		query.Block = optimize.Optimize(query.Block)
	}

	text, err := sparql.RenderSelect(query)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDialect, err.Error(), nil)
	}

	result := ExplainResult{
		Dialect:      profile.Name,
		Family:       profile.Family.String(),
		DefaultGraph: res.DefaultGraph,
		SPARQL:       text,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}
