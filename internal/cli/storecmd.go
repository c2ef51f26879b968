package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkival/trellis/internal/config"
	"github.com/arkival/trellis/internal/dialect"
	"github.com/arkival/trellis/internal/optimize"
	"github.com/arkival/trellis/internal/rdf"
	"github.com/arkival/trellis/internal/store"
	"github.com/arkival/trellis/internal/store/local"
	"github.com/arkival/trellis/internal/store/sparqlhttp"
)

// StoreOptions holds flags shared by the store subcommands.
type StoreOptions struct {
	*RootOptions
	DBPath string
}

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Initialize, load, and query a triple store",
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "embedded database path (overrides config)")

	cmd.AddCommand(newStoreInitCommand(opts))
	cmd.AddCommand(newStoreImportCommand(opts))
	cmd.AddCommand(newStoreQueryCommand(opts))

	return cmd
}

// resolveStoreConfig applies the --db override to the configured store.
func (o *StoreOptions) resolveStoreConfig() (config.Config, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if o.DBPath != "" {
		cfg.Store.Kind = "embedded"
		cfg.Store.Path = o.DBPath
	}
	return cfg, nil
}

func newStoreInitCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Create an empty embedded triple store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreInit(opts, cmd)
		},
	}
}

func runStoreInit(opts *StoreOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.resolveStoreConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if cfg.Store.Kind != "embedded" {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "store init requires an embedded store", nil)
	}

	s, err := local.Open(cfg.Store.Path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer s.Close()

	return formatter.Success(fmt.Sprintf("initialized store at %s", cfg.Store.Path))
}

// ImportResult is the JSON payload of store import.
type ImportResult struct {
	File     string `json:"file"`
	Imported int    `json:"imported"`
	Total    int64  `json:"total"`
}

func newStoreImportCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import <triples.nt>",
		Short:         "Load an N-Triples file into the embedded store",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreImport(opts, args[0], cmd)
		},
	}
}

func runStoreImport(opts *StoreOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	cfg, err := opts.resolveStoreConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if cfg.Store.Kind != "embedded" {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "store import requires an embedded store", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer f.Close()

	triples, err := rdf.ParseNTriples(f)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, err.Error(), nil)
	}
	formatter.VerboseLog("Parsed %d triple(s) from %s", len(triples), path)

	s, err := local.Open(cfg.Store.Path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer s.Close()

	if err := s.Insert(ctx, triples); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	total, err := s.Count(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ImportResult{File: path, Imported: len(triples), Total: total}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "imported %d triple(s), store now holds %d\n", result.Imported, result.Total)
	return nil
}

// QueryResult is the JSON payload of store query.
type QueryResult struct {
	Variables []string            `json:"variables"`
	Rows      []map[string]string `json:"rows"`
}

func newStoreQueryCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <query.yaml>",
		Short: "Run a query file against the configured store",
		Long: `Transform a YAML query file for the configured dialect, run it against
the configured store, and print the result rows.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreQuery(opts, args[0], cmd)
		},
	}
}

func runStoreQuery(opts *StoreOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	cfg, err := opts.resolveStoreConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	profile, err := cfg.ResolveDialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDialect, err.Error(), nil)
	}

	query, err := LoadQueryFile(queryPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadQuery, err.Error(), nil)
	}
	if err := rdf.ValidateBlock(query.Block); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeBadQuery, err.Error(), nil)
	}

	res, err := dialect.Transform(query.Block, profile, dialect.Options{
		SimulateInference: cfg.SimulateInference,
	})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDialect, err.Error(), nil)
	}
	query.Block = optimize.Optimize(res.Block)
	query.DefaultGraph = res.DefaultGraph

	ts, closeStore, err := openStore(cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer closeStore()

	rows, err := ts.Select(ctx, query)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := QueryResult{Variables: query.Variables}
	for _, row := range rows {
		out := make(map[string]string, len(row))
		for name, term := range row {
			out[name] = rdf.TermString(term)
		}
		result.Rows = append(result.Rows, out)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	printRows(formatter, result)
	return nil
}

// openStore builds the configured TripleStore. The returned func releases
// any held resources.
func openStore(cfg config.Config) (store.TripleStore, func(), error) {
	switch cfg.Store.Kind {
	case "http":
		timeout := time.Duration(cfg.Store.TimeoutSeconds) * time.Second
		return sparqlhttp.New(cfg.Store.Endpoint, timeout), func() {}, nil
	case "embedded":
		s, err := local.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func printRows(formatter *OutputFormatter, result QueryResult) {
	if len(result.Rows) == 0 {
		fmt.Fprintln(formatter.Writer, "no results")
		return
	}
	for i, row := range result.Rows {
		fmt.Fprintf(formatter.Writer, "[%d]\n", i)
		names := make([]string, 0, len(row))
		for name := range row {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(formatter.Writer, "  %s = %s\n", name, row[name])
		}
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
