package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	FilterOptions
}

// CompilationResult holds the compiled form of one query.
type CompilationResult struct {
	Entity      string `json:"entity"`
	Filter      string `json:"filter"`
	SQL         string `json:"sql"`
	Params      []any  `json:"params"`
	CountSQL    string `json:"count_sql"`
	CountParams []any  `json:"count_params"`
	Fingerprint string `json:"fingerprint"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <entity>",
		Short: "Show the SQL a query compiles to",
		Long: `Compile criteria and named filters to the predicate, the parameterized
SQL and the count query, without touching a database. Takes the same
filter flags as query.

The fingerprint is a content hash of the whole query; equal queries
have equal fingerprints.

Examples:
  sieve compile Customer --filter name=jacob --filter age=16
  sieve compile Movie --where title:MATCH:black --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	opts.FilterOptions.bind(cmd)

	return cmd
}

func runCompile(opts *CompileOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	schemas, err := loadSchemas(cfg.Schema.Dir)
	if err != nil {
		return fail(formatter, "failed to load schemas", err)
	}
	schema, err := lookupSchema(schemas, entity)
	if err != nil {
		return fail(formatter, "invalid query", err)
	}

	sel, err := opts.selectFor(cmd, schema, cfg.Query.DefaultPageSize)
	if err != nil {
		return fail(formatter, "invalid query", err)
	}

	sqlc := querysql.NewSQLCompiler(schemas...)
	query, params, err := sqlc.Compile(sel)
	if err != nil {
		return fail(formatter, "compilation failed", err)
	}
	countQuery, countParams, err := sqlc.CompileCount(sel)
	if err != nil {
		return fail(formatter, "compilation failed", err)
	}
	fingerprint, err := queryir.QueryFingerprint(sel)
	if err != nil {
		return fail(formatter, "compilation failed", err)
	}

	result := CompilationResult{
		Entity:      entity,
		Filter:      queryir.Describe(sel.Filter),
		SQL:         query,
		Params:      params,
		CountSQL:    countQuery,
		CountParams: countParams,
		Fingerprint: fingerprint,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Filter:      %s\n", result.Filter)
	fmt.Fprintf(w, "SQL:         %s\n", result.SQL)
	fmt.Fprintf(w, "Params:      %v\n", result.Params)
	fmt.Fprintf(w, "Count SQL:   %s\n", result.CountSQL)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	return nil
}
