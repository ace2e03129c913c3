package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	FilterOptions
	Database string
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Entity  string      `json:"entity"`
	Filter  string      `json:"filter"`
	Records []ir.Record `json:"records"`
	Total   int64       `json:"total"`
	Page    *PageInfo   `json:"page,omitempty"`
}

// PageInfo describes the page returned when paging was requested.
type PageInfo struct {
	Index int `json:"index"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <entity>",
		Short: "Find records matching criteria and named filters",
		Long: `Find records of an entity. Criteria (--where, --criteria) compile against
the entity schema; named filters (--filter) go through the entity's filter
registry. All parts must match unless --any is given.

Operators: GREATER_THAN LESS_THAN GREATER_THAN_EQUAL LESS_THAN_EQUAL
EQUAL NOT_EQUAL MATCH STARTS_WITH ENDS_WITH IN NOT_IN, or > < >= <= = !=.

Examples:
  sieve query Movie --where title:MATCH:black
  sieve query Movie --where "rating:>=:8" --sort rating:desc --page 0 --size 5
  sieve query Customer --filter name=jacob --filter age=16
  sieve query Employee --filter department=IT,Admin --filter salary=3000,6000
  sieve query Movie --any --where genre:=:Comedy --where title:STARTS_WITH:the`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database.path)")
	opts.FilterOptions.bind(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	st, _, err := openStore(opts.RootOptions, cmd, opts.Database)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st)

	schema, ok := st.Schema(entity)
	if !ok {
		return fail(formatter, "invalid query", queryir.NewConfigurationError("", "unknown entity %q", entity))
	}

	sel, err := opts.selectFor(cmd, schema, opts.Config.Query.DefaultPageSize)
	if err != nil {
		return fail(formatter, "invalid query", err)
	}
	formatter.VerboseLog("Filter: %s", queryir.Describe(sel.Filter))

	result := QueryResult{Entity: entity, Filter: queryir.Describe(sel.Filter)}
	if sel.Page != nil {
		page, err := st.FindPage(ctx, sel)
		if err != nil {
			return fail(formatter, "query failed", err)
		}
		result.Records = page.Records
		result.Total = page.Total
		result.Page = &PageInfo{Index: page.Index, Size: page.Size, Pages: page.TotalPages()}
	} else {
		recs, err := st.Find(ctx, sel)
		if err != nil {
			return fail(formatter, "query failed", err)
		}
		result.Records = recs
		result.Total = int64(len(recs))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputQueryText(cmd, schema, result)
}

// outputQueryText prints the records as an aligned table, one column per
// schema field in declaration order.
func outputQueryText(cmd *cobra.Command, schema *ir.EntitySchema, result QueryResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Filter: %s\n\n", result.Filter)

	if len(result.Records) == 0 {
		fmt.Fprintln(w, "No records found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		header := append([]string{"ID"}, schema.FieldNames()...)
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, rec := range result.Records {
			row := make([]string, 0, len(header))
			row = append(row, fmt.Sprint(rec.ID))
			for _, f := range schema.Fields {
				row = append(row, cell(rec.Get(f.Name)))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	if result.Page != nil {
		fmt.Fprintf(w, "Page %d of %d (%d record(s), %d total)\n",
			result.Page.Index+1, result.Page.Pages, len(result.Records), result.Total)
	} else {
		fmt.Fprintf(w, "%d record(s)\n", result.Total)
	}
	return nil
}

// cell renders a value without the quotes ir.String adds to strings.
func cell(v ir.IRValue) string {
	if s, ok := v.(ir.IRString); ok {
		return string(s)
	}
	return ir.String(v)
}
