package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/named"
	"github.com/roach88/sieve/internal/queryir"
)

// FilterOptions are the flags shared by query and compile.
type FilterOptions struct {
	Where        []string // key:OP:value
	CriteriaFile string   // YAML list of {key, op, value}
	Filters      []string // key=value for the entity's named filters
	Any          bool     // OR the parts instead of AND
	Sort         []string // field or field:desc
	Page         int
	Size         int
}

func (o *FilterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Where, "where", "w", nil, "criterion key:OP:value (repeatable)")
	cmd.Flags().StringVar(&o.CriteriaFile, "criteria", "", "YAML file of criteria")
	cmd.Flags().StringArrayVarP(&o.Filters, "filter", "f", nil, "named filter key=value; commas make a list (repeatable)")
	cmd.Flags().BoolVar(&o.Any, "any", false, "match records satisfying any part instead of all")
	cmd.Flags().StringArrayVar(&o.Sort, "sort", nil, "sort by field[:asc|desc] (repeatable)")
	cmd.Flags().IntVar(&o.Page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&o.Size, "size", 0, "page size (0 = no paging unless --page is set)")
}

// paged reports whether the flags ask for a page.
func (o *FilterOptions) paged(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("page") || o.Size > 0
}

// selectFor builds the Select for entity. defaultSize fills in --size when
// only --page was given.
func (o *FilterOptions) selectFor(cmd *cobra.Command, schema *ir.EntitySchema, defaultSize int) (queryir.Select, error) {
	filter, err := o.predicate(schema)
	if err != nil {
		return queryir.Select{}, err
	}

	sel := queryir.Select{From: schema.Name, Filter: filter}
	for _, s := range o.Sort {
		sort, err := parseSort(s)
		if err != nil {
			return queryir.Select{}, err
		}
		sel.Sort = append(sel.Sort, sort)
	}
	if o.paged(cmd) {
		size := o.Size
		if size == 0 {
			size = defaultSize
		}
		sel.Page = &ir.PageRequest{Index: o.Page, Size: size}
	}
	return sel, nil
}

// predicate collects the criteria (file first, then --where) and named
// filters into one predicate. Nothing given selects every record.
func (o *FilterOptions) predicate(schema *ir.EntitySchema) (queryir.Predicate, error) {
	var crits []criteria.Criterion
	if o.CriteriaFile != "" {
		fromFile, err := criteria.LoadFile(o.CriteriaFile)
		if err != nil {
			return nil, err
		}
		crits = append(crits, fromFile...)
	}
	for i, w := range o.Where {
		c, err := criteria.ParseWhere(w)
		if err != nil {
			return nil, fmt.Errorf("--where #%d: %w", i+1, err)
		}
		crits = append(crits, c)
	}

	var params map[string]any
	if len(o.Filters) > 0 {
		var err error
		if params, err = parseFilterFlags(o.Filters); err != nil {
			return nil, err
		}
	}

	return named.Build(schema, named.Request{Criteria: crits, Filters: params, Any: o.Any})
}

// parseFilterFlags turns key=value flags into a filter map. A value with a
// comma becomes a list, so department=IT,Admin and salary=3000,6000 work.
func parseFilterFlags(flags []string) (map[string]any, error) {
	params := make(map[string]any, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, queryir.NewConfigurationError("", "expected key=value, got %q", f)
		}
		if _, dup := params[key]; dup {
			return nil, queryir.NewConfigurationError(key, "filter given twice")
		}
		if strings.Contains(value, ",") {
			items := strings.Split(value, ",")
			for i := range items {
				items[i] = strings.TrimSpace(items[i])
			}
			params[key] = items
			continue
		}
		params[key] = value
	}
	return params, nil
}

// parseSort reads field, field:asc or field:desc.
func parseSort(s string) (ir.Sort, error) {
	field, dir, _ := strings.Cut(s, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return ir.Sort{}, queryir.NewConfigurationError("", "empty sort field in %q", s)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return ir.Sort{Field: field}, nil
	case "desc":
		return ir.Sort{Field: field, Desc: true}, nil
	default:
		return ir.Sort{}, queryir.NewConfigurationError(field, "sort direction must be asc or desc, got %q", dir)
	}
}

// loadSchemas returns the schemas under dir, or the builtin ones.
func loadSchemas(dir string) ([]*ir.EntitySchema, error) {
	if dir == "" {
		return compiler.Builtin()
	}
	return compiler.LoadDir(dir)
}

// lookupSchema finds entity among schemas.
func lookupSchema(schemas []*ir.EntitySchema, entity string) (*ir.EntitySchema, error) {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		if s.Name == entity {
			return s, nil
		}
		names[i] = s.Name
	}
	return nil, queryir.NewConfigurationError("", "unknown entity %q (known: %s)", entity, strings.Join(names, ", "))
}
