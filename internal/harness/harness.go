package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/named"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/store"
)

// Harness executes one scenario against its own store.
type Harness struct {
	store  *store.Store
	schema *ir.EntitySchema
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load entity schemas (builtin or schema_dir) and open the store
// 2. Insert the scenario records, or seed the demo data
// 3. Build the predicate from criteria and named filters
// 4. Compile and run the query
// 5. Check SQL results against in-memory evaluation
// 6. Evaluate assertions
//
// An error is returned only when the harness itself cannot run; query
// failures are part of the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	schemas, err := loadSchemas(scenario.SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	st, err := store.Open(":memory:", schemas, store.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	schema, ok := st.Schema(scenario.Entity)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", scenario.Entity)
	}

	h := &Harness{store: st, schema: schema, logger: logger}

	if err := h.loadRecords(ctx, scenario); err != nil {
		return nil, err
	}

	result := NewResult()
	h.execute(ctx, scenario, result)
	evaluateAssertions(scenario.Assertions, result)
	return result, nil
}

func loadSchemas(dir string) ([]*ir.EntitySchema, error) {
	if dir == "" {
		return compiler.Builtin()
	}
	return compiler.LoadDir(dir)
}

func (h *Harness) loadRecords(ctx context.Context, scenario *Scenario) error {
	if len(scenario.Records) == 0 {
		if _, err := h.store.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		return nil
	}

	recs := make([]ir.Record, len(scenario.Records))
	for i, step := range scenario.Records {
		fields, err := ir.FromAny(step.Fields)
		if err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		recs[i] = ir.Record{ID: step.ID, Fields: fields.(ir.IRObject)}
	}
	if err := h.store.InsertAll(ctx, scenario.Entity, recs); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

// execute builds and runs the query, recording the outcome on result. Typed
// query errors end execution and are kept for "error" assertions.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) {
	filter, err := h.buildFilter(scenario)
	if err != nil {
		recordQueryError(result, err)
		return
	}
	result.Filter = queryir.Describe(filter)

	sel := queryir.Select{
		From:   scenario.Entity,
		Filter: filter,
		Sort:   scenario.Sort,
		Page:   scenario.Page,
	}

	sql, params, err := h.store.Compiler().Compile(sel)
	if err != nil {
		recordQueryError(result, err)
		return
	}
	result.SQL = sql
	result.Params = params

	if sel.Page != nil {
		page, err := h.store.FindPage(ctx, sel)
		if err != nil {
			recordQueryError(result, err)
			return
		}
		result.Records = page.Records
		result.Total = page.Total
	} else {
		recs, err := h.store.Find(ctx, sel)
		if err != nil {
			recordQueryError(result, err)
			return
		}
		result.Records = recs
		result.Total = int64(len(recs))
	}

	h.checkParity(ctx, scenario.Entity, filter, result)
}

// buildFilter converts the scenario's criteria entries and hands them to
// named.Build with its filters.
func (h *Harness) buildFilter(scenario *Scenario) (queryir.Predicate, error) {
	crits, err := criteria.FromEntries(scenario.Criteria)
	if err != nil {
		return nil, err
	}
	return named.Build(h.schema, named.Request{
		Criteria: crits,
		Filters:  scenario.Filters,
		Any:      scenario.Combine == CombineAny,
	})
}

// checkParity runs the filter unsorted and unpaged through SQLite and through
// queryir.Filter over every stored record; both must select the same ids.
func (h *Harness) checkParity(ctx context.Context, entity string, filter queryir.Predicate, result *Result) {
	all, err := h.store.Find(ctx, queryir.Select{From: entity})
	if err != nil {
		result.AddError(fmt.Sprintf("parity: load records: %v", err))
		return
	}
	viaSQL, err := h.store.Find(ctx, queryir.Select{From: entity, Filter: filter})
	if err != nil {
		result.AddError(fmt.Sprintf("parity: query: %v", err))
		return
	}

	want := recordIDs(queryir.Filter(filter, all))
	got := recordIDs(viaSQL)
	if !slices.Equal(want, got) {
		result.AddError(fmt.Sprintf("parity: sql selected %v, in-memory evaluation selected %v", got, want))
	}
}

func recordQueryError(result *Result, err error) {
	result.ErrorCode = string(queryir.CodeOf(err))
	result.Error = err.Error()
}
