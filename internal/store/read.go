package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Find returns every record matching q, honoring q.Sort and q.Page.
// Results are ordered deterministically: sort directives, then id ASC.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Find(ctx context.Context, q queryir.Select) ([]ir.Record, error) {
	if err := s.checkPage(q.Page); err != nil {
		return nil, err
	}
	schema, ok := s.compiler.Schema(q.From)
	if !ok {
		return nil, queryir.NewConfigurationError("", "unknown entity %q", q.From)
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", q.From, err)
	}

	trace := s.opts.TraceIDs.Generate()
	start := time.Now()
	s.opts.Logger.DebugContext(ctx, "executing query",
		"trace", trace,
		"entity", q.From,
		"filter", queryir.Describe(q.Filter),
		"sql", query,
	)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", schema.Table, err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", schema.Table, err)
	}

	s.opts.Logger.DebugContext(ctx, "query complete",
		"trace", trace,
		"rows", len(records),
		"elapsed", time.Since(start),
	)
	return records, nil
}

// Count returns the number of records matching q.Filter.
func (s *Store) Count(ctx context.Context, q queryir.Select) (int64, error) {
	query, params, err := s.compiler.CompileCount(q)
	if err != nil {
		return 0, fmt.Errorf("compile %s count: %w", q.From, err)
	}

	s.opts.Logger.DebugContext(ctx, "executing count",
		"trace", s.opts.TraceIDs.Generate(),
		"entity", q.From,
		"sql", query,
	)

	var n int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From, err)
	}
	return n, nil
}

// FindPage returns one page of matches plus the total match count. A query
// without a Page gets page 0 of the default size.
func (s *Store) FindPage(ctx context.Context, q queryir.Select) (ir.Page, error) {
	if q.Page == nil {
		q.Page = &ir.PageRequest{Index: 0, Size: s.opts.DefaultPageSize}
	}

	records, err := s.Find(ctx, q)
	if err != nil {
		return ir.Page{}, err
	}
	total, err := s.Count(ctx, q)
	if err != nil {
		return ir.Page{}, err
	}

	return ir.Page{
		Records: records,
		Total:   total,
		Index:   q.Page.Index,
		Size:    q.Page.Size,
	}, nil
}

// checkPage validates a page request against its struct tags and the
// configured maximum size.
func (s *Store) checkPage(p *ir.PageRequest) error {
	if p == nil {
		return nil
	}
	if err := s.validate.Struct(p); err != nil {
		return queryir.NewInvalidArgument("page", "%v", err)
	}
	if s.opts.MaxPageSize > 0 && p.Size > s.opts.MaxPageSize {
		return queryir.NewInvalidArgument("page", "size %d exceeds maximum %d", p.Size, s.opts.MaxPageSize)
	}
	return nil
}

// scanRecord reads id followed by one column per schema field, in declaration
// order, which is the column order querysql emits.
func scanRecord(rows *sql.Rows, schema *ir.EntitySchema) (ir.Record, error) {
	var id int64
	holders := make([]any, 0, len(schema.Fields)+1)
	holders = append(holders, &id)
	for _, f := range schema.Fields {
		holders = append(holders, holderFor(f.Type))
	}

	if err := rows.Scan(holders...); err != nil {
		return ir.Record{}, fmt.Errorf("scan %s row: %w", schema.Name, err)
	}

	fields := make(ir.IRObject, len(schema.Fields))
	for i, f := range schema.Fields {
		fields[f.Name] = fromHolder(holders[i+1])
	}
	return ir.Record{ID: id, Fields: fields}, nil
}

func holderFor(t ir.FieldType) any {
	switch t {
	case ir.FieldInt:
		return new(int64)
	case ir.FieldFloat:
		return new(float64)
	case ir.FieldBool:
		return new(bool)
	default:
		return new(string)
	}
}

func fromHolder(h any) ir.IRValue {
	switch v := h.(type) {
	case *int64:
		return ir.IRInt(*v)
	case *float64:
		return ir.IRFloat(*v)
	case *bool:
		return ir.IRBool(*v)
	case *string:
		return ir.IRString(*v)
	}
	return ir.IRNull{}
}
