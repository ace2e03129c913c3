package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
)

// Insert writes one record and returns its id. A zero rec.ID lets SQLite assign
// the next id. Field values are coerced to the schema's types, so "2004" is
// stored as an integer in an int column.
func (s *Store) Insert(ctx context.Context, entity string, rec ir.Record) (int64, error) {
	schema, ok := s.compiler.Schema(entity)
	if !ok {
		return 0, fmt.Errorf("insert: unknown entity %q", entity)
	}
	return insert(ctx, s.db, schema, rec)
}

// InsertAll writes records in a single transaction. Either every record is
// written or none is.
func (s *Store) InsertAll(ctx context.Context, entity string, recs []ir.Record) error {
	schema, ok := s.compiler.Schema(entity)
	if !ok {
		return fmt.Errorf("insert: unknown entity %q", entity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert %s: %w", entity, err)
	}
	defer tx.Rollback()

	for i, rec := range recs {
		if _, err := insert(ctx, tx, schema, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert %s: %w", entity, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, schema *ir.EntitySchema, rec ir.Record) (int64, error) {
	query, params, err := querysql.Insert(schema, rec)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	res, err := db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", schema.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", schema.Name, err)
	}
	return id, nil
}
