package store

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
)

// Schema version tracking:
// 0 - Empty database
// 1 - One table per entity schema, generated from the schema
const currentSchemaVersion = 1

// Options tunes a Store. Zero values select the defaults.
type Options struct {
	// Logger receives debug lines for every query. Defaults to discarding.
	Logger *slog.Logger

	// DefaultPageSize is used by FindPage when the query has no Page.
	DefaultPageSize int `validate:"gte=0"`

	// MaxPageSize rejects larger pages. Zero means no limit.
	MaxPageSize int `validate:"gte=0"`

	// TraceIDs generates per-query trace ids. Defaults to UUIDv7Generator.
	TraceIDs TraceIDGenerator
}

const defaultPageSize = 20

// Store executes queryir.Select values against SQLite.
type Store struct {
	db       *sql.DB
	compiler *querysql.SQLCompiler
	schemas  []*ir.EntitySchema
	opts     Options
	validate *validator.Validate
}

// Open creates or opens a SQLite database at the given path and makes sure a
// table exists for every schema. Applies required pragmas and migrations
// automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, schemas []*ir.EntitySchema, opts Options) (*Store, error) {
	v := validator.New()
	if err := v.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid store options: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.DefaultPageSize == 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.TraceIDs == nil {
		opts.TraceIDs = UUIDv7Generator{}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db, schemas); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{
		db:       db,
		compiler: querysql.NewSQLCompiler(schemas...),
		schemas:  schemas,
		opts:     opts,
		validate: v,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Schemas returns the entity schemas the store was opened with.
func (s *Store) Schemas() []*ir.EntitySchema {
	return s.schemas
}

// Schema returns the schema for entity.
func (s *Store) Schema(entity string) (*ir.EntitySchema, bool) {
	return s.compiler.Schema(entity)
}

// Compiler returns the SQL compiler bound to the store's schemas.
func (s *Store) Compiler() *querysql.SQLCompiler {
	return s.compiler
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. This function is idempotent.
func applySchema(db *sql.DB, schemas []*ir.EntitySchema) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	for _, schema := range schemas {
		ddl, err := querysql.CreateTable(schema)
		if err != nil {
			return err
		}
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table for %s: %w", schema.Name, err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
