package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/store"
)

// openStore opens the database named by dbFlag, or database.path from the
// config, with the configured schemas and page limits.
func openStore(opts *RootOptions, cmd *cobra.Command, dbFlag string) (*store.Store, string, error) {
	cfg, err := opts.setup(cmd)
	if err != nil {
		return nil, "", err
	}
	path := cfg.Database.Path
	if dbFlag != "" {
		path = dbFlag
	}

	schemas, err := loadSchemas(cfg.Schema.Dir)
	if err != nil {
		return nil, path, err
	}

	opts.Logger.Debug("opening database", "path", path, "entities", len(schemas))
	st, err := store.Open(path, schemas, store.Options{
		Logger:          opts.Logger,
		DefaultPageSize: cfg.Query.DefaultPageSize,
		MaxPageSize:     cfg.Query.MaxPageSize,
	})
	if err != nil {
		return nil, path, err
	}
	return st, path, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
