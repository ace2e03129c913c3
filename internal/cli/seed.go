package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult reports what seed inserted.
type SeedResult struct {
	Database string         `json:"database"`
	Inserted map[string]int `json:"inserted"`
	Skipped  []string       `json:"skipped"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create tables and load the demo records",
		Long: `Create one table per entity schema and load the demo movies,
customers and employees into every table that is still empty.

Running seed twice is safe: populated tables are skipped.

Example:
  sieve seed --db ./sieve.db
  sieve seed --db /tmp/demo.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database.path)")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, path, err := openStore(opts.RootOptions, cmd, opts.Database)
	if err != nil {
		return fail(formatter, "failed to open database", err)
	}
	defer closeStore(st)

	inserted, err := st.Seed(cmd.Context())
	if err != nil {
		return fail(formatter, "failed to seed", err)
	}

	result := SeedResult{Database: path, Inserted: inserted, Skipped: []string{}}
	for entity := range store.DemoData() {
		if _, ok := st.Schema(entity); !ok {
			continue
		}
		if _, done := inserted[entity]; !done {
			result.Skipped = append(result.Skipped, entity)
		}
	}
	slices.Sort(result.Skipped)

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Seeded %s\n", path)
	entities := make([]string, 0, len(inserted))
	for entity := range inserted {
		entities = append(entities, entity)
	}
	slices.Sort(entities)
	for _, entity := range entities {
		fmt.Fprintf(w, "  %s: %d record(s)\n", entity, inserted[entity])
	}
	for _, entity := range result.Skipped {
		fmt.Fprintf(w, "  %s: already populated\n", entity)
	}
	return nil
}
