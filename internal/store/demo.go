package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

func movie(id int64, title, genre string, year int64, rating, minutes float64) ir.Record {
	return ir.Record{ID: id, Fields: ir.NewIRObjectFromPairs(
		ir.O("title", ir.IRString(title)),
		ir.O("genre", ir.IRString(genre)),
		ir.O("releaseYear", ir.IRInt(year)),
		ir.O("rating", ir.IRFloat(rating)),
		ir.O("watchTime", ir.IRFloat(minutes)),
	)}
}

func customer(id int64, name string, age int64) ir.Record {
	return ir.Record{ID: id, Fields: ir.NewIRObjectFromPairs(
		ir.O("name", ir.IRString(name)),
		ir.O("age", ir.IRInt(age)),
	)}
}

func employee(id int64, name, dept string, salary int64) ir.Record {
	return ir.Record{ID: id, Fields: ir.NewIRObjectFromPairs(
		ir.O("name", ir.IRString(name)),
		ir.O("department", ir.IRString(dept)),
		ir.O("salary", ir.IRInt(salary)),
	)}
}

// DemoData is the sample dataset loaded by Seed, keyed by entity name. Ids are
// fixed so seeding twice is a no-op and query output is reproducible.
func DemoData() map[string][]ir.Record {
	return map[string][]ir.Record{
		"Movie": {
			movie(1, "Black Panther", "Action", 2018, 7.3, 135),
			movie(2, "Joker", "Drama", 2019, 8.4, 122),
			movie(3, "Men in Black", "Comedy", 1997, 7.3, 98),
			movie(4, "Troy", "Drama", 2004, 7.2, 196),
			movie(5, "The Dark Knight", "Action", 2008, 9.0, 152),
			movie(6, "Inception", "Sci-Fi", 2010, 8.8, 148),
			movie(7, "Black Swan", "Thriller", 2010, 8.0, 108),
			movie(8, "Amélie", "Romance", 2001, 8.3, 122),
			movie(9, "Blade Runner 2049", "Sci-Fi", 2017, 8.0, 164),
			movie(10, "Paddington 2", "Family", 2017, 7.8, 103),
		},
		"Customer": {
			customer(1, "jacob", 12),
			customer(2, "rober", 16),
			customer(3, "alice", 34),
			customer(4, "maria", 27),
		},
		"Employee": {
			employee(1, "ann", "IT", 5200),
			employee(2, "bob", "Admin", 3100),
			employee(3, "carla", "Sales", 4100),
			employee(4, "dev", "IT", 6100),
			employee(5, "eve", "Admin", 2800),
		},
	}
}

// Seed loads DemoData into every empty table the store has a schema for.
// Tables that already hold rows are left alone. Returns the number of records
// inserted per entity.
func (s *Store) Seed(ctx context.Context) (map[string]int, error) {
	data := DemoData()
	inserted := make(map[string]int, len(data))

	entities := make([]string, 0, len(data))
	for name := range data {
		entities = append(entities, name)
	}
	slices.Sort(entities)

	for _, entity := range entities {
		if _, ok := s.compiler.Schema(entity); !ok {
			continue
		}
		n, err := s.Count(ctx, queryir.Select{From: entity})
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", entity, err)
		}
		if n > 0 {
			s.opts.Logger.InfoContext(ctx, "seed skipped, table not empty", "entity", entity, "rows", n)
			continue
		}
		if err := s.InsertAll(ctx, entity, data[entity]); err != nil {
			return nil, fmt.Errorf("seed %s: %w", entity, err)
		}
		inserted[entity] = len(data[entity])
		s.opts.Logger.InfoContext(ctx, "seeded", "entity", entity, "rows", len(data[entity]))
	}
	return inserted, nil
}
