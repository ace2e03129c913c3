package named

import (
	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Request is everything a caller can ask for in one query: a criteria list and
// a named filter map, joined with AND unless Any is set.
type Request struct {
	Criteria []criteria.Criterion
	Filters  map[string]any
	Any      bool
}

// Build compiles r against schema and returns the combined predicate.
//
// With Any unset the criteria compile as one conjunction and each filter is
// conjoined after it. With Any set every criterion and filter is a separate
// alternative. An empty request selects every record. Filters are looked up
// with RegistryFor(schema.Name).
func Build(schema *ir.EntitySchema, r Request) (queryir.Predicate, error) {
	var parts []queryir.Predicate
	if r.Any {
		for i, c := range r.Criteria {
			atom, err := criteria.Compile(schema, c)
			if err != nil {
				if qe, ok := err.(*queryir.Error); ok {
					return nil, qe.AtIndex(i)
				}
				return nil, err
			}
			parts = append(parts, atom)
		}
	} else if len(r.Criteria) > 0 {
		compiled, err := criteria.Compile(schema, r.Criteria...)
		if err != nil {
			return nil, err
		}
		parts = append(parts, compiled)
	}

	if len(r.Filters) > 0 {
		registry, ok := RegistryFor(schema.Name)
		if !ok {
			return nil, queryir.NewConfigurationError("", "no named filters for entity %q", schema.Name)
		}
		assembled, err := registry.Assemble(r.Filters)
		if err != nil {
			return nil, err
		}
		parts = append(parts, assembled...)
	}

	if len(parts) == 0 {
		return queryir.True{}, nil
	}
	if r.Any {
		return queryir.ReduceAny(parts)
	}
	return queryir.Reduce(parts)
}
