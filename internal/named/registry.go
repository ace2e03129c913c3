package named

import (
	"slices"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Constructor builds a predicate from one filter value.
type Constructor func(v any) (queryir.Predicate, error)

// Registry maps filter keys to constructors.
type Registry map[string]Constructor

// CustomerFilters returns the registry behind customer filter maps such as
// {"name": "jacob", "age": 16}. Every call builds a fresh map, so callers may
// extend theirs without affecting anyone else.
func CustomerFilters() Registry {
	return Registry{
		"name": CustomerHasName,
		"age":  CustomerAgeLessThan,
	}
}

// MovieFilters returns the registry for movie filter maps.
func MovieFilters() Registry {
	return Registry{
		"genre":          MovieGenreIs,
		"title":          MovieTitleContains,
		"releasedBefore": MovieReleasedBefore,
		"ratedAbove":     MovieRatedAbove,
	}
}

// EmployeeFilters returns the registry for employee filter maps. "salary"
// takes a two-element [lo, hi] list.
func EmployeeFilters() Registry {
	return Registry{
		"department": EmployeeDeptIn,
		"salary":     salaryRange,
	}
}

// RegistryFor returns a fresh copy of the builtin registry for an entity.
func RegistryFor(entity string) (Registry, bool) {
	switch entity {
	case "Customer":
		return CustomerFilters(), true
	case "Movie":
		return MovieFilters(), true
	case "Employee":
		return EmployeeFilters(), true
	}
	return nil, false
}

// Keys returns the registered keys in sorted order.
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Assemble builds one predicate per entry of params, in sorted key order.
//
// A key with no constructor fails with UNSUPPORTED_FILTER_KEY; constructor
// errors are returned as they are. An empty map yields an empty list.
func (r Registry) Assemble(params map[string]any) ([]queryir.Predicate, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]queryir.Predicate, 0, len(keys))
	for _, k := range keys {
		build, ok := r[k]
		if !ok {
			return nil, queryir.NewUnsupportedFilterKey(k)
		}
		p, err := build(params[k])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FromParams assembles params with r and conjoins the result. An empty map fails
// with EMPTY_COMBINATION.
func FromParams(r Registry, params map[string]any) (queryir.Predicate, error) {
	ps, err := r.Assemble(params)
	if err != nil {
		return nil, err
	}
	return queryir.Reduce(ps)
}

func salaryRange(v any) (queryir.Predicate, error) {
	irv, err := ir.FromAny(v)
	if err != nil {
		return nil, queryir.NewInvalidArgument("salary", "expected [lo, hi]: %v", err)
	}
	bounds, ok := irv.(ir.IRArray)
	if !ok || len(bounds) != 2 {
		return nil, queryir.NewInvalidArgument("salary", "expected [lo, hi], got %s", ir.String(irv))
	}
	return EmployeeSalaryBetween(bounds[0], bounds[1])
}
