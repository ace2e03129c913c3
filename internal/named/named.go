// Package named provides domain-named predicate constructors and the registry
// that assembles them from a filter map.
//
// Every constructor is a free function that validates its argument and returns a
// queryir.Predicate, so a named filter composes with compiled criteria through
// the queryir combinators. Constructors never touch storage.
package named

import (
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// CustomerHasName matches customers whose name equals v exactly.
func CustomerHasName(v any) (queryir.Predicate, error) {
	name, err := stringArg("name", v)
	if err != nil {
		return nil, err
	}
	return queryir.Compare{Field: "name", Op: queryir.OpEq, Value: ir.IRString(name)}, nil
}

// CustomerAgeLessThan matches customers strictly younger than v years.
// v must be a non-negative integer or a string holding one.
func CustomerAgeLessThan(v any) (queryir.Predicate, error) {
	age, err := intArg("age", v)
	if err != nil {
		return nil, err
	}
	if age < 0 {
		return nil, queryir.NewInvalidArgument("age", "must be >= 0, got %d", age)
	}
	return queryir.Compare{Field: "age", Op: queryir.OpLt, Value: ir.IRInt(age)}, nil
}

// EmployeeDeptIn matches employees in any of the listed departments.
func EmployeeDeptIn(v any) (queryir.Predicate, error) {
	depts, err := stringListArg("department", v)
	if err != nil {
		return nil, err
	}
	return queryir.In{Field: "department", Values: depts}, nil
}

// EmployeeSalaryBetween matches salaries in the closed range [lo, hi].
func EmployeeSalaryBetween(lo, hi any) (queryir.Predicate, error) {
	low, err := intArg("salary", lo)
	if err != nil {
		return nil, err
	}
	high, err := intArg("salary", hi)
	if err != nil {
		return nil, err
	}
	if low < 0 {
		return nil, queryir.NewInvalidArgument("salary", "lower bound must be >= 0, got %d", low)
	}
	if low > high {
		return nil, queryir.NewInvalidArgument("salary", "empty range [%d, %d]", low, high)
	}
	return queryir.Conjoin(
		queryir.Compare{Field: "salary", Op: queryir.OpGe, Value: ir.IRInt(low)},
		queryir.Compare{Field: "salary", Op: queryir.OpLe, Value: ir.IRInt(high)},
	), nil
}

// MovieGenreIs matches movies of exactly genre v.
func MovieGenreIs(v any) (queryir.Predicate, error) {
	genre, err := stringArg("genre", v)
	if err != nil {
		return nil, err
	}
	return queryir.Compare{Field: "genre", Op: queryir.OpEq, Value: ir.IRString(genre)}, nil
}

// MovieTitleContains matches titles containing v, ignoring case.
func MovieTitleContains(v any) (queryir.Predicate, error) {
	term, err := stringArg("title", v)
	if err != nil {
		return nil, err
	}
	return queryir.Match{Field: "title", Anchor: queryir.AnchorContains, Term: queryir.Fold(term)}, nil
}

// MovieReleasedBefore matches movies released strictly before year v.
func MovieReleasedBefore(v any) (queryir.Predicate, error) {
	year, err := intArg("releaseYear", v)
	if err != nil {
		return nil, err
	}
	if year <= 0 {
		return nil, queryir.NewInvalidArgument("releaseYear", "must be a positive year, got %d", year)
	}
	return queryir.Compare{Field: "releaseYear", Op: queryir.OpLt, Value: ir.IRInt(year)}, nil
}

// MovieRatedAbove matches movies rated strictly above v, on a 0-10 scale.
func MovieRatedAbove(v any) (queryir.Predicate, error) {
	rating, err := numberArg("rating", v)
	if err != nil {
		return nil, err
	}
	if rating < 0 || rating > 10 {
		return nil, queryir.NewInvalidArgument("rating", "must be within [0, 10], got %v", rating)
	}
	return queryir.Compare{Field: "rating", Op: queryir.OpGt, Value: ir.IRFloat(rating)}, nil
}
