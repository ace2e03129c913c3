package criteria

import (
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// atomBuilder turns one resolved criterion into a predicate. The value has not
// been coerced yet; each builder coerces the way its operation needs.
type atomBuilder func(field ir.FieldSpec, value ir.IRValue) (queryir.Predicate, error)

// builders is the dispatch table, keyed by canonical operation.
var builders = map[Operation]atomBuilder{
	GreaterThan:      compareBuilder(queryir.OpGt),
	LessThan:         compareBuilder(queryir.OpLt),
	GreaterThanEqual: compareBuilder(queryir.OpGe),
	LessThanEqual:    compareBuilder(queryir.OpLe),
	Equal:            compareBuilder(queryir.OpEq),
	NotEqual:         compareBuilder(queryir.OpNe),
	Match:            matchBuilder(queryir.AnchorContains),
	StartsWith:       matchBuilder(queryir.AnchorPrefix),
	EndsWith:         matchBuilder(queryir.AnchorSuffix),
	In:               setBuilder(false),
	NotIn:            setBuilder(true),
}

// Compiler compiles criteria for one entity schema. It holds no mutable state
// and may be shared between goroutines.
type Compiler struct {
	schema *ir.EntitySchema
}

// NewCompiler creates a compiler for schema.
func NewCompiler(schema *ir.EntitySchema) *Compiler {
	return &Compiler{schema: schema}
}

// Compile is shorthand for NewCompiler(schema).Compile(criteria).
func Compile(schema *ir.EntitySchema, criteria ...Criterion) (queryir.Predicate, error) {
	return NewCompiler(schema).Compile(criteria)
}

// Compile returns a predicate matching exactly the records that satisfy every
// criterion.
//
// No criteria compile to queryir.True. One criterion compiles to its atom. More
// compile to a queryir.And with the atoms in input order. Errors carry the index
// of the failing criterion.
func (c *Compiler) Compile(criteria []Criterion) (queryir.Predicate, error) {
	if c.schema == nil {
		return nil, queryir.NewConfigurationError("", "compiler has no schema")
	}
	if len(criteria) == 0 {
		return queryir.True{}, nil
	}

	atoms := make([]queryir.Predicate, len(criteria))
	for i, crit := range criteria {
		atom, err := c.compileOne(crit)
		if err != nil {
			return nil, err.AtIndex(i)
		}
		atoms[i] = atom
	}

	if len(atoms) == 1 {
		return atoms[0], nil
	}
	return queryir.And{Predicates: atoms}, nil
}

func (c *Compiler) compileOne(crit Criterion) (queryir.Predicate, *queryir.Error) {
	field, ok := c.schema.Field(crit.key)
	if !ok {
		return nil, queryir.NewConfigurationError(crit.key, "unknown field on %s", c.schema.Name)
	}
	build, ok := builders[crit.op.Canonical()]
	if !ok {
		return nil, queryir.NewConfigurationError(crit.key, "unsupported operation %q", crit.op)
	}
	if crit.valueErr != nil {
		return nil, queryir.NewInvalidArgument(crit.key, "%v", crit.valueErr)
	}

	atom, err := build(field, crit.value)
	if err != nil {
		return nil, asError(crit.key, err)
	}
	return atom, nil
}

// asError keeps *queryir.Error values as they are and classifies anything else
// as an invalid argument.
func asError(field string, err error) *queryir.Error {
	if qe, ok := err.(*queryir.Error); ok {
		return qe
	}
	return queryir.NewInvalidArgument(field, "%v", err)
}
