package criteria

import (
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

func compareBuilder(op queryir.CompareOp) atomBuilder {
	return func(field ir.FieldSpec, value ir.IRValue) (queryir.Predicate, error) {
		if _, isArr := value.(ir.IRArray); isArr {
			return nil, queryir.NewInvalidArgument(field.Name, "operator %s takes a single value, got a list", op)
		}
		v, err := ir.Coerce(value, field.Type)
		if err != nil {
			return nil, err
		}
		return queryir.Compare{Field: field.Name, Op: op, Value: v}, nil
	}
}

func matchBuilder(anchor queryir.Anchor) atomBuilder {
	return func(field ir.FieldSpec, value ir.IRValue) (queryir.Predicate, error) {
		if field.Type != ir.FieldString {
			return nil, queryir.NewConfigurationError(field.Name, "text match requires a string field, %s is %s", field.Name, field.Type)
		}
		term, err := termOf(field, value)
		if err != nil {
			return nil, err
		}
		return queryir.Match{Field: field.Name, Anchor: anchor, Term: queryir.Fold(term)}, nil
	}
}

// termOf stringifies a match operand. Numbers and bools are accepted so that
// "title MATCH 2049" works.
func termOf(field ir.FieldSpec, value ir.IRValue) (string, error) {
	switch v := value.(type) {
	case ir.IRString:
		return string(v), nil
	case ir.IRInt, ir.IRFloat, ir.IRBool:
		return ir.String(v), nil
	}
	return "", queryir.NewInvalidArgument(field.Name, "text match needs a scalar term, got %s", ir.KindOf(value))
}

func setBuilder(negated bool) atomBuilder {
	return func(field ir.FieldSpec, value ir.IRValue) (queryir.Predicate, error) {
		var elems ir.IRArray
		switch v := value.(type) {
		case ir.IRArray:
			elems = v
		case ir.IRNull, nil:
			return nil, queryir.NewInvalidArgument(field.Name, "set operation needs a list of values, got null")
		default:
			elems = ir.IRArray{v}
		}

		values := make([]ir.IRValue, len(elems))
		for i, elem := range elems {
			coerced, err := ir.Coerce(elem, field.Type)
			if err != nil {
				return nil, queryir.NewInvalidArgument(field.Name, "element %d: %v", i, err)
			}
			values[i] = coerced
		}
		return queryir.In{Field: field.Name, Values: values, Negated: negated}, nil
	}
}
