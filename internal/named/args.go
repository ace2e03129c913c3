package named

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// stringArg accepts a non-empty string.
func stringArg(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		irv, err := ir.FromAny(v)
		if err != nil {
			return "", queryir.NewInvalidArgument(field, "expected a string: %v", err)
		}
		is, ok := irv.(ir.IRString)
		if !ok {
			return "", queryir.NewInvalidArgument(field, "expected a string, got %s", ir.KindOf(irv))
		}
		s = string(is)
	}
	if strings.TrimSpace(s) == "" {
		return "", queryir.NewInvalidArgument(field, "must not be empty")
	}
	return s, nil
}

// intArg accepts any Go integer, an integral float (JSON numbers decode as
// float64), or a string holding a base-10 integer.
func intArg(field string, v any) (int64, error) {
	irv, err := ir.FromAny(v)
	if err != nil {
		return 0, queryir.NewInvalidArgument(field, "expected an integer: %v", err)
	}
	switch n := irv.(type) {
	case ir.IRInt:
		return int64(n), nil
	case ir.IRFloat:
		f := float64(n)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return 0, queryir.NewInvalidArgument(field, "expected an integer, got %s", ir.String(n))
	case ir.IRString:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		if err != nil {
			return 0, queryir.NewInvalidArgument(field, "expected an integer, got %s", ir.String(n))
		}
		return i, nil
	}
	return 0, queryir.NewInvalidArgument(field, "expected an integer, got %s", ir.KindOf(irv))
}

// numberArg accepts integers, finite floats, and numeric strings.
func numberArg(field string, v any) (float64, error) {
	irv, err := ir.FromAny(v)
	if err != nil {
		return 0, queryir.NewInvalidArgument(field, "expected a number: %v", err)
	}
	f, err := ir.Coerce(irv, ir.FieldFloat)
	if err != nil {
		return 0, queryir.NewInvalidArgument(field, "expected a number, got %s", ir.String(irv))
	}
	return float64(f.(ir.IRFloat)), nil
}

// stringListArg accepts a non-empty slice of strings. A single string is a
// one-element list.
func stringListArg(field string, v any) ([]ir.IRValue, error) {
	irv, err := ir.FromAny(v)
	if err != nil {
		return nil, queryir.NewInvalidArgument(field, "expected a list of strings: %v", err)
	}
	if s, ok := irv.(ir.IRString); ok {
		irv = ir.IRArray{s}
	}
	arr, ok := irv.(ir.IRArray)
	if !ok {
		return nil, queryir.NewInvalidArgument(field, "expected a list of strings, got %s", ir.KindOf(irv))
	}
	if len(arr) == 0 {
		return nil, queryir.NewInvalidArgument(field, "list must not be empty")
	}
	out := make([]ir.IRValue, len(arr))
	for i, elem := range arr {
		if _, ok := elem.(ir.IRString); !ok {
			return nil, queryir.NewInvalidArgument(field, "element %d: expected a string, got %s", i, ir.KindOf(elem))
		}
		out[i] = elem
	}
	return out, nil
}
