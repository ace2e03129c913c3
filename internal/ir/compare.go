package ir

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrIncomparable is returned by Compare when two values have no defined order.
var ErrIncomparable = fmt.Errorf("incomparable values")

// Compare orders two scalar values.
//
// Numbers compare numerically and exactly across IRInt and IRFloat. Strings
// compare byte-wise, which matches SQLite's BINARY collation. Bools order
// false < true.
// Any other pairing (including null, arrays and objects) returns ErrIncomparable.
func Compare(a, b IRValue) (int, error) {
	switch av := a.(type) {
	case IRInt:
		switch bv := b.(type) {
		case IRInt:
			return cmp.Compare(av, bv), nil
		case IRFloat:
			return compareIntFloat(int64(av), float64(bv)), nil
		}
	case IRFloat:
		switch bv := b.(type) {
		case IRInt:
			return -compareIntFloat(int64(bv), float64(av)), nil
		case IRFloat:
			return cmp.Compare(av, bv), nil
		}
	case IRString:
		if bv, ok := b.(IRString); ok {
			return strings.Compare(string(av), string(bv)), nil
		}
	case IRBool:
		if bv, ok := b.(IRBool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv)), nil
		}
	}
	return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, KindOf(a), KindOf(b))
}

// compareIntFloat orders i against f without rounding i to a float64, which
// would merge distinct integers above 2^53. SQLite compares the same way.
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= 1<<63:
		return -1
	case f < -(1 << 63):
		return 1
	}
	whole := math.Trunc(f)
	if c := cmp.Compare(i, int64(whole)); c != 0 {
		return c
	}
	return cmp.Compare(whole, f)
}

func boolRank(b IRBool) int {
	if b {
		return 1
	}
	return 0
}

// Equal reports structural equality. Numbers are widened, so IRInt(7) equals
// IRFloat(7). Null equals nothing, including another null, which matches SQL
// comparison semantics.
func Equal(a, b IRValue) bool {
	switch av := a.(type) {
	case nil, IRNull:
		return false
	case IRArray:
		bv, ok := b.(IRArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, ok := b.(IRObject)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !Equal(v, bv[k]) {
				return false
			}
		}
		return true
	}

	c, err := Compare(a, b)
	return err == nil && c == 0
}

// Coerce converts v into the representation used by fields of type t.
//
// Numeric fields accept IRInt, IRFloat, and strings that parse as numbers (query
// strings and CLI flags arrive as text). Int fields keep fractional operands as
// IRFloat so that "age < 16.5" still compares numerically. String fields accept
// only IRString, bool fields IRBool or "true"/"false".
func Coerce(v IRValue, t FieldType) (IRValue, error) {
	switch t {
	case FieldString:
		if s, ok := v.(IRString); ok {
			return s, nil
		}
	case FieldInt:
		switch val := v.(type) {
		case IRInt:
			return val, nil
		case IRFloat:
			if f := float64(val); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				return IRInt(int64(f)), nil
			}
			return val, nil
		case IRString:
			s := strings.TrimSpace(string(val))
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return IRInt(i), nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				return Coerce(IRFloat(f), t)
			}
		}
	case FieldFloat:
		switch val := v.(type) {
		case IRInt:
			return IRFloat(val), nil
		case IRFloat:
			return val, nil
		case IRString:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
			if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				return IRFloat(f), nil
			}
		}
	case FieldBool:
		switch val := v.(type) {
		case IRBool:
			return val, nil
		case IRString:
			if b, err := strconv.ParseBool(strings.TrimSpace(string(val))); err == nil {
				return IRBool(b), nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown field type %q", t)
	}
	return nil, fmt.Errorf("cannot use %s value %s as %s", KindOf(v), String(v), t)
}
