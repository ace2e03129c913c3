package queryir

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/sieve/internal/ir"
)

// Fold returns the Unicode full case folding of s. Match terms are stored folded
// and field values are folded the same way before comparison; the SQL backend
// registers this function as casefold() so both paths agree.
func Fold(s string) string {
	// A cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// Matches evaluates p against rec. A nil predicate matches everything.
//
// And and Or short-circuit in operand order. Predicate types from outside this
// package cannot exist, so the default branch is unreachable and reports false.
func Matches(p Predicate, rec ir.Record) bool {
	switch n := p.(type) {
	case nil, True:
		return true
	case Compare:
		return matchCompare(n, rec.Get(n.Field))
	case Match:
		s, ok := rec.Get(n.Field).(ir.IRString)
		if !ok {
			return false
		}
		return matchAnchor(Fold(string(s)), n.Term, n.Anchor)
	case In:
		return matchIn(n, rec.Get(n.Field))
	case And:
		for _, sub := range n.Predicates {
			if !Matches(sub, rec) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range n.Predicates {
			if Matches(sub, rec) {
				return true
			}
		}
		return false
	case Not:
		return !Matches(n.Predicate, rec)
	default:
		return false
	}
}

// Filter returns the records p matches, preserving input order.
func Filter(p Predicate, recs []ir.Record) []ir.Record {
	out := []ir.Record{}
	for _, r := range recs {
		if Matches(p, r) {
			out = append(out, r)
		}
	}
	return out
}

func matchCompare(c Compare, v ir.IRValue) bool {
	if ir.KindOf(v) == ir.KindNull {
		return false
	}
	switch c.Op {
	case OpEq:
		return ir.Equal(v, c.Value)
	case OpNe:
		_, err := ir.Compare(v, c.Value)
		return err == nil && !ir.Equal(v, c.Value)
	}

	order, err := ir.Compare(v, c.Value)
	if err != nil {
		return false
	}
	switch c.Op {
	case OpLt:
		return order < 0
	case OpGt:
		return order > 0
	case OpLe:
		return order <= 0
	case OpGe:
		return order >= 0
	}
	return false
}

func matchAnchor(value, term string, anchor Anchor) bool {
	switch anchor {
	case AnchorPrefix:
		return strings.HasPrefix(value, term)
	case AnchorSuffix:
		return strings.HasSuffix(value, term)
	default:
		return strings.Contains(value, term)
	}
}

// matchIn treats a null or missing value as a member of no set, so exactly one
// of IN and NOT IN holds for every record. Store columns are NOT NULL, which
// keeps this in line with the SQL backend.
func matchIn(n In, v ir.IRValue) bool {
	if ir.KindOf(v) == ir.KindNull {
		return n.Negated
	}
	found := false
	for _, candidate := range n.Values {
		if ir.Equal(v, candidate) {
			found = true
			break
		}
	}
	return found != n.Negated
}
