package queryir

import (
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// Fingerprint returns a content hash of p. Structurally equal predicates have
// equal fingerprints, so the value can key a cache of compiled sub-predicates.
//
// The hash covers the canonical JSON encoding of the tree (see ToIR) under the
// ir.DomainPredicate domain. IRInt(16) and IRFloat(16) share a canonical form and
// therefore a fingerprint, which matches how both compare.
func Fingerprint(p Predicate) (string, error) {
	v, err := ToIR(p)
	if err != nil {
		return "", err
	}
	return ir.ContentHash(ir.DomainPredicate, v)
}

// QueryFingerprint hashes a whole Select, including sort and page directives.
func QueryFingerprint(sel Select) (string, error) {
	filter, err := ToIR(sel.Filter)
	if err != nil {
		return "", err
	}
	sorts := make(ir.IRArray, len(sel.Sort))
	for i, s := range sel.Sort {
		sorts[i] = ir.IRObject{"field": ir.IRString(s.Field), "desc": ir.IRBool(s.Desc)}
	}
	var page ir.IRValue = ir.IRNull{}
	if sel.Page != nil {
		page = ir.IRObject{"index": ir.IRInt(sel.Page.Index), "size": ir.IRInt(sel.Page.Size)}
	}
	return ir.ContentHash(ir.DomainQuery, ir.IRObject{
		"from":   ir.IRString(sel.From),
		"filter": filter,
		"sort":   sorts,
		"page":   page,
	})
}

// ToIR encodes p as a tree of IR objects, one per node, tagged by "node".
// A nil predicate encodes as True.
func ToIR(p Predicate) (ir.IRValue, error) {
	switch n := p.(type) {
	case nil, True:
		return ir.IRObject{"node": ir.IRString("true")}, nil
	case Compare:
		return ir.IRObject{
			"node":  ir.IRString("compare"),
			"field": ir.IRString(n.Field),
			"op":    ir.IRString(n.Op),
			"value": orNull(n.Value),
		}, nil
	case Match:
		return ir.IRObject{
			"node":   ir.IRString("match"),
			"field":  ir.IRString(n.Field),
			"anchor": ir.IRString(n.Anchor),
			"term":   ir.IRString(n.Term),
		}, nil
	case In:
		values := make(ir.IRArray, len(n.Values))
		for i, v := range n.Values {
			values[i] = orNull(v)
		}
		return ir.IRObject{
			"node":    ir.IRString("in"),
			"field":   ir.IRString(n.Field),
			"values":  values,
			"negated": ir.IRBool(n.Negated),
		}, nil
	case And:
		return listToIR("and", n.Predicates)
	case Or:
		return listToIR("or", n.Predicates)
	case Not:
		inner, err := ToIR(n.Predicate)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{"node": ir.IRString("not"), "predicate": inner}, nil
	default:
		return nil, fmt.Errorf("unknown predicate type: %T", p)
	}
}

func listToIR(node string, ps []Predicate) (ir.IRValue, error) {
	children := make(ir.IRArray, len(ps))
	for i, p := range ps {
		child, err := ToIR(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", node, i, err)
		}
		children[i] = child
	}
	return ir.IRObject{"node": ir.IRString(node), "predicates": children}, nil
}

func orNull(v ir.IRValue) ir.IRValue {
	if v == nil {
		return ir.IRNull{}
	}
	return v
}
