package queryir

// Conjoin returns a predicate matching records that match both a and b.
//
// Operands that are themselves And nodes are flattened into the result, so
// Conjoin(Conjoin(a, b), c) and Conjoin(a, Conjoin(b, c)) build the same tree.
// The result always owns a fresh slice; a and b are never modified. A nil
// operand stands for "no filter" and is replaced with True.
func Conjoin(a, b Predicate) Predicate {
	return And{Predicates: flatten(a, b, splitAnd)}
}

// Disjoin returns a predicate matching records that match a or b, with the same
// flattening and ownership rules as Conjoin.
func Disjoin(a, b Predicate) Predicate {
	return Or{Predicates: flatten(a, b, splitOr)}
}

// Negate returns a predicate matching exactly the records p does not match.
func Negate(p Predicate) Predicate {
	if p == nil {
		p = True{}
	}
	return Not{Predicate: p}
}

// Reduce conjoins a list left to right, seeded with the first element.
//
// An empty list fails with EMPTY_COMBINATION; there is no implicit "match all".
// A single-element list returns that element unchanged. A nil element fails with
// INVALID_ARGUMENT carrying its index.
func Reduce(ps []Predicate) (Predicate, error) {
	return fold(ps, Conjoin)
}

// ReduceAny is Reduce with Disjoin.
func ReduceAny(ps []Predicate) (Predicate, error) {
	return fold(ps, Disjoin)
}

func fold(ps []Predicate, combine func(a, b Predicate) Predicate) (Predicate, error) {
	if len(ps) == 0 {
		return nil, NewEmptyCombination()
	}
	for i, p := range ps {
		if p == nil {
			return nil, NewInvalidArgument("", "predicate is nil").AtIndex(i)
		}
	}

	acc := ps[0]
	for _, p := range ps[1:] {
		acc = combine(acc, p)
	}
	return acc, nil
}

// flatten collects the operands of a and b into a new slice, splicing in the
// children of any operand that split recognizes.
func flatten(a, b Predicate, split func(Predicate) ([]Predicate, bool)) []Predicate {
	out := make([]Predicate, 0, 2)
	for _, p := range []Predicate{a, b} {
		if p == nil {
			out = append(out, True{})
			continue
		}
		if children, ok := split(p); ok {
			out = append(out, children...)
			continue
		}
		out = append(out, p)
	}
	return out
}

func splitAnd(p Predicate) ([]Predicate, bool) {
	n, ok := p.(And)
	return n.Predicates, ok
}

func splitOr(p Predicate) ([]Predicate, bool) {
	n, ok := p.(Or)
	return n.Predicates, ok
}
