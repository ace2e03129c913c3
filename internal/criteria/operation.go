package criteria

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// Operation names a criterion operator.
type Operation string

const (
	GreaterThan      Operation = "GREATER_THAN"
	LessThan         Operation = "LESS_THAN"
	GreaterThanEqual Operation = "GREATER_THAN_EQUAL"
	LessThanEqual    Operation = "LESS_THAN_EQUAL"
	NotEqual         Operation = "NOT_EQUAL"
	Equal            Operation = "EQUAL"
	Match            Operation = "MATCH"
	StartsWith       Operation = "STARTS_WITH"
	EndsWith         Operation = "ENDS_WITH"
	In               Operation = "IN"
	NotIn            Operation = "NOT_IN"

	// MatchStart is the legacy name for EndsWith.
	MatchStart Operation = "MATCH_START"
	// MatchEnd is the legacy name for StartsWith.
	MatchEnd Operation = "MATCH_END"
)

// Operations lists the canonical operations in declaration order.
var Operations = []Operation{
	GreaterThan, LessThan, GreaterThanEqual, LessThanEqual,
	NotEqual, Equal, Match, StartsWith, EndsWith, In, NotIn,
}

var aliases = map[Operation]Operation{
	MatchStart: EndsWith,
	MatchEnd:   StartsWith,
}

var symbols = map[string]Operation{
	">":  GreaterThan,
	"<":  LessThan,
	">=": GreaterThanEqual,
	"<=": LessThanEqual,
	"!=": NotEqual,
	"<>": NotEqual,
	"=":  Equal,
	"==": Equal,
}

// Canonical maps legacy aliases to their canonical operation. Every other value,
// including unknown ones, is returned unchanged.
func (o Operation) Canonical() Operation {
	if c, ok := aliases[o]; ok {
		return c
	}
	return o
}

// IsValid reports whether o is a canonical operation or a legacy alias.
func (o Operation) IsValid() bool {
	_, ok := builders[o.Canonical()]
	return ok
}

// IsSet reports whether o takes a set of values.
func (o Operation) IsSet() bool {
	c := o.Canonical()
	return c == In || c == NotIn
}

// ParseOperation reads an operation name case-insensitively. The comparison
// symbols > < >= <= = == != <> are accepted as shorthands.
func ParseOperation(s string) (Operation, error) {
	s = strings.TrimSpace(s)
	if op, ok := symbols[s]; ok {
		return op, nil
	}
	op := Operation(strings.ToUpper(s))
	if !op.IsValid() {
		return "", queryir.NewConfigurationError("", "unknown operation %q", s)
	}
	return op, nil
}
