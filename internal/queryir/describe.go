package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// Describe renders p as a deterministic, SQL-like string for logs and CLI output.
// It is not parseable and is not the SQL the backend runs.
//
//	(age < 16 AND name = "jacob")
//	title CONTAINS "black"
//	department NOT IN ["IT", "Admin"]
func Describe(p Predicate) string {
	var b strings.Builder
	describe(&b, p)
	return b.String()
}

func describe(b *strings.Builder, p Predicate) {
	switch n := p.(type) {
	case nil, True:
		b.WriteString("TRUE")
	case Compare:
		fmt.Fprintf(b, "%s %s %s", n.Field, n.Op, ir.String(n.Value))
	case Match:
		fmt.Fprintf(b, "%s %s %q", n.Field, anchorWord[n.Anchor], n.Term)
	case In:
		op := "IN"
		if n.Negated {
			op = "NOT IN"
		}
		fmt.Fprintf(b, "%s %s %s", n.Field, op, ir.String(ir.IRArray(n.Values)))
	case And:
		describeList(b, n.Predicates, " AND ", "TRUE")
	case Or:
		describeList(b, n.Predicates, " OR ", "FALSE")
	case Not:
		b.WriteString("NOT ")
		describe(b, n.Predicate)
	default:
		fmt.Fprintf(b, "<%T>", p)
	}
}

var anchorWord = map[Anchor]string{
	AnchorContains: "CONTAINS",
	AnchorPrefix:   "STARTS WITH",
	AnchorSuffix:   "ENDS WITH",
}

func describeList(b *strings.Builder, ps []Predicate, sep, empty string) {
	if len(ps) == 0 {
		b.WriteString(empty)
		return
	}
	b.WriteByte('(')
	for i, p := range ps {
		if i > 0 {
			b.WriteString(sep)
		}
		describe(b, p)
	}
	b.WriteByte(')')
}
