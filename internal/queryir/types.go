package queryir

import "github.com/roach88/sieve/internal/ir"

// Predicate is a boolean condition over one record.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// CompareOp is a scalar comparison operator. The values are the SQL spellings.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpGt CompareOp = ">"
	OpLe CompareOp = "<="
	OpGe CompareOp = ">="
)

// ValidCompareOps lists every CompareOp.
var ValidCompareOps = map[CompareOp]bool{
	OpEq: true, OpNe: true, OpLt: true, OpGt: true, OpLe: true, OpGe: true,
}

// Anchor selects where a Match term must occur in the field value.
type Anchor string

const (
	AnchorContains Anchor = "contains"
	AnchorPrefix   Anchor = "prefix"
	AnchorSuffix   Anchor = "suffix"
)

// True matches every record. It is the identity of And and the result of
// compiling an empty criteria list.
type True struct{}

func (True) predicateNode() {}

// Compare represents <field> <op> <value>.
//
// Numbers compare numerically regardless of int/float representation. A record
// whose field is null or of an incomparable kind does not match, for every op,
// which is how SQL treats NULL.
//
// Example:
//
//	Compare{Field: "age", Op: OpLt, Value: ir.IRInt(16)}
type Compare struct {
	Field string
	Op    CompareOp
	Value ir.IRValue
}

func (Compare) predicateNode() {}

// Match is a case-insensitive string test. Term is already case-folded with
// Fold; the field value is folded at evaluation time.
type Match struct {
	Field  string
	Anchor Anchor
	Term   string
}

func (Match) predicateNode() {}

// In tests set membership. An empty Values matches nothing, and with Negated set
// an empty Values matches everything, so In and its negation always partition the
// records that have a value for Field.
type In struct {
	Field   string
	Values  []ir.IRValue
	Negated bool
}

func (In) predicateNode() {}

// And matches when every operand matches. An empty And matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or matches when any operand matches. An empty Or matches nothing.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not inverts its operand.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Select is a filtered read of one entity, the unit handed to executors.
//
// Sort and Page are carried through unchanged; nothing in this package reads
// them. A nil Filter selects every record. A nil Page returns all rows.
type Select struct {
	From   string          // Entity name, e.g. "Movie"
	Filter Predicate       // WHERE conditions (nil = no filter)
	Sort   []ir.Sort       // ORDER BY directives, applied before the id tiebreaker
	Page   *ir.PageRequest // LIMIT/OFFSET (nil = unpaged)
}
