// Package queryir defines the composite predicate IR that every filter in sieve
// compiles to, together with the combinators and the in-memory evaluator.
//
// The IR sits between the ways a filter can be written and the backends that
// execute it:
//
//	[criteria list] ─┐
//	                 ├─→ [Predicate] ─→ [SQL backend]
//	[named filters] ─┘               └→ [Matches (in memory)]
//
// SEALED INTERFACE:
//
// Predicate is sealed with a marker method. Only the node types in this package
// implement it, so backends can switch exhaustively:
//
//	True      matches every record
//	Compare   field <op> value, with op in = <> < > <= >=
//	Match     case-insensitive contains / prefix / suffix on a string field
//	In        field IN (values), or NOT IN when Negated
//	And, Or   n-ary conjunction and disjunction
//	Not       negation
//
// IMMUTABILITY:
//
// Nodes are plain values. Conjoin, Disjoin, Reduce and ReduceAny always build new
// slices and never write to their operands, so a predicate can be shared between
// goroutines and reused as a building block for many queries.
//
// EVALUATION ORDER:
//
// And and Or evaluate their operands in slice order and short-circuit. The order is
// the order the caller supplied criteria in, so repeated runs behave identically.
//
// ERRORS:
//
// Every failure the core can report is an *Error with one of four codes:
// CONFIGURATION_ERROR, INVALID_ARGUMENT, EMPTY_COMBINATION and
// UNSUPPORTED_FILTER_KEY. Use the Is* helpers or errors.Is with the sentinel
// values to classify them.
package queryir
