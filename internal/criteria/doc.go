// Package criteria compiles loosely typed (key, operation, value) criteria into a
// single queryir.Predicate.
//
// A Criterion is built once with New and never changes. The Compiler resolves
// each criterion's key against an entity schema, coerces the value to the
// field's declared type, and dispatches on the operation through a table of
// atom builders. Every failure is loud: an unknown key or operation is a
// CONFIGURATION_ERROR, and a value that cannot serve the operation is an
// INVALID_ARGUMENT. Nothing is silently dropped.
//
// Operators:
//
//	GREATER_THAN  LESS_THAN  GREATER_THAN_EQUAL  LESS_THAN_EQUAL
//	EQUAL  NOT_EQUAL
//	MATCH        case-insensitive substring
//	STARTS_WITH  case-insensitive prefix   (legacy alias MATCH_END)
//	ENDS_WITH    case-insensitive suffix   (legacy alias MATCH_START)
//	IN  NOT_IN   set membership; a scalar is a one-element set
//
// The legacy aliases keep their historical, inverted meaning: MATCH_START
// requires the field to end with the term.
package criteria
