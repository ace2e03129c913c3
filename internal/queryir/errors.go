package queryir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes predicate construction errors.
type ErrorCode string

const (
	// CodeConfiguration indicates an unknown operator, unknown field, or an
	// operator that cannot apply to the field's type.
	CodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// CodeInvalidArgument indicates a value of the wrong semantic type or out
	// of range.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeEmptyCombination indicates Reduce or ReduceAny was given no predicates.
	CodeEmptyCombination ErrorCode = "EMPTY_COMBINATION"

	// CodeUnsupportedFilterKey indicates a dynamic filter map named a key with
	// no registered constructor.
	CodeUnsupportedFilterKey ErrorCode = "UNSUPPORTED_FILTER_KEY"
)

// Sentinels for errors.Is. A sentinel matches any *Error with the same code.
var (
	ErrConfiguration        = &Error{Code: CodeConfiguration, Index: -1}
	ErrInvalidArgument      = &Error{Code: CodeInvalidArgument, Index: -1}
	ErrEmptyCombination     = &Error{Code: CodeEmptyCombination, Index: -1}
	ErrUnsupportedFilterKey = &Error{Code: CodeUnsupportedFilterKey, Index: -1}
)

// Error is the single error type of the predicate core.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field is the criterion key or filter key involved, if any.
	Field string

	// Index is the position of the offending criterion or predicate in its
	// input list, or -1 when not applicable.
	Index int
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	switch {
	case e.Field != "" && e.Index >= 0:
		return fmt.Sprintf("%s: %s (field=%s, index=%d)", e.Code, msg, e.Field, e.Index)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, msg, e.Field)
	case e.Index >= 0:
		return fmt.Sprintf("%s: %s (index=%d)", e.Code, msg, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// AtIndex returns a copy of e with Index set. Used by list-processing callers
// to record which element failed.
func (e *Error) AtIndex(i int) *Error {
	out := *e
	out.Index = i
	return &out
}

// NewConfigurationError creates a CONFIGURATION_ERROR for field.
func NewConfigurationError(field, format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...), Field: field, Index: -1}
}

// NewInvalidArgument creates an INVALID_ARGUMENT error for field.
func NewInvalidArgument(field, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...), Field: field, Index: -1}
}

// NewEmptyCombination creates an EMPTY_COMBINATION error.
func NewEmptyCombination() *Error {
	return &Error{Code: CodeEmptyCombination, Message: "cannot combine an empty predicate list", Index: -1}
}

// NewUnsupportedFilterKey creates an UNSUPPORTED_FILTER_KEY error for key.
func NewUnsupportedFilterKey(key string) *Error {
	return &Error{Code: CodeUnsupportedFilterKey, Message: fmt.Sprintf("no filter registered for key %q", key), Field: key, Index: -1}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfigurationError returns true if err is a CONFIGURATION_ERROR.
// Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	return CodeOf(err) == CodeConfiguration
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// IsEmptyCombination returns true if err is an EMPTY_COMBINATION error.
func IsEmptyCombination(err error) bool {
	return CodeOf(err) == CodeEmptyCombination
}

// IsUnsupportedFilterKey returns true if err is an UNSUPPORTED_FILTER_KEY error.
func IsUnsupportedFilterKey(err error) bool {
	return CodeOf(err) == CodeUnsupportedFilterKey
}
