package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Filter   string // Described predicate for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Filter != "" {
		fmt.Fprintf(&buf, "\n  Filter: %s", e.Filter)
	}

	return buf.String()
}

// evaluateAssertions checks every assertion against result and records
// failures on it. A query error is a failure unless an "error" assertion
// expects it.
func evaluateAssertions(assertions []Assertion, result *Result) {
	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if result.Error != "" && !expectsError {
		result.AddError(fmt.Sprintf("unexpected error: %s", result.Error))
		return
	}

	for _, a := range assertions {
		if err := evaluateAssertion(a, result); err != nil {
			result.AddError(err.Error())
		}
	}
}

func evaluateAssertion(a Assertion, result *Result) error {
	switch a.Type {
	case AssertResultIDs:
		return assertResultIDs(a, result)
	case AssertResultCount:
		return assertResultCount(a, result)
	case AssertTotal:
		return assertTotal(a, result)
	case AssertAllMatch:
		return assertAllMatch(a, result)
	case AssertError:
		return assertError(a, result)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertResultIDs checks returned ids in order.
func assertResultIDs(a Assertion, result *Result) error {
	got := result.IDs()
	if slices.Equal(got, a.IDs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertResultIDs,
		Expected: fmt.Sprintf("ids %v", a.IDs),
		Actual:   fmt.Sprintf("ids %v", got),
		Filter:   result.Filter,
	}
}

func assertResultCount(a Assertion, result *Result) error {
	if len(result.Records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertResultCount,
		Expected: fmt.Sprintf("%d record(s)", a.Count),
		Actual:   fmt.Sprintf("%d record(s)", len(result.Records)),
		Filter:   result.Filter,
	}
}

func assertTotal(a Assertion, result *Result) error {
	if result.Total == int64(a.Count) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTotal,
		Expected: fmt.Sprintf("total %d", a.Count),
		Actual:   fmt.Sprintf("total %d", result.Total),
		Filter:   result.Filter,
	}
}

// assertAllMatch checks that every returned record carries the expected field
// value. Numbers compare by value, so 2018 matches IRInt(2018) and IRFloat(2018).
func assertAllMatch(a Assertion, result *Result) error {
	want, err := ir.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("all_match: invalid value: %w", err)
	}
	for _, rec := range result.Records {
		got := rec.Get(a.Field)
		if !ir.Equal(got, want) {
			return &AssertionError{
				Type:     AssertAllMatch,
				Expected: fmt.Sprintf("%s = %s for every record", a.Field, ir.String(want)),
				Actual:   fmt.Sprintf("record %d has %s = %s", rec.ID, a.Field, ir.String(got)),
				Filter:   result.Filter,
			}
		}
	}
	return nil
}

func assertError(a Assertion, result *Result) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := "no error"
	if result.Error != "" {
		actual = result.Error
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: fmt.Sprintf("error %s", a.Code),
		Actual:   actual,
		Filter:   result.Filter,
	}
}
