package harness

import (
	"github.com/roach88/sieve/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion and the parity check hold.
	Pass bool `json:"pass"`

	// Filter is the queryir.Describe rendering of the assembled predicate.
	Filter string `json:"filter,omitempty"`

	// SQL and Params are the compiled row query.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// Records are the rows returned, in query order.
	Records []ir.Record `json:"records"`

	// Total is the number of matches ignoring the page.
	Total int64 `json:"total"`

	// ErrorCode is set when building or compiling the query failed with a
	// typed error; Error holds the message.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []ir.Record{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// IDs returns the ids of the returned records in order.
func (r *Result) IDs() []int64 {
	return recordIDs(r.Records)
}

func recordIDs(recs []ir.Record) []int64 {
	ids := make([]int64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}
