package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sieve/internal/ir"
)

// Snapshot is the golden-file form of a scenario result. Records are reduced
// to their ids; the SQL text and parameters are kept verbatim so compiler
// changes show up as golden diffs.
type Snapshot struct {
	ScenarioName string
	Filter       string
	SQL          string
	Params       []any
	IDs          []int64
	Total        int64
	ErrorCode    string
}

// NewSnapshot builds the snapshot of result for the named scenario.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		Filter:       result.Filter,
		SQL:          result.SQL,
		Params:       result.Params,
		IDs:          result.IDs(),
		Total:        result.Total,
		ErrorCode:    result.ErrorCode,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// A failed query keeps only the error code.
func (s Snapshot) toCanonicalMap() map[string]any {
	if s.ErrorCode != "" {
		return map[string]any{
			"scenario_name": s.ScenarioName,
			"error":         s.ErrorCode,
		}
	}

	params := s.Params
	if params == nil {
		params = []any{}
	}
	ids := s.IDs
	if ids == nil {
		ids = []int64{}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"filter":        s.Filter,
		"sql":           s.SQL,
		"params":        params,
		"ids":           ids,
		"total":         s.Total,
	}
}

// Bytes returns the canonical JSON encoding of the snapshot.
func (s Snapshot) Bytes() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// GoldenBytes renders an existing result the way RunWithGolden stores it.
func GoldenBytes(scenario *Scenario, result *Result) ([]byte, error) {
	return NewSnapshot(scenario.Name, result).Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The returned result is also checked by the caller; a snapshot match does
// not imply the assertions passed.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := GoldenBytes(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
