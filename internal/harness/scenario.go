package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/ir"
)

// Scenario defines one query and the results it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entity is the entity queried, e.g. "Movie".
	Entity string `yaml:"entity"`

	// SchemaDir is a directory of CUE entity files. Relative paths resolve
	// against the scenario's base path. Empty selects the builtin schema.
	SchemaDir string `yaml:"schema_dir,omitempty"`

	// Records are loaded before the query. When empty, the store's demo data
	// is seeded instead.
	Records []RecordStep `yaml:"records,omitempty"`

	// Criteria are compiled against the entity schema.
	Criteria []criteria.Entry `yaml:"criteria,omitempty"`

	// Filters are assembled through the entity's named filter registry.
	Filters map[string]any `yaml:"filters,omitempty"`

	// Combine joins the criteria and filters: "all" (default) or "any".
	Combine string `yaml:"combine,omitempty"`

	Sort []ir.Sort       `yaml:"sort,omitempty"`
	Page *ir.PageRequest `yaml:"page,omitempty"`

	// Assertions validate the query outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// RecordStep is one record to insert. ID 0 lets the store assign one.
type RecordStep struct {
	ID     int64          `yaml:"id,omitempty"`
	Fields map[string]any `yaml:"fields"`
}

// Combine modes.
const (
	CombineAll = "all"
	CombineAny = "any"
)

// Assertion validates the query outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "result_ids": returned ids equal IDs, in order
	// - "result_count": exactly Count records returned
	// - "total": Count matches ignoring the page
	// - "all_match": every returned record has Field equal to Value
	// - "error": the query fails with error code Code
	Type string `yaml:"type"`

	IDs   []int64 `yaml:"ids,omitempty"`
	Count int     `yaml:"count,omitempty"`
	Field string  `yaml:"field,omitempty"`
	Value any     `yaml:"value,omitempty"`
	Code  string  `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertResultIDs   = "result_ids"
	AssertResultCount = "result_count"
	AssertTotal       = "total"
	AssertAllMatch    = "all_match"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative schema_dir resolves against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving schema_dir relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.SchemaDir != "" && !filepath.IsAbs(scenario.SchemaDir) && basePath != "" {
		scenario.SchemaDir = filepath.Join(basePath, scenario.SchemaDir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	switch s.Combine {
	case "", CombineAll, CombineAny:
	default:
		return fmt.Errorf("combine must be %q or %q, got %q", CombineAll, CombineAny, s.Combine)
	}

	if s.SchemaDir != "" {
		if _, err := os.Stat(s.SchemaDir); os.IsNotExist(err) {
			return fmt.Errorf("schema dir not found: %s", s.SchemaDir)
		}
	}

	for i, rec := range s.Records {
		if rec.Fields == nil {
			return fmt.Errorf("records[%d]: fields is required", i)
		}
	}

	for i, entry := range s.Criteria {
		if entry.Key == "" {
			return fmt.Errorf("criteria[%d]: key is required", i)
		}
		if entry.Op == "" {
			return fmt.Errorf("criteria[%d]: op is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResultIDs:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for result_ids (use [] for none)", index)
		}
	case AssertResultCount, AssertTotal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertAllMatch:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for all_match", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for all_match", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
