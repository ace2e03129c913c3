package criteria

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/queryir"
)

// Entry is the serialized form of a criterion, as it appears in YAML scenario
// files and JSON request bodies:
//
//	- {key: title, op: MATCH, value: black}
//	- {key: department, op: IN, value: [IT, Admin]}
type Entry struct {
	Key   string `yaml:"key" json:"key"`
	Op    string `yaml:"op" json:"op"`
	Value any    `yaml:"value" json:"value"`
}

// Criterion parses the entry's operation and builds the criterion.
func (e Entry) Criterion() (Criterion, error) {
	op, err := ParseOperation(e.Op)
	if err != nil {
		return Criterion{}, withField(err, e.Key)
	}
	return New(e.Key, op, e.Value), nil
}

// FromEntries converts a list of entries, stopping at the first bad one.
func FromEntries(entries []Entry) ([]Criterion, error) {
	out := make([]Criterion, 0, len(entries))
	for i, e := range entries {
		c, err := e.Criterion()
		if err != nil {
			return nil, asError(e.Key, err).AtIndex(i)
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseEntries decodes a YAML list of entries and converts them. Unknown keys
// in an entry are rejected.
func ParseEntries(data []byte) ([]Criterion, error) {
	var entries []Entry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, queryir.NewConfigurationError("", "invalid criteria document: %v", err)
	}
	return FromEntries(entries)
}

// LoadFile reads a YAML criteria file.
func LoadFile(path string) ([]Criterion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}
	crits, err := ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return crits, nil
}

// ParseWhere parses the command-line form key:OP:value. Everything after the
// second colon is the value, so values may contain colons. For IN and NOT_IN the
// value is split on commas; an empty value is the empty set.
//
//	title:MATCH:black
//	age:<:16
//	department:IN:IT,Admin
func ParseWhere(s string) (Criterion, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return Criterion{}, queryir.NewConfigurationError("", "expected key:OP:value, got %q", s)
	}
	key := strings.TrimSpace(parts[0])

	op, err := ParseOperation(parts[1])
	if err != nil {
		return Criterion{}, withField(err, key)
	}

	raw := parts[2]
	if !op.IsSet() {
		return New(key, op, raw), nil
	}

	values := []string{}
	if strings.TrimSpace(raw) != "" {
		for _, v := range strings.Split(raw, ",") {
			values = append(values, strings.TrimSpace(v))
		}
	}
	return New(key, op, values), nil
}

func withField(err error, field string) error {
	if qe, ok := err.(*queryir.Error); ok && qe.Field == "" {
		out := *qe
		out.Field = field
		return &out
	}
	return err
}
