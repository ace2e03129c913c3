package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

var columnTypes = map[ir.FieldType]string{
	ir.FieldString: "TEXT",
	ir.FieldInt:    "INTEGER",
	ir.FieldFloat:  "REAL",
	ir.FieldBool:   "INTEGER",
}

// CreateTable returns the DDL for schema's table. Every field column is NOT
// NULL: the evaluator and SQL agree on IN/NOT IN only when no value is NULL.
func CreateTable(schema *ir.EntitySchema) (string, error) {
	lines := make([]string, 0, len(schema.Fields)+1)
	lines = append(lines, "    id INTEGER PRIMARY KEY")
	for _, f := range schema.Fields {
		typ, ok := columnTypes[f.Type]
		if !ok {
			return "", fmt.Errorf("field %s.%s: unknown type %q", schema.Name, f.Name, f.Type)
		}
		lines = append(lines, fmt.Sprintf("    %s %s NOT NULL", quoteIdentifier(columnOf(f)), typ))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)",
		quoteIdentifier(schema.Table), strings.Join(lines, ",\n")), nil
}

// Insert returns a parameterized INSERT for schema and the parameters for rec,
// coercing each field to its declared type. A zero rec.ID lets SQLite assign one.
func Insert(schema *ir.EntitySchema, rec ir.Record) (string, []any, error) {
	cols := make([]string, 0, len(schema.Fields)+1)
	params := make([]any, 0, len(schema.Fields)+1)
	if rec.ID != 0 {
		cols = append(cols, "id")
		params = append(params, rec.ID)
	}
	for _, f := range schema.Fields {
		raw, ok := rec.Fields[f.Name]
		if !ok {
			return "", nil, fmt.Errorf("%s record missing field %q", schema.Name, f.Name)
		}
		v, err := ir.Coerce(raw, f.Type)
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", schema.Name, f.Name, err)
		}
		if f.Type == ir.FieldInt && ir.KindOf(v) != ir.KindInt {
			return "", nil, fmt.Errorf("%s.%s: %s is not an integer", schema.Name, f.Name, ir.String(v))
		}
		param, err := irValueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", schema.Name, f.Name, err)
		}
		cols = append(cols, quoteIdentifier(columnOf(f)))
		params = append(params, param)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(schema.Table), strings.Join(cols, ", "), marks), params, nil
}
