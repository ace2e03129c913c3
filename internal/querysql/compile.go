package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// FoldFunc is the name of the SQL function that applies queryir.Fold. The store
// registers it on every connection.
const FoldFunc = "casefold"

// SQLCompiler compiles queryir.Select values to parameterized SQL for SQLite.
//
// CRITICAL: ALL row queries end with ORDER BY id for deterministic results.
// CRITICAL: All values are parameterized (never interpolated). Identifiers come
// from the registered schemas only.
type SQLCompiler struct {
	schemas map[string]*ir.EntitySchema
}

// NewSQLCompiler creates a compiler that knows the given entity schemas.
func NewSQLCompiler(schemas ...*ir.EntitySchema) *SQLCompiler {
	c := &SQLCompiler{schemas: make(map[string]*ir.EntitySchema, len(schemas))}
	for _, s := range schemas {
		c.schemas[s.Name] = s
	}
	return c
}

// Schema returns the schema registered for entity.
func (c *SQLCompiler) Schema(entity string) (*ir.EntitySchema, bool) {
	s, ok := c.schemas[entity]
	return s, ok
}

// Compile converts q to a row query. Returns (sql, params, error).
//
// Columns are id followed by the schema fields in declaration order. Sort
// directives come first in ORDER BY, then id as the tiebreaker. A Page adds
// LIMIT ? OFFSET ?.
func (c *SQLCompiler) Compile(q queryir.Select) (string, []any, error) {
	schema, where, params, err := c.compileFrom(q)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(schema.Fields)+1)
	cols = append(cols, "id")
	for _, f := range schema.Fields {
		cols = append(cols, quoteIdentifier(columnOf(f)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(cols, ", "),
		quoteIdentifier(schema.Table),
		where,
		orderBy(schema, q.Sort))

	if q.Page != nil {
		sb.WriteString(" LIMIT ? OFFSET ?")
		params = append(params, int64(q.Page.Size), int64(q.Page.Offset()))
	}

	return sb.String(), params, nil
}

// CompileCount converts q to a COUNT(*) query over the same filter. Sort and
// Page are ignored.
func (c *SQLCompiler) CompileCount(q queryir.Select) (string, []any, error) {
	schema, where, params, err := c.compileFrom(q)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quoteIdentifier(schema.Table), where), params, nil
}

func (c *SQLCompiler) compileFrom(q queryir.Select) (*ir.EntitySchema, string, []any, error) {
	schema, ok := c.schemas[q.From]
	if !ok {
		return nil, "", nil, queryir.NewConfigurationError("", "unknown entity %q", q.From)
	}
	if err := queryir.Validate(q, schema).Err(); err != nil {
		return nil, "", nil, err
	}

	if q.Filter == nil {
		return schema, "", []any{}, nil
	}
	if _, isTrue := q.Filter.(queryir.True); isTrue {
		return schema, "", []any{}, nil
	}

	pc := predicateCompiler{schema: schema, params: []any{}}
	sql, err := pc.compile(q.Filter)
	if err != nil {
		return nil, "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return schema, " WHERE " + sql, pc.params, nil
}

// orderBy renders the ORDER BY list. Text sorts use COLLATE BINARY so SQLite
// orders strings byte-wise, like ir.Compare.
func orderBy(schema *ir.EntitySchema, sorts []ir.Sort) string {
	parts := make([]string, 0, len(sorts)+1)
	for _, s := range sorts {
		f, _ := schema.Field(s.Field)
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		if f.Type == ir.FieldString {
			parts = append(parts, fmt.Sprintf("%s %s COLLATE BINARY", quoteIdentifier(columnOf(f)), dir))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", quoteIdentifier(columnOf(f)), dir))
		}
	}
	// MANDATORY tiebreaker
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}

// predicateCompiler accumulates parameters in placeholder order.
type predicateCompiler struct {
	schema *ir.EntitySchema
	params []any
}

// compile renders one predicate. Composite nodes are parenthesized so operator
// precedence never depends on the caller.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (pc *predicateCompiler) compile(p queryir.Predicate) (string, error) {
	switch pred := p.(type) {
	case nil, queryir.True:
		return "1 = 1", nil
	case queryir.Compare:
		col, err := pc.column(pred.Field)
		if err != nil {
			return "", err
		}
		if err := pc.bind(pred.Value); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s ?", col, pred.Op), nil
	case queryir.Match:
		col, err := pc.column(pred.Field)
		if err != nil {
			return "", err
		}
		pc.params = append(pc.params, likePattern(pred.Term, pred.Anchor))
		return fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, FoldFunc, col), nil
	case queryir.In:
		return pc.compileIn(pred)
	case queryir.And:
		return pc.compileList(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return pc.compileList(pred.Predicates, " OR ", "0 = 1")
	case queryir.Not:
		inner, err := pc.compile(pred.Predicate)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", inner), nil
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileIn renders IN / NOT IN. The empty set has no SQL spelling, so it
// becomes a constant: IN () matches nothing and NOT IN () matches everything.
func (pc *predicateCompiler) compileIn(in queryir.In) (string, error) {
	col, err := pc.column(in.Field)
	if err != nil {
		return "", err
	}
	if len(in.Values) == 0 {
		if in.Negated {
			return "1 = 1", nil
		}
		return "0 = 1", nil
	}

	marks := make([]string, len(in.Values))
	for i, v := range in.Values {
		if err := pc.bind(v); err != nil {
			return "", fmt.Errorf("%s[%d]: %w", in.Field, i, err)
		}
		marks[i] = "?"
	}
	op := "IN"
	if in.Negated {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(marks, ", ")), nil
}

func (pc *predicateCompiler) compileList(ps []queryir.Predicate, sep, empty string) (string, error) {
	if len(ps) == 0 {
		return empty, nil
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		sql, err := pc.compile(p)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (pc *predicateCompiler) column(field string) (string, error) {
	f, ok := pc.schema.Field(field)
	if !ok {
		return "", queryir.NewConfigurationError(field, "unknown field on %s", pc.schema.Name)
	}
	return quoteIdentifier(columnOf(f)), nil
}

func (pc *predicateCompiler) bind(v ir.IRValue) error {
	param, err := irValueToParam(v)
	if err != nil {
		return fmt.Errorf("convert value: %w", err)
	}
	pc.params = append(pc.params, param)
	return nil
}

// likePattern escapes LIKE metacharacters in term and adds wildcards for anchor.
func likePattern(term string, anchor queryir.Anchor) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	switch anchor {
	case queryir.AnchorPrefix:
		return escaped + "%"
	case queryir.AnchorSuffix:
		return "%" + escaped
	default:
		return "%" + escaped + "%"
	}
}

func columnOf(f ir.FieldSpec) string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Arrays and objects have no scalar SQL form; null is never a useful operand
// because NULL compares unknown.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case nil, ir.IRNull:
		return nil, fmt.Errorf("null cannot be used as a comparison operand")
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
