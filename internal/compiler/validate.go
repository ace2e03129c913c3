package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// EntitySchema errors (E101-E109)
	ErrInvalidEntityName = "E101" // entity name must be an exported identifier
	ErrEntityNoTable     = "E102" // table is required
	ErrEntityNoFields    = "E103" // at least one field required
	ErrInvalidFieldType  = "E104" // invalid type string
	ErrDuplicateName     = "E105" // duplicate entity, table, field or column
	ErrReservedName      = "E106" // "id" is the primary key
	ErrInvalidFieldName  = "E107" // field keys must be plain identifiers
	ErrInvalidColumnName = "E108" // column must be non-empty
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned when a schema set fails validation.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates compiled schemas against naming and typing rules.
// Returns all errors found (does not fail-fast).
// Supports a single EntitySchema or a slice of them; a slice is also checked
// for duplicate entity and table names.
func Validate(v any) []ValidationError {
	switch s := v.(type) {
	case *ir.EntitySchema:
		return validateEntity(s, "")
	case ir.EntitySchema:
		return validateEntity(&s, "")
	case []*ir.EntitySchema:
		return validateEntities(s)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// entityNamePattern matches exported identifiers such as "Movie".
var entityNamePattern = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)

// fieldNamePattern matches keys usable in "key:OP:value" filters.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateEntity validates one schema. prefix qualifies field paths when the
// schema is part of a set.
func validateEntity(schema *ir.EntitySchema, prefix string) []ValidationError {
	var errs []ValidationError

	// E101: entity name
	if !entityNamePattern.MatchString(schema.Name) {
		errs = append(errs, ValidationError{
			Field:   prefix + "name",
			Message: fmt.Sprintf("invalid entity name %q, expected an identifier starting with an uppercase letter", schema.Name),
			Code:    ErrInvalidEntityName,
		})
	}

	// E102: table is required
	if strings.TrimSpace(schema.Table) == "" {
		errs = append(errs, ValidationError{
			Field:   prefix + "table",
			Message: "table is required and must be non-empty",
			Code:    ErrEntityNoTable,
		})
	}

	// E103: at least one field
	if len(schema.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + "fields",
			Message: "at least one field is required",
			Code:    ErrEntityNoFields,
		})
	}

	// Track names for duplicate detection. Columns compare case-insensitively
	// because SQLite identifiers do.
	names := make(map[string]bool)
	columns := make(map[string]bool)

	for i, f := range schema.Fields {
		path := fmt.Sprintf("%sfields[%d]", prefix, i)

		// E107: field key
		if !fieldNamePattern.MatchString(f.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("invalid field name %q", f.Name),
				Code:    ErrInvalidFieldName,
			})
		}

		// E104: type
		if !ir.ValidFieldTypes[f.Type] {
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
				Code:    ErrInvalidFieldType,
			})
		}

		// E108: column
		if strings.TrimSpace(f.Column) == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".column",
				Message: fmt.Sprintf("column for field %q must be non-empty", f.Name),
				Code:    ErrInvalidColumnName,
			})
		}

		// E106: reserved
		if strings.EqualFold(f.Name, "id") || strings.EqualFold(f.Column, "id") {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field %q: id is reserved for the primary key", f.Name),
				Code:    ErrReservedName,
			})
		}

		// E105: duplicates
		if names[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[f.Name] = true

		col := strings.ToLower(f.Column)
		if col != "" && columns[col] {
			errs = append(errs, ValidationError{
				Field:   path + ".column",
				Message: fmt.Sprintf("duplicate column: %q", f.Column),
				Code:    ErrDuplicateName,
			})
		}
		columns[col] = true
	}

	return errs
}

// validateEntities validates each schema and the set as a whole.
func validateEntities(schemas []*ir.EntitySchema) []ValidationError {
	var errs []ValidationError

	entityNames := make(map[string]bool)
	tables := make(map[string]bool)

	for i, schema := range schemas {
		prefix := fmt.Sprintf("entities[%d].", i)
		if schema == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entities[%d]", i),
				Message: "schema is nil",
				Code:    ErrUnsupportedIRType,
			})
			continue
		}

		errs = append(errs, validateEntity(schema, prefix)...)

		if entityNames[schema.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix + "name",
				Message: fmt.Sprintf("duplicate entity name: %q", schema.Name),
				Code:    ErrDuplicateName,
			})
		}
		entityNames[schema.Name] = true

		table := strings.ToLower(schema.Table)
		if table != "" && tables[table] {
			errs = append(errs, ValidationError{
				Field:   prefix + "table",
				Message: fmt.Sprintf("duplicate table: %q", schema.Table),
				Code:    ErrDuplicateName,
			})
		}
		tables[table] = true
	}

	return errs
}
