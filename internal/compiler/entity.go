package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sieve/internal/ir"
)

//go:embed schema.cue
var schemaDef string

//go:embed builtin/entities.cue
var builtinSource []byte

// BuiltinFilename is the name reported in positions inside the embedded schema.
const BuiltinFilename = "builtin/entities.cue"

// CompileEntity parses a CUE value into an EntitySchema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Movie: { table: "movies", fields: { ... } }`)
//	schema, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Movie")))
func CompileEntity(v cue.Value) (*ir.EntitySchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := &ir.EntitySchema{}

	// Entity name is the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		schema.Name = labels[len(labels)-1].String()
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "table is required",
			Pos:     v.Pos(),
		}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	schema.Table = table

	schema.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}
	if len(schema.Fields) == 0 {
		return nil, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}

	return schema, nil
}

// parseFields extracts field definitions in declaration order.
func parseFields(v cue.Value) ([]ir.FieldSpec, error) {
	var fields []ir.FieldSpec

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return fields, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		fieldVal := iter.Value()

		typeVal := fieldVal.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("fields.%s.type", name),
				Message: "field type is required",
				Pos:     fieldVal.Pos(),
			}
		}
		typeName, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		field := ir.FieldSpec{
			Name:   name,
			Column: name,
			Type:   ir.FieldType(typeName),
		}

		// Column defaults to the field name
		colVal := fieldVal.LookupPath(cue.ParsePath("column"))
		if colVal.Exists() {
			col, err := colVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			field.Column = col
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// CompileEntities compiles every entity under the top-level "entity" struct of
// v, in declaration order.
func CompileEntities(v cue.Value) ([]*ir.EntitySchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	entityVal := v.LookupPath(cue.ParsePath("entity"))
	if !entityVal.Exists() {
		return nil, nil
	}

	iter, err := entityVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var schemas []*ir.EntitySchema
	for iter.Next() {
		schema, err := CompileEntity(iter.Value())
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

// CompileSource checks src against the entity definition, compiles its
// entities and validates them. filename is used in error positions.
func CompileSource(ctx *cue.Context, filename string, src []byte) ([]*ir.EntitySchema, error) {
	def := ctx.CompileString(schemaDef, cue.Filename("sieve/schema.cue"))
	if err := def.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	schemas, err := CompileEntities(v)
	if err != nil {
		return nil, err
	}
	if errs := Validate(schemas); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return schemas, nil
}

// Builtin returns the embedded Movie, Customer and Employee schemas.
func Builtin() ([]*ir.EntitySchema, error) {
	return CompileSource(cuecontext.New(), BuiltinFilename, builtinSource)
}

// MustBuiltin is like Builtin but panics on error.
// The embedded schema is covered by tests, so this only fails on a broken build.
func MustBuiltin() []*ir.EntitySchema {
	schemas, err := Builtin()
	if err != nil {
		panic(err)
	}
	return schemas
}

// LoadDir compiles every .cue file in dir, in file name order. An entity
// declared in two files is an error.
func LoadDir(dir string) ([]*ir.EntitySchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	ctx := cuecontext.New()
	var schemas []*ir.EntitySchema
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cue") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		fileSchemas, err := CompileSource(ctx, path, src)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, fileSchemas...)
	}

	if len(schemas) == 0 {
		return nil, fmt.Errorf("no entities found in %s", dir)
	}
	if errs := Validate(schemas); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return schemas, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
