package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/ir"
)

// ValidationResult lists every problem found in a Select against a schema.
type ValidationResult struct {
	// IsValid is true when Problems is empty.
	IsValid bool

	// Problems describes each violation in traversal order.
	Problems []string
}

// Err returns nil for a valid result, otherwise a CONFIGURATION_ERROR whose
// message joins every problem.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{Code: CodeConfiguration, Message: strings.Join(r.Problems, "; "), Index: -1}
}

// Validate checks that every field referenced by sel exists in schema and that
// every operand has the kind the field's type requires.
//
// Predicates built by the criteria compiler or the named constructors always
// pass. Validate exists for hand-built trees and for executors that receive a
// Select from outside the process (scenario files, the CLI).
//
// Validate is a pure function with no side effects.
func Validate(sel Select, schema *ir.EntitySchema) ValidationResult {
	v := &validator{problems: []string{}}
	if schema == nil {
		v.addProblem("no schema for entity %q", sel.From)
	} else {
		v.schema = schema
		if sel.From != schema.Name {
			v.addProblem("select from %q checked against schema %q", sel.From, schema.Name)
		}
		v.validatePredicate(sel.Filter)
		for _, s := range sel.Sort {
			if _, ok := schema.Field(s.Field); !ok {
				v.addProblem("sort on unknown field %q", s.Field)
			}
		}
	}

	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	schema   *ir.EntitySchema
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) field(name string) (ir.FieldSpec, bool) {
	f, ok := v.schema.Field(name)
	if !ok {
		v.addProblem("unknown field %q on %s", name, v.schema.Name)
	}
	return f, ok
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil, True:
		// no filter
	case Compare:
		if !ValidCompareOps[pred.Op] {
			v.addProblem("unknown comparison operator %q on %s", pred.Op, pred.Field)
		}
		if f, ok := v.field(pred.Field); ok {
			v.checkOperand(f, pred.Value)
		}
	case Match:
		if _, ok := anchorWord[pred.Anchor]; !ok {
			v.addProblem("unknown match anchor %q on %s", pred.Anchor, pred.Field)
		}
		if f, ok := v.field(pred.Field); ok && f.Type != ir.FieldString {
			v.addProblem("text match on %s field %q", f.Type, f.Name)
		}
	case In:
		if f, ok := v.field(pred.Field); ok {
			for _, val := range pred.Values {
				v.checkOperand(f, val)
			}
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Not:
		v.validatePredicate(pred.Predicate)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

// checkOperand verifies a literal has the kind fields of type f.Type hold.
func (v *validator) checkOperand(f ir.FieldSpec, val ir.IRValue) {
	kind := ir.KindOf(val)
	ok := false
	switch f.Type {
	case ir.FieldString:
		ok = kind == ir.KindString
	case ir.FieldInt, ir.FieldFloat:
		ok = ir.IsNumeric(val)
	case ir.FieldBool:
		ok = kind == ir.KindBool
	}
	if !ok {
		v.addProblem("field %q is %s, operand %s is %s", f.Name, f.Type, ir.String(val), kind)
	}
}
