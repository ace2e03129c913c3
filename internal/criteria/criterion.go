package criteria

import (
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// Criterion is one (key, operation, value) filter condition. It is immutable:
// build it with New and read it through the accessors.
type Criterion struct {
	key      string
	op       Operation
	value    ir.IRValue
	valueErr error
}

// New creates a criterion. The value may be any scalar, a slice or array for set
// operations, or nil. It is converted to an ir.IRValue immediately, which also
// copies slices (ir.IRArray included), so later changes to the caller's data
// cannot leak in. A value that cannot be converted is reported when the
// criterion is compiled.
func New(key string, op Operation, value any) Criterion {
	v, err := ir.FromAny(value)
	return Criterion{key: key, op: op, value: v, valueErr: err}
}

// Key returns the field name.
func (c Criterion) Key() string { return c.key }

// Operation returns the operation as given, before alias resolution.
func (c Criterion) Operation() Operation { return c.op }

// Value returns a copy of the converted value.
func (c Criterion) Value() ir.IRValue {
	return ir.Clone(c.value)
}

func (c Criterion) String() string {
	if c.valueErr != nil {
		return fmt.Sprintf("%s %s <invalid>", c.key, c.op)
	}
	return fmt.Sprintf("%s %s %s", c.key, c.op, ir.String(c.value))
}
