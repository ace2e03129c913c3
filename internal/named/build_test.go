package named

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

var customerSchema = &ir.EntitySchema{
	Name:  "Customer",
	Table: "customers",
	Fields: []ir.FieldSpec{
		{Name: "name", Column: "name", Type: ir.FieldString},
		{Name: "age", Column: "age", Type: ir.FieldInt},
	},
}

func TestBuildEmptyMatchesEverything(t *testing.T) {
	p, err := Build(customerSchema, Request{})
	require.NoError(t, err)
	assert.Equal(t, queryir.True{}, p)
}

func TestBuildCriteriaThenFilters(t *testing.T) {
	p, err := Build(customerSchema, Request{
		Criteria: []criteria.Criterion{criteria.New("age", criteria.GreaterThan, 10)},
		Filters:  map[string]any{"name": "jacob"},
	})
	require.NoError(t, err)

	assert.Equal(t, `(age > 10 AND name = "jacob")`, queryir.Describe(p))
	assert.Equal(t, []ir.Record{jacob}, queryir.Filter(p, customers))
}

func TestBuildAny(t *testing.T) {
	p, err := Build(customerSchema, Request{
		Criteria: []criteria.Criterion{
			criteria.New("name", criteria.Equal, "jacob"),
			criteria.New("age", criteria.GreaterThanEqual, 16),
		},
		Any: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `(name = "jacob" OR age >= 16)`, queryir.Describe(p))
	assert.Equal(t, customers, queryir.Filter(p, customers))
}

func TestBuildAnyReportsCriterionIndex(t *testing.T) {
	_, err := Build(customerSchema, Request{
		Criteria: []criteria.Criterion{
			criteria.New("name", criteria.Equal, "jacob"),
			criteria.New("height", criteria.Equal, 180),
		},
		Any: true,
	})

	var qe *queryir.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, queryir.CodeConfiguration, qe.Code)
	assert.Equal(t, 1, qe.Index)
}

func TestBuildUnknownEntityFilters(t *testing.T) {
	schema := &ir.EntitySchema{Name: "Order", Table: "orders", Fields: []ir.FieldSpec{{Name: "total", Type: ir.FieldFloat}}}
	_, err := Build(schema, Request{Filters: map[string]any{"total": 5}})
	assert.True(t, queryir.IsConfigurationError(err))
}

func TestBuildUnsupportedFilterKey(t *testing.T) {
	_, err := Build(customerSchema, Request{Filters: map[string]any{"email": "a@b"}})
	assert.True(t, queryir.IsUnsupportedFilterKey(err))
}
