package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

var movieSchema = &ir.EntitySchema{
	Name:  "Movie",
	Table: "movies",
	Fields: []ir.FieldSpec{
		{Name: "title", Column: "title", Type: ir.FieldString},
		{Name: "genre", Column: "genre", Type: ir.FieldString},
		{Name: "releaseYear", Column: "release_year", Type: ir.FieldInt},
		{Name: "rating", Column: "rating", Type: ir.FieldFloat},
	},
}

var orderSchema = &ir.EntitySchema{
	Name:  "Order",
	Table: "order",
	Fields: []ir.FieldSpec{
		{Name: "group", Type: ir.FieldString},
		{Name: "paid", Column: "is paid", Type: ir.FieldBool},
	},
}

func newCompiler() *SQLCompiler {
	return NewSQLCompiler(movieSchema, orderSchema)
}

func TestCompile_NoFilter(t *testing.T) {
	for _, filter := range []queryir.Predicate{nil, queryir.True{}} {
		sql, params, err := newCompiler().Compile(queryir.Select{From: "Movie", Filter: filter})
		require.NoError(t, err)

		assert.Equal(t, "SELECT id, title, genre, release_year, rating FROM movies ORDER BY id ASC", sql)
		assert.Empty(t, params)
	}
}

func TestCompile_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		filter queryir.Predicate
		where  string
		params []any
	}{
		{
			name:   "compare uses column name",
			filter: queryir.Compare{Field: "releaseYear", Op: queryir.OpGt, Value: ir.IRInt(2010)},
			where:  "release_year > ?",
			params: []any{int64(2010)},
		},
		{
			name:   "float operand",
			filter: queryir.Compare{Field: "rating", Op: queryir.OpLe, Value: ir.IRFloat(7.3)},
			where:  "rating <= ?",
			params: []any{7.3},
		},
		{
			name:   "not equal",
			filter: queryir.Compare{Field: "genre", Op: queryir.OpNe, Value: ir.IRString("Drama")},
			where:  "genre <> ?",
			params: []any{"Drama"},
		},
		{
			name:   "contains",
			filter: queryir.Match{Field: "title", Anchor: queryir.AnchorContains, Term: "black"},
			where:  `casefold(title) LIKE ? ESCAPE '\'`,
			params: []any{"%black%"},
		},
		{
			name:   "prefix escapes wildcards",
			filter: queryir.Match{Field: "title", Anchor: queryir.AnchorPrefix, Term: `100%_\`},
			where:  `casefold(title) LIKE ? ESCAPE '\'`,
			params: []any{`100\%\_\\%`},
		},
		{
			name:   "suffix",
			filter: queryir.Match{Field: "title", Anchor: queryir.AnchorSuffix, Term: "ther"},
			where:  `casefold(title) LIKE ? ESCAPE '\'`,
			params: []any{"%ther"},
		},
		{
			name:   "in",
			filter: queryir.In{Field: "genre", Values: []ir.IRValue{ir.IRString("Drama"), ir.IRString("Comedy")}},
			where:  "genre IN (?, ?)",
			params: []any{"Drama", "Comedy"},
		},
		{
			name:   "not in",
			filter: queryir.In{Field: "releaseYear", Values: []ir.IRValue{ir.IRInt(1997)}, Negated: true},
			where:  "release_year NOT IN (?)",
			params: []any{int64(1997)},
		},
		{
			name:   "empty in",
			filter: queryir.In{Field: "genre", Values: []ir.IRValue{}},
			where:  "0 = 1",
			params: []any{},
		},
		{
			name:   "empty not in",
			filter: queryir.In{Field: "genre", Negated: true},
			where:  "1 = 1",
			params: []any{},
		},
		{
			name: "and or not",
			filter: queryir.Conjoin(
				queryir.Disjoin(
					queryir.Compare{Field: "genre", Op: queryir.OpEq, Value: ir.IRString("Drama")},
					queryir.Compare{Field: "rating", Op: queryir.OpGt, Value: ir.IRFloat(8)},
				),
				queryir.Negate(queryir.Match{Field: "title", Anchor: queryir.AnchorContains, Term: "x"}),
			),
			where:  `((genre = ? OR rating > ?) AND NOT (casefold(title) LIKE ? ESCAPE '\'))`,
			params: []any{"Drama", 8.0, "%x%"},
		},
		{
			name:   "single element and",
			filter: queryir.And{Predicates: []queryir.Predicate{queryir.Compare{Field: "genre", Op: queryir.OpEq, Value: ir.IRString("Drama")}}},
			where:  "genre = ?",
			params: []any{"Drama"},
		},
		{
			name:   "empty or",
			filter: queryir.Or{},
			where:  "0 = 1",
			params: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := newCompiler().Compile(queryir.Select{From: "Movie", Filter: tt.filter})
			require.NoError(t, err)

			assert.Equal(t,
				"SELECT id, title, genre, release_year, rating FROM movies WHERE "+tt.where+" ORDER BY id ASC",
				sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	dangerousValue := "'; DROP TABLE movies; --"

	sql, params, err := newCompiler().Compile(queryir.Select{
		From:   "Movie",
		Filter: queryir.Compare{Field: "title", Op: queryir.OpEq, Value: ir.IRString(dangerousValue)},
	})
	require.NoError(t, err)

	assert.NotContains(t, sql, dangerousValue)
	assert.Equal(t, []any{dangerousValue}, params)
}

func TestCompile_SortAndPage(t *testing.T) {
	sql, params, err := newCompiler().Compile(queryir.Select{
		From:   "Movie",
		Filter: queryir.Compare{Field: "rating", Op: queryir.OpGe, Value: ir.IRFloat(7)},
		Sort:   []ir.Sort{{Field: "rating", Desc: true}, {Field: "title"}},
		Page:   &ir.PageRequest{Index: 2, Size: 3},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, title, genre, release_year, rating FROM movies WHERE rating >= ? "+
			"ORDER BY rating DESC, title ASC COLLATE BINARY, id ASC LIMIT ? OFFSET ?",
		sql)
	assert.Equal(t, []any{7.0, int64(3), int64(6)}, params)
}

func TestCompileCount(t *testing.T) {
	sql, params, err := newCompiler().CompileCount(queryir.Select{
		From:   "Movie",
		Filter: queryir.In{Field: "genre", Values: []ir.IRValue{ir.IRString("Drama")}},
		Sort:   []ir.Sort{{Field: "rating"}},
		Page:   &ir.PageRequest{Index: 0, Size: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM movies WHERE genre IN (?)", sql)
	assert.Equal(t, []any{"Drama"}, params)
}

func TestCompile_QuotesIdentifiers(t *testing.T) {
	sql, params, err := newCompiler().Compile(queryir.Select{
		From: "Order",
		Filter: queryir.Conjoin(
			queryir.Compare{Field: "group", Op: queryir.OpEq, Value: ir.IRString("a")},
			queryir.Compare{Field: "paid", Op: queryir.OpEq, Value: ir.IRBool(true)},
		),
	})
	require.NoError(t, err)

	assert.Equal(t, `SELECT id, "group", "is paid" FROM "order" WHERE ("group" = ? AND "is paid" = ?) ORDER BY id ASC`, sql)
	assert.Equal(t, []any{"a", true}, params)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		sel  queryir.Select
	}{
		{"unknown entity", queryir.Select{From: "Planet"}},
		{"unknown field", queryir.Select{From: "Movie", Filter: queryir.Compare{Field: "director", Op: queryir.OpEq, Value: ir.IRString("x")}}},
		{"type mismatch", queryir.Select{From: "Movie", Filter: queryir.Compare{Field: "rating", Op: queryir.OpEq, Value: ir.IRString("x")}}},
		{"unknown sort field", queryir.Select{From: "Movie", Sort: []ir.Sort{{Field: "budget"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newCompiler().Compile(tt.sel)
			require.Error(t, err)
			assert.True(t, queryir.IsConfigurationError(err))

			_, _, err = newCompiler().CompileCount(tt.sel)
			assert.Error(t, err)
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"title":        "title",
		"release_year": "release_year",
		"_x1":          "_x1",
		"order":        `"order"`,
		"Match":        `"Match"`,
		"1st":          `"1st"`,
		"is paid":      `"is paid"`,
		`say"hi`:       `"say""hi"`,
		"":             `""`,
	}
	for in, want := range tests {
		assert.Equal(t, want, quoteIdentifier(in), "input %q", in)
	}
}
