package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		input string
		want  Operation
	}{
		{"GREATER_THAN", GreaterThan},
		{"less_than", LessThan},
		{" Match ", Match},
		{"match_start", MatchStart},
		{"MATCH_END", MatchEnd},
		{"starts_with", StartsWith},
		{"not_in", NotIn},
		{">=", GreaterThanEqual},
		{"<", LessThan},
		{"!=", NotEqual},
		{"<>", NotEqual},
		{"==", Equal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOperation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOperationUnknown(t *testing.T) {
	for _, s := range []string{"", "LIKE", "~", "BETWEEN"} {
		_, err := ParseOperation(s)
		assert.True(t, queryir.IsConfigurationError(err), "input %q", s)
	}
}

func TestOperationsAreAllDispatched(t *testing.T) {
	for _, op := range Operations {
		assert.True(t, op.IsValid(), "%s", op)
		assert.Equal(t, op, op.Canonical())
	}
	assert.True(t, MatchStart.IsValid())
	assert.False(t, Operation("LIKE").IsValid())
	assert.True(t, NotIn.IsSet())
	assert.False(t, Match.IsSet())
}

func TestParseWhere(t *testing.T) {
	tests := []struct {
		input string
		key   string
		op    Operation
		value ir.IRValue
	}{
		{"title:MATCH:black", "title", Match, ir.IRString("black")},
		{"age:<:16", "age", LessThan, ir.IRString("16")},
		{"url:EQUAL:http://x", "url", Equal, ir.IRString("http://x")},
		{" genre :in:Drama, Comedy", "genre", In, ir.IRArray{ir.IRString("Drama"), ir.IRString("Comedy")}},
		{"genre:NOT_IN:", "genre", NotIn, ir.IRArray{}},
		{"title:match_end:", "title", MatchEnd, ir.IRString("")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseWhere(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.key, c.Key())
			assert.Equal(t, tt.op, c.Operation())
			assert.Equal(t, tt.value, c.Value())
		})
	}
}

func TestParseWhereErrors(t *testing.T) {
	for _, s := range []string{"title", "title:MATCH", ":EQUAL:x", "title:SOUNDS_LIKE:x"} {
		_, err := ParseWhere(s)
		assert.True(t, queryir.IsConfigurationError(err), "input %q", s)
	}

	_, err := ParseWhere("title:SOUNDS_LIKE:x")
	var qe *queryir.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "title", qe.Field)
}

func TestParseWhereCompiles(t *testing.T) {
	where := []string{"releaseYear:>=:2004", "genre:IN:Drama,Comedy"}
	crits := make([]Criterion, len(where))
	for i, w := range where {
		c, err := ParseWhere(w)
		require.NoError(t, err)
		crits[i] = c
	}

	assert.Equal(t, []int64{2, 4}, compileIDs(t, crits...))
}

func TestFromEntriesYAML(t *testing.T) {
	doc := `
- {key: title, op: MATCH, value: BLACK}
- {key: rating, op: GREATER_THAN_EQUAL, value: 7.3}
- {key: releaseYear, op: NOT_IN, value: [1997, 2004]}
`
	var entries []Entry
	require.NoError(t, yaml.Unmarshal([]byte(doc), &entries))

	crits, err := FromEntries(entries)
	require.NoError(t, err)
	require.Len(t, crits, 3)
	assert.Equal(t, ir.IRFloat(7.3), crits[1].Value())
	assert.Equal(t, ir.IRArray{ir.IRInt(1997), ir.IRInt(2004)}, crits[2].Value())

	assert.Equal(t, []int64{1}, compileIDs(t, crits...))
}

func TestFromEntriesBadOperation(t *testing.T) {
	_, err := FromEntries([]Entry{
		{Key: "title", Op: "MATCH", Value: "x"},
		{Key: "genre", Op: "RESEMBLES", Value: "x"},
	})

	var qe *queryir.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, queryir.CodeConfiguration, qe.Code)
	assert.Equal(t, "genre", qe.Field)
	assert.Equal(t, 1, qe.Index)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "where.yaml")
	doc := "- {key: genre, op: EQUAL, value: Drama}\n- {key: releaseYear, op: \"<\", value: 2010}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	crits, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, crits, 2)
	assert.Equal(t, LessThan, crits[1].Operation())
	assert.Equal(t, []int64{4}, compileIDs(t, crits...))
}

func TestParseEntriesRejectsUnknownKeys(t *testing.T) {
	_, err := ParseEntries([]byte("- {key: genre, operator: EQUAL, value: Drama}\n"))
	assert.True(t, queryir.IsConfigurationError(err))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read criteria file")
}
