package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
)

// seededDB seeds a fresh database and returns its path.
func seededDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "sieve.db")
	_, _, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)
	return db
}

func recordIDs(recs []ir.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func decodeQuery(t *testing.T, out string) QueryResult {
	t.Helper()
	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestSeed(t *testing.T) {
	db := filepath.Join(t.TempDir(), "sieve.db")

	out, _, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Seeded "+db)
	assert.Contains(t, out, "Movie: 10 record(s)")
	assert.Contains(t, out, "Customer: 4 record(s)")
	assert.Contains(t, out, "Employee: 5 record(s)")

	_, err = os.Stat(db)
	require.NoError(t, err)

	out, _, err = execute(t, "--format", "json", "seed", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Data SeedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data.Inserted)
	assert.Equal(t, []string{"Customer", "Employee", "Movie"}, resp.Data.Skipped)
}

func TestQuery_NamedFilters(t *testing.T) {
	db := seededDB(t)

	out, _, err := execute(t, "query", "Customer", "--db", db, "--filter", "name=jacob", "--filter", "age=16")
	require.NoError(t, err)
	assert.Contains(t, out, `Filter: (age < 16 AND name = "jacob")`)
	assert.Contains(t, out, "jacob")
	assert.NotContains(t, out, "rober")
	assert.Contains(t, out, "1 record(s)")
}

func TestQuery_WhereJSON(t *testing.T) {
	db := seededDB(t)

	out, _, err := execute(t, "--format", "json", "query", "Movie", "--db", db, "--where", "title:MATCH:black")
	require.NoError(t, err)

	result := decodeQuery(t, out)
	assert.Equal(t, `title CONTAINS "black"`, result.Filter)
	assert.Equal(t, []int64{1, 3, 7}, recordIDs(result.Records))
	assert.Equal(t, ir.IRString("Black Panther"), result.Records[0].Get("title"))
	assert.Nil(t, result.Page)
}

func TestQuery_SortAndPage(t *testing.T) {
	db := seededDB(t)

	out, _, err := execute(t, "--format", "json", "query", "Movie", "--db", db,
		"--where", "rating:>=:8", "--sort", "rating:desc", "--page", "1", "--size", "2")
	require.NoError(t, err)

	result := decodeQuery(t, out)
	assert.Equal(t, []int64{2, 8}, recordIDs(result.Records))
	assert.Equal(t, int64(6), result.Total)
	require.NotNil(t, result.Page)
	assert.Equal(t, PageInfo{Index: 1, Size: 2, Pages: 3}, *result.Page)
}

func TestQuery_Any(t *testing.T) {
	db := seededDB(t)

	out, _, err := execute(t, "--format", "json", "query", "Movie", "--db", db,
		"--any", "--where", "genre:=:Comedy", "--where", "title:STARTS_WITH:the")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, recordIDs(decodeQuery(t, out).Records))
}

func TestQuery_EmployeeListFilters(t *testing.T) {
	db := seededDB(t)

	out, _, err := execute(t, "--format", "json", "query", "Employee", "--db", db,
		"--filter", "department=IT,Admin", "--filter", "salary=3000,6000")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, recordIDs(decodeQuery(t, out).Records))
}

func TestQuery_CriteriaFile(t *testing.T) {
	db := seededDB(t)
	file := filepath.Join(t.TempDir(), "where.yaml")
	require.NoError(t, os.WriteFile(file, []byte("- {key: department, op: IN, value: [Admin]}\n"), 0644))

	out, _, err := execute(t, "--format", "json", "query", "Employee", "--db", db,
		"--criteria", file, "--where", "salary:>:3000")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, recordIDs(decodeQuery(t, out).Records))
}

func TestQuery_Errors(t *testing.T) {
	db := seededDB(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown entity", []string{"query", "Ghost"}, "CONFIGURATION_ERROR"},
		{"unknown field", []string{"query", "Movie", "--where", "director:=:Nolan"}, "CONFIGURATION_ERROR"},
		{"bad where syntax", []string{"query", "Movie", "--where", "genre"}, "CONFIGURATION_ERROR"},
		{"bad value", []string{"query", "Movie", "--where", "rating:>:high"}, "INVALID_ARGUMENT"},
		{"unsupported filter", []string{"query", "Movie", "--filter", "director=Nolan"}, "UNSUPPORTED_FILTER_KEY"},
		{"bad sort", []string{"query", "Movie", "--sort", "rating:sideways"}, "CONFIGURATION_ERROR"},
		{"page too large", []string{"query", "Movie", "--page", "0", "--size", "1000"}, "INVALID_ARGUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json"}, tt.args...)
			args = append(args, "--db", db)
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_Text(t *testing.T) {
	out, _, err := execute(t, "compile", "Customer", "--filter", "name=jacob", "--filter", "age=16")
	require.NoError(t, err)

	assert.Contains(t, out, `Filter:      (age < 16 AND name = "jacob")`)
	assert.Contains(t, out, "SQL:         SELECT id, name, age FROM customers WHERE (age < ? AND name = ?) ORDER BY id ASC")
	assert.Contains(t, out, "Params:      [16 jacob]")
	assert.Contains(t, out, "Count SQL:   SELECT COUNT(*) FROM customers WHERE (age < ? AND name = ?)")
}

func TestCompile_JSONFingerprint(t *testing.T) {
	run := func(args ...string) CompilationResult {
		out, _, err := execute(t, append([]string{"--format", "json", "compile", "Movie"}, args...)...)
		require.NoError(t, err)
		var resp struct {
			Data CompilationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data
	}

	a := run("--where", "title:MATCH:BLACK")
	b := run("--where", "title:match:black")
	c := run("--where", "title:STARTS_WITH:black")

	assert.Equal(t, []any{"%black%"}, a.Params)
	assert.Contains(t, a.SQL, "casefold(title) LIKE ? ESCAPE")
	assert.Len(t, a.Fingerprint, 64)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestCompile_SchemaDir(t *testing.T) {
	dir := t.TempDir()
	src := "entity: Order: {\n\ttable: \"order\"\n\tfields: {\n\t\ttotal: type: \"float\"\n\t}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.cue"), []byte(src), 0644))

	out, _, err := execute(t, "--schema-dir", dir, "compile", "Order", "--where", "total:>:20", "--sort", "total:desc")
	require.NoError(t, err)
	assert.Contains(t, out, `SELECT id, total FROM "order" WHERE total > ? ORDER BY total DESC, id ASC`)
}

func TestCompile_UnknownEntity(t *testing.T) {
	out, _, err := execute(t, "compile", "Ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [CONFIGURATION_ERROR]")
	assert.Contains(t, out, "known: Movie, Customer, Employee")
}
