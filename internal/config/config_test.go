package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "sieve.db", cfg.Database.Path)
	assert.Equal(t, 20, cfg.Query.DefaultPageSize)
	assert.Equal(t, 100, cfg.Query.MaxPageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Schema.Dir)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "sieve.yaml", `
database:
  path: /var/lib/sieve/movies.db
query:
  default_page_size: 5
log:
  level: debug
schema:
  dir: ./schemas
`)

	cfg, err := Load(LoadOptions{File: path})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sieve/movies.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Query.DefaultPageSize)
	assert.Equal(t, 100, cfg.Query.MaxPageSize, "unset keys keep their default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "./schemas", cfg.Schema.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "sieve.yaml", "query:\n  max_page_size: 10\n")
	t.Setenv("SIEVE_QUERY_MAX_PAGE_SIZE", "50")
	t.Setenv("SIEVE_LOG_FORMAT", "json")

	cfg, err := Load(LoadOptions{File: path})
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Query.MaxPageSize)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvFile(t *testing.T) {
	// godotenv writes to the process environment; register the keys with
	// t.Setenv first so they are restored afterwards.
	t.Setenv("SIEVE_SCHEMA_DIR", "")
	os.Unsetenv("SIEVE_SCHEMA_DIR")
	t.Setenv("SIEVE_LOG_LEVEL", "warn")

	path := writeFile(t, ".env", "SIEVE_SCHEMA_DIR=/etc/sieve/schemas\nSIEVE_LOG_LEVEL=debug\n")

	cfg, err := Load(LoadOptions{EnvFiles: []string{path, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)

	assert.Equal(t, "/etc/sieve/schemas", cfg.Schema.Dir)
	assert.Equal(t, "warn", cfg.Log.Level, "real environment wins over .env")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown log format", map[string]string{"SIEVE_LOG_FORMAT": "xml"}},
		{"unknown log level", map[string]string{"SIEVE_LOG_LEVEL": "trace"}},
		{"zero default page size", map[string]string{"SIEVE_QUERY_DEFAULT_PAGE_SIZE": "0"}},
		{"negative max page size", map[string]string{"SIEVE_QUERY_MAX_PAGE_SIZE": "-1"}},
		{"default above max", map[string]string{
			"SIEVE_QUERY_DEFAULT_PAGE_SIZE": "50",
			"SIEVE_QUERY_MAX_PAGE_SIZE":     "10",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(LoadOptions{})
			assert.Error(t, err)
		})
	}
}

func TestLoadUnboundedMaxPageSize(t *testing.T) {
	t.Setenv("SIEVE_QUERY_MAX_PAGE_SIZE", "0")
	t.Setenv("SIEVE_QUERY_DEFAULT_PAGE_SIZE", "500")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Query.MaxPageSize)
	assert.Equal(t, 500, cfg.Query.DefaultPageSize)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.path", envKey("SIEVE_DATABASE_PATH"))
	assert.Equal(t, "query.max_page_size", envKey("SIEVE_QUERY_MAX_PAGE_SIZE"))
	assert.Equal(t, "log.level", envKey("SIEVE_LOG_LEVEL"))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
}
