// Package config loads sieve settings.
//
// Sources are layered, later ones winning:
//   - built-in defaults
//   - an optional YAML file (--config)
//   - variables from .env files, which never override the real environment
//   - environment variables prefixed with SIEVE_
//
// Env keys map onto dotted paths by their first underscore:
// SIEVE_QUERY_MAX_PAGE_SIZE -> query.max_page_size.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "SIEVE_"

// Config is the root configuration object.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Query    QueryConfig    `koanf:"query"`
	Log      LogConfig      `koanf:"log"`
	Schema   SchemaConfig   `koanf:"schema"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// QueryConfig bounds result paging. MaxPageSize 0 means unbounded.
type QueryConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"gte=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"gte=0"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// SchemaConfig points at a directory of CUE entity files. Empty selects the
// builtin schema.
type SchemaConfig struct {
	Dir string `koanf:"dir"`
}

// Defaults returns the configuration used when no source sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"database.path":           "sieve.db",
		"query.default_page_size": 20,
		"query.max_page_size":     100,
		"log.level":               "info",
		"log.format":              "text",
		"schema.dir":              "",
	}
}

// LoadOptions names the optional sources Load reads.
type LoadOptions struct {
	// File is a YAML config file. It must exist when set.
	File string

	// EnvFiles are dotenv files. Missing files are skipped.
	EnvFiles []string
}

// Load builds a Config from defaults, opts.File, opts.EnvFiles and the
// environment, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", opts.File, err)
		}
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps SIEVE_QUERY_MAX_PAGE_SIZE to query.max_page_size.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func loadEnvFiles(paths []string) error {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat env file %s: %w", p, err)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate checks struct tags plus the relation between page sizes.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Query.MaxPageSize > 0 && c.Query.DefaultPageSize > c.Query.MaxPageSize {
		return fmt.Errorf("invalid config: query.default_page_size %d exceeds query.max_page_size %d",
			c.Query.DefaultPageSize, c.Query.MaxPageSize)
	}
	return nil
}

// SlogLevel converts Level to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
