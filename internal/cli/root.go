package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/config"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger they resolve to.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	SchemaDir  string

	// Config and Logger are set by PersistentPreRunE. Tests that build a
	// subcommand directly may leave them nil; setup fills them in.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultEnvFiles are the dotenv files read on startup, when present.
var DefaultEnvFiles = []string{".env"}

// NewRootCommand creates the root command for the sieve CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sieve",
		Short: "sieve - compose record filters from criteria and named predicates",
		Long: `Build predicates from criteria lists and named filters, combine them,
and run them against a SQLite store of typed entities.

Configuration comes from --config (YAML), .env and SIEVE_* environment
variables, in that order of increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			_, err := opts.setup(cmd)
			return err
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema-dir", "", "directory of CUE entity schemas (default: builtin)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the configuration and installs the logger once per process.
// Flags override config: --schema-dir wins over schema.dir and --verbose
// forces debug logging.
func (o *RootOptions) setup(cmd *cobra.Command) (*config.Config, error) {
	if o.Config == nil {
		cfg, err := config.Load(config.LoadOptions{File: o.ConfigFile, EnvFiles: DefaultEnvFiles})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		o.Config = cfg
	}
	if o.SchemaDir != "" {
		o.Config.Schema.Dir = o.SchemaDir
	}
	if o.Logger == nil {
		o.Logger = newLogger(o.Config.Log, o.Verbose, cmd.ErrOrStderr())
		slog.SetDefault(o.Logger)
	}
	return o.Config, nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
