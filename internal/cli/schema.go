package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/ir"
)

// SchemaResult lists compiled entity schemas.
type SchemaResult struct {
	Source   string             `json:"source"`
	Entities []*ir.EntitySchema `json:"entities"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [dir]",
		Short: "Validate and list entity schemas",
		Long: `Compile the CUE entity schemas in dir (or schema.dir, or the builtin
Movie, Customer and Employee schemas) and list their fields.

Each file is checked against the entity definition: a table name, at
least one field, and field types string, int, float or bool. Errors are
reported with their file position and code.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runSchema(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Schema.Dir
	}

	source := "builtin"
	if dir != "" {
		source = dir
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("schema directory not found: %s", dir), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("schema directory not found: %s", dir)).markReported()
		}
	}
	formatter.VerboseLog("Loading schemas from %s", source)

	schemas, err := loadSchemas(dir)
	if err != nil {
		return outputSchemaErrors(formatter, err)
	}

	result := SchemaResult{Source: source, Entities: schemas}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %d entity schema(s) from %s\n", len(schemas), source)
	for _, s := range schemas {
		fmt.Fprintf(w, "\n%s (table %s)\n", s.Name, s.Table)
		for _, f := range s.Fields {
			if f.Column != f.Name {
				fmt.Fprintf(w, "  %-14s %-6s column %s\n", f.Name, f.Type, f.Column)
			} else {
				fmt.Fprintf(w, "  %-14s %s\n", f.Name, f.Type)
			}
		}
	}
	return nil
}

// outputSchemaErrors reports every validation error, or the single compile
// error with its position. Schema errors are command errors (exit code 2).
func outputSchemaErrors(formatter *OutputFormatter, err error) error {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		if formatter.Format == "json" {
			_ = formatter.Error(verrs[0].Code, verrs[0].Message, []compiler.ValidationError(verrs))
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Schema validation failed")
			fmt.Fprintln(formatter.Writer)
			for _, v := range verrs {
				fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", v.Code, v.Field, v.Message)
			}
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("schema validation failed with %d error(s)", len(verrs))).markReported()
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		if formatter.Format == "json" {
			var details any
			if compileErr.Pos.IsValid() {
				details = map[string]any{
					"file":   compileErr.Pos.Filename(),
					"line":   compileErr.Pos.Line(),
					"column": compileErr.Pos.Column(),
				}
			}
			_ = formatter.Error(ErrCodeSchema, compileErr.Message, details)
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Schema compilation failed")
			fmt.Fprintln(formatter.Writer)
			if compileErr.Pos.IsValid() {
				fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
					compileErr.Pos.Filename(),
					compileErr.Pos.Line(),
					compileErr.Pos.Column())
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeSchema, compileErr.Message)
		}
		return WrapExitError(ExitCommandError, "schema compilation failed", err).markReported()
	}

	return fail(formatter, "failed to load schemas", err)
}
