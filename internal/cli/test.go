package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
)

// Golden states reported per scenario.
const (
	GoldenNone    = "none"
	GoldenMatch   = "match"
	GoldenDiff    = "mismatch"
	GoldenUpdated = "updated"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// ScenarioOutcome is one scenario's verdict.
type ScenarioOutcome struct {
	Name      string   `json:"name"`
	Pass      bool     `json:"pass"`
	Filter    string   `json:"filter,omitempty"`
	IDs       []int64  `json:"ids,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
	Golden    string   `json:"golden,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a scenarios directory.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

func (r *SuiteResult) add(o ScenarioOutcome) {
	r.Scenarios = append(r.Scenarios, o)
	r.Total++
	if o.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run query scenarios",
		Long: `Run every YAML scenario under <scenarios-dir>.

A scenario seeds a throwaway store, assembles its filter, and checks the
assertions plus agreement between SQL and in-memory evaluation. If
<scenarios-dir>/golden/<file>.golden exists the compiled SQL, params and
result ids must match it; --update rewrites those files.

Exits 1 when a scenario fails and 2 when the directory cannot be read.

Examples:
  sieve test ./testdata/scenarios
  sieve test ./testdata/scenarios --filter "movies_*"
  sieve test ./testdata/scenarios --update --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current results")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files whose name matches this glob")

	return cmd
}

func runSuite(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := scenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list scenarios", err)
	}

	formatter := opts.formatter(cmd)
	text := opts.Format != "json"
	w := cmd.OutOrStdout()

	suite := SuiteResult{Scenarios: []ScenarioOutcome{}}
	if len(files) == 0 {
		if text {
			fmt.Fprintln(w, "No scenarios found.")
			return nil
		}
		return formatter.Success(suite)
	}

	for _, file := range files {
		outcome := checkScenario(cmd.Context(), file, opts.Update, formatter)
		suite.add(outcome)
		if text {
			printOutcome(w, outcome)
		}
	}

	// The summary (or the JSON envelope) already tells the user what failed.
	var failure error
	if suite.Failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", suite.Failed)).markReported()
	}

	if !text {
		resp := CLIResponse{Status: "ok", Data: suite}
		if failure != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeTestsFailed, Message: failure.Error()}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.Total)
	if failure == nil {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
	return failure
}

// scenarioFiles lists .yaml/.yml files under dir in lexical order. The
// golden fixture directory is never descended into.
func scenarioFiles(dir, pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// checkScenario loads, runs and golden-checks one scenario file. It never
// returns an error; every problem lands in the outcome.
func checkScenario(ctx context.Context, file string, update bool, f *OutputFormatter) ScenarioOutcome {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return failed(filepath.Base(file), "failed to load scenario: %v", err)
	}

	result, err := harness.RunContext(ctx, scenario)
	if err != nil {
		return failed(scenario.Name, "execution failed: %v", err)
	}

	outcome := ScenarioOutcome{
		Name:      scenario.Name,
		Filter:    result.Filter,
		IDs:       result.IDs(),
		ErrorCode: result.ErrorCode,
		Errors:    append([]string(nil), result.Errors...),
	}

	snapshot, err := harness.GoldenBytes(scenario, result)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("failed to build snapshot: %v", err))
		return outcome
	}

	path := goldenPath(file)
	switch golden, err := os.ReadFile(path); {
	case update:
		if err := writeGolden(path, snapshot); err != nil {
			outcome.Errors = append(outcome.Errors, err.Error())
			return outcome
		}
		outcome.Golden = GoldenUpdated
	case os.IsNotExist(err):
		outcome.Golden = GoldenNone
	case err != nil:
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("failed to read golden file: %v", err))
	case bytes.Equal(bytes.TrimSpace(golden), snapshot):
		outcome.Golden = GoldenMatch
	default:
		outcome.Golden = GoldenDiff
		outcome.Errors = append(outcome.Errors, "golden file mismatch (run with --update to regenerate)")
		f.VerboseLog("%s\n  want: %s\n  got:  %s", scenario.Name, bytes.TrimSpace(golden), snapshot)
	}

	outcome.Pass = len(outcome.Errors) == 0
	return outcome
}

func failed(name, format string, args ...any) ScenarioOutcome {
	return ScenarioOutcome{Name: name, Errors: []string{fmt.Sprintf(format, args...)}}
}

func printOutcome(w io.Writer, o ScenarioOutcome) {
	if !o.Pass {
		fmt.Fprintf(w, "✗ %s\n", o.Name)
		for _, e := range o.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	note := ""
	if o.Golden == GoldenUpdated {
		note = " (golden updated)"
	}
	fmt.Fprintf(w, "✓ %s%s\n", o.Name, note)
}

// goldenPath maps dir/name.yaml to dir/golden/name.golden.
func goldenPath(file string) string {
	base := filepath.Base(file)
	return filepath.Join(filepath.Dir(file), "golden", strings.TrimSuffix(base, filepath.Ext(base))+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}
