package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/queryir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("CONFIGURATION_ERROR", "unknown field", map[string]string{"field": "director"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFIGURATION_ERROR", resp.Error.Code)
	assert.Equal(t, "unknown field", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("E001", "boom", "hidden"))
	assert.Equal(t, "Error [E001]: boom\n", buf.String())

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("E001", "boom", "shown"))
	assert.Contains(t, buf.String(), "Details: shown")
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"query error", queryir.NewUnsupportedFilterKey("director"), "UNSUPPORTED_FILTER_KEY"},
		{"wrapped query error", fmt.Errorf("compile: %w", queryir.NewEmptyCombination()), "EMPTY_COMBINATION"},
		{"validation errors", compiler.ValidationErrors{{Code: compiler.ErrReservedName, Message: "reserved"}}, compiler.ErrReservedName},
		{"compile error", &compiler.CompileError{Field: "cue", Message: "syntax"}, ErrCodeSchema},
		{"other", errors.New("disk full"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestErrorDetails(t *testing.T) {
	assert.Nil(t, errorDetails(errors.New("plain")))
	assert.Nil(t, errorDetails(queryir.NewEmptyCombination()))

	d := errorDetails(queryir.NewUnsupportedFilterKey("director"))
	require.NotNil(t, d)
	assert.Equal(t, "director", d.Field)
	assert.Nil(t, d.Index)

	d = errorDetails(fmt.Errorf("build: %w", queryir.NewConfigurationError("rating", "bad").AtIndex(2)))
	require.NotNil(t, d)
	require.NotNil(t, d.Index)
	assert.Equal(t, 2, *d.Index)
}

func TestFailReportsDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := fail(formatter, "invalid filter", queryir.NewInvalidArgument("age", "not a number").AtIndex(0))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp struct {
		Error struct {
			Code    string       `json:"code"`
			Details ErrorDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "INVALID_ARGUMENT", resp.Error.Code)
	assert.Equal(t, "age", resp.Error.Details.Field)
	require.NotNil(t, resp.Error.Details.Index)
	assert.Equal(t, 0, *resp.Error.Details.Index)
}

func TestReportSkipsReportedErrors(t *testing.T) {
	formatter := &OutputFormatter{Format: "json", Writer: &bytes.Buffer{}}
	reported := fail(formatter, "invalid query", queryir.NewUnsupportedFilterKey("director"))

	stderr := &bytes.Buffer{}
	assert.Equal(t, ExitCommandError, Report(stderr, reported))
	assert.Empty(t, stderr.String())

	assert.Equal(t, ExitCommandError, Report(stderr, fmt.Errorf("run: %w", reported)))
	assert.Empty(t, stderr.String())
}

func TestReportPrintsUnreportedErrors(t *testing.T) {
	stderr := &bytes.Buffer{}
	assert.Equal(t, ExitCommandError, Report(stderr, NewExitError(ExitCommandError, "scenarios directory not found: x")))
	assert.Equal(t, "scenarios directory not found: x\n", stderr.String())

	stderr.Reset()
	assert.Equal(t, ExitFailure, Report(stderr, errors.New(`unknown command "frobnicate"`)))
	assert.Contains(t, stderr.String(), "unknown command")

	stderr.Reset()
	assert.Equal(t, ExitSuccess, Report(stderr, nil))
	assert.Empty(t, stderr.String())
}

func TestSchemaErrorsAreReported(t *testing.T) {
	_, _, err := execute(t, "schema", "/nonexistent/schemas")
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.Reported)
}
