package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/queryir"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a scenario failed
	ExitCommandError = 2 // bad input: criteria, schema, paths, database
)

// Codes for failures that carry no queryir.ErrorCode.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeSchema      = "E002" // CUE schema did not compile
	ErrCodeNotFound    = "E005"
	ErrCodeStore       = "E006"
	ErrCodeTestsFailed = "E_TEST_FAILED"
)

// ExitError carries the process exit code out of a command's RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set once the command has already shown the error to the
	// user through its formatter.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

func (e *ExitError) markReported() *ExitError {
	e.Reported = true
	return e
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure for any other error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format string
	Writer io.Writer

	// ErrWriter receives verbose diagnostics so they never interleave with
	// JSON on Writer. Falls back to Writer when nil.
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of CLIResponse. Code is a queryir code such as
// "CONFIGURATION_ERROR" or one of the E-codes above.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorDetails locates a typed query error inside the caller's input.
type ErrorDetails struct {
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// Success writes data. In text mode data is printed with fmt; commands with
// structured results print their own text instead.
func (f *OutputFormatter) Success(data any) error {
	if f.Format != "json" {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	return f.encode(CLIResponse{Status: "ok", Data: data})
}

// Error writes a coded error. Text mode only shows details when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a diagnostic line to GetErrWriter when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when ErrWriter is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}

// errorCode picks the code reported for err: the queryir code when there is
// one, then schema and validation codes, else ErrCodeGeneric.
func errorCode(err error) string {
	if code := queryir.CodeOf(err); code != "" {
		return string(code)
	}
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Code
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeSchema
	}
	return ErrCodeGeneric
}

// errorDetails returns the field and index of a typed query error, or nil.
func errorDetails(err error) *ErrorDetails {
	var qe *queryir.Error
	if !errors.As(err, &qe) || (qe.Field == "" && qe.Index < 0) {
		return nil
	}
	d := &ErrorDetails{Field: qe.Field}
	if qe.Index >= 0 {
		idx := qe.Index
		d.Index = &idx
	}
	return d
}

// fail reports err through the formatter and returns the ExitError the
// command should return. Query and schema errors are command errors: the
// input was wrong, not the data.
func fail(f *OutputFormatter, message string, err error) error {
	var details any
	if d := errorDetails(err); d != nil {
		details = d
	}
	_ = f.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), details)
	return WrapExitError(ExitCommandError, message, err).markReported()
}

// Report writes err to w unless a command already reported it, and returns
// the process exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintln(w, err)
	}
	return GetExitCode(err)
}
