package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/todolists/internal/list"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected input, missing list, failed scenario
	ExitCommandError = 2 // bad config, unusable paths, storage failure
)

// Error codes reported in CLIError.Code.
const (
	CodeValidation = "E_VALIDATION"
	CodeNotFound   = "E_NOT_FOUND"
	CodeStorage    = "E_STORAGE"
	CodeConfig     = "E_CONFIG"
	CodeTestFailed = "E_TEST_FAILED"
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not an
// ExitError exit with ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every JSON response.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes a failed command.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format string
	Writer io.Writer
	// ErrWriter receives diagnostics. Defaults to Writer.
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool {
	return f.Format == "json"
}

func (f *OutputFormatter) respond(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data. Text output prints it with fmt, so payloads
// implement fmt.Stringer.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.respond(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are shown in text output only with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.respond(CLIResponse{
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

// Report writes data together with an optional failure. JSON output carries
// both in one response; text output prints data and then the failure.
func (f *OutputFormatter) Report(data any, failure *CLIError) error {
	if f.isJSON() {
		resp := CLIResponse{Status: "ok", Data: data, Error: failure}
		if failure != nil {
			resp.Status = "error"
		}
		return f.respond(resp)
	}
	if _, err := fmt.Fprintln(f.Writer, data); err != nil {
		return err
	}
	if failure != nil {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", failure.Code, failure.Message)
	}
	return nil
}

// Fail reports a storage or lookup error and returns the error the command
// should return: ExitFailure for a missing list, ExitCommandError otherwise.
func (f *OutputFormatter) Fail(err error) error {
	var nf *list.NotFoundError
	if errors.As(err, &nf) {
		_ = f.Error(CodeNotFound, nf.Error(), map[string]int64{"id": nf.ID})
		return WrapExitError(ExitFailure, "list not found", err)
	}
	_ = f.Error(CodeStorage, err.Error(), nil)
	return WrapExitError(ExitCommandError, "storage error", err)
}

// Invalid reports rejected input.
func (f *OutputFormatter) Invalid(message string) error {
	_ = f.Error(CodeValidation, message, nil)
	return NewExitError(ExitFailure, message)
}

// VerboseLog writes a diagnostic line to ErrWriter when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when it is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
