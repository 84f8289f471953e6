package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/craftledger/internal/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Ledger rejected the operation (shortfall, unknown item, etc.)
	ExitCommandError = 2 // Command error (bad config, database unavailable, bad flags, etc.)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeUsage    = "E001" // invalid arguments or flags
	ErrCodeConfig   = "E002" // config file missing, malformed or invalid
	ErrCodeStorage  = "E003" // database could not be opened or used
	ErrCodeSeed     = "E004" // catalog seed file rejected
	ErrCodeServer   = "E005" // HTTP server failed
	ErrCodeScenario = "E006" // one or more harness scenarios failed
	ErrCodeInternal = "E099" // anything else
)

// ledgerErrCodes maps ledger rejections onto stable CLI codes.
var ledgerErrCodes = map[ledger.Code]string{
	ledger.CodeUnknownItem:          "E101",
	ledger.CodeInvalidQuantity:      "E102",
	ledger.CodeInvalidPrice:         "E103",
	ledger.CodeInvalidName:          "E104",
	ledger.CodeInsufficientMaterial: "E105",
	ledger.CodeInsufficientStock:    "E106",
	ledger.CodeAlreadyClockedIn:     "E107",
	ledger.CodeNotClockedIn:         "E108",
	ledger.CodeStorageUnavailable:   ErrCodeStorage,
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written through an
	// OutputFormatter, so main doesn't print it twice.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
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

// IsReported reports whether err was already written to the user.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`               // "ok" or "error"
	Data    any       `json:"data,omitempty"`       // success payload
	Error   *CLIError `json:"error,omitempty"`      // error details
	TraceID string    `json:"request_id,omitempty"` // request ID of the mutation, if any
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E105", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// Text output prints data with fmt.Println.
func (f *OutputFormatter) Success(data any) error {
	return f.Render(data, "", func(w io.Writer) {
		fmt.Fprintln(w, data)
	})
}

// Render outputs data as JSON, or calls text to write the human-readable
// form. requestID is attached to the JSON envelope when non-empty.
func (f *OutputFormatter) Render(data any, requestID string, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: requestID,
		})
	}

	text(f.Writer)
	if requestID != "" {
		f.VerboseLog("request %s", requestID)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// Ledger errors keep their message and carry the ledger code in details;
// anything else is reported under fallback.
func (f *OutputFormatter) Fail(fallback, message string, err error) error {
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		code, ok := ledgerErrCodes[lerr.Code]
		if !ok {
			code = ErrCodeInternal
		}
		_ = f.Error(code, lerr.Message, ledgerDetails(lerr))

		exit := ExitFailure
		if lerr.Code == ledger.CodeStorageUnavailable {
			exit = ExitCommandError
		}
		e := WrapExitError(exit, string(lerr.Code), err)
		e.Reported = true
		return e
	}

	_ = f.Error(fallback, fmt.Sprintf("%s: %v", message, err), nil)
	e := WrapExitError(ExitCommandError, message, err)
	e.Reported = true
	return e
}

func ledgerDetails(e *ledger.Error) map[string]any {
	d := map[string]any{"ledger_code": string(e.Code)}
	if e.Kind != "" {
		d["kind"] = string(e.Kind)
	}
	if e.Item != "" {
		d["item"] = e.Item
	}
	if e.Code == ledger.CodeInsufficientMaterial || e.Code == ledger.CodeInsufficientStock {
		d["needed"] = e.Needed
		d["available"] = e.Available
	}
	return d
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
