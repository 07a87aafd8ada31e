package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fieldside/rtp/internal/protocol"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Expected refusal (not eligible, already cleared, bad input)
	ExitCommandError = 2 // Command error (bad flags, database not found, conflicts)
)

// Error codes surfaced in CLI responses, one per failure category.
const (
	ErrCodeValidation     = "VALIDATION"
	ErrCodeNotEligible    = "NOT_ELIGIBLE"
	ErrCodeAlreadyCleared = "ALREADY_CLEARED"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUnknownStage   = "UNKNOWN_STAGE"
	ErrCodeGeneric        = "ERROR"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classifyError maps a typed engine/store failure to its CLI error code
// and exit code.
func classifyError(err error) (code string, exit int) {
	switch {
	case protocol.IsValidation(err):
		return ErrCodeValidation, ExitFailure
	case protocol.IsAlreadyCleared(err):
		return ErrCodeAlreadyCleared, ExitFailure
	case protocol.IsConcurrentModification(err):
		return ErrCodeConflict, ExitCommandError
	case protocol.IsUnknownStage(err):
		return ErrCodeUnknownStage, ExitCommandError
	case errors.Is(err, protocol.ErrProtocolNotFound):
		return ErrCodeNotFound, ExitCommandError
	default:
		if _, ok := protocol.IsStageNotEligible(err); ok {
			return ErrCodeNotEligible, ExitFailure
		}
		return ErrCodeGeneric, ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
// In text mode, data is rendered with Stringer/default formatting;
// commands with richer text output render it themselves first.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs a typed failure in the configured format and returns
// the ExitError the command should finish with.
func (f *OutputFormatter) Failure(err error) error {
	code, exit := classifyError(err)
	if f.Format == "json" {
		var details any
		if reason, ok := protocol.IsStageNotEligible(err); ok {
			var se *protocol.StageNotEligibleError
			errors.As(err, &se)
			details = map[string]any{
				"reason":         string(reason),
				"hoursRemaining": se.HoursRemaining,
			}
		}
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error(), Details: details},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, err.Error())
	}
	return &ExitError{Code: exit, Message: code, Err: err}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid
// corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
