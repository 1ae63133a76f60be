package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/satchel-app/satchel/internal/syncer"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // domain failure (rejected, invalid credentials, empty cart, ...)
	ExitCommandError = 2 // command error (bad flags, unreadable config, store cannot open)
	ExitOffline      = 3 // connectivity required and unavailable
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Reconciliation
// failures map by category: connectivity problems get their own code so
// scripts can retry; everything else is a domain failure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if syncer.IsNetworkUnavailable(err) || syncer.IsConnectivityRequired(err) {
		return ExitOffline
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the uniform JSON envelope for CLI output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error half of the envelope.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success emits data. In text mode text is printed as-is; in JSON mode
// data is wrapped in the envelope (text is used only when data is nil).
func (f *OutputFormatter) Success(text string, data any) error {
	if f.Format == "json" {
		if data == nil {
			data = text
		}
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Fail emits an error in the configured format and returns an error
// carrying the right exit code. Reconciliation failures print their
// user-safe message; internal detail stays out of the output.
func (f *OutputFormatter) Fail(err error) error {
	code, message := classify(err)
	if f.Format == "json" {
		encErr := json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message},
		})
		if encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error: %s\n", message)
	}
	return WrapExitError(GetExitCode(err), message, err)
}

func classify(err error) (code, message string) {
	var oe *syncer.OpError
	if errors.As(err, &oe) {
		return string(oe.Code), oe.UserMessage()
	}
	return "ERROR", err.Error()
}
