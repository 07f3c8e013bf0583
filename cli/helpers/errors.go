package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/cli/tui/models"
)

// ErrNotConfigured signals that no master/fork profile has been set up
// yet.
var ErrNotConfigured = errors.New("no platforms configured")

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewNotConfiguredError builds the standard "run config first" error.
func NewNotConfiguredError(what string) *CliError {
	return NewCliError(
		"NOT_CONFIGURED",
		fmt.Sprintf("No %s platform configured", what),
		"run 'agentsync config' first",
	)
}

// FormatError formats errors based on output mode
func FormatError(err error, mode models.Mode) string {
	if err == nil {
		return ""
	}
	if mode == models.ModeJSON {
		return formatErrorJSON(err)
	}
	return components.ErrorStyle.Render("Error: " + errorMessage(err))
}

func errorMessage(err error) string {
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		if cliErr.Details != "" {
			return fmt.Sprintf("%s (%s)", cliErr.Message, cliErr.Details)
		}
		return cliErr.Message
	}
	return err.Error()
}

// formatErrorJSON formats errors as a stable JSON error object.
func formatErrorJSON(err error) string {
	response := map[string]any{"error": err.Error(), "details": ""}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		response["error"] = cliErr.Message
		response["details"] = cliErr.Details
		response["code"] = cliErr.Code
	}
	data, marshalErr := json.MarshalIndent(response, "", "  ")
	if marshalErr != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// OutputError prints a formatted error to stderr.
func OutputError(err error, mode models.Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, FormatError(err, mode))
}
