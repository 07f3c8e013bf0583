package models

// Mode represents the output mode for CLI commands.
type Mode string

const (
	// ModeTUI represents interactive terminal output.
	ModeTUI Mode = "tui"
	// ModeJSON represents non-interactive JSON output mode.
	ModeJSON Mode = "json"
)
