package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/pkg/config"
)

var quiet bool

// SetQuiet toggles suppression of informational output. Warnings and
// errors still print.
func SetQuiet(v bool) {
	quiet = v
}

// ApplyOutputSettings configures the print helpers from the loaded
// configuration: --quiet silences informational lines, and styling is
// stripped when --no-color is set or the terminal cannot render it.
func ApplyOutputSettings(cmd *cobra.Command) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		SetQuiet(cfg.CLI.Quiet)
	}
	if !ShouldUseColor(cmd) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// WriteJSON writes data as indented JSON to the writer.
func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// PrintTitle prints a styled section title.
func PrintTitle(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Println(components.TitleStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintSuccess prints a styled success line.
func PrintSuccess(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Println(components.SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintWarn prints a styled warning line. Not silenced by quiet.
func PrintWarn(format string, args ...any) {
	fmt.Println(components.WarnStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintDim prints a styled secondary line.
func PrintDim(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Println(components.DimStyle.Render(fmt.Sprintf(format, args...)))
}

// DisplayPath shortens a path for terminal output by collapsing the
// home directory prefix to "~". Paths outside home are returned as is.
func DisplayPath(home, path string) string {
	if home == "" || path == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join("~", rel)
	}
	return path
}
