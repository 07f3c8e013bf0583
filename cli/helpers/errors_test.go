package helpers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/cli/tui/models"
)

func TestCliError(t *testing.T) {
	t.Run("Should include details in the message when present", func(t *testing.T) {
		err := NewCliError("NOT_CONFIGURED", "No master platform configured", "run 'agentsync config' first")
		assert.Equal(t, "NOT_CONFIGURED: No master platform configured (run 'agentsync config' first)", err.Error())
	})

	t.Run("Should omit details when absent", func(t *testing.T) {
		err := NewCliError("NO_BACKUPS", "No backups found")
		assert.Equal(t, "NO_BACKUPS: No backups found", err.Error())
	})

	t.Run("Should carry added context", func(t *testing.T) {
		err := NewCliError("INVALID_PLATFORM", "unknown platform").WithContext("platform", "emacs")
		assert.Equal(t, "emacs", err.Context["platform"])
	})
}

func TestFormatError(t *testing.T) {
	t.Run("Should produce a parseable JSON error object", func(t *testing.T) {
		err := NewCliError("NOT_CONFIGURED", "No master platform configured", "run 'agentsync config' first")

		out := FormatError(err, models.ModeJSON)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "No master platform configured", decoded["error"])
		assert.Equal(t, "NOT_CONFIGURED", decoded["code"])
	})

	t.Run("Should wrap plain errors in the JSON shape", func(t *testing.T) {
		out := FormatError(errors.New("boom"), models.ModeJSON)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "boom", decoded["error"])
	})

	t.Run("Should render a human message in TUI mode", func(t *testing.T) {
		out := FormatError(NewCliError("NO_BACKUPS", "No backups found"), models.ModeTUI)
		assert.Contains(t, out, "No backups found")
	})

	t.Run("Should return empty for nil errors", func(t *testing.T) {
		assert.Empty(t, FormatError(nil, models.ModeJSON))
	})
}
