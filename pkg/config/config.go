package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the application configuration assembled from defaults, the
// optional YAML config file, AGENTSYNC_* environment variables, and CLI
// flags (highest precedence).
type Config struct {
	CLI   CLIConfig   `koanf:"cli"`
	Paths PathsConfig `koanf:"paths"`
	Sync  SyncConfig  `koanf:"sync"`
}

// CLIConfig holds terminal and output preferences.
type CLIConfig struct {
	// DefaultFormat selects the output mode: auto, json, or tui.
	DefaultFormat string `koanf:"default_format" validate:"omitempty,oneof=auto json tui"`
	// Interactive forces TUI mode even when auto-detection says otherwise.
	Interactive bool `koanf:"interactive"`
	// NoColor disables styled output.
	NoColor bool `koanf:"no_color"`
	// Quiet suppresses informational output.
	Quiet bool `koanf:"quiet"`
	// AssumeYes skips confirmation prompts.
	AssumeYes bool `koanf:"assume_yes"`
}

// PathsConfig holds the directories the tool reads and writes.
type PathsConfig struct {
	// Home is the base for platform directory resolution. Overridable
	// for tests and sandboxed setups.
	Home string `koanf:"home" validate:"required"`
	// ConfigDir holds profile.json, skills.json, and platforms.yaml.
	ConfigDir string `koanf:"config_dir" validate:"required"`
	// BackupDir holds timestamped backup directories.
	BackupDir string `koanf:"backup_dir" validate:"required"`
}

// SyncConfig holds sync behavior knobs.
type SyncConfig struct {
	// WatchDebounce is the quiet period before a watch-triggered resync.
	WatchDebounce time.Duration `koanf:"watch_debounce" validate:"min=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	configDir := filepath.Join(home, ".config", "agentsync")
	return &Config{
		CLI: CLIConfig{
			DefaultFormat: "auto",
		},
		Paths: PathsConfig{
			Home:      home,
			ConfigDir: configDir,
			BackupDir: filepath.Join(configDir, "backups"),
		},
		Sync: SyncConfig{
			WatchDebounce: 500 * time.Millisecond,
		},
	}
}
