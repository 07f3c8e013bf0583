package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Should derive config and backup dirs from home", func(t *testing.T) {
		cfg := Default()
		require.NotEmpty(t, cfg.Paths.Home)
		assert.Equal(t, filepath.Join(cfg.Paths.Home, ".config", "agentsync"), cfg.Paths.ConfigDir)
		assert.Equal(t, filepath.Join(cfg.Paths.ConfigDir, "backups"), cfg.Paths.BackupDir)
		assert.Equal(t, "auto", cfg.CLI.DefaultFormat)
		assert.Equal(t, 500*time.Millisecond, cfg.Sync.WatchDebounce)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should load defaults when no sources given", func(t *testing.T) {
		svc := NewService()
		cfg, err := svc.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, Default().Paths.ConfigDir, cfg.Paths.ConfigDir)
	})

	t.Run("Should apply YAML file over defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := "cli:\n  default_format: json\npaths:\n  backup_dir: " + filepath.Join(dir, "bk") + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		svc := NewService()
		cfg, err := svc.Load(t.Context(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.CLI.DefaultFormat)
		assert.Equal(t, filepath.Join(dir, "bk"), cfg.Paths.BackupDir)
		// Keys the file does not mention keep their defaults.
		assert.Equal(t, Default().Paths.ConfigDir, cfg.Paths.ConfigDir)
	})

	t.Run("Should tolerate a missing YAML file", func(t *testing.T) {
		svc := NewService()
		cfg, err := svc.Load(t.Context(), NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml")))
		require.NoError(t, err)
		assert.Equal(t, "auto", cfg.CLI.DefaultFormat)
	})

	t.Run("Should reject a malformed YAML file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cli: [oops"), 0o644))

		svc := NewService()
		_, err := svc.Load(t.Context(), NewYAMLProvider(path))
		assert.Error(t, err)
	})

	t.Run("Should apply environment over YAML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cli:\n  default_format: tui\n"), 0o644))
		t.Setenv("AGENTSYNC_CLI_DEFAULT_FORMAT", "json")

		svc := NewService()
		cfg, err := svc.Load(t.Context(), NewYAMLProvider(path), NewEnvProvider())
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.CLI.DefaultFormat)
	})

	t.Run("Should apply CLI flags over environment", func(t *testing.T) {
		t.Setenv("AGENTSYNC_CLI_DEFAULT_FORMAT", "json")

		svc := NewService()
		cfg, err := svc.Load(t.Context(), NewEnvProvider(), NewCLIProvider(map[string]any{
			"cli.default_format": "tui",
		}))
		require.NoError(t, err)
		assert.Equal(t, "tui", cfg.CLI.DefaultFormat)
	})

	t.Run("Should parse durations from environment strings", func(t *testing.T) {
		t.Setenv("AGENTSYNC_SYNC_WATCH_DEBOUNCE", "2s")

		svc := NewService()
		cfg, err := svc.Load(t.Context(), NewEnvProvider())
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Sync.WatchDebounce)
	})

	t.Run("Should reject invalid format values", func(t *testing.T) {
		svc := NewService()
		_, err := svc.Load(t.Context(), NewCLIProvider(map[string]any{
			"cli.default_format": "xml",
		}))
		assert.Error(t, err)
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should map known sections and drop unknown variables", func(t *testing.T) {
		assert.Equal(t, "cli.default_format", transformEnvKey("AGENTSYNC_CLI_DEFAULT_FORMAT"))
		assert.Equal(t, "paths.config_dir", transformEnvKey("AGENTSYNC_PATHS_CONFIG_DIR"))
		assert.Equal(t, "sync.watch_debounce", transformEnvKey("AGENTSYNC_SYNC_WATCH_DEBOUNCE"))
		assert.Empty(t, transformEnvKey("AGENTSYNC_BOGUS_KEY"))
	})
}

func TestManager(t *testing.T) {
	t.Run("Should return defaults before any load", func(t *testing.T) {
		m := NewManager(NewService())
		cfg := m.Get()
		require.NotNil(t, cfg)
		assert.Equal(t, "auto", cfg.CLI.DefaultFormat)
	})

	t.Run("Should make loaded config current", func(t *testing.T) {
		m := NewManager(NewService())
		_, err := m.Load(t.Context(), NewCLIProvider(map[string]any{
			"cli.quiet": true,
		}))
		require.NoError(t, err)
		assert.True(t, m.Get().CLI.Quiet)
	})
}

func TestContext(t *testing.T) {
	t.Run("Should round-trip manager through context", func(t *testing.T) {
		m := NewManager(NewService())
		ctx := ContextWithManager(t.Context(), m)
		assert.Same(t, m, ManagerFromContext(ctx))
	})
}
