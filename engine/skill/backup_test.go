package skill

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/engine/platform"
)

func TestBackup(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("Should copy skills into a timestamped directory with manifest", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		writeSkill(t, p.PrimaryRoot(), "alpha", "name: alpha\n")
		writeSkill(t, p.PrimaryRoot(), "beta", "")

		path, manifest, err := Backup(p, backupRoot, now, false)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(backupRoot, "opencode_20250314_092653"), path)
		assert.Equal(t, platform.KeyOpenCode, manifest.Platform)
		require.Len(t, manifest.Skills, 2)
		assert.Equal(t, "alpha", manifest.Skills[0].Name)
		assert.Equal(t, "alpha", manifest.Skills[0].RelativePath)
		assert.FileExists(t, filepath.Join(path, "alpha", MarkerFile))
		assert.FileExists(t, filepath.Join(path, ManifestFile))

		loaded, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, manifest.Skills, loaded.Skills)
	})

	t.Run("Should not write anything on dry run", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		writeSkill(t, p.PrimaryRoot(), "alpha", "")

		path, manifest, err := Backup(p, backupRoot, now, true)

		require.NoError(t, err)
		assert.Len(t, manifest.Skills, 1)
		assert.NoDirExists(t, path)
	})
}

func TestListBackups(t *testing.T) {
	t.Run("Should return backups newest first and skip junk", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyCursor)
		require.NoError(t, err)
		writeSkill(t, p.PrimaryRoot(), "alpha", "")

		older, _, err := Backup(p, backupRoot, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false)
		require.NoError(t, err)
		newer, _, err := Backup(p, backupRoot, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false)
		require.NoError(t, err)
		// Directory without a manifest must be ignored.
		require.NoError(t, os.MkdirAll(filepath.Join(backupRoot, "not-a-backup"), 0o755))
		// ModTime drives the ordering, so pin it explicitly.
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, past, past))

		backups, err := ListBackups(backupRoot)

		require.NoError(t, err)
		require.Len(t, backups, 2)
		assert.Equal(t, newer, backups[0].Path)
		assert.Equal(t, older, backups[1].Path)
	})

	t.Run("Should return nothing for a missing backup root", func(t *testing.T) {
		backups, err := ListBackups(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, backups)
	})
}

func TestRestore(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("Should restore skills to their recorded root", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		dir := writeSkill(t, p.PrimaryRoot(), "alpha", "")
		backupPath, _, err := Backup(p, backupRoot, now, false)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(dir))

		result, err := Restore(reg, backupPath, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Restored)
		assert.Equal(t, 1, result.Total)
		assert.Empty(t, result.Errors)
		assert.FileExists(t, filepath.Join(dir, MarkerFile))
	})

	t.Run("Should fall back to the first root for unknown recorded roots", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyCodex)
		require.NoError(t, err)
		writeSkill(t, p.PrimaryRoot(), "alpha", "")
		backupPath, _, err := Backup(p, backupRoot, now, false)
		require.NoError(t, err)

		// Same backup restored into a different home: the recorded
		// root no longer exists there.
		otherReg := platform.NewRegistry(t.TempDir())
		result, err := Restore(otherReg, backupPath, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Restored)
		other, err := otherReg.MustGet(platform.KeyCodex)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(other.PrimaryRoot(), "alpha", MarkerFile))
	})

	t.Run("Should send relocated plugin skills to a current plugin root", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		oldPluginRoot := filepath.Join(home, ".claude", "plugins", "marketplaces", "acme", "tools", "skills")
		writeSkill(t, oldPluginRoot, "plugged", "")
		backupPath, _, err := Backup(p, backupRoot, now, false)
		require.NoError(t, err)
		// The marketplace was reinstalled under a new name.
		require.NoError(t, os.RemoveAll(filepath.Join(home, ".claude", "plugins")))
		newPluginRoot := filepath.Join(home, ".claude", "plugins", "marketplaces", "acme-v2", "skills")
		require.NoError(t, os.MkdirAll(newPluginRoot, 0o755))

		result, err := Restore(reg, backupPath, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Restored)
		assert.FileExists(t, filepath.Join(newPluginRoot, "plugged", MarkerFile))
	})

	t.Run("Should only count on dry run", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		dir := writeSkill(t, p.PrimaryRoot(), "alpha", "")
		backupPath, _, err := Backup(p, backupRoot, now, false)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(dir))

		result, err := Restore(reg, backupPath, true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Restored)
		assert.NoDirExists(t, dir)
	})

	t.Run("Should error for a backup without a manifest", func(t *testing.T) {
		reg := platform.NewRegistry(t.TempDir())
		_, err := Restore(reg, t.TempDir(), false)
		assert.Error(t, err)
	})

	t.Run("Should collect per-skill errors for missing backup copies", func(t *testing.T) {
		home := t.TempDir()
		backupRoot := t.TempDir()
		reg := platform.NewRegistry(home)
		p, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		writeSkill(t, p.PrimaryRoot(), "alpha", "")
		backupPath, _, err := Backup(p, backupRoot, now, false)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(filepath.Join(backupPath, "alpha")))

		result, err := Restore(reg, backupPath, false)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Restored)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "backup copy missing")
	})
}
