package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/engine/platform"
	"github.com/agentsync/agentsync/engine/state"
)

func recordsFor(t *testing.T, p platform.Platform) []state.SkillRecord {
	t.Helper()
	skills, err := Scan(p, ScanOptions{})
	require.NoError(t, err)
	records := make([]state.SkillRecord, 0, len(skills))
	for _, s := range skills {
		records = append(records, state.SkillRecord{Name: s.Name, Path: s.Path})
	}
	return records
}

func TestSync(t *testing.T) {
	t.Run("Should copy master skills into every fork", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		opencode, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		cursor, err := reg.MustGet(platform.KeyCursor)
		require.NoError(t, err)
		writeSkill(t, master.PrimaryRoot(), "alpha", "name: alpha\n")
		writeSkill(t, master.PrimaryRoot(), "beta", "")

		result, err := Sync(master, []platform.Platform{opencode, cursor}, recordsFor(t, master), false)

		require.NoError(t, err)
		assert.Equal(t, 2, result.MasterSkills)
		assert.Equal(t, 2, result.SyncedTo[platform.KeyOpenCode])
		assert.Equal(t, 2, result.SyncedTo[platform.KeyCursor])
		assert.Empty(t, result.Errors)
		assert.FileExists(t, filepath.Join(opencode.PrimaryRoot(), "alpha", MarkerFile))
		assert.FileExists(t, filepath.Join(cursor.PrimaryRoot(), "beta", MarkerFile))
	})

	t.Run("Should preserve nested paths relative to the master root", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyCodex)
		require.NoError(t, err)
		writeSkill(t, filepath.Join(master.PrimaryRoot(), "group"), "nested", "")

		_, err = Sync(master, []platform.Platform{fork}, recordsFor(t, master), false)

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(fork.PrimaryRoot(), "group", "nested", MarkerFile))
	})

	t.Run("Should replace existing fork skills", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		writeSkill(t, master.PrimaryRoot(), "alpha", "")
		// Stale content in the fork must not survive the copy.
		staleDir := writeSkill(t, fork.PrimaryRoot(), "alpha", "")
		stale := filepath.Join(staleDir, "stale.txt")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

		_, err = Sync(master, []platform.Platform{fork}, recordsFor(t, master), false)

		require.NoError(t, err)
		assert.NoFileExists(t, stale)
		assert.FileExists(t, filepath.Join(staleDir, MarkerFile))
	})

	t.Run("Should not touch the filesystem on dry run", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyWindsurf)
		require.NoError(t, err)
		writeSkill(t, master.PrimaryRoot(), "alpha", "")

		result, err := Sync(master, []platform.Platform{fork}, recordsFor(t, master), true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SyncedTo[platform.KeyWindsurf])
		assert.NoDirExists(t, fork.PrimaryRoot())
	})

	t.Run("Should error when no skills were scanned", func(t *testing.T) {
		reg := platform.NewRegistry(t.TempDir())
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)

		_, err = Sync(master, []platform.Platform{fork}, nil, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "run scan first")
	})

	t.Run("Should collect errors for skills that vanished since the scan", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		dir := writeSkill(t, master.PrimaryRoot(), "ghost", "")
		records := recordsFor(t, master)
		require.NoError(t, os.RemoveAll(dir))

		result, err := Sync(master, []platform.Platform{fork}, records, false)

		require.NoError(t, err)
		assert.Equal(t, 0, result.SyncedTo[platform.KeyOpenCode])
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "re-run scan")
	})

	t.Run("Should reject records outside every master root", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		master, err := reg.MustGet(platform.KeyClaudeCode)
		require.NoError(t, err)
		fork, err := reg.MustGet(platform.KeyOpenCode)
		require.NoError(t, err)
		outside := writeSkill(t, filepath.Join(home, "elsewhere"), "rogue", "")

		result, err := Sync(master, []platform.Platform{fork},
			[]state.SkillRecord{{Name: "rogue", Path: outside}}, false)

		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "outside every master root")
	})
}
