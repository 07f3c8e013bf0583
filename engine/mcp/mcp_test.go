package mcp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsync/agentsync/engine/platform"
)

func mustGet(t *testing.T, reg *platform.Registry, key string) platform.Platform {
	t.Helper()
	p, err := reg.MustGet(key)
	require.NoError(t, err)
	return p
}

func writeJSONFile(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readJSONFile(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := make(map[string]any)
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestRead(t *testing.T) {
	t.Run("Should read global servers and plugin servers", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		claude := mustGet(t, reg, platform.KeyClaudeCode)
		writeJSONFile(t, claude.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{
				"github": map[string]any{"command": "gh-mcp"},
			},
			"theme": "dark",
		})
		pluginDir := filepath.Join(claude.MCP().PluginRoot, "acme", "tools")
		writeJSONFile(t, filepath.Join(pluginDir, PluginConfigFile), map[string]any{
			"search": map[string]any{"command": "search-mcp"},
		})

		servers, sources, err := Read(claude)

		require.NoError(t, err)
		assert.Equal(t, []string{"github", "search"}, servers.Names())
		assert.Equal(t, ".claude.json", sources["github"])
		assert.Equal(t, "tools plugin", sources["search"])
	})

	t.Run("Should keep the global entry when a plugin duplicates it", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		claude := mustGet(t, reg, platform.KeyClaudeCode)
		writeJSONFile(t, claude.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{
				"github": map[string]any{"command": "global-gh"},
			},
		})
		writeJSONFile(t, filepath.Join(claude.MCP().PluginRoot, "acme", PluginConfigFile), map[string]any{
			"github": map[string]any{"command": "plugin-gh"},
		})

		servers, sources, err := Read(claude)

		require.NoError(t, err)
		assert.Equal(t, "global-gh", servers["github"]["command"])
		assert.Equal(t, ".claude.json", sources["github"])
	})

	t.Run("Should return no servers when the config is missing", func(t *testing.T) {
		reg := platform.NewRegistry(t.TempDir())
		servers, _, err := Read(mustGet(t, reg, platform.KeyCursor))
		require.NoError(t, err)
		assert.Empty(t, servers)
	})

	t.Run("Should error on an unparsable config", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		cursor := mustGet(t, reg, platform.KeyCursor)
		require.NoError(t, os.MkdirAll(filepath.Dir(cursor.MCP().GlobalPath), 0o755))
		require.NoError(t, os.WriteFile(cursor.MCP().GlobalPath, []byte("{not json"), 0o644))

		_, _, err := Read(cursor)
		assert.Error(t, err)
	})

	t.Run("Should canonicalize OpenCode entries", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		opencode := mustGet(t, reg, platform.KeyOpenCode)
		writeJSONFile(t, opencode.MCP().GlobalPath, map[string]any{
			"mcp": map[string]any{
				"files": map[string]any{
					"type":        "local",
					"command":     []any{"files-mcp", "--root", "/tmp"},
					"enabled":     true,
					"environment": map[string]any{"DEBUG": "1"},
				},
				"docs": map[string]any{
					"type":    "remote",
					"url":     "https://docs.example/mcp",
					"enabled": true,
				},
			},
		})

		servers, _, err := Read(opencode)

		require.NoError(t, err)
		assert.Equal(t, "stdio", servers["files"]["type"])
		assert.Equal(t, "files-mcp", servers["files"]["command"])
		assert.Equal(t, []any{"--root", "/tmp"}, servers["files"]["args"])
		assert.Equal(t, map[string]any{"DEBUG": "1"}, servers["files"]["env"])
		assert.Equal(t, "http", servers["docs"]["type"])
		assert.Equal(t, "https://docs.example/mcp", servers["docs"]["url"])
	})
}

func TestSync(t *testing.T) {
	servers := Servers{
		"github": {"command": "gh-mcp", "args": []any{"serve"}, "env": map[string]any{"TOKEN": "x"}},
	}

	t.Run("Should write mcpServers verbatim and keep unrelated keys", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		cursor := mustGet(t, reg, platform.KeyCursor)
		writeJSONFile(t, cursor.MCP().GlobalPath, map[string]any{"telemetry": false})

		result, err := Sync(cursor, servers, false, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Written)
		doc := readJSONFile(t, cursor.MCP().GlobalPath)
		assert.Equal(t, false, doc["telemetry"])
		section := doc["mcpServers"].(map[string]any)
		entry := section["github"].(map[string]any)
		assert.Equal(t, "gh-mcp", entry["command"])
		assert.Equal(t, []any{"serve"}, entry["args"])
	})

	t.Run("Should keep destination-only servers when merging", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		windsurf := mustGet(t, reg, platform.KeyWindsurf)
		writeJSONFile(t, windsurf.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{
				"local-only": map[string]any{"command": "keep-me"},
			},
		})

		_, err := Sync(windsurf, servers, false, false)

		require.NoError(t, err)
		section := readJSONFile(t, windsurf.MCP().GlobalPath)["mcpServers"].(map[string]any)
		assert.Contains(t, section, "local-only")
		assert.Contains(t, section, "github")
	})

	t.Run("Should replace same-named entries wholesale", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		windsurf := mustGet(t, reg, platform.KeyWindsurf)
		writeJSONFile(t, windsurf.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{
				"github": map[string]any{
					"command": "old-gh",
					"env":     map[string]any{"STALE_TOKEN": "x"},
				},
			},
		})

		_, err := Sync(windsurf, Servers{"github": {"command": "new-gh"}}, false, false)

		require.NoError(t, err)
		section := readJSONFile(t, windsurf.MCP().GlobalPath)["mcpServers"].(map[string]any)
		entry := section["github"].(map[string]any)
		assert.Equal(t, "new-gh", entry["command"])
		assert.NotContains(t, entry, "env")
	})

	t.Run("Should drop destination-only servers with replace", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		windsurf := mustGet(t, reg, platform.KeyWindsurf)
		writeJSONFile(t, windsurf.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{
				"local-only": map[string]any{"command": "drop-me"},
			},
		})

		_, err := Sync(windsurf, servers, true, false)

		require.NoError(t, err)
		section := readJSONFile(t, windsurf.MCP().GlobalPath)["mcpServers"].(map[string]any)
		assert.NotContains(t, section, "local-only")
		assert.Contains(t, section, "github")
	})

	t.Run("Should write Codex TOML with only command args and env", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		codex := mustGet(t, reg, platform.KeyCodex)
		full := Servers{
			"github": {
				"command": "gh-mcp",
				"args":    []any{"serve"},
				"env":     map[string]any{"TOKEN": "x"},
				"type":    "stdio",
				"url":     "should-not-survive",
			},
		}

		_, err := Sync(codex, full, false, false)

		require.NoError(t, err)
		data, err := os.ReadFile(codex.MCP().GlobalPath)
		require.NoError(t, err)
		doc := make(map[string]any)
		require.NoError(t, toml.Unmarshal(data, &doc))
		section := doc["mcp_servers"].(map[string]any)
		entry := section["github"].(map[string]any)
		assert.Equal(t, "gh-mcp", entry["command"])
		assert.NotContains(t, entry, "type")
		assert.NotContains(t, entry, "url")
	})

	t.Run("Should preserve existing Codex settings", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		codex := mustGet(t, reg, platform.KeyCodex)
		require.NoError(t, os.MkdirAll(filepath.Dir(codex.MCP().GlobalPath), 0o755))
		require.NoError(t, os.WriteFile(codex.MCP().GlobalPath, []byte("model = \"o3\"\n"), 0o644))

		_, err := Sync(codex, servers, false, false)

		require.NoError(t, err)
		data, err := os.ReadFile(codex.MCP().GlobalPath)
		require.NoError(t, err)
		doc := make(map[string]any)
		require.NoError(t, toml.Unmarshal(data, &doc))
		assert.Equal(t, "o3", doc["model"])
	})

	t.Run("Should translate stdio and http entries for OpenCode", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		opencode := mustGet(t, reg, platform.KeyOpenCode)
		input := Servers{
			"files": {"command": "files-mcp", "args": []any{"--root", "/tmp"}, "env": map[string]any{"DEBUG": "1"}},
			"docs":  {"type": "http", "url": "https://docs.example/mcp", "headers": map[string]any{"X-Key": "k"}},
		}

		_, err := Sync(opencode, input, false, false)

		require.NoError(t, err)
		section := readJSONFile(t, opencode.MCP().GlobalPath)["mcp"].(map[string]any)
		files := section["files"].(map[string]any)
		assert.Equal(t, "local", files["type"])
		assert.Equal(t, []any{"files-mcp", "--root", "/tmp"}, files["command"])
		assert.Equal(t, true, files["enabled"])
		assert.Equal(t, map[string]any{"DEBUG": "1"}, files["environment"])
		docs := section["docs"].(map[string]any)
		assert.Equal(t, "remote", docs["type"])
		assert.Equal(t, "https://docs.example/mcp", docs["url"])
		assert.Equal(t, map[string]any{"X-Key": "k"}, docs["headers"])
	})

	t.Run("Should produce identical bytes on repeated runs", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		cursor := mustGet(t, reg, platform.KeyCursor)

		_, err := Sync(cursor, servers, false, false)
		require.NoError(t, err)
		first, err := os.ReadFile(cursor.MCP().GlobalPath)
		require.NoError(t, err)
		_, err = Sync(cursor, servers, false, false)
		require.NoError(t, err)
		second, err := os.ReadFile(cursor.MCP().GlobalPath)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Should not write on dry run", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		cursor := mustGet(t, reg, platform.KeyCursor)

		result, err := Sync(cursor, servers, false, true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Written)
		assert.NoFileExists(t, cursor.MCP().GlobalPath)
	})
}

func TestClean(t *testing.T) {
	t.Run("Should remove the servers section and keep the rest", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		cursor := mustGet(t, reg, platform.KeyCursor)
		writeJSONFile(t, cursor.MCP().GlobalPath, map[string]any{
			"mcpServers": map[string]any{"github": map[string]any{"command": "gh"}},
			"telemetry":  false,
		})

		result, err := Clean(cursor, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Removed)
		doc := readJSONFile(t, cursor.MCP().GlobalPath)
		assert.NotContains(t, doc, "mcpServers")
		assert.Equal(t, false, doc["telemetry"])
	})

	t.Run("Should delete plugin config files for Claude Code", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		claude := mustGet(t, reg, platform.KeyClaudeCode)
		pluginConfig := filepath.Join(claude.MCP().PluginRoot, "acme", PluginConfigFile)
		writeJSONFile(t, pluginConfig, map[string]any{"search": map[string]any{"command": "s"}})

		result, err := Clean(claude, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.PluginFiles)
		assert.NoFileExists(t, pluginConfig)
	})

	t.Run("Should only report on dry run", func(t *testing.T) {
		home := t.TempDir()
		reg := platform.NewRegistry(home)
		codex := mustGet(t, reg, platform.KeyCodex)
		require.NoError(t, os.MkdirAll(filepath.Dir(codex.MCP().GlobalPath), 0o755))
		require.NoError(t, os.WriteFile(codex.MCP().GlobalPath,
			[]byte("[mcp_servers.github]\ncommand = \"gh\"\n"), 0o644))

		result, err := Clean(codex, true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Removed)
		servers, _, err := Read(codex)
		require.NoError(t, err)
		assert.Len(t, servers, 1)
	})
}
