// Package mcp reads, translates, and writes MCP server entries across
// platform config dialects. The canonical entry shape is the
// mcpServers convention: {type?, command?, args?, env?, url?,
// headers?} keyed by server name.
package mcp

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentsync/agentsync/engine/platform"
)

// PluginConfigFile is the per-plugin MCP config file name.
const PluginConfigFile = ".mcp.json"

// Server is one MCP server entry in canonical form.
type Server map[string]any

// Servers maps server names to entries.
type Servers map[string]Server

// Names returns the server names in sorted order.
func (s Servers) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Read returns a platform's MCP servers in canonical form, plus a
// human-readable source note per server. For platforms with a plugin
// root, plugin .mcp.json files are read too; a plugin entry never
// shadows a same-named global one.
func Read(p platform.Platform) (Servers, map[string]string, error) {
	cfg := p.MCP()
	if cfg.GlobalPath == "" {
		return nil, nil, fmt.Errorf("platform %q has no MCP config path", p.Key)
	}
	doc, err := loadDocument(cfg.GlobalPath, cfg.Dialect)
	if err != nil {
		return nil, nil, err
	}
	servers := make(Servers)
	sources := make(map[string]string)
	for name, entry := range sectionOf(doc, cfg.Dialect) {
		servers[name] = fromDialect(cfg.Dialect, entry)
		sources[name] = filepath.Base(cfg.GlobalPath)
	}
	if cfg.PluginRoot != "" {
		if err := readPluginServers(cfg.PluginRoot, servers, sources); err != nil {
			return nil, nil, err
		}
	}
	return servers, sources, nil
}

// readPluginServers walks the plugin root for .mcp.json files. Plugin
// files key servers at the top level, not under mcpServers.
func readPluginServers(root string, servers Servers, sources map[string]string) error {
	if _, err := os.Stat(root); err != nil {
		return nil //nolint:nilerr // platforms without plugins installed
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != PluginConfigFile {
			return nil
		}
		doc, err := decodeJSONFile(path)
		if err != nil {
			// Broken plugin configs are the plugin's problem.
			return nil
		}
		plugin := filepath.Base(filepath.Dir(path))
		for name, raw := range doc {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if _, exists := servers[name]; exists {
				continue
			}
			servers[name] = Server(entry)
			sources[name] = plugin + " plugin"
		}
		return nil
	})
}

// findPluginConfigs lists every plugin .mcp.json under the root.
func findPluginConfigs(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, nil //nolint:nilerr
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != PluginConfigFile {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
