package mcp

import (
	"fmt"
	"os"

	"github.com/agentsync/agentsync/engine/platform"
)

// CleanResult reports what an MCP clean removed (or would remove).
type CleanResult struct {
	Platform string `json:"platform"`
	// Removed counts server entries in the global config section.
	Removed int `json:"removed"`
	// PluginFiles counts deleted plugin .mcp.json files.
	PluginFiles int `json:"plugin_files,omitempty"`
}

// Count returns how many server entries a platform currently has,
// plugin files included.
func Count(p platform.Platform) (int, error) {
	servers, _, err := Read(p)
	if err != nil {
		return 0, err
	}
	return len(servers), nil
}

// Clean removes the servers section from a platform's config and, for
// platforms with a plugin root, deletes plugin .mcp.json files. The
// rest of the document is left untouched.
func Clean(p platform.Platform, dryRun bool) (*CleanResult, error) {
	cfg := p.MCP()
	if cfg.GlobalPath == "" {
		return nil, fmt.Errorf("platform %q has no MCP config path", p.Key)
	}
	doc, err := loadDocument(cfg.GlobalPath, cfg.Dialect)
	if err != nil {
		return nil, err
	}
	result := &CleanResult{Platform: p.Key}
	if section, ok := doc[sectionKey(cfg.Dialect)].(map[string]any); ok {
		result.Removed = len(section)
	}
	var pluginFiles []string
	if cfg.PluginRoot != "" {
		pluginFiles, err = findPluginConfigs(cfg.PluginRoot)
		if err != nil {
			return nil, err
		}
		result.PluginFiles = len(pluginFiles)
	}
	if dryRun {
		return result, nil
	}
	if result.Removed > 0 {
		delete(doc, sectionKey(cfg.Dialect))
		if err := saveDocument(cfg.GlobalPath, cfg.Dialect, doc); err != nil {
			return nil, err
		}
	}
	for _, path := range pluginFiles {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to delete plugin config %s: %w", path, err)
		}
	}
	return result, nil
}
