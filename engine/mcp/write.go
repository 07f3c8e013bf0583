package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/agentsync/agentsync/engine/platform"
)

// SyncResult reports one platform's MCP write.
type SyncResult struct {
	Platform string `json:"platform"`
	Path     string `json:"path"`
	Written  int    `json:"written"`
}

// Sync writes canonical servers into a platform's config, translated
// to its dialect. Only the servers section is touched; every other
// key of the document survives. An incoming server replaces a
// same-named entry wholesale, so keys removed on the master do not
// linger on the fork. Entries only the destination knows survive
// unless replace is set, in which case the section is rewritten from
// scratch.
func Sync(p platform.Platform, servers Servers, replace, dryRun bool) (*SyncResult, error) {
	cfg := p.MCP()
	if cfg.GlobalPath == "" {
		return nil, fmt.Errorf("platform %q has no MCP config path", p.Key)
	}
	result := &SyncResult{Platform: p.Key, Path: cfg.GlobalPath, Written: len(servers)}
	if dryRun {
		return result, nil
	}
	doc, err := loadDocument(cfg.GlobalPath, cfg.Dialect)
	if err != nil {
		return nil, err
	}
	section := make(map[string]any)
	if !replace {
		if existing, ok := doc[sectionKey(cfg.Dialect)].(map[string]any); ok {
			section = existing
		}
	}
	for name, server := range servers {
		section[name] = toDialect(cfg.Dialect, server)
	}
	doc[sectionKey(cfg.Dialect)] = section
	if err := saveDocument(cfg.GlobalPath, cfg.Dialect, doc); err != nil {
		return nil, err
	}
	return result, nil
}

// loadDocument decodes the platform config file into a generic map.
// A missing file yields an empty document; an unparsable one is an
// error so a later write cannot wipe hand-edited config.
func loadDocument(path string, d platform.Dialect) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := make(map[string]any)
	if d == platform.DialectCodex {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func decodeJSONFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// saveDocument writes the document back in its dialect's format. Both
// codecs emit map keys in sorted order, so repeated syncs with the
// same input are byte-stable.
func saveDocument(path string, d platform.Dialect, doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	var data []byte
	var err error
	if d == platform.DialectCodex {
		data, err = toml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
