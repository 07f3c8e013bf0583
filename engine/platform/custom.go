package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// customFile is the schema of <config-dir>/platforms.yaml.
type customFile struct {
	Platforms []customPlatform `yaml:"platforms"`
}

type customPlatform struct {
	Key       string    `yaml:"key"`
	Name      string    `yaml:"name"`
	SkillDirs []string  `yaml:"skill_dirs"`
	MCP       customMCP `yaml:"mcp"`
}

type customMCP struct {
	Path    string `yaml:"path"`
	Dialect string `yaml:"dialect"`
}

// LoadCustom merges user-defined platforms from a YAML file into the
// registry. A missing file is fine; entries with a known key override
// the built-in definition.
func (r *Registry) LoadCustom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read platforms file %s: %w", path, err)
	}
	var file customFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse platforms file %s: %w", path, err)
	}
	for _, entry := range file.Platforms {
		p, err := r.buildCustom(entry)
		if err != nil {
			return fmt.Errorf("invalid platform entry in %s: %w", path, err)
		}
		r.add(p)
	}
	return nil
}

func (r *Registry) buildCustom(entry customPlatform) (Platform, error) {
	if entry.Key == "" {
		return Platform{}, fmt.Errorf("platform key is required")
	}
	if len(entry.SkillDirs) == 0 {
		return Platform{}, fmt.Errorf("platform %q needs at least one skill dir", entry.Key)
	}
	name := entry.Name
	if name == "" {
		name = entry.Key
	}
	p := Platform{
		Key:       entry.Key,
		Name:      name,
		skillDirs: entry.SkillDirs,
	}
	if entry.MCP.Path != "" {
		dialect, err := parseDialect(entry.MCP.Dialect)
		if err != nil {
			return Platform{}, fmt.Errorf("platform %q: %w", entry.Key, err)
		}
		p.mcp = MCPConfig{
			GlobalPath: joinHome(r.home, entry.MCP.Path),
			Dialect:    dialect,
		}
	}
	return p, nil
}

func parseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectMCPServers, DialectCodex, DialectOpenCode:
		return Dialect(s), nil
	case "":
		return DialectMCPServers, nil
	default:
		return "", fmt.Errorf("unknown mcp dialect %q", s)
	}
}

func joinHome(home, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(home, rel)
}
