package platform

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Dialect names the on-disk MCP config convention a platform uses.
type Dialect string

const (
	// DialectMCPServers is the JSON "mcpServers" section used by
	// Claude Code, Cursor, and Windsurf.
	DialectMCPServers Dialect = "mcpServers"
	// DialectCodex is the TOML "mcp_servers" section used by Codex.
	DialectCodex Dialect = "codex"
	// DialectOpenCode is the JSON "mcp" section used by OpenCode.
	DialectOpenCode Dialect = "opencode"
)

// Known platform keys.
const (
	KeyClaudeCode = "claude-code"
	KeyOpenCode   = "opencode"
	KeyCodex      = "codex"
	KeyCursor     = "cursor"
	KeyWindsurf   = "windsurf"
)

// MCPConfig locates a platform's MCP server configuration.
type MCPConfig struct {
	// GlobalPath is the absolute path of the config file.
	GlobalPath string
	// Dialect selects the codec and section shape.
	Dialect Dialect
	// PluginRoot, when set, is scanned recursively for plugin
	// .mcp.json files (Claude Code only).
	PluginRoot string
}

// Platform describes one agent tooling installation.
type Platform struct {
	Key  string
	Name string

	home string
	// skillDirs are home-relative skill roots.
	skillDirs []string
	// discoverPlugins enables Claude-style plugin root discovery.
	discoverPlugins bool
	mcp             MCPConfig
}

// SkillRoots returns the absolute skill directories for the platform.
// Plugin roots are discovered live so newly installed plugins are
// picked up without re-configuration.
func (p Platform) SkillRoots() []string {
	roots := make([]string, 0, len(p.skillDirs)+1)
	for _, dir := range p.skillDirs {
		roots = append(roots, filepath.Join(p.home, dir))
	}
	if p.discoverPlugins {
		roots = append(roots, DiscoverPluginRoots(p.home)...)
	}
	return roots
}

// PrimaryRoot returns the first configured skill root, the one sync
// targets when writing into this platform.
func (p Platform) PrimaryRoot() string {
	if len(p.skillDirs) == 0 {
		return ""
	}
	return filepath.Join(p.home, p.skillDirs[0])
}

// Recursive reports whether skill discovery must walk the tree for
// SKILL.md markers instead of listing direct children.
func (p Platform) Recursive() bool {
	return p.discoverPlugins
}

// MCP returns the platform's MCP config location.
func (p Platform) MCP() MCPConfig {
	return p.mcp
}

// Registry holds the known platforms for one home directory.
type Registry struct {
	home      string
	platforms map[string]Platform
}

// NewRegistry builds the built-in platform set rooted at home.
func NewRegistry(home string) *Registry {
	r := &Registry{home: home, platforms: make(map[string]Platform)}
	r.add(Platform{
		Key:             KeyClaudeCode,
		Name:            "Claude Code",
		skillDirs:       []string{filepath.Join(".claude", "skills")},
		discoverPlugins: true,
		mcp: MCPConfig{
			GlobalPath: filepath.Join(home, ".claude.json"),
			Dialect:    DialectMCPServers,
			PluginRoot: filepath.Join(home, ".claude", "plugins", "marketplaces"),
		},
	})
	r.add(Platform{
		Key:       KeyOpenCode,
		Name:      "OpenCode",
		skillDirs: []string{filepath.Join(".opencode", "skill")},
		mcp: MCPConfig{
			GlobalPath: filepath.Join(home, ".config", "opencode", "opencode.json"),
			Dialect:    DialectOpenCode,
		},
	})
	r.add(Platform{
		Key:       KeyCodex,
		Name:      "Codex",
		skillDirs: []string{filepath.Join(".codex", "skills")},
		mcp: MCPConfig{
			GlobalPath: filepath.Join(home, ".codex", "config.toml"),
			Dialect:    DialectCodex,
		},
	})
	r.add(Platform{
		Key:       KeyCursor,
		Name:      "Cursor",
		skillDirs: []string{filepath.Join(".cursor", "skills")},
		mcp: MCPConfig{
			GlobalPath: filepath.Join(home, ".cursor", "mcp.json"),
			Dialect:    DialectMCPServers,
		},
	})
	r.add(Platform{
		Key:       KeyWindsurf,
		Name:      "Windsurf",
		skillDirs: []string{filepath.Join(".windsurf", "skills")},
		mcp: MCPConfig{
			GlobalPath: filepath.Join(home, ".codeium", "windsurf", "mcp_config.json"),
			Dialect:    DialectMCPServers,
		},
	})
	return r
}

func (r *Registry) add(p Platform) {
	p.home = r.home
	r.platforms[p.Key] = p
}

// Home returns the home directory the registry resolves under.
func (r *Registry) Home() string {
	return r.home
}

// Get looks up a platform by key.
func (r *Registry) Get(key string) (Platform, bool) {
	p, ok := r.platforms[key]
	return p, ok
}

// MustGet looks up a platform by key and errors with the valid keys
// when it is unknown.
func (r *Registry) MustGet(key string) (Platform, error) {
	p, ok := r.platforms[key]
	if !ok {
		return Platform{}, fmt.Errorf("unknown platform %q (known: %v)", key, r.Keys())
	}
	return p, nil
}

// Keys returns all platform keys in stable order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.platforms))
	for key := range r.platforms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns all platforms ordered by key.
func (r *Registry) All() []Platform {
	all := make([]Platform, 0, len(r.platforms))
	for _, key := range r.Keys() {
		all = append(all, r.platforms[key])
	}
	return all
}
