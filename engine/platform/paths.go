package platform

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DiscoverPluginRoots finds Claude Code plugin skill roots under
// ~/.claude/plugins/marketplaces. Every directory named "skills" is a
// root, and the marketplaces directory itself is appended last so a
// recursive scan still reaches skills in unconventional layouts.
func DiscoverPluginRoots(home string) []string {
	marketplaces := filepath.Join(home, ".claude", "plugins", "marketplaces")
	info, err := os.Stat(marketplaces)
	if err != nil || !info.IsDir() {
		return nil
	}
	var roots []string
	_ = filepath.WalkDir(marketplaces, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped, not fatal
		}
		if d.IsDir() && d.Name() == "skills" {
			roots = append(roots, path)
		}
		return nil
	})
	return append(roots, marketplaces)
}

// PathExists reports whether the path exists on disk.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
