package skill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentsync/agentsync/engine/platform"
)

// ScanOptions tunes discovery.
type ScanOptions struct {
	// Filter is an optional doublestar glob matched against skill
	// names; non-matching skills are dropped.
	Filter string
}

// Scan discovers skills on a platform. Results are deduplicated by
// resolved absolute path (plugin roots overlap the marketplaces root)
// and returned in stable path order.
func Scan(p platform.Platform, opts ScanOptions) ([]Skill, error) {
	if opts.Filter != "" {
		if !doublestar.ValidatePattern(opts.Filter) {
			return nil, fmt.Errorf("invalid filter pattern %q", opts.Filter)
		}
	}
	seen := make(map[string]bool)
	var skills []Skill
	for _, root := range p.SkillRoots() {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		var found []Skill
		if p.Recursive() {
			found, err = scanRecursive(root)
		} else {
			found, err = scanChildren(root)
		}
		if err != nil {
			return nil, err
		}
		for _, s := range found {
			key := resolveKey(s.Path)
			if seen[key] {
				continue
			}
			if opts.Filter != "" {
				if ok, _ := doublestar.Match(opts.Filter, s.Name); !ok {
					continue
				}
			}
			seen[key] = true
			skills = append(skills, s)
		}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Path < skills[j].Path })
	return skills, nil
}

// scanRecursive walks the root for SKILL.md markers and treats each
// marker's parent directory as a skill.
func scanRecursive(root string) ([]Skill, error) {
	var skills []Skill
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() || d.Name() != MarkerFile {
			return nil
		}
		dir := filepath.Dir(path)
		meta, err := ReadMetadata(dir)
		if err != nil {
			return fmt.Errorf("bad frontmatter in %s: %w", path, err)
		}
		skills = append(skills, Skill{
			Name: filepath.Base(dir),
			Path: dir,
			Root: root,
			Meta: meta,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// scanChildren treats every direct subdirectory of the root as a skill.
func scanChildren(root string) ([]Skill, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill root %s: %w", root, err)
	}
	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		meta, err := ReadMetadata(dir)
		if err != nil {
			return nil, fmt.Errorf("bad frontmatter in %s: %w", filepath.Join(dir, MarkerFile), err)
		}
		skills = append(skills, Skill{
			Name: entry.Name(),
			Path: dir,
			Root: root,
			Meta: meta,
		})
	}
	return skills, nil
}

func resolveKey(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
