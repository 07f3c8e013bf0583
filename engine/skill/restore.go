package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentsync/agentsync/engine/platform"
)

// RestoreResult reports a restore run.
type RestoreResult struct {
	Platform string   `json:"platform"`
	Restored int      `json:"restored"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

// Restore copies every manifest entry of a backup back onto the
// platform's directory tree. Per-skill failures are collected in the
// result; only a missing or foreign manifest aborts the run.
//
// Root reconciliation, in order:
//  1. exact match against a current skill root,
//  2. for relocated Claude plugin paths, any current plugin root,
//  3. the platform's first root.
func Restore(reg *platform.Registry, backupPath string, dryRun bool) (*RestoreResult, error) {
	manifest, err := LoadManifest(backupPath)
	if err != nil {
		return nil, err
	}
	if manifest.Platform == "" {
		return nil, fmt.Errorf("backup %s does not name its platform", backupPath)
	}
	p, err := reg.MustGet(manifest.Platform)
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", backupPath, err)
	}
	roots := p.SkillRoots()
	result := &RestoreResult{Platform: manifest.Platform, Total: len(manifest.Skills)}
	for _, entry := range manifest.Skills {
		if entry.RelativePath == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("skill %s: manifest entry has no relative path", entry.Name))
			continue
		}
		source := filepath.Join(backupPath, entry.RelativePath)
		if _, err := os.Stat(source); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("skill %s: backup copy missing at %s", entry.Name, source))
			continue
		}
		root := reconcileRoot(entry.Root, roots)
		if root == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("skill %s: no restore location available", entry.Name))
			continue
		}
		if dryRun {
			result.Restored++
			continue
		}
		dest := filepath.Join(root, entry.RelativePath)
		if err := replaceTree(source, dest); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("skill %s: %v", entry.Name, err))
			continue
		}
		result.Restored++
	}
	return result, nil
}

// reconcileRoot maps a recorded root onto the current root set.
func reconcileRoot(recorded string, roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	if recorded != "" {
		clean := filepath.Clean(recorded)
		for _, root := range roots {
			if filepath.Clean(root) == clean {
				return root
			}
		}
		// Plugin trees move when marketplaces are reinstalled; any
		// current plugin root is a better target than the default.
		if strings.Contains(clean, string(filepath.Separator)+"plugins"+string(filepath.Separator)) {
			for _, root := range roots {
				if strings.Contains(root, string(filepath.Separator)+"plugins"+string(filepath.Separator)) {
					return root
				}
			}
		}
	}
	return roots[0]
}
