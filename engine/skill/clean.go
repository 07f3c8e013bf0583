package skill

import (
	"fmt"
	"os"

	"github.com/agentsync/agentsync/engine/platform"
)

// CleanResult reports what a clean pass removed (or would remove).
type CleanResult struct {
	// Skills are the directories that were (or would be) deleted.
	Skills []Skill
	// Deleted is len(Skills); kept for JSON output symmetry.
	Deleted int `json:"deleted"`
}

// Clean deletes every skill on the platform. With dryRun the
// directories are only reported.
func Clean(p platform.Platform, dryRun bool, opts ScanOptions) (*CleanResult, error) {
	skills, err := Scan(p, opts)
	if err != nil {
		return nil, err
	}
	if !dryRun {
		for _, s := range skills {
			if err := os.RemoveAll(s.Path); err != nil {
				return nil, fmt.Errorf("failed to delete skill %s: %w", s.Path, err)
			}
		}
	}
	return &CleanResult{Skills: skills, Deleted: len(skills)}, nil
}
