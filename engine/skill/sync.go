package skill

import (
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/agentsync/agentsync/engine/platform"
	"github.com/agentsync/agentsync/engine/state"
)

// SyncResult reports a sync run.
type SyncResult struct {
	// MasterSkills is how many snapshot records were considered.
	MasterSkills int `json:"master_skills"`
	// SyncedTo maps fork keys to the number of skills copied.
	SyncedTo map[string]int `json:"synced_to"`
	// Errors lists per-skill problems that did not abort the run.
	Errors []string `json:"errors,omitempty"`
}

// Sync copies the snapshot-recorded master skills into every fork's
// primary root, preserving each skill's path relative to the master
// root it was scanned under. Existing destination skills are replaced
// so repeated runs converge.
func Sync(
	master platform.Platform,
	forks []platform.Platform,
	records []state.SkillRecord,
	dryRun bool,
) (*SyncResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no scanned skills for platform %q; run scan first", master.Key)
	}
	masterRoots := master.SkillRoots()
	result := &SyncResult{
		MasterSkills: len(records),
		SyncedTo:     make(map[string]int, len(forks)),
	}
	for _, fork := range forks {
		forkRoot := fork.PrimaryRoot()
		if forkRoot == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("fork %s has no skill root", fork.Key))
			result.SyncedTo[fork.Key] = 0
			continue
		}
		if !dryRun {
			if err := os.MkdirAll(forkRoot, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create fork root %s: %w", forkRoot, err)
			}
		}
		synced := 0
		for _, record := range records {
			rel, ok := relativeToAny(record.Path, masterRoots)
			if !ok {
				result.Errors = append(result.Errors,
					fmt.Sprintf("skill %s: path %s is outside every master root", record.Name, record.Path))
				continue
			}
			if _, err := os.Stat(record.Path); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("skill %s: source missing at %s; re-run scan", record.Name, record.Path))
				continue
			}
			if !dryRun {
				dest := filepath.Join(forkRoot, rel)
				if err := replaceTree(record.Path, dest); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("skill %s: %v", record.Name, err))
					continue
				}
			}
			synced++
		}
		result.SyncedTo[fork.Key] = synced
	}
	return result, nil
}

// relativeToAny resolves path against the first root that contains it.
func relativeToAny(path string, roots []string) (string, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel == "." || rel == ".." || filepath.IsAbs(rel) || hasDotDotPrefix(rel) {
			continue
		}
		return rel, true
	}
	return "", false
}

func hasDotDotPrefix(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// replaceTree removes dest and hard-copies src in its place.
func replaceTree(src, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove existing %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dest, err)
	}
	if err := cp.Copy(src, dest); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}
	return nil
}
