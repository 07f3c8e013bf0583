package skill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	cp "github.com/otiai10/copy"

	"github.com/agentsync/agentsync/engine/platform"
)

// ManifestFile is the per-backup metadata file.
const ManifestFile = "manifest.json"

// TimestampLayout names backup directories: <platform>_<timestamp>.
const TimestampLayout = "20060102_150405"

// ManifestEntry records where one skill came from so restore can put
// it back even when roots have moved.
type ManifestEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Root         string `json:"root"`
}

// Manifest describes a whole backup directory.
type Manifest struct {
	Platform  string          `json:"platform"`
	Timestamp string          `json:"timestamp"`
	Skills    []ManifestEntry `json:"skills"`
}

// BackupInfo pairs a backup directory with its parsed manifest.
type BackupInfo struct {
	Path     string
	Manifest Manifest
	ModTime  time.Time
}

// Backup scans the platform and copies every skill into a fresh
// timestamped directory under backupRoot, writing a manifest alongside.
// Returns the backup path even on dry runs so callers can report it.
func Backup(p platform.Platform, backupRoot string, now time.Time, dryRun bool) (string, *Manifest, error) {
	skills, err := Scan(p, ScanOptions{})
	if err != nil {
		return "", nil, err
	}
	timestamp := now.Format(TimestampLayout)
	backupPath := filepath.Join(backupRoot, fmt.Sprintf("%s_%s", p.Key, timestamp))
	manifest := &Manifest{Platform: p.Key, Timestamp: timestamp}
	for _, s := range skills {
		rel, err := s.RelativePath()
		if err != nil {
			continue
		}
		manifest.Skills = append(manifest.Skills, ManifestEntry{
			Name:         s.Name,
			Path:         s.Path,
			RelativePath: rel,
			Root:         s.Root,
		})
	}
	if dryRun {
		return backupPath, manifest, nil
	}
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create backup dir %s: %w", backupPath, err)
	}
	for _, entry := range manifest.Skills {
		dest := filepath.Join(backupPath, entry.RelativePath)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
		}
		if err := cp.Copy(entry.Path, dest); err != nil {
			return "", nil, fmt.Errorf("failed to back up skill %s: %w", entry.Name, err)
		}
	}
	if err := writeManifest(backupPath, manifest); err != nil {
		return "", nil, err
	}
	return backupPath, manifest, nil
}

// ListBackups returns every valid backup under backupRoot, newest
// first. Directories without a readable manifest are skipped.
func ListBackups(backupRoot string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(backupRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup dir %s: %w", backupRoot, err)
	}
	var backups []BackupInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(backupRoot, entry.Name())
		manifest, err := LoadManifest(dir)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Path: dir, Manifest: *manifest, ModTime: info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].ModTime.After(backups[j].ModTime) })
	return backups, nil
}

// LoadManifest reads and parses the manifest of one backup directory.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("backup %s has no readable manifest: %w", dir, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("backup %s has a corrupt manifest: %w", dir, err)
	}
	return &manifest, nil
}

func writeManifest(dir string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
