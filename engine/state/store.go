// Package state persists the tool's own records: the master/fork
// selection and the last scan snapshot per platform. Everything lives
// as plain JSON under the config directory so users can inspect and
// fix it by hand.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	profileFile  = "profile.json"
	snapshotFile = "skills.json"
	filtersFile  = "filters.json"
)

// Profile is the persisted master/fork selection.
type Profile struct {
	Master string   `json:"master"`
	Forks  []string `json:"forks"`
}

// IsFork reports whether key is among the configured forks.
func (p *Profile) IsFork(key string) bool {
	for _, fork := range p.Forks {
		if fork == key {
			return true
		}
	}
	return false
}

// SkillRecord is one scanned skill in a snapshot.
type SkillRecord struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Snapshot maps platform keys to their last scanned skills.
type Snapshot map[string][]SkillRecord

// Store reads and writes state files under the config directory.
type Store struct {
	configDir string
}

// NewStore creates a store rooted at configDir.
func NewStore(configDir string) *Store {
	return &Store{configDir: configDir}
}

// Dir returns the config directory the store writes under.
func (s *Store) Dir() string {
	return s.configDir
}

// ProfilePath returns the location of the selection file.
func (s *Store) ProfilePath() string {
	return filepath.Join(s.configDir, profileFile)
}

// SnapshotPath returns the location of the scan snapshot file.
func (s *Store) SnapshotPath() string {
	return filepath.Join(s.configDir, snapshotFile)
}

// LoadProfile returns the persisted selection, or an empty profile
// when none has been saved yet.
func (s *Store) LoadProfile() (*Profile, error) {
	var profile Profile
	ok, err := s.readJSON(s.ProfilePath(), &profile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Profile{Forks: []string{}}, nil
	}
	if profile.Forks == nil {
		profile.Forks = []string{}
	}
	return &profile, nil
}

// SaveProfile persists the selection.
func (s *Store) SaveProfile(profile *Profile) error {
	return s.writeJSON(s.ProfilePath(), profile)
}

// LoadSnapshot returns all scan snapshots, keyed by platform.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	snapshot := make(Snapshot)
	if _, err := s.readJSON(s.SnapshotPath(), &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// HasSnapshot reports whether any scan has been persisted.
func (s *Store) HasSnapshot() bool {
	_, err := os.Stat(s.SnapshotPath())
	return err == nil
}

// SaveSnapshot replaces the snapshot for one platform, keeping the
// records of every other platform intact.
func (s *Store) SaveSnapshot(platformKey string, skills []SkillRecord) error {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return err
	}
	if skills == nil {
		skills = []SkillRecord{}
	}
	snapshot[platformKey] = skills
	return s.writeJSON(s.SnapshotPath(), snapshot)
}

// FiltersPath returns the location of the scan filters file.
func (s *Store) FiltersPath() string {
	return filepath.Join(s.configDir, filtersFile)
}

// SaveFilter records the glob filter used by the last scan of a
// platform, so later re-scans can reproduce the same selection. An
// empty filter clears the entry.
func (s *Store) SaveFilter(platformKey, filter string) error {
	filters := make(map[string]string)
	if _, err := s.readJSON(s.FiltersPath(), &filters); err != nil {
		return err
	}
	if filter == "" {
		delete(filters, platformKey)
	} else {
		filters[platformKey] = filter
	}
	return s.writeJSON(s.FiltersPath(), filters)
}

// LoadFilter returns the filter recorded for a platform, or "" when
// the last scan was unfiltered.
func (s *Store) LoadFilter(platformKey string) (string, error) {
	filters := make(map[string]string)
	if _, err := s.readJSON(s.FiltersPath(), &filters); err != nil {
		return "", err
	}
	return filters[platformKey], nil
}

func (s *Store) readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// writeJSON writes through a temp file and renames it into place, so
// an interrupted write never leaves a truncated state file behind.
func (s *Store) writeJSON(path string, value any) error {
	if err := os.MkdirAll(s.configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir %s: %w", s.configDir, err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(s.configDir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
