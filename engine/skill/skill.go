// Package skill implements skill discovery and the copy operations
// built on it: cleaning, syncing master to forks, and backup/restore
// with manifest-driven path reconciliation.
//
// A skill is a directory containing a SKILL.md file. Claude Code
// nests skills arbitrarily deep inside plugin marketplaces, so its
// roots are walked recursively; every other platform keeps skills as
// direct children of a single root.
package skill

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// MarkerFile identifies a directory as a skill.
const MarkerFile = "SKILL.md"

// Skill is one discovered skill directory.
type Skill struct {
	// Name is the directory name.
	Name string `json:"name"`
	// Path is the absolute skill directory.
	Path string `json:"path"`
	// Root is the skill root the path was found under.
	Root string `json:"root"`
	// Meta holds SKILL.md frontmatter when present.
	Meta Metadata `json:"meta"`
}

// RelativePath returns the skill path relative to its root.
func (s Skill) RelativePath() (string, error) {
	return filepath.Rel(s.Root, s.Path)
}

// Metadata is the YAML frontmatter of a SKILL.md file.
type Metadata struct {
	Name        string `yaml:"name"        json:"name,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

var frontmatterDelim = []byte("---")

// ReadMetadata parses the YAML frontmatter of the skill's SKILL.md.
// Missing files and missing frontmatter yield empty metadata; only a
// present-but-unparsable frontmatter block is an error.
func ReadMetadata(dir string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(filepath.Join(dir, MarkerFile))
	if err != nil {
		return meta, nil
	}
	content := bytes.TrimLeft(data, "\uFEFF\n\r ")
	if !bytes.HasPrefix(content, frontmatterDelim) {
		return meta, nil
	}
	rest := content[len(frontmatterDelim):]
	end := bytes.Index(rest, append([]byte("\n"), frontmatterDelim...))
	if end < 0 {
		return meta, nil
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, err
	}
	return meta, nil
}
