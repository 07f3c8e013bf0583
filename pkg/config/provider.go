package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// defaultProvider yields the built-in defaults. It carries no data of
// its own; the loader applies Default() through the structs provider.
type defaultProvider struct{}

// NewDefaultProvider returns the built-in defaults source.
func NewDefaultProvider() Source {
	return &defaultProvider{}
}

func (p *defaultProvider) Load() (map[string]any, error) {
	return nil, nil
}

func (p *defaultProvider) Type() SourceType {
	return SourceDefault
}

// yamlProvider reads an optional YAML config file. A missing file is
// not an error; a malformed one is.
type yamlProvider struct {
	path string
}

// NewYAMLProvider returns a source backed by the given YAML file.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

func (p *yamlProvider) Load() (map[string]any, error) {
	if p.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", p.path, err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", p.path, err)
	}
	return values, nil
}

func (p *yamlProvider) Type() SourceType {
	return SourceYAML
}

// envProvider marks the position of environment overrides in the
// precedence chain; the loader reads the process environment itself.
type envProvider struct{}

// NewEnvProvider returns the AGENTSYNC_* environment source.
func NewEnvProvider() Source {
	return &envProvider{}
}

func (p *envProvider) Load() (map[string]any, error) {
	return nil, nil
}

func (p *envProvider) Type() SourceType {
	return SourceEnv
}

// cliProvider carries flag overrides as dotted-path keys, e.g.
// "cli.default_format" -> "json".
type cliProvider struct {
	values map[string]any
}

// NewCLIProvider returns a source backed by resolved CLI flag values.
func NewCLIProvider(values map[string]any) Source {
	return &cliProvider{values: values}
}

func (p *cliProvider) Load() (map[string]any, error) {
	return p.values, nil
}

func (p *cliProvider) Type() SourceType {
	return SourceCLI
}
