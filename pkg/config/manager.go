package config

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Manager owns the loaded configuration and hands out the current
// snapshot atomically.
type Manager struct {
	Service Service
	current atomic.Value // stores *Config
}

// NewManager creates a manager around the given service.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load loads configuration from the given sources and makes it current.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(cfg)
	return cfg, nil
}

// Get returns the current configuration, or defaults when nothing has
// been loaded yet.
func (m *Manager) Get() *Config {
	if cfg, ok := m.current.Load().(*Config); ok && cfg != nil {
		return cfg
	}
	return Default()
}

