// Package cmd hosts the shared command execution plumbing: mode
// detection, platform registry construction, state access, and
// uniform error handling.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/models"
	"github.com/agentsync/agentsync/engine/platform"
	"github.com/agentsync/agentsync/engine/state"
	"github.com/agentsync/agentsync/pkg/config"
	"github.com/agentsync/agentsync/pkg/logger"
)

// CustomPlatformsFile is the user platform overrides file under the
// config directory.
const CustomPlatformsFile = "platforms.yaml"

// CommandExecutor handles common setup and execution patterns for CLI
// commands: registry construction, state store access, mode
// detection, and profile loading.
type CommandExecutor struct {
	mode     models.Mode
	config   *config.Config
	registry *platform.Registry
	store    *state.Store
	profile  *state.Profile
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor.
type ExecutorOptions struct {
	// RequireMaster fails fast when no master platform is configured.
	RequireMaster bool
	// RequireForks fails fast when no fork platforms are configured.
	RequireForks bool
}

// NewCommandExecutor creates a new command executor with all necessary
// setup.
func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	mode := helpers.DetectMode(cmd)
	log.Debug("detected execution mode", "mode", mode)
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	registry := platform.NewRegistry(cfg.Paths.Home)
	if err := registry.LoadCustom(filepath.Join(cfg.Paths.ConfigDir, CustomPlatformsFile)); err != nil {
		return nil, err
	}
	store := state.NewStore(cfg.Paths.ConfigDir)
	profile, err := store.LoadProfile()
	if err != nil {
		return nil, err
	}
	executor := &CommandExecutor{
		mode:     mode,
		config:   cfg,
		registry: registry,
		store:    store,
		profile:  profile,
	}
	if opts.RequireMaster && profile.Master == "" {
		return nil, helpers.NewNotConfiguredError("master")
	}
	if opts.RequireForks && len(profile.Forks) == 0 {
		return nil, helpers.NewNotConfiguredError("fork")
	}
	return executor, nil
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch e.mode {
	case models.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case models.ModeTUI:
		if handlers.TUI == nil {
			return fmt.Errorf("TUI mode handler not implemented")
		}
		return handlers.TUI(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

// Mode returns the detected execution mode.
func (e *CommandExecutor) Mode() models.Mode {
	return e.mode
}

// Config returns the resolved application config.
func (e *CommandExecutor) Config() *config.Config {
	return e.config
}

// Registry returns the platform registry.
func (e *CommandExecutor) Registry() *platform.Registry {
	return e.registry
}

// Store returns the state store.
func (e *CommandExecutor) Store() *state.Store {
	return e.store
}

// Profile returns the persisted master/fork selection.
func (e *CommandExecutor) Profile() *state.Profile {
	return e.profile
}

// Master resolves the configured master platform.
func (e *CommandExecutor) Master() (platform.Platform, error) {
	if e.profile.Master == "" {
		return platform.Platform{}, helpers.NewNotConfiguredError("master")
	}
	return e.registry.MustGet(e.profile.Master)
}

// Forks resolves the configured fork platforms.
func (e *CommandExecutor) Forks() ([]platform.Platform, error) {
	forks := make([]platform.Platform, 0, len(e.profile.Forks))
	for _, key := range e.profile.Forks {
		p, err := e.registry.MustGet(key)
		if err != nil {
			return nil, err
		}
		forks = append(forks, p)
	}
	return forks, nil
}

// ExecuteCommand is a convenience function that combines executor
// creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(err, helpers.DetectMode(cmd))
	}
	return HandleCommonErrors(executor.Execute(cmd.Context(), cmd, handlers, args), executor.Mode())
}

// HandleCommonErrors provides consistent error handling across all
// commands.
func HandleCommonErrors(err error, mode models.Mode) error {
	if err == nil {
		return nil
	}
	if cliErr := categorizeError(err); cliErr != nil {
		helpers.OutputError(cliErr, mode)
		return cliErr
	}
	helpers.OutputError(err, mode)
	return err
}

// categorizeError converts well-known errors to structured CLI errors.
func categorizeError(err error) *helpers.CliError {
	switch {
	case errors.Is(err, context.Canceled):
		return helpers.NewCliError("OPERATION_CANCELED", "Operation was canceled by user")
	case errors.Is(err, context.DeadlineExceeded):
		return helpers.NewCliError("OPERATION_TIMEOUT", "Operation timed out")
	case errors.Is(err, helpers.ErrNotConfigured):
		return helpers.NewNotConfiguredError("master")
	default:
		return nil
	}
}
