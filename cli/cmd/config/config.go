// Package config implements the `agentsync config` command: selecting
// the master platform and the fork platforms that receive syncs.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/engine/platform"
	"github.com/agentsync/agentsync/engine/state"
	"github.com/agentsync/agentsync/pkg/logger"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configure master and fork platforms",
		Long: `Select which platform is the master (source of truth) and which
platforms are forks that receive synced skills. Without flags this is
an interactive selection.`,
		RunE: executeConfigCommand,
	}
	configCmd.Flags().StringP("master", "m", "", "Master platform key")
	configCmd.Flags().StringSliceP("fork", "F", nil, "Fork platform key (repeatable)")
	return configCmd
}

func executeConfigCommand(cobraCmd *cobra.Command, args []string) error {
	return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
		JSON: handleConfigJSON,
		TUI:  handleConfigTUI,
	}, args)
}

func handleConfigJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	log.Debug("executing config command in JSON mode")
	master, forks, err := selectionFromFlags(cobraCmd, executor)
	if err != nil {
		return err
	}
	if master == "" {
		return helpers.NewCliError("MISSING_FLAG", "--master is required in JSON mode")
	}
	profile, err := saveProfile(executor, master, forks)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, profile)
}

func handleConfigTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	log.Debug("executing config command in TUI mode")
	master, forks, err := selectionFromFlags(cobraCmd, executor)
	if err != nil {
		return err
	}
	if master == "" {
		profile := executor.Profile()
		printCurrent(profile)
		master, forks, err = selectInteractively(executor.Registry(), profile)
		if err != nil {
			return err
		}
	}
	profile, err := saveProfile(executor, master, forks)
	if err != nil {
		return err
	}
	helpers.PrintSuccess("Configuration saved")
	fmt.Printf("Master: %s\n", profile.Master)
	if len(profile.Forks) > 0 {
		fmt.Printf("Forks: %s\n", strings.Join(profile.Forks, ", "))
	} else {
		fmt.Println("Forks: none")
	}
	return nil
}

// selectionFromFlags reads --master/--fork, returning an empty master
// when no explicit selection was given.
func selectionFromFlags(cobraCmd *cobra.Command, executor *cmd.CommandExecutor) (string, []string, error) {
	master, err := cobraCmd.Flags().GetString("master")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get master flag: %w", err)
	}
	forks, err := cobraCmd.Flags().GetStringSlice("fork")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get fork flag: %w", err)
	}
	if master == "" {
		return "", nil, nil
	}
	for _, key := range append([]string{master}, forks...) {
		if _, err := executor.Registry().MustGet(key); err != nil {
			return "", nil, helpers.NewCliError("INVALID_PLATFORM", err.Error())
		}
	}
	return master, forks, nil
}

func selectInteractively(registry *platform.Registry, profile *state.Profile) (string, []string, error) {
	options := make([]components.Option, 0)
	for _, p := range registry.All() {
		options = append(options, components.Option{
			Key:   p.Key,
			Label: fmt.Sprintf("%s (%s)", p.Name, p.Key),
		})
	}
	master, err := components.SelectOne("Select the master platform", options, profile.Master)
	if err != nil {
		return "", nil, err
	}
	forkOptions := make([]components.Option, 0, len(options)-1)
	for _, opt := range options {
		if opt.Key != master {
			forkOptions = append(forkOptions, opt)
		}
	}
	current := make([]string, 0, len(profile.Forks))
	for _, key := range profile.Forks {
		if key != master {
			current = append(current, key)
		}
	}
	forks, err := components.SelectMany("Select the fork platforms", forkOptions, current)
	if err != nil {
		return "", nil, err
	}
	return master, forks, nil
}

// saveProfile persists the selection, dropping the master from the
// fork list so a platform never syncs onto itself.
func saveProfile(executor *cmd.CommandExecutor, master string, forks []string) (*state.Profile, error) {
	profile := &state.Profile{Master: master, Forks: []string{}}
	for _, key := range forks {
		if key != master && !profile.IsFork(key) {
			profile.Forks = append(profile.Forks, key)
		}
	}
	if err := executor.Store().SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func printCurrent(profile *state.Profile) {
	helpers.PrintTitle("Current configuration")
	master := profile.Master
	if master == "" {
		master = "not set"
	}
	fmt.Printf("Master: %s\n", master)
	if len(profile.Forks) > 0 {
		fmt.Printf("Forks: %s\n", strings.Join(profile.Forks, ", "))
	} else {
		fmt.Println("Forks: none")
	}
	fmt.Println()
}
