// Package version implements `agentsync version`.
package version

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/pkg/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version information",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleVersionJSON,
				TUI:  handleVersionTUI,
			}, args)
		},
	}
}

func handleVersionJSON(_ context.Context, _ *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	return helpers.WriteJSON(os.Stdout, version.Get())
}

func handleVersionTUI(_ context.Context, _ *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	info := version.Get()
	fmt.Printf("agentsync %s (commit %s, built %s)\n", info.Version, info.CommitHash, info.BuildDate)
	return nil
}
