// Package mcps implements the `agentsync mcp` command group: listing,
// syncing, and cleaning MCP server entries across platform configs.
package mcps

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/engine/mcp"
	"github.com/agentsync/agentsync/pkg/logger"
)

// NewMCPCommand creates the mcp command group.
func NewMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage MCP server entries across platforms",
	}
	mcpCmd.AddCommand(
		newListCommand(),
		newSyncCommand(),
		newCleanCommand(),
	)
	return mcpCmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the master platform's MCP servers",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireMaster: true}, cmd.ModeHandlers{
				JSON: handleListJSON,
				TUI:  handleListTUI,
			}, args)
		},
	}
}

type listOutput struct {
	Platform string            `json:"platform"`
	Servers  mcp.Servers       `json:"servers"`
	Sources  map[string]string `json:"sources"`
}

func readMaster(executor *cmd.CommandExecutor) (*listOutput, error) {
	master, err := executor.Master()
	if err != nil {
		return nil, err
	}
	servers, sources, err := mcp.Read(master)
	if err != nil {
		return nil, err
	}
	return &listOutput{Platform: master.Key, Servers: servers, Sources: sources}, nil
}

func handleListJSON(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := readMaster(executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, output)
}

func handleListTUI(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := readMaster(executor)
	if err != nil {
		return err
	}
	if len(output.Servers) == 0 {
		helpers.PrintWarn("No MCP servers configured on %s", output.Platform)
		return nil
	}
	helpers.PrintTitle("MCP servers on %s", output.Platform)
	rows := make([][]string, 0, len(output.Servers))
	for _, name := range output.Servers.Names() {
		rows = append(rows, []string{name, serverTarget(output.Servers[name]), output.Sources[name]})
	}
	fmt.Println(components.RenderTable([]string{"Server", "Target", "Source"}, rows))
	return nil
}

// serverTarget summarizes what an entry points at.
func serverTarget(server mcp.Server) string {
	if url, ok := server["url"].(string); ok && url != "" {
		return url
	}
	command, _ := server["command"].(string)
	return command
}

func newSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Write the master's MCP servers into every fork's config",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{
				RequireMaster: true,
				RequireForks:  true,
			}, cmd.ModeHandlers{
				JSON: handleSyncJSON,
				TUI:  handleSyncTUI,
			}, args)
		},
	}
	syncCmd.Flags().Bool("dry-run", false, "Report what would be written without writing")
	syncCmd.Flags().Bool("replace", false, "Rewrite the servers section instead of merging")
	return syncCmd
}

func runSync(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor) ([]*mcp.SyncResult, error) {
	log := logger.FromContext(ctx)
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	replace, err := cobraCmd.Flags().GetBool("replace")
	if err != nil {
		return nil, fmt.Errorf("failed to get replace flag: %w", err)
	}
	output, err := readMaster(executor)
	if err != nil {
		return nil, err
	}
	if len(output.Servers) == 0 {
		return nil, helpers.NewCliError(
			"NO_SERVERS",
			fmt.Sprintf("No MCP servers found on %s", output.Platform),
		)
	}
	forks, err := executor.Forks()
	if err != nil {
		return nil, err
	}
	results := make([]*mcp.SyncResult, 0, len(forks))
	for _, fork := range forks {
		result, err := mcp.Sync(fork, output.Servers, replace, dryRun)
		if err != nil {
			return nil, err
		}
		log.Debug("mcp sync", "fork", fork.Key, "servers", result.Written, "dry_run", dryRun)
		results = append(results, result)
	}
	return results, nil
}

func handleSyncJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	results, err := runSync(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, results)
}

func handleSyncTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	results, err := runSync(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	dryRun, _ := cobraCmd.Flags().GetBool("dry-run")
	for _, result := range results {
		if dryRun {
			helpers.PrintWarn("%s: would write %d server(s) to %s", result.Platform, result.Written, result.Path)
		} else {
			helpers.PrintSuccess("%s: %d server(s) written to %s", result.Platform, result.Written, result.Path)
		}
	}
	return nil
}

func newCleanCommand() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:   "clean <platform>",
		Short: "Remove MCP server entries from a platform's config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleCleanJSON,
				TUI:  handleCleanTUI,
			}, args)
		},
	}
	cleanCmd.Flags().Bool("dry-run", false, "Report what would be removed without removing")
	return cleanCmd
}

func runClean(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) (*mcp.CleanResult, error) {
	log := logger.FromContext(ctx)
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	target, err := executor.Registry().MustGet(args[0])
	if err != nil {
		return nil, helpers.NewCliError("INVALID_PLATFORM", err.Error())
	}
	result, err := mcp.Clean(target, dryRun)
	if err != nil {
		return nil, err
	}
	log.Debug("mcp clean", "platform", target.Key, "removed", result.Removed, "dry_run", dryRun)
	return result, nil
}

func handleCleanJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	result, err := runClean(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, result)
}

func handleCleanTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	dryRun, _ := cobraCmd.Flags().GetBool("dry-run")
	if !dryRun && !executor.Config().CLI.AssumeYes {
		confirmed, err := components.Confirm(fmt.Sprintf("Remove all MCP servers from %s?", args[0]))
		if err != nil {
			return err
		}
		if !confirmed {
			helpers.PrintWarn("Canceled")
			return nil
		}
	}
	result, err := runClean(ctx, cobraCmd, executor, args)
	if err != nil {
		return err
	}
	if dryRun {
		helpers.PrintWarn("%s: would remove %d server(s)", result.Platform, result.Removed)
	} else {
		helpers.PrintSuccess("%s: removed %d server(s)", result.Platform, result.Removed)
	}
	if result.PluginFiles > 0 {
		helpers.PrintDim("Plugin config files: %d", result.PluginFiles)
	}
	return nil
}
