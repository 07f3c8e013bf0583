// Package info implements `agentsync info`: a summary of the current
// selection, scan snapshots, and backups.
package info

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/engine/mcp"
	"github.com/agentsync/agentsync/engine/skill"
	"github.com/agentsync/agentsync/engine/state"
)

type infoOutput struct {
	ConfigDir  string                         `json:"config_dir"`
	BackupDir  string                         `json:"backup_dir"`
	Master     string                         `json:"master"`
	Forks      []string                       `json:"forks"`
	Snapshot   map[string][]state.SkillRecord `json:"snapshot"`
	Backups    int                            `json:"backups"`
	MCPServers int                            `json:"mcp_servers"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current configuration and scanned skills",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleInfoJSON,
				TUI:  handleInfoTUI,
			}, args)
		},
	}
}

func collect(executor *cmd.CommandExecutor) (*infoOutput, error) {
	snapshot, err := executor.Store().LoadSnapshot()
	if err != nil {
		return nil, err
	}
	backups, err := skill.ListBackups(executor.Config().Paths.BackupDir)
	if err != nil {
		return nil, err
	}
	profile := executor.Profile()
	output := &infoOutput{
		ConfigDir: executor.Config().Paths.ConfigDir,
		BackupDir: executor.Config().Paths.BackupDir,
		Master:    profile.Master,
		Forks:     profile.Forks,
		Snapshot:  snapshot,
		Backups:   len(backups),
	}
	if profile.Master != "" {
		master, err := executor.Registry().MustGet(profile.Master)
		if err != nil {
			return nil, err
		}
		if output.MCPServers, err = mcp.Count(master); err != nil {
			return nil, err
		}
	}
	return output, nil
}

func handleInfoJSON(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := collect(executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, output)
}

func handleInfoTUI(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := collect(executor)
	if err != nil {
		return err
	}
	helpers.PrintTitle("Configuration")
	master := output.Master
	if master == "" {
		master = "not set"
	}
	fmt.Printf("Master: %s\n", master)
	if len(output.Forks) > 0 {
		fmt.Printf("Forks: %s\n", strings.Join(output.Forks, ", "))
	} else {
		fmt.Println("Forks: none")
	}
	helpers.PrintDim("Config dir: %s", output.ConfigDir)
	helpers.PrintDim("Backups: %d in %s", output.Backups, output.BackupDir)
	if output.Master != "" {
		helpers.PrintDim("MCP servers on master: %d", output.MCPServers)
	}
	if output.Master == "" && len(output.Forks) == 0 {
		helpers.PrintWarn("\nNo configuration set. Run 'agentsync config' first.")
		return nil
	}
	if skills, ok := output.Snapshot[output.Master]; ok && len(skills) > 0 {
		fmt.Println()
		helpers.PrintTitle("Master skills (%d)", len(skills))
		home := executor.Config().Paths.Home
		rows := make([][]string, 0, len(skills))
		for _, record := range skills {
			rows = append(rows, []string{record.Name, helpers.DisplayPath(home, record.Path)})
		}
		fmt.Println(components.RenderTable([]string{"Skill", "Path"}, rows))
	} else if output.Master != "" {
		helpers.PrintWarn("\nMaster has no scanned skills. Run 'agentsync scan'.")
	}
	for _, fork := range output.Forks {
		if skills, ok := output.Snapshot[fork]; ok && len(skills) > 0 {
			fmt.Printf("%s: %d skill(s) scanned\n", fork, len(skills))
		}
	}
	return nil
}
