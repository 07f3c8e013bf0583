// Package platforms implements `agentsync platforms`: listing the
// known platforms with their skill roots and MCP config locations.
package platforms

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
)

type platformInfo struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	SkillRoots []string `json:"skill_roots"`
	MCPPath    string   `json:"mcp_path"`
	Role       string   `json:"role,omitempty"`
}

// NewPlatformsCommand creates the platforms command.
func NewPlatformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List available platforms and their paths",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handlePlatformsJSON,
				TUI:  handlePlatformsTUI,
			}, args)
		},
	}
}

func collect(executor *cmd.CommandExecutor) []platformInfo {
	profile := executor.Profile()
	infos := make([]platformInfo, 0)
	for _, p := range executor.Registry().All() {
		info := platformInfo{
			Key:        p.Key,
			Name:       p.Name,
			SkillRoots: p.SkillRoots(),
			MCPPath:    p.MCP().GlobalPath,
		}
		switch {
		case profile.Master == p.Key:
			info.Role = "master"
		case profile.IsFork(p.Key):
			info.Role = "fork"
		}
		infos = append(infos, info)
	}
	return infos
}

func handlePlatformsJSON(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	return helpers.WriteJSON(os.Stdout, collect(executor))
}

func handlePlatformsTUI(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	home := executor.Config().Paths.Home
	rows := make([][]string, 0)
	for _, info := range collect(executor) {
		roots := make([]string, 0, len(info.SkillRoots))
		for _, root := range info.SkillRoots {
			marker := ""
			if !platform.PathExists(root) {
				marker = " (missing)"
			}
			roots = append(roots, helpers.DisplayPath(home, root)+marker)
		}
		rows = append(rows, []string{
			info.Key,
			info.Name,
			info.Role,
			strings.Join(roots, "\n"),
			helpers.DisplayPath(home, info.MCPPath),
		})
	}
	fmt.Println(components.RenderTable(
		[]string{"Key", "Name", "Role", "Skill Roots", "MCP Config"},
		rows,
	))
	return nil
}
