// Package scan implements `agentsync scan`: discovering skills on a
// platform and persisting the snapshot later syncs run from.
package scan

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/engine/platform"
	"github.com/agentsync/agentsync/engine/skill"
	"github.com/agentsync/agentsync/engine/state"
	"github.com/agentsync/agentsync/pkg/logger"
)

// Output reports one scan run.
type Output struct {
	Platform string        `json:"platform"`
	Count    int           `json:"count"`
	Skills   []skill.Skill `json:"skills"`
	Snapshot string        `json:"snapshot"`
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan skills on the master platform",
		Long: `Discover skills on the master platform (or the platform given with
--platform) and save the result as the sync snapshot.`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleScanJSON,
				TUI:  handleScanTUI,
			}, args)
		},
	}
	scanCmd.Flags().StringP("platform", "p", "", "Platform to scan (defaults to master)")
	scanCmd.Flags().String("filter", "", "Glob pattern matched against skill names")
	return scanCmd
}

// Run scans the target platform and persists the snapshot. Shared with
// the sync watcher so a file change re-scans exactly like the command.
func Run(ctx context.Context, executor *cmd.CommandExecutor, platformKey, filter string) (*Output, error) {
	log := logger.FromContext(ctx)
	target, err := resolveTarget(executor, platformKey)
	if err != nil {
		return nil, err
	}
	skills, err := skill.Scan(target, skill.ScanOptions{Filter: filter})
	if err != nil {
		return nil, err
	}
	records := make([]state.SkillRecord, 0, len(skills))
	for _, s := range skills {
		records = append(records, state.SkillRecord{Name: s.Name, Path: s.Path})
	}
	if err := executor.Store().SaveSnapshot(target.Key, records); err != nil {
		return nil, err
	}
	if err := executor.Store().SaveFilter(target.Key, filter); err != nil {
		return nil, err
	}
	log.Debug("scan complete", "platform", target.Key, "skills", len(skills))
	return &Output{
		Platform: target.Key,
		Count:    len(skills),
		Skills:   skills,
		Snapshot: executor.Store().SnapshotPath(),
	}, nil
}

func resolveTarget(executor *cmd.CommandExecutor, platformKey string) (platform.Platform, error) {
	if platformKey != "" {
		p, err := executor.Registry().MustGet(platformKey)
		if err != nil {
			return platform.Platform{}, helpers.NewCliError("INVALID_PLATFORM", err.Error())
		}
		return p, nil
	}
	return executor.Master()
}

func flagsOf(cobraCmd *cobra.Command) (string, string, error) {
	platformKey, err := cobraCmd.Flags().GetString("platform")
	if err != nil {
		return "", "", fmt.Errorf("failed to get platform flag: %w", err)
	}
	filter, err := cobraCmd.Flags().GetString("filter")
	if err != nil {
		return "", "", fmt.Errorf("failed to get filter flag: %w", err)
	}
	return platformKey, filter, nil
}

func handleScanJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	platformKey, filter, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	output, err := Run(ctx, executor, platformKey, filter)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, output)
}

func handleScanTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	platformKey, filter, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	output, err := Run(ctx, executor, platformKey, filter)
	if err != nil {
		return err
	}
	if output.Count == 0 {
		helpers.PrintWarn("No skills found on %s", output.Platform)
		helpers.PrintDim("Snapshot saved to %s", output.Snapshot)
		return nil
	}
	helpers.PrintTitle("Found %d skill(s) on %s", output.Count, output.Platform)
	home := executor.Config().Paths.Home
	rows := make([][]string, 0, output.Count)
	for _, s := range output.Skills {
		rows = append(rows, []string{s.Name, s.Meta.Description, helpers.DisplayPath(home, s.Path)})
	}
	fmt.Println(components.RenderTable([]string{"Skill", "Description", "Path"}, rows))
	helpers.PrintDim("Snapshot saved to %s", output.Snapshot)
	return nil
}
