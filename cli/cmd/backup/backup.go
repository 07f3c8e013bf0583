// Package backup implements `agentsync backup`: copying a platform's
// skills into a timestamped directory with a manifest.
package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/engine/skill"
	"github.com/agentsync/agentsync/pkg/logger"
)

type backupOutput struct {
	Platform string `json:"platform"`
	Path     string `json:"path"`
	Skills   int    `json:"skills"`
	DryRun   bool   `json:"dry_run"`
}

// NewBackupCommand creates the backup command.
func NewBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up a platform's skills",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleBackupJSON,
				TUI:  handleBackupTUI,
			}, args)
		},
	}
	backupCmd.Flags().StringP("platform", "p", "", "Platform to back up (defaults to master)")
	backupCmd.Flags().Bool("dry-run", false, "Report what would be backed up without copying")
	return backupCmd
}

func run(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor) (*backupOutput, error) {
	log := logger.FromContext(ctx)
	platformKey, err := cobraCmd.Flags().GetString("platform")
	if err != nil {
		return nil, fmt.Errorf("failed to get platform flag: %w", err)
	}
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	target, err := executor.Registry().MustGet(platformKey)
	if platformKey == "" {
		target, err = executor.Master()
	}
	if err != nil {
		return nil, err
	}
	path, manifest, err := skill.Backup(target, executor.Config().Paths.BackupDir, time.Now(), dryRun)
	if err != nil {
		return nil, err
	}
	log.Debug("backup complete", "platform", target.Key, "path", path, "skills", len(manifest.Skills))
	return &backupOutput{
		Platform: target.Key,
		Path:     path,
		Skills:   len(manifest.Skills),
		DryRun:   dryRun,
	}, nil
}

func handleBackupJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := run(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, output)
}

func handleBackupTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	output, err := run(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	if output.DryRun {
		helpers.PrintWarn("Would back up %d skill(s) to %s", output.Skills, output.Path)
		return nil
	}
	helpers.PrintSuccess("Backed up %d skill(s) to %s", output.Skills, output.Path)
	return nil
}
