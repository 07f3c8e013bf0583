// Package restore implements `agentsync restore`: copying a backup's
// skills back onto the platform it was taken from.
package restore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/cli/tui/components"
	"github.com/agentsync/agentsync/engine/skill"
	"github.com/agentsync/agentsync/pkg/logger"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand() *cobra.Command {
	restoreCmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore skills from a backup",
		Long: `Restore a backup taken with 'agentsync backup'. Without an argument
an interactive picker lists the available backups, newest first. The
argument may be a backup directory name or an absolute path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleRestoreJSON,
				TUI:  handleRestoreTUI,
			}, args)
		},
	}
	restoreCmd.Flags().Bool("dry-run", false, "Report what would be restored without copying")
	return restoreCmd
}

// resolveBackupPath turns a name or path argument into a backup
// directory under the configured backup root.
func resolveBackupPath(executor *cmd.CommandExecutor, arg string) string {
	if filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(executor.Config().Paths.BackupDir, arg)
}

func run(ctx context.Context, executor *cmd.CommandExecutor, backupPath string, dryRun bool) (*skill.RestoreResult, error) {
	log := logger.FromContext(ctx)
	result, err := skill.Restore(executor.Registry(), backupPath, dryRun)
	if err != nil {
		return nil, err
	}
	log.Debug("restore complete", "backup", backupPath, "restored", result.Restored, "dry_run", dryRun)
	return result, nil
}

func handleRestoreJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	if len(args) == 0 {
		return helpers.NewCliError("MISSING_ARGUMENT", "a backup name is required in JSON mode")
	}
	result, err := run(ctx, executor, resolveBackupPath(executor, args[0]), dryRun)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, result)
}

func handleRestoreTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	var backupPath string
	if len(args) > 0 {
		backupPath = resolveBackupPath(executor, args[0])
	} else {
		backupPath, err = pickBackup(executor)
		if err != nil {
			return err
		}
	}
	manifest, err := skill.LoadManifest(backupPath)
	if err != nil {
		return err
	}
	if !dryRun && !executor.Config().CLI.AssumeYes {
		confirmed, err := components.Confirm(fmt.Sprintf(
			"Restore %d skill(s) to %s?", len(manifest.Skills), manifest.Platform))
		if err != nil {
			return err
		}
		if !confirmed {
			helpers.PrintWarn("Canceled")
			return nil
		}
	}
	result, err := run(ctx, executor, backupPath, dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		helpers.PrintWarn("Would restore %d of %d skill(s)", result.Restored, result.Total)
	} else {
		helpers.PrintSuccess("Restored %d of %d skill(s)", result.Restored, result.Total)
	}
	for _, msg := range result.Errors {
		helpers.PrintWarn("  %s", msg)
	}
	return nil
}

// pickBackup lists available backups newest first and prompts for one.
func pickBackup(executor *cmd.CommandExecutor) (string, error) {
	backups, err := skill.ListBackups(executor.Config().Paths.BackupDir)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", helpers.NewCliError(
			"NO_BACKUPS",
			"No backups found",
			fmt.Sprintf("backups are stored in %s", executor.Config().Paths.BackupDir),
		)
	}
	options := make([]components.Option, 0, len(backups))
	for _, backup := range backups {
		label := filepath.Base(backup.Path)
		if ts, err := time.Parse(skill.TimestampLayout, backup.Manifest.Timestamp); err == nil {
			label = fmt.Sprintf("%s - %s (%d skills)",
				backup.Manifest.Platform,
				ts.Format("2006-01-02 15:04:05"),
				len(backup.Manifest.Skills))
		}
		options = append(options, components.Option{Key: backup.Path, Label: label})
	}
	return components.SelectOne("Select a backup to restore", options, options[0].Key)
}
