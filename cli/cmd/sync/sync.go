// Package sync implements `agentsync sync`: copying the snapshot of
// the master platform's skills into every configured fork, optionally
// re-running on filesystem changes.
package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/engine/skill"
	"github.com/agentsync/agentsync/pkg/logger"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync skills from the master to all fork platforms",
		Long: `Copy every skill recorded by the last scan from the master platform
into each fork's skill directory. With --watch the master directories
are monitored and the sync re-runs on changes.`,
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
	syncCmd.Flags().Bool("dry-run", false, "Report what would be synced without copying")
	syncCmd.Flags().BoolP("watch", "w", false, "Keep watching the master directories and re-sync on changes")
	return syncCmd
}

func run(ctx context.Context, executor *cmd.CommandExecutor, dryRun bool) (*skill.SyncResult, error) {
	log := logger.FromContext(ctx)
	master, err := executor.Master()
	if err != nil {
		return nil, err
	}
	forks, err := executor.Forks()
	if err != nil {
		return nil, err
	}
	snapshot, err := executor.Store().LoadSnapshot()
	if err != nil {
		return nil, err
	}
	result, err := skill.Sync(master, forks, snapshot[master.Key], dryRun)
	if err != nil {
		return nil, err
	}
	log.Debug("sync complete", "master", master.Key, "skills", result.MasterSkills, "dry_run", dryRun)
	return result, nil
}

func flagsOf(cobraCmd *cobra.Command) (dryRun, watch bool, err error) {
	dryRun, err = cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return false, false, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	watch, err = cobraCmd.Flags().GetBool("watch")
	if err != nil {
		return false, false, fmt.Errorf("failed to get watch flag: %w", err)
	}
	return dryRun, watch, nil
}

func handleSyncJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	dryRun, watch, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	if watch {
		return helpers.NewCliError("UNSUPPORTED_FLAG", "--watch is not available in JSON mode")
	}
	result, err := run(ctx, executor, dryRun)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, result)
}

func handleSyncTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	dryRun, watch, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	result, err := run(ctx, executor, dryRun)
	if err != nil {
		return err
	}
	printResult(result, dryRun)
	if !watch {
		return nil
	}
	return watchAndResync(ctx, executor, dryRun)
}

func printResult(result *skill.SyncResult, dryRun bool) {
	helpers.PrintTitle("Master skills: %d", result.MasterSkills)
	for fork, count := range result.SyncedTo {
		if dryRun {
			helpers.PrintWarn("  %s: would sync %d skill(s)", fork, count)
		} else {
			helpers.PrintSuccess("  %s: %d skill(s) synced", fork, count)
		}
	}
	for _, msg := range result.Errors {
		helpers.PrintWarn("  %s", msg)
	}
}
