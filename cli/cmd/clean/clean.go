// Package clean implements `agentsync clean`: deleting every skill
// from the master platform or from all configured forks.
package clean

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
	"github.com/agentsync/agentsync/pkg/logger"
)

type cleanReport struct {
	Platform string `json:"platform"`
	Deleted  int    `json:"deleted"`
	DryRun   bool   `json:"dry_run"`
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:       "clean <master|fork>",
		Short:     "Delete all skills from the master or the fork platforms",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"master", "fork"},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			opts := cmd.ExecutorOptions{}
			if len(args) > 0 && args[0] == "fork" {
				opts.RequireForks = true
			} else {
				opts.RequireMaster = true
			}
			return cmd.ExecuteCommand(cobraCmd, opts, cmd.ModeHandlers{
				JSON: handleCleanJSON,
				TUI:  handleCleanTUI,
			}, args)
		},
	}
	cleanCmd.Flags().Bool("dry-run", false, "Report what would be deleted without deleting")
	cleanCmd.Flags().String("filter", "", "Glob pattern matched against skill names")
	return cleanCmd
}

func targetsOf(executor *cmd.CommandExecutor, target string) ([]platform.Platform, error) {
	switch target {
	case "master":
		master, err := executor.Master()
		if err != nil {
			return nil, err
		}
		return []platform.Platform{master}, nil
	case "fork":
		return executor.Forks()
	default:
		return nil, helpers.NewCliError(
			"INVALID_TARGET",
			fmt.Sprintf("target must be 'master' or 'fork', got %q", target),
		)
	}
}

func run(ctx context.Context, executor *cmd.CommandExecutor, targets []platform.Platform, dryRun bool, filter string) ([]cleanReport, error) {
	log := logger.FromContext(ctx)
	reports := make([]cleanReport, 0, len(targets))
	for _, target := range targets {
		result, err := skill.Clean(target, dryRun, skill.ScanOptions{Filter: filter})
		if err != nil {
			return nil, err
		}
		log.Debug("cleaned platform", "platform", target.Key, "deleted", result.Deleted, "dry_run", dryRun)
		reports = append(reports, cleanReport{Platform: target.Key, Deleted: result.Deleted, DryRun: dryRun})
	}
	return reports, nil
}

func flagsOf(cobraCmd *cobra.Command) (bool, string, error) {
	dryRun, err := cobraCmd.Flags().GetBool("dry-run")
	if err != nil {
		return false, "", fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	filter, err := cobraCmd.Flags().GetString("filter")
	if err != nil {
		return false, "", fmt.Errorf("failed to get filter flag: %w", err)
	}
	return dryRun, filter, nil
}

func handleCleanJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	dryRun, filter, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	targets, err := targetsOf(executor, args[0])
	if err != nil {
		return err
	}
	reports, err := run(ctx, executor, targets, dryRun, filter)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(os.Stdout, reports)
}

func handleCleanTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	dryRun, filter, err := flagsOf(cobraCmd)
	if err != nil {
		return err
	}
	targets, err := targetsOf(executor, args[0])
	if err != nil {
		return err
	}
	if !dryRun && !executor.Config().CLI.AssumeYes {
		names := make([]string, 0, len(targets))
		for _, target := range targets {
			names = append(names, target.Name)
		}
		confirmed, err := confirmDeletion(names)
		if err != nil {
			return err
		}
		if !confirmed {
			helpers.PrintWarn("Canceled")
			return nil
		}
	}
	reports, err := run(ctx, executor, targets, dryRun, filter)
	if err != nil {
		return err
	}
	for _, report := range reports {
		if report.DryRun {
			helpers.PrintWarn("%s: would delete %d skill(s)", report.Platform, report.Deleted)
		} else {
			helpers.PrintSuccess("%s: deleted %d skill(s)", report.Platform, report.Deleted)
		}
	}
	return nil
}

func confirmDeletion(names []string) (bool, error) {
	title := fmt.Sprintf("Delete all skills from %s?", names[0])
	if len(names) > 1 {
		title = fmt.Sprintf("Delete all skills from %d platforms?", len(names))
	}
	return components.Confirm(title)
}
