// Package cli wires the command tree together: global flags, logging,
// and configuration loading shared by every command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	backupcmd "github.com/agentsync/agentsync/cli/cmd/backup"
	cleancmd "github.com/agentsync/agentsync/cli/cmd/clean"
	configcmd "github.com/agentsync/agentsync/cli/cmd/config"
	infocmd "github.com/agentsync/agentsync/cli/cmd/info"
	mcpcmd "github.com/agentsync/agentsync/cli/cmd/mcps"
	platformscmd "github.com/agentsync/agentsync/cli/cmd/platforms"
	restorecmd "github.com/agentsync/agentsync/cli/cmd/restore"
	scancmd "github.com/agentsync/agentsync/cli/cmd/scan"
	synccmd "github.com/agentsync/agentsync/cli/cmd/sync"
	versioncmd "github.com/agentsync/agentsync/cli/cmd/version"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/pkg/config"
	"github.com/agentsync/agentsync/pkg/logger"
)

// ConfigFileName is the optional YAML config file under the config
// directory.
const ConfigFileName = "config.yaml"

// RootCmd builds the agentsync command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentsync",
		Short: "Sync agent skills and MCP servers across platforms",
		Long: `agentsync keeps AI-agent skill directories and MCP server entries in
sync between platforms such as Claude Code, OpenCode, Codex, Cursor,
and Windsurf. One platform acts as the master; the others receive
copies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupContext(cmd)
		},
	}
	addGlobalFlags(root)
	root.AddCommand(
		configcmd.NewConfigCommand(),
		platformscmd.NewPlatformsCommand(),
		scancmd.NewScanCommand(),
		cleancmd.NewCleanCommand(),
		synccmd.NewSyncCommand(),
		backupcmd.NewBackupCommand(),
		restorecmd.NewRestoreCommand(),
		infocmd.NewInfoCommand(),
		mcpcmd.NewMCPCommand(),
		versioncmd.NewVersionCommand(),
	)
	return root
}

func addGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringP("format", "f", "", "Output format (auto, json, tui)")
	flags.Bool("interactive", false, "Force interactive output")
	flags.Bool("no-color", false, "Disable styled output")
	flags.BoolP("quiet", "q", false, "Suppress informational output")
	flags.BoolP("yes", "y", false, "Skip confirmation prompts")
	flags.String("config-dir", "", "Directory for agentsync state files")
	flags.String("backup-dir", "", "Directory for skill backups")
	flags.String("home", "", "Base directory for platform resolution")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Emit logs as JSON")
	if err := flags.MarkHidden("home"); err != nil {
		panic(err)
	}
}

// setupContext loads configuration and attaches the logger and config
// manager to the command context.
func setupContext(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logLevel, logJSON, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(logLevel, logJSON)
	ctx = logger.ContextWithLogger(ctx, log)
	manager := config.NewManager(config.NewService())
	if _, err := manager.Load(ctx, configSources(cmd)...); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx = config.ContextWithManager(ctx, manager)
	cmd.SetContext(ctx)
	helpers.ApplyOutputSettings(cmd)
	return nil
}

// configSources assembles the YAML file source and the CLI flag
// overrides. Flag values only participate when explicitly set.
func configSources(cmd *cobra.Command) []config.Source {
	overrides := make(map[string]any)
	flagKeys := map[string]string{
		"format":      "cli.default_format",
		"interactive": "cli.interactive",
		"no-color":    "cli.no_color",
		"quiet":       "cli.quiet",
		"yes":         "cli.assume_yes",
		"config-dir":  "paths.config_dir",
		"backup-dir":  "paths.backup_dir",
		"home":        "paths.home",
	}
	flags := cmd.Flags()
	for flag, key := range flagKeys {
		if !flags.Changed(flag) {
			continue
		}
		if value, err := flags.GetString(flag); err == nil {
			overrides[key] = value
			continue
		}
		if value, err := flags.GetBool(flag); err == nil {
			overrides[key] = value
		}
	}
	// The config file lives in the config dir, so its location must
	// honor the same overrides the loader applies to paths.config_dir.
	configDir := config.Default().Paths.ConfigDir
	if env := os.Getenv("AGENTSYNC_PATHS_CONFIG_DIR"); env != "" {
		configDir = env
	}
	if dir, ok := overrides["paths.config_dir"].(string); ok {
		configDir = dir
	}
	return []config.Source{
		config.NewYAMLProvider(filepath.Join(configDir, ConfigFileName)),
		config.NewEnvProvider(),
		config.NewCLIProvider(overrides),
	}
}
