package sync

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"

	"github.com/agentsync/agentsync/cli/cmd"
	"github.com/agentsync/agentsync/cli/cmd/scan"
	"github.com/agentsync/agentsync/cli/helpers"
	"github.com/agentsync/agentsync/pkg/logger"
)

// watchAndResync watches the master skill roots and re-runs
// scan-then-sync after changes settle. Blocks until interrupted.
func watchAndResync(ctx context.Context, executor *cmd.CommandExecutor, dryRun bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)
	master, err := executor.Master()
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, root := range master.SkillRoots() {
		if err := watchTree(watcher, root); err != nil {
			return err
		}
	}
	// Re-scan with the filter of the last scan so a filtered
	// selection is not widened by a watched change.
	filter, err := executor.Store().LoadFilter(master.Key)
	if err != nil {
		return err
	}
	resync := func() {
		if _, err := scan.Run(ctx, executor, master.Key, filter); err != nil {
			helpers.PrintWarn("re-scan failed: %v", err)
			return
		}
		result, err := run(ctx, executor, dryRun)
		if err != nil {
			helpers.PrintWarn("re-sync failed: %v", err)
			return
		}
		printResult(result, dryRun)
	}
	debounced, cancel := debounce.New(executor.Config().Sync.WatchDebounce, resync)
	defer cancel()
	helpers.PrintDim("Watching %s for changes (ctrl-c to stop)", master.Name)
	for {
		select {
		case <-ctx.Done():
			helpers.PrintDim("Stopped watching")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Debug("fs event", "op", event.Op.String(), "path", event.Name)
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// New skill directories need their own watch.
					_ = watchTree(watcher, event.Name)
				}
			}
			debounced()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// watchTree registers a directory and all its subdirectories.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return nil //nolint:nilerr // roots appear once skills are added
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
