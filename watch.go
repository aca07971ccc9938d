package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run checks whenever files under the project root change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), resolveRoot(), nil)
	},
}

const watchDebounce = 300 * time.Millisecond

// runWatch blocks until stop closes (nil stop means forever),
// re-running the check pipeline after each debounced change burst.
// Check failures are reported, not fatal; the watcher keeps going.
func runWatch(ctx context.Context, root string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	outputDir := cfg.OutputDir(root)
	if err := addWatchRecursive(watcher, root, outputDir); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	trigger := func() {
		_, code, err := executeCheck(ctx, root, flagOnly, flagFormat, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return
		}
		logger.Info("check complete", "exitCode", code)
	}
	trigger()

	var timer *time.Timer
	for {
		select {
		case <-stop:
			return nil
		case ev := <-watcher.Events:
			if strings.HasPrefix(ev.Name, outputDir+string(filepath.Separator)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, trigger)
		case err := <-watcher.Errors:
			fmt.Fprintf(os.Stderr, "ERROR: watch error: %v\n", err)
		}
	}
}

func addWatchRecursive(w *fsnotify.Watcher, root, outputDir string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == outputDir {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
