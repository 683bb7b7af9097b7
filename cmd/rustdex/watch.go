package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"rustdex/internal/project"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [file.rs|directory...]",
	Short: "Re-run diagnostics whenever a source file changes",
	Long: `Watch analyzes the inputs, then watches their directories and runs a
fresh full analysis after every change to a .rs file or rustdex.toml. It stops
on Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 150*time.Millisecond, "wait this long after the last change before rebuilding")
	watchCmd.Flags().Bool("clear", false, "clear the screen before each rebuild")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	clearScreen, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return fmt.Errorf("failed to get clear flag: %w", err)
	}

	dirs, err := watchDirs(args)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	ctx := cmd.Context()
	a.rebuild(cmd, args, clearScreen)
	if !a.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %d director%s, Ctrl-C to stop\n", len(dirs), plural(len(dirs), "y", "ies"))
	}
	return a.watchLoop(ctx, cmd, watcher, debounce, func() { a.rebuild(cmd, args, clearScreen) })
}

// watchLoop coalesces bursts of events into one rebuild per quiet period.
func (a *app) watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, debounce time.Duration, rebuild func()) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						a.log.Warn("watch: add directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if !relevantChange(event.Name) {
				continue
			}
			pending = event.Name
			timer.Reset(debounce)
		case <-timer.C:
			a.log.Debug("watch: change", "file", pending)
			if !a.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "change detected: %s\n", filepath.Base(pending))
			}
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "err", err)
		}
	}
}

// rebuild analyzes from scratch and prints the diagnostics and a summary.
// Errors are reported, never returned: the watch keeps going.
func (a *app) rebuild(cmd *cobra.Command, args []string, clearScreen bool) {
	if clearScreen {
		fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
	}
	start := time.Now()
	res, err := a.analyze(cmd.Context(), args)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "rustdex: %v\n", err)
		return
	}
	a.reportDiagnostics(cmd, res)
	if a.timings {
		printTimings(cmd.ErrOrStderr(), res.Timer)
	}
	status := "ok"
	if res.Bag.HasErrors() {
		status = "errors"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %d files, %d symbols, %d refs, %d diagnostics (%s)\n",
		time.Now().Format(time.TimeOnly), status,
		len(res.Files), res.Table.Symbols.Len(), len(res.Table.Refs), res.Bag.Len(),
		time.Since(start).Round(time.Millisecond))
}

// watchDirs returns the directories to watch: the manifest directory, or
// each directory argument and the parent of each file argument.
func watchDirs(args []string) ([]string, error) {
	if len(args) == 0 {
		path, ok, err := project.FindManifest(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNoInputs
		}
		return []string{filepath.Dir(path)}, nil
	}
	seen := make(map[string]bool, len(args))
	var dirs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		dir := filepath.Clean(arg)
		if !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// addTree adds dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != dir && (name == "target" || (len(name) > 0 && name[0] == '.')) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func relevantChange(name string) bool {
	return filepath.Ext(name) == project.SourceExt || filepath.Base(name) == project.ManifestName
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
