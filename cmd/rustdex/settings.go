package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	"rustdex/internal/diag"
	"rustdex/internal/diagfmt"
	"rustdex/internal/driver"
	"rustdex/internal/observ"
	"rustdex/internal/prof"
	"rustdex/internal/project"
	"rustdex/internal/source"
	"rustdex/internal/trace"
)

// appKey stores the per-invocation app in the command context.
type appKey struct{}

// app is what every subcommand needs besides its own flags.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	quiet   bool
	timings bool
}

// teardown flushes the tracer; main calls it after Execute, also on error.
var teardown = func() {}

// configFlagCommands are the commands whose --format is the config key.
var configFlagCommands = map[string]bool{"diag": true}

func setupCommand(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	var local []string
	if !configFlagCommands[cmd.Name()] {
		local = append(local, "format")
	}
	cfg, err := config.Load(config.Options{File: cfgFile, Flags: cmd.Flags(), LocalFlags: local})
	if err != nil {
		return err
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	level := slog.LevelWarn
	if quiet {
		level = slog.LevelError
	} else if cfg.Level() >= trace.LevelDebug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if cfg.File != "" {
		log.Debug("config loaded", "file", cfg.File)
	}

	tracer, err := setupTracing(cmd, cfg, log)
	if err != nil {
		return err
	}
	profiles, err := setupProfiling(cmd)
	if err != nil {
		_ = tracer.Close()
		return err
	}
	teardown = func() {
		if err := profiles.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}

	a := &app{cfg: cfg, log: log, quiet: quiet, timings: timings}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	ctx = context.WithValue(ctx, appKey{}, a)
	cmd.SetContext(ctx)
	return nil
}

// setupProfiling starts the runtime profilers named by the persistent
// profiling flags. The session is nil when none is set.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	var opts prof.Options
	for name, dst := range map[string]*string{
		"cpu-profile":   &opts.CPU,
		"mem-profile":   &opts.Mem,
		"runtime-trace": &opts.Trace,
	} {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}

func appFrom(cmd *cobra.Command) *app {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a
		}
	}
	// команда вызвана в обход PersistentPreRunE (тесты)
	return &app{cfg: config.Default(), log: slog.New(slog.DiscardHandler)}
}

var errNoInputs = errors.New("no inputs: pass files or directories, or run inside a crate with " + project.ManifestName)

// inputs returns the paths to analyze. Without arguments the crate manifest
// found above the working directory supplies the roots.
func (a *app) inputs(args []string) ([]string, *project.Manifest, error) {
	if len(args) > 0 {
		return args, nil, nil
	}
	path, ok, err := project.FindManifest(".")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errNoInputs
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("manifest", "path", m.Path, "crate", m.Name, "roots", len(m.Roots))
	return nil, m, nil
}

func (a *app) driverOptions(m *project.Manifest) driver.Options {
	return driver.Options{
		MaxDiagnostics: a.cfg.MaxDiagnostics,
		Jobs:           a.cfg.Jobs,
		Prelude:        a.cfg.Prelude.Entries(),
		Manifest:       m,
		Timer:          observ.NewTimer(),
	}
}

// analyze runs the driver over args (or the manifest).
func (a *app) analyze(ctx context.Context, args []string) (*driver.Result, error) {
	paths, m, err := a.inputs(args)
	if err != nil {
		return nil, err
	}
	res, err := driver.Analyze(ctx, paths, a.driverOptions(m))
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return res, nil
}

func (a *app) color(f *os.File) bool {
	return a.cfg.Color.Enabled(f)
}

func (a *app) prettyOpts(f *os.File) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{Color: a.color(f), Context: 2}
}

// reportDiagnostics prints the run's diagnostics to stderr.
func (a *app) reportDiagnostics(cmd *cobra.Command, res *driver.Result) {
	a.printBag(cmd, res.Bag, res.FileSet)
}

// printBag prints bag to stderr unless it is empty or --quiet hides
// everything below errors.
func (a *app) printBag(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) {
	if bag.Len() == 0 {
		return
	}
	if a.quiet && !bag.HasErrors() {
		return
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, a.prettyOpts(os.Stderr))
}

// finish prints timings when asked and turns errors in bag into exit 1.
func (a *app) finish(w io.Writer, res *driver.Result) error {
	if a.timings {
		printTimings(w, res.Timer)
	}
	if res.Bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

// hasErrors is finish for commands that only hold a bag.
func hasErrors(bag *diag.Bag) error {
	if bag != nil && bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}
