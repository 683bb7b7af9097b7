package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	"rustdex/internal/diag"
	"rustdex/internal/diagfmt"
	"rustdex/internal/driver"
	"rustdex/internal/symbols"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] [file.rs|directory...]",
	Short: "Print the symbol table",
	Long: `Symbols resolves the inputs and prints every declared symbol with its
qualified path, kind, location and flags. Without arguments the roots of the
nearest rustdex.toml are used.`,
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().String("format", "table", "output format (table|json|yaml|msgpack)")
	symbolsCmd.Flags().StringSlice("kind", nil, "only print symbols of these kinds (module,struct,trait,...)")
	symbolsCmd.Flags().Bool("cache", false, "reuse the on-disk snapshot when no input changed")
	symbolsCmd.Flags().String("cache-dir", "", "snapshot cache directory")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := diagfmt.ParseListFormat(formatStr)
	if err != nil {
		return err
	}
	kinds, err := cmd.Flags().GetStringSlice("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	if format == diagfmt.ListMsgpack && isTerminalWriter(cmd.OutOrStdout()) {
		return fmt.Errorf("refusing to write msgpack to a terminal; redirect the output")
	}

	snap, res, err := a.snapshot(cmd, args)
	if err != nil {
		return err
	}

	recs := snap.Symbols
	if len(kinds) > 0 {
		recs = slices.DeleteFunc(slices.Clone(recs), func(r symbols.Record) bool {
			return !slices.Contains(kinds, r.Kind)
		})
	}
	if err := diagfmt.FormatSymbols(cmd.OutOrStdout(), recs, format); err != nil {
		return err
	}

	if res != nil {
		return a.finish(cmd.ErrOrStderr(), res)
	}
	if snap.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

// snapshot analyzes through the disk cache when it is enabled. res is nil
// on a cache hit; diagnostics are printed either way.
func (a *app) snapshot(cmd *cobra.Command, args []string) (*driver.Snapshot, *driver.Result, error) {
	paths, m, err := a.inputs(args)
	if err != nil {
		return nil, nil, err
	}
	opts := a.driverOptions(m)

	var cache *driver.DiskCache
	if a.cfg.Cache {
		cache, err = driver.OpenDiskCache(a.cfg.CacheDir)
		if err != nil {
			a.log.Warn("disk cache disabled", "err", err)
			cache = nil
		}
	}
	snap, res, err := driver.AnalyzeCached(cmd.Context(), cache, paths, opts)
	if err != nil && snap == nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}
	if err != nil {
		a.log.Warn("snapshot not cached", "err", err)
	}

	if res != nil {
		a.reportDiagnostics(cmd, res)
	} else {
		a.log.Debug("snapshot cache hit", "dir", cache.Dir(), "files", len(snap.Files))
		printRecords(cmd.ErrOrStderr(), snap.Diagnostics, a.quiet)
	}
	return snap, res, nil
}

// printRecords prints cached diagnostics in the short one-line form; the
// source text is not part of a snapshot.
func printRecords(w io.Writer, recs []diag.Record, quiet bool) {
	for _, r := range recs {
		if quiet && r.Severity != diag.SevError.Label() {
			continue
		}
		internal := ""
		if r.Internal {
			internal = " [internal]"
		}
		fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s%s\n", r.Span.File, r.Span.Line, r.Span.Col, r.Severity, r.Code, r.Message, internal)
	}
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && config.IsTerminal(f)
}
