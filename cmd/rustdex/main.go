package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"rustdex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rustdex",
	Short: "Symbol-resolution-aware parser and indexer for Rust-like sources",
	Long: `rustdex lexes, parses and resolves a small Rust-like language:
modules, structs, traits with supertraits, impls and use-aliases.
It prints tokens, syntax trees, symbol tables and diagnostics, and exports
DXR-style index rows to CSV or SQLite.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

// exitError carries a process exit code without a message; the command has
// already reported what went wrong.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// main registers subcommands and persistent flags, then runs the root command.
func main() {
	rootCmd.Version = version.Get().Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	pf.Int("jobs", 0, "max parallel workers (0=auto)")
	pf.String("config", "", "path to rustdex.yaml (default: searched upward)")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	stop()
	if err == nil {
		return
	}
	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "rustdex: %v\n", err)
	os.Exit(2)
}
