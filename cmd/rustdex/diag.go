package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rustdex/internal/diag"
	"rustdex/internal/diagfmt"
	"rustdex/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.rs|directory...]",
	Short: "Run diagnostics on source files",
	Long: `Diag lexes, parses and resolves the inputs and reports lexical,
syntax, semantic and project diagnostics. It exits with status 1 when any
error is reported.`,
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "preview fix edits")
	diagCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	diagCmd.Flags().Bool("validate", false, "check symbol table invariants after resolution")
}

// runDiagnose executes the "diag" command. The format comes from the
// effective config, so rustdex.yaml and RUSTDEX_FORMAT apply too.
func runDiagnose(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathModeStr)
	if err != nil {
		return err
	}
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}

	paths, m, err := a.inputs(args)
	if err != nil {
		return err
	}
	opts := a.driverOptions(m)
	opts.Validate = validate
	res, err := driver.Analyze(cmd.Context(), paths, opts)
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	bag := res.Bag
	switch {
	case noWarnings:
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	case warningsAsErrors:
		promoteWarnings(bag)
	}
	if a.timings {
		driver.AppendTimings(bag, "diag", "", res.Timer)
	}

	out := cmd.OutOrStdout()
	showFixes := suggest || preview
	switch a.cfg.Format {
	case "pretty":
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       a.color(os.Stdout),
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		})
		if !a.quiet && bag.Len() == 0 {
			fmt.Fprintf(out, "no diagnostics (%d files)\n", len(res.Files))
		}
	case "short":
		diagfmt.Short(out, bag, res.FileSet, pathMode)
	case "json":
		err = diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", a.cfg.Format)
	}

	return hasErrors(bag)
}

// promoteWarnings turns every warning in bag into an error.
func promoteWarnings(bag *diag.Bag) {
	items := bag.Items()
	for i := range items {
		if items[i].Severity == diag.SevWarning {
			items[i].Severity = diag.SevError
		}
	}
}
