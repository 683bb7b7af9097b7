package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rustdex/internal/index"
)

var compareCmd = &cobra.Command{
	Use:   "compare [flags] <expected.csv> <found.csv | file.rs|directory...>",
	Short: "Compare index rows against an expected CSV",
	Long: `Compare matches rows by kind and extent_start. Every expected column must
be present in the found row with the same value. The found side is either a
CSV file or sources that are indexed on the fly.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Bool("allow-extra-rows", false, "accept found rows that are not expected")
	compareCmd.Flags().Bool("allow-extra-cols", false, "accept found columns that are not expected")
	compareCmd.Flags().String("base", "", "directory file names are made relative to when indexing (default: cwd)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	allowRows, err := cmd.Flags().GetBool("allow-extra-rows")
	if err != nil {
		return fmt.Errorf("failed to get allow-extra-rows flag: %w", err)
	}
	allowCols, err := cmd.Flags().GetBool("allow-extra-cols")
	if err != nil {
		return fmt.Errorf("failed to get allow-extra-cols flag: %w", err)
	}
	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return fmt.Errorf("failed to get base flag: %w", err)
	}

	expected, err := index.ReadCSVFile(args[0])
	if err != nil {
		return err
	}

	var found []index.Record
	if len(args) == 2 && strings.HasSuffix(args[1], ".csv") {
		if found, err = index.ReadCSVFile(args[1]); err != nil {
			return err
		}
	} else {
		if base == "" {
			if base, err = os.Getwd(); err != nil {
				return err
			}
		}
		res, err := a.analyze(cmd.Context(), args[1:])
		if err != nil {
			return err
		}
		a.reportDiagnostics(cmd, res)
		found = index.Build(res, index.Options{BaseDir: base}).Records()
	}

	rep := index.Compare(expected, found, index.CompareOptions{AllowExtraRows: allowRows, AllowExtraCols: allowCols})
	out := cmd.OutOrStdout()
	for _, m := range rep.Mismatches {
		fmt.Fprintln(out, m.String())
	}
	if !a.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d matched, %d mismatched, %d skipped\n", rep.Matched, len(rep.Mismatches), rep.Skipped)
	}
	if !rep.OK() {
		return exitError{code: 1}
	}
	return nil
}
