package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rustdex/internal/diagfmt"
	"rustdex/internal/driver"
	"rustdex/internal/project"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.rs|directory>",
	Short: "Parse source files and print their syntax trees",
	Long:  `Parse analyzes a source file or every .rs file under a directory and prints the syntax tree`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|tree|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "tree", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	files, err := project.ListSources(args[0])
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	results := make([]*driver.ParseResult, 0, len(files))
	failed := false
	for _, path := range files {
		res, err := driver.Parse(path, a.cfg.MaxDiagnostics)
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
		res.Bag.Sort()
		a.printBag(cmd, res.Bag, res.FileSet)
		failed = failed || res.Bag.HasErrors()
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := writeASTJSON(out, results); err != nil {
			return err
		}
	} else {
		for idx, r := range results {
			if len(results) > 1 && !a.quiet {
				fmt.Fprintf(out, "== %s ==\n", r.File.FormatPath("auto", r.FileSet.BaseDir()))
			}
			if format == "tree" {
				err = diagfmt.FormatASTTree(out, r.Builder, r.FileID, r.FileSet)
			} else {
				err = diagfmt.FormatASTPretty(out, r.Builder, r.FileID, r.FileSet)
			}
			if err != nil {
				return err
			}
			if len(results) > 1 && !a.quiet && idx < len(results)-1 {
				fmt.Fprintln(out)
			}
		}
	}

	if failed {
		return exitError{code: 1}
	}
	return nil
}

// writeASTJSON prints a single tree as is and several as a path-keyed object.
func writeASTJSON(w io.Writer, results []*driver.ParseResult) error {
	if len(results) == 1 {
		r := results[0]
		return diagfmt.FormatASTJSON(w, r.Builder, r.FileID)
	}
	output := make(map[string]diagfmt.ASTNodeOutput, len(results))
	for _, r := range results {
		node, err := diagfmt.BuildAST(r.Builder, r.FileID)
		if err != nil {
			return err
		}
		output[r.File.Path] = node
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
