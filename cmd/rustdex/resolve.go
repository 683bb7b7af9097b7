package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rustdex/internal/diagfmt"
	"rustdex/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] [file.rs|directory...]",
	Short: "Print resolved references or answer a resolution query",
	Long: `Resolve lists every reference with the symbol it resolves to.

With --path it resolves one path instead, from the unit root or, with --at,
as if written at file:line:col. With only --at it prints what the token at
that position denotes. --refs-to lists the uses of a qualified path.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "table", "reference list format (table|json|yaml|msgpack)")
	resolveCmd.Flags().String("path", "", "path to resolve, e.g. a::b::C")
	resolveCmd.Flags().String("at", "", "position file:line:col")
	resolveCmd.Flags().String("refs-to", "", "list references to this qualified path")
	resolveCmd.Flags().String("unit", "", "compilation unit for root-relative queries")
}

func runResolve(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := diagfmt.ParseListFormat(formatStr)
	if err != nil {
		return err
	}
	path, err := cmd.Flags().GetString("path")
	if err != nil {
		return fmt.Errorf("failed to get path flag: %w", err)
	}
	at, err := cmd.Flags().GetString("at")
	if err != nil {
		return fmt.Errorf("failed to get at flag: %w", err)
	}
	refsTo, err := cmd.Flags().GetString("refs-to")
	if err != nil {
		return fmt.Errorf("failed to get refs-to flag: %w", err)
	}
	unit, err := cmd.Flags().GetString("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}

	res, err := a.analyze(cmd.Context(), args)
	if err != nil {
		return err
	}
	a.reportDiagnostics(cmd, res)

	eng, err := resolve.FromResult(res)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case path != "" || at != "":
		q, err := newQuerier(eng, unit)
		if err != nil {
			return err
		}
		var def resolve.Definition
		if path != "" {
			def, err = q.resolvePath(path, at)
		} else {
			def, err = q.definitionAt(at)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, q.describe(def))
	case refsTo != "":
		q, err := newQuerier(eng, unit)
		if err != nil {
			return err
		}
		refs, err := q.refsTo(refsTo)
		if err != nil {
			return err
		}
		recs := diagfmt.RefRecordsOf(res.Table, refs, res.FileSet)
		if err := diagfmt.FormatRefs(out, recs, format); err != nil {
			return err
		}
	default:
		if err := diagfmt.FormatRefs(out, diagfmt.RefRecords(res.Table, res.FileSet), format); err != nil {
			return err
		}
	}
	return a.finish(cmd.ErrOrStderr(), res)
}
