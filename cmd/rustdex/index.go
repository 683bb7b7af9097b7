package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"rustdex/internal/diagfmt"
	"rustdex/internal/driver"
	"rustdex/internal/index"
	"rustdex/internal/pipeline"
	"rustdex/internal/project"
	"rustdex/internal/ui"
	"rustdex/internal/version"
)

var indexCmd = &cobra.Command{
	Use:   "index [flags] [file.rs|directory...]",
	Short: "Export DXR index rows to CSV or SQLite",
	Long: `Index resolves the inputs and exports one row per declaration and per
reference: kind, name, qualname, file position, extent and refid. Rows go to
CSV (--csv, "-" for stdout) and/or a SQLite store (--db).`,
	RunE: runIndex,
}

var indexRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs stored in --db",
	Args:  cobra.NoArgs,
	RunE:  runIndexRuns,
}

var indexShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print the rows of a stored run (default: latest) as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexShow,
}

var indexRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexRm,
}

func init() {
	indexCmd.Flags().String("csv", "", "write rows as CSV to this file (- for stdout)")
	indexCmd.Flags().Bool("no-refs", false, "skip reference rows")
	indexCmd.Flags().String("base", "", "directory file names are made relative to (default: cwd)")
	indexCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	indexCmd.PersistentFlags().String("db", "", "SQLite index store")

	indexShowCmd.Flags().String("qualname", "", "only rows with this qualname")

	indexCmd.AddCommand(indexRunsCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.AddCommand(indexRmCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	csvPath, err := cmd.Flags().GetString("csv")
	if err != nil {
		return fmt.Errorf("failed to get csv flag: %w", err)
	}
	noRefs, err := cmd.Flags().GetBool("no-refs")
	if err != nil {
		return fmt.Errorf("failed to get no-refs flag: %w", err)
	}
	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return fmt.Errorf("failed to get base flag: %w", err)
	}
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return err
		}
	}
	if csvPath == "" && a.cfg.DB == "" {
		csvPath = "-"
	}

	paths, m, err := a.inputs(args)
	if err != nil {
		return err
	}
	opts := a.driverOptions(m)

	var res *driver.Result
	if a.cfg.UI.Enabled(os.Stdout) && csvPath != "-" {
		files, err := progressFiles(paths, m)
		if err != nil {
			return err
		}
		res, err = ui.Run(cmd.Context(), cmd.OutOrStdout(), "rustdex index", files,
			func(ctx context.Context, sink pipeline.ProgressSink) (*driver.Result, error) {
				opts.Progress = sink
				return driver.Analyze(ctx, paths, opts)
			})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	} else {
		res, err = driver.Analyze(cmd.Context(), paths, opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}
	a.reportDiagnostics(cmd, res)

	ix := index.Build(res, index.Options{BaseDir: base, SkipRefs: noRefs})

	if csvPath != "" {
		if err := writeIndexCSV(cmd.OutOrStdout(), csvPath, ix); err != nil {
			return err
		}
	}
	if a.cfg.DB != "" {
		store, err := index.Open(cmd.Context(), a.cfg.DB, a.log)
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := store.Save(cmd.Context(), ix, index.RunMeta{Tool: "rustdex " + version.Get().Version, BaseDir: base})
		if err != nil {
			return err
		}
		if !a.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "stored run %s: %d symbols, %d refs, %d diagnostics\n", run.ID, run.Symbols, run.Refs, run.Diagnostics)
		}
	}
	return a.finish(cmd.ErrOrStderr(), res)
}

// progressFiles lists the files the progress view starts with; module
// files found through `mod` are added as their events arrive.
func progressFiles(paths []string, m *project.Manifest) ([]string, error) {
	if m != nil {
		return m.Roots, nil
	}
	var files []string
	for _, p := range paths {
		list, err := project.ListSources(p)
		if err != nil {
			return nil, err
		}
		for _, f := range list {
			files = append(files, filepath.Clean(f))
		}
	}
	return files, nil
}

func writeIndexCSV(stdout io.Writer, path string, ix *index.Index) (err error) {
	if path == "-" {
		return index.WriteCSV(stdout, ix.Records())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return index.WriteCSV(f, ix.Records())
}

func openStore(cmd *cobra.Command) (*index.Store, error) {
	a := appFrom(cmd)
	if a.cfg.DB == "" {
		return nil, fmt.Errorf("no store: pass --db or set db in rustdex.yaml")
	}
	return index.Open(cmd.Context(), a.cfg.DB, a.log)
}

func runIndexRuns(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(diagfmt.TableStyle())
	t.AppendHeader(table.Row{"Run", "Started", "Status", "Files", "Symbols", "Refs", "Diagnostics", "Tool"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Files, r.Symbols, r.Refs, r.Diagnostics, r.Tool})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d run(s)", len(runs))})
	t.Render()
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	qualname, err := cmd.Flags().GetString("qualname")
	if err != nil {
		return fmt.Errorf("failed to get qualname flag: %w", err)
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var run *index.Run
	if len(args) == 1 {
		run, err = store.Run(ctx, args[0])
	} else {
		run, err = store.Latest(ctx)
	}
	if err != nil {
		return err
	}

	if qualname != "" {
		rows, err := store.FindQualname(ctx, run.ID, qualname)
		if err != nil {
			return err
		}
		ix := &index.Index{Rows: rows}
		return index.WriteCSV(cmd.OutOrStdout(), ix.Records())
	}
	ix, err := store.Load(ctx, run.ID)
	if err != nil {
		return err
	}
	return index.WriteCSV(cmd.OutOrStdout(), ix.Records())
}

func runIndexRm(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.DeleteRun(cmd.Context(), args[0])
}
