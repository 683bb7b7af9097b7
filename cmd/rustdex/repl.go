package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"rustdex/internal/diagfmt"
	"rustdex/internal/resolve"
	"rustdex/internal/symbols"
)

var replCmd = &cobra.Command{
	Use:   "repl [flags] [file.rs|directory...]",
	Short: "Query the resolved symbol table interactively",
	Long: `Repl analyzes the inputs once and then answers resolution queries:
resolve paths, find what a position denotes, list references and symbols.
Type help for the command list.`,
	RunE: runREPL,
}

func init() {
	replCmd.Flags().String("unit", "", "compilation unit bare paths resolve from")
	replCmd.Flags().String("history", "", "history file (default: in the user cache directory)")
}

// replCommands is the command list, also used for completion.
var replCommands = []string{"resolve", "def", "refs", "symbols", "units", "unit", "help", "quit"}

func runREPL(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	unit, err := cmd.Flags().GetString("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	history, err := cmd.Flags().GetString("history")
	if err != nil {
		return fmt.Errorf("failed to get history flag: %w", err)
	}
	if history == "" {
		history = defaultHistoryFile()
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
	q, err := newQuerier(eng, unit)
	if err != nil {
		return err
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(replCommands))
	for _, c := range replCommands {
		items = append(items, readline.PcItem(c))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt(q),
		HistoryFile:     history,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	if !a.quiet {
		fmt.Fprintf(out, "rustdex repl: %d files, %d units. Type help for commands, quit to exit\n",
			len(res.Files), len(eng.Table().Units()))
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := q.exec(out, line); done {
			break
		}
		rl.SetPrompt(replPrompt(q))
	}
	return nil
}

// exec runs one REPL line; it reports true when the session should end.
// Query errors are printed, not returned.
func (q *querier) exec(out io.Writer, line string) bool {
	fields := strings.Fields(line)
	command, rest := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch command {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		printREPLHelp(out)
	case "resolve", "r":
		if len(rest) == 0 || len(rest) > 2 {
			fmt.Fprintln(out, "usage: resolve <path> [file:line:col]")
			return false
		}
		at := ""
		if len(rest) == 2 {
			at = rest[1]
		}
		var def resolve.Definition
		if def, err = q.resolvePath(rest[0], at); err == nil {
			fmt.Fprintln(out, q.describe(def))
		}
	case "def", "d":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: def <file:line:col>")
			return false
		}
		var def resolve.Definition
		if def, err = q.definitionAt(rest[0]); err == nil {
			fmt.Fprintln(out, q.describe(def))
		}
	case "refs":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: refs <qualified::path>")
			return false
		}
		var refs []symbols.Ref
		if refs, err = q.refsTo(rest[0]); err == nil {
			recs := diagfmt.RefRecordsOf(q.eng.Table(), refs, q.eng.FileSet())
			err = diagfmt.FormatRefs(out, recs, diagfmt.ListTable)
		}
	case "symbols", "syms":
		recs := q.eng.Table().Export(q.eng.FileSet())
		if len(rest) > 0 {
			recs = slices.DeleteFunc(recs, func(r symbols.Record) bool {
				return !slices.Contains(rest, r.Kind)
			})
		}
		err = diagfmt.FormatSymbols(out, recs, diagfmt.ListTable)
	case "units":
		for _, u := range q.eng.Table().Units() {
			mark := " "
			if u.Name == q.unit.Name {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s\n", mark, u.Name)
		}
	case "unit":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: unit <name>")
			return false
		}
		err = q.useUnit(rest[0])
	default:
		fmt.Fprintf(out, "unknown command: %s (type help for commands)\n", command)
	}
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	return false
}

func replPrompt(q *querier) string {
	return q.unit.Name + "> "
}

func printREPLHelp(w io.Writer) {
	help := `Commands:
  resolve <path> [file:line:col]  resolve a path from the unit root or at a position
  def <file:line:col>             show what the name at a position denotes
  refs <qualified::path>          list references to a symbol
  symbols [kind...]               list symbols, optionally only some kinds
  units                           list compilation units
  unit <name>                     switch the unit bare paths resolve from
  help                            show this help
  quit                            leave the REPL`
	fmt.Fprintln(w, help)
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "rustdex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
