package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rustdex/internal/diag"
	"rustdex/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, gutter, caret, add, del *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		add:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret, p.add, p.del} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i := range bag.Items() {
		prettyOne(w, &bag.Items()[i], fs, opts, pal)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", n)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	loc := formatLocation(d.Primary, fs, opts.PathMode)
	sev := pal.severity(d.Severity)
	tag := ""
	if d.Code.IsInternal() {
		tag = " " + pal.err.Sprint("[internal]")
	}
	fmt.Fprintf(w, "%s: %s %s: %s%s\n", loc, sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message, tag)

	writeSnippet(w, d.Primary, fs, opts, pal)

	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), formatLocation(n.Span, fs, opts.PathMode), n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(w, "  fix #%d: %s\n", i+1, fix.Title)
			for _, edit := range fix.Edits {
				fmt.Fprintf(w, "    edit %s apply=%q\n", formatRange(edit.Span, fs, opts.PathMode), edit.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, edit)
				if err != nil {
					fmt.Fprintf(w, "    preview unavailable: %v\n", err)
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      %s\n", pal.del.Sprint("- "+line))
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      %s\n", pal.add.Sprint("+ "+line))
				}
			}
		}
	}
}

// writeSnippet prints the primary line with opts.Context lines around it
// and underlines the span on its first line.
func writeSnippet(w io.Writer, span source.Span, fs *source.FileSet, opts PrettyOpts, pal palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	lines := uint32(len(f.LineIdx)) + 1 // #nosec G115 -- line count fits the offsets
	last = min(last, lines)

	gutterWidth := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", gutterWidth)

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(w, " %s %s %s\n", pal.gutter.Sprintf("%*d", gutterWidth, ln), pal.gutter.Sprint("|"), clip(expandTabs(text), opts.Width))
		if ln != start.Line {
			continue
		}
		// подчёркивание только в пределах первой строки спана
		lineEnd := uint32(len(text)) + 1 // #nosec G115
		endCol := lineEnd
		if end.Line == start.Line {
			endCol = end.Col
		}
		startCol := min(start.Col, lineEnd)
		pad := displayWidth(text[:startCol-1])
		width := max(displayWidth(text[startCol-1:min(endCol, lineEnd)-1]), 1)
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, " %s %s %s%s\n", blank, pal.gutter.Sprint("|"), strings.Repeat(" ", pad), pal.caret.Sprint(marker))
	}
}

// Short prints one line per diagnostic: <path>:<line>:<col>: <sev>[<CODE>]: <msg>.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		internal := ""
		if d.Code.IsInternal() {
			internal = " [internal]"
		}
		fmt.Fprintf(w, "%s: %s[%s]: %s%s\n", formatLocation(d.Primary, fs, mode), d.Severity.Label(), d.Code.ID(), d.Message, internal)
	}
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

func formatLocation(span source.Span, fs *source.FileSet, mode PathMode) string {
	if fs == nil {
		return "<unknown>"
	}
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

func formatRange(span source.Span, fs *source.FileSet, mode PathMode) string {
	if fs == nil || fs.Get(span.File) == nil {
		return span.String()
	}
	_, end := fs.Resolve(span)
	return fmt.Sprintf("%s-%d:%d", formatLocation(span, fs, mode), end.Line, end.Col)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += tabWidth
			continue
		}
		n += runewidth.RuneWidth(r)
	}
	return n
}

func clip(s string, width uint8) string {
	if width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
