package parser

import (
	"fmt"
	"strings"
	"testing"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

type parsed struct {
	fs     *source.FileSet
	file   *source.File
	arenas *ast.Builder
	bag    *diag.Bag
	res    Result
}

func parseSource(t *testing.T, input string) parsed {
	t.Helper()
	return parseSourceWithOptions(t, input, Options{MaxErrors: 100})
}

func parseSourceWithOptions(t *testing.T, input string, opts Options) parsed {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.rs", []byte(input))
	file := fs.Get(fileID)

	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	arenas := ast.NewBuilder(ast.Hints{}, nil)

	opts.Reporter = reporter
	res := ParseFile(file, lx, arenas, opts)
	return parsed{fs: fs, file: file, arenas: arenas, bag: bag, res: res}
}

// top returns the top-level items of the parsed file.
func (p parsed) top() []ast.ItemID {
	return p.arenas.Files.Get(p.res.File).Items
}

func (p parsed) name(id ast.ItemID) string {
	return p.arenas.Name(p.arenas.Items.Get(id).Name)
}

func (p parsed) text(sp source.Span) string {
	return string(p.file.Content[sp.Start:sp.End])
}

func (p parsed) mustClean(t *testing.T) {
	t.Helper()
	if p.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(p.bag))
	}
}

func (p parsed) codes() []diag.Code {
	out := make([]diag.Code, 0, p.bag.Len())
	for _, d := range p.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}
