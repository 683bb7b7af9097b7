package symbols

import (
	"fmt"
	"slices"
	"strings"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/parser"
	"rustdex/internal/source"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

type built struct {
	fs    *source.FileSet
	files map[string]*source.File
	roots map[string]Source
	table *Table
	bag   *diag.Bag
}

// parseInto lexes and parses one virtual file into arenas.
func parseInto(fs *source.FileSet, arenas *ast.Builder, reporter diag.Reporter, name, input string) (*source.File, Source) {
	id := fs.AddVirtual(name, []byte(input))
	file := fs.Get(id)
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	res := parser.ParseFile(file, lx, arenas, parser.Options{MaxErrors: 100, Reporter: reporter})
	return file, Source{AST: arenas, File: res.File}
}

func buildSource(tb fataler, input string) built {
	tb.Helper()
	return buildCrates(tb, map[string]string{"main.rs": input}, nil, Options{Validate: true})
}

// buildCrates parses every file, binds `mod name;` declarations of a root to
// the file named in mods (declaring file -> module name -> file) and builds
// one crate per remaining root.
func buildCrates(tb fataler, files map[string]string, mods map[string]map[string]string, opts Options) built {
	tb.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(200)
	reporter := diag.BagReporter{Bag: bag}
	strs := source.NewInterner()

	out := built{fs: fs, files: map[string]*source.File{}, roots: map[string]Source{}, bag: bag}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		arenas := ast.NewBuilder(ast.Hints{}, strs)
		file, src := parseInto(fs, arenas, reporter, name, files[name])
		out.files[name] = file
		out.roots[name] = src
	}
	if bag.HasErrors() {
		tb.Fatalf("parse errors: %s", summary(bag))
	}

	claimed := map[string]bool{}
	crateMods := map[string]map[ModuleKey]Source{}
	for decl, byName := range mods {
		src := out.roots[decl]
		for modName, target := range byName {
			var item ast.ItemID
			for _, id := range src.AST.Files.Get(src.File).Items {
				it := src.AST.Items.Get(id)
				if it.Kind == ast.ItemModule && src.AST.Name(it.Name) == modName {
					item = id
				}
			}
			if !item.IsValid() {
				tb.Fatalf("no `mod %s;` in %s", modName, decl)
			}
			if crateMods[decl] == nil {
				crateMods[decl] = map[ModuleKey]Source{}
			}
			crateMods[decl][ModuleKey{File: out.files[decl].ID, Item: item}] = out.roots[target]
			claimed[target] = true
		}
	}

	opts.Reporter = reporter
	var crates []Crate
	for _, name := range names {
		if claimed[name] {
			continue
		}
		crates = append(crates, Crate{
			Name:    strings.TrimSuffix(name, ".rs"),
			Root:    out.roots[name],
			Modules: crateMods[name],
		})
	}
	out.table = Build(crates, opts)
	return out
}

func summary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(lines, "; ")
}

func (b built) main() *source.File { return b.files["main.rs"] }

// offset returns the position of the n-th (0-based) occurrence of needle
// plus shift.
func (b built) offset(tb fataler, needle string, n, shift int) uint32 {
	tb.Helper()
	content := string(b.main().Content)
	from := 0
	for i := 0; ; i++ {
		idx := strings.Index(content[from:], needle)
		if idx < 0 {
			tb.Fatalf("occurrence %d of %q not found", n, needle)
		}
		if i == n {
			return uint32(from + idx + shift) // #nosec G115 -- test input
		}
		from += idx + len(needle)
	}
}

// scopeAt returns the innermost scope of the main file enclosing off.
func (b built) scopeAt(off uint32) ScopeID {
	file := b.main().ID
	best := NoScopeID
	var bestLen uint32
	for i, sc := range b.table.Scopes.Data() {
		if sc.Span.File != file || !sc.Span.Contains(off) {
			continue
		}
		if !best.IsValid() || sc.Span.Len() <= bestLen {
			best, bestLen = ScopeID(i+1), sc.Span.Len()
		}
	}
	return best
}

func (b built) root() ScopeID {
	u, _ := b.table.UnitByName("main")
	return u.Root
}

func (b built) mustResolve(tb fataler, path string, scope ScopeID, pos uint32) Resolution {
	tb.Helper()
	res, err := b.table.LookupString(path, scope, pos)
	if err != nil {
		tb.Fatalf("resolve %q: %v", path, err)
	}
	return res
}

func (b built) count(code diag.Code) int {
	n := 0
	for _, d := range b.bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func (b built) only(tb fataler, code diag.Code) diag.Diagnostic {
	tb.Helper()
	var found []diag.Diagnostic
	for _, d := range b.bag.Items() {
		if d.Code == code {
			found = append(found, d)
		}
	}
	if len(found) != 1 {
		tb.Fatalf("want exactly one %s, got %d: %s", code.ID(), len(found), summary(b.bag))
	}
	return found[0]
}

func (b built) text(sp source.Span) string {
	return string(b.main().Content[sp.Start:sp.End])
}

func (b built) mustClean(tb fataler) {
	tb.Helper()
	if b.bag.Len() != 0 {
		tb.Fatalf("unexpected diagnostics: %s", summary(b.bag))
	}
}
