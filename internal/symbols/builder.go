package symbols

import (
	"fmt"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/source"
)

var spanNone source.Span

// itemPos is a lookup position no let or param is visible from: item
// signatures never see locals.
const itemPos uint32 = 0

// Source is one parsed file.
type Source struct {
	AST  *ast.Builder
	File ast.FileID
}

// ModuleKey identifies a `mod name;` declaration.
type ModuleKey struct {
	File source.FileID
	Item ast.ItemID
}

// Crate is the input of one compilation unit: the root file plus the files
// bound to its out-of-line module declarations.
type Crate struct {
	Name    string
	Root    Source
	Modules map[ModuleKey]Source
}

// Options controls table construction.
type Options struct {
	Reporter diag.Reporter
	Prelude  []PreludeEntry
	Validate bool
}

type declInfo struct {
	ast  *ast.Builder
	item ast.ItemID
}

type blockKey struct {
	file source.FileID
	expr ast.ExprID
}

// Builder fills a Table in two passes: Declare registers the items of a
// unit (pass 1), Resolve binds aliases, supertraits, impls and body
// references once every unit is declared (pass 2).
type Builder struct {
	table    *Table
	opts     Options
	reporter diag.Reporter

	decls      map[SymbolID]declInfo
	blocks     map[blockKey]ScopeID
	fieldTypes map[SymbolID]ast.TypeID
	aliasPaths map[SymbolID]ast.Path
	aliasErrs  map[SymbolID]error
	superSpans map[[2]SymbolID]source.Span

	aliases []SymbolID
	traits  []SymbolID
	impls   []SymbolID
	structs []SymbolID
	statics []SymbolID
	fns     []SymbolID

	selfName source.StringID
	done     bool
}

// NewBuilder wires a builder to table, installing the prelude on first use.
func NewBuilder(table *Table, opts Options) *Builder {
	if !table.Prelude.IsValid() {
		table.Prelude = table.installPrelude(mergePrelude(opts.Prelude))
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Builder{
		table:      table,
		opts:       opts,
		reporter:   reporter,
		decls:      make(map[SymbolID]declInfo),
		blocks:     make(map[blockKey]ScopeID),
		fieldTypes: make(map[SymbolID]ast.TypeID),
		aliasPaths: make(map[SymbolID]ast.Path),
		aliasErrs:  make(map[SymbolID]error),
		superSpans: make(map[[2]SymbolID]source.Span),
		selfName:   table.Strings.Intern("self"),
	}
}

// Table returns the table being built.
func (b *Builder) Table() *Table { return b.table }

// Build runs both passes over crates with a fresh table. The table shares
// the interner of the first crate.
func Build(crates []Crate, opts Options) *Table {
	var strings *source.Interner
	if len(crates) > 0 && crates[0].Root.AST != nil {
		strings = crates[0].Root.AST.Strings
	}
	b := NewBuilder(NewTable(Hints{}, strings), opts)
	for _, c := range crates {
		b.Declare(c)
	}
	return b.Resolve()
}

// declare registers sym in scope. A clash with an item or alias of the same
// scope is a duplicate: it is reported with both spans and the first
// declaration wins.
func (b *Builder) declare(scope ScopeID, sym Symbol) SymbolID {
	t := b.table
	sc := t.Scopes.Get(scope)
	sym.Scope = scope
	if sym.Name != source.NoStringID && sym.Kind != SymbolLet {
		for _, prev := range sc.Names[sym.Name] {
			p := t.Symbols.Get(prev)
			if p.Kind == SymbolLet || (p.Kind == SymbolParam) != (sym.Kind == SymbolParam) {
				continue
			}
			b.reportDuplicate(&sym, p)
			return NoSymbolID
		}
	}
	id := t.Symbols.New(&sym)
	sc.Symbols = append(sc.Symbols, id)
	if sym.Name != source.NoStringID {
		sc.Names[sym.Name] = append(sc.Names[sym.Name], id)
	}
	return id
}

func (b *Builder) newScope(kind ScopeKind, parent ScopeID, owner SymbolID, span source.Span) ScopeID {
	t := b.table
	id := t.Scopes.New(kind, parent, owner, span)
	if p := t.Scopes.Get(parent); p != nil {
		t.Scopes.Get(id).Unit = p.Unit
	}
	if owner.IsValid() {
		t.Symbols.Get(owner).Members = id
	}
	return id
}

func (b *Builder) reportDuplicate(sym, prev *Symbol) {
	name := b.table.Strings.MustLookup(sym.Name)
	msg := fmt.Sprintf("duplicate declaration of '%s'", name)
	builder := diag.ReportError(b.reporter, diag.SemaDuplicateSymbol, sym.Span, msg)
	noteMsg := fmt.Sprintf("previous declaration of '%s' here", name)
	if prev.Flags&SymbolFlagBuiltin != 0 {
		noteMsg = "built-in declaration here"
	}
	if prev.Span != spanNone {
		builder.WithNote(prev.Span, noteMsg)
	}
	builder.Emit()
}

func qualJoin(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}

func visFlags(v ast.Visibility) SymbolFlags {
	if v == ast.VisPublic {
		return SymbolFlagPublic
	}
	return 0
}
