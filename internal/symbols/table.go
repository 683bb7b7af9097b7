package symbols

import (
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"

	"rustdex/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Unit describes one registered compilation unit.
type Unit struct {
	Name   string
	Root   ScopeID
	Module SymbolID // crate root module symbol
	File   source.FileID
}

// Table aggregates symbol-related arenas. It is mutated only by a Builder;
// once Builder.Resolve returns it is read-only and safe for concurrent use.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Refs    []Ref
	Prelude ScopeID

	units  []Unit
	supers map[SymbolID][]SymbolID // supertrait closure, cycle-safe
	sealed bool
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
		supers:  make(map[SymbolID][]SymbolID),
	}
}

// Units returns the registered units in registration order.
func (t *Table) Units() []Unit { return t.units }

// Unit returns the unit by ID.
func (t *Table) Unit(id UnitID) (Unit, bool) {
	if !id.IsValid() || int(id) > len(t.units) {
		return Unit{}, false
	}
	return t.units[id-1], true
}

// UnitByName finds a unit by its crate name.
func (t *Table) UnitByName(name string) (Unit, bool) {
	for _, u := range t.units {
		if u.Name == name {
			return u, true
		}
	}
	return Unit{}, false
}

// Sealed reports whether pass 2 has completed.
func (t *Table) Sealed() bool { return t.sealed }

// Name returns the text of a symbol name.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	name, _ := t.Strings.Lookup(sym.Name)
	return name
}

// Canonical follows an alias to its target. Non-alias symbols are returned
// unchanged; a dangling alias yields NoSymbolID.
func (t *Table) Canonical(id SymbolID) SymbolID {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return NoSymbolID
	}
	if sym.Kind == SymbolAlias {
		return sym.Target
	}
	return id
}

// SuperClosure returns every trait transitively required by trait, without
// trait itself, in discovery order.
func (t *Table) SuperClosure(trait SymbolID) []SymbolID {
	if cl, ok := t.supers[trait]; ok {
		return cl
	}
	return t.computeClosure(trait)
}

func (t *Table) computeClosure(trait SymbolID) []SymbolID {
	var out []SymbolID
	seen := map[SymbolID]bool{trait: true}
	stack := []SymbolID{trait}
	for len(stack) > 0 {
		cur := stack[0]
		stack = stack[1:]
		sym := t.Symbols.Get(cur)
		if sym == nil {
			continue
		}
		for _, s := range sym.Supers {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			stack = append(stack, s)
		}
	}
	return out
}

// Satisfies reports whether typ implements trait, directly or through an
// impl of one of its subtraits.
func (t *Table) Satisfies(typ, trait SymbolID) bool {
	typ, trait = t.Canonical(typ), t.Canonical(trait)
	sym := t.Symbols.Get(typ)
	if sym == nil {
		return false
	}
	for _, c := range sym.Caps {
		if c == trait || slices.Contains(t.SuperClosure(c), trait) {
			return true
		}
	}
	return false
}

// Implements reports whether typ has a direct impl of trait.
func (t *Table) Implements(typ, trait SymbolID) bool {
	sym := t.Symbols.Get(t.Canonical(typ))
	return sym != nil && slices.Contains(sym.Caps, t.Canonical(trait))
}

// ModuleOf returns the nearest enclosing module or unit scope.
func (t *Table) ModuleOf(scope ScopeID) ScopeID {
	for scope.IsValid() {
		sc := t.Scopes.Get(scope)
		if sc == nil {
			return NoScopeID
		}
		if sc.Kind.IsModule() {
			return scope
		}
		scope = sc.Parent
	}
	return NoScopeID
}

// UnitRoot returns the root scope of the unit containing scope.
func (t *Table) UnitRoot(scope ScopeID) ScopeID {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return NoScopeID
	}
	if u, ok := t.Unit(sc.Unit); ok {
		return u.Root
	}
	return NoScopeID
}

// IsWithin reports whether scope is inner itself or nested inside outer.
func (t *Table) IsWithin(scope, outer ScopeID) bool {
	for scope.IsValid() {
		if scope == outer {
			return true
		}
		sc := t.Scopes.Get(scope)
		if sc == nil {
			return false
		}
		scope = sc.Parent
	}
	return false
}

// QualifiedPaths returns the sorted qualified paths of all named items
// (modules, structs, traits, functions, statics, fields), builtins excluded.
func (t *Table) QualifiedPaths() []string {
	var out []string
	for i := range t.Symbols.Data() {
		sym := &t.Symbols.Data()[i]
		if sym.Flags&SymbolFlagBuiltin != 0 || sym.Qual == "" {
			continue
		}
		switch sym.Kind {
		case SymbolModule, SymbolStruct, SymbolTrait, SymbolFunction, SymbolStatic, SymbolField:
			out = append(out, sym.Qual)
		}
	}
	sort.Strings(out)
	return out
}

// SymbolsByQual returns the IDs of symbols with the given qualified path.
func (t *Table) SymbolsByQual(qual string) []SymbolID {
	var out []SymbolID
	for i, sym := range t.Symbols.Data() {
		if sym.Qual == qual {
			out = append(out, SymbolID(i+1))
		}
	}
	return out
}

// RefsTo returns all references whose target is id.
func (t *Table) RefsTo(id SymbolID) []Ref {
	var out []Ref
	for _, r := range t.Refs {
		if r.Target == id || r.Via == id {
			out = append(out, r)
		}
	}
	return out
}

// RefAt returns the reference covering offset in file. Refs are sorted by
// position once the table is sealed and never overlap.
func (t *Table) RefAt(file source.FileID, offset uint32) (Ref, bool) {
	i := sort.Search(len(t.Refs), func(i int) bool {
		r := t.Refs[i].Span
		return r.File > file || (r.File == file && r.Start > offset)
	})
	if i == 0 {
		return Ref{}, false
	}
	r := t.Refs[i-1]
	if r.Span.File == file && r.Span.Start <= offset && offset < r.Span.End {
		return r, true
	}
	return Ref{}, false
}

func (t *Table) sortRefs() {
	sort.SliceStable(t.Refs, func(i, j int) bool {
		a, b := t.Refs[i].Span, t.Refs[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
	// grouped use items share their prefix segments; keep one ref per span,
	// preferring a resolved one
	out := t.Refs[:0]
	for _, r := range t.Refs {
		if n := len(out); n > 0 && out[n-1].Span == r.Span {
			if !out[n-1].Target.IsValid() && r.Target.IsValid() {
				out[n-1] = r
			}
			continue
		}
		out = append(out, r)
	}
	t.Refs = out
}
