// Package resolve answers position based queries over a sealed symbol
// table: which scope encloses an offset, what a path or a reference at an
// offset denotes, and where a symbol is used.
//
// An Engine never mutates the table; all methods are safe for concurrent use.
package resolve

import (
	"errors"
	"fmt"
	"slices"

	"rustdex/internal/diag"
	"rustdex/internal/driver"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

var (
	// ErrNoScope: the offset lies outside every scope of the file.
	ErrNoScope = errors.New("no scope at position")
	// ErrNoReference: nothing is referenced or declared at the offset.
	ErrNoReference = errors.New("no reference at position")
	// ErrNotSealed: queries need a table after pass 2.
	ErrNotSealed = errors.New("symbol table is not resolved")
)

// Definition describes the symbol a query landed on.
type Definition struct {
	Symbol   symbols.SymbolID
	Kind     symbols.SymbolKind
	Name     string
	Qual     string
	Span     source.Span
	Location diag.RecordSpan
	// Via is the alias the path went through, if any.
	Via symbols.SymbolID
}

// Engine indexes scopes and declarations per file.
type Engine struct {
	table *symbols.Table
	fs    *source.FileSet

	scopes map[source.FileID][]symbols.ScopeID  // по Start, внешние раньше вложенных
	decls  map[source.FileID][]symbols.SymbolID // по Span.Start
}

// New builds an engine over a sealed table.
func New(table *symbols.Table, fs *source.FileSet) (*Engine, error) {
	if table == nil || !table.Sealed() {
		return nil, ErrNotSealed
	}
	e := &Engine{
		table:  table,
		fs:     fs,
		scopes: map[source.FileID][]symbols.ScopeID{},
		decls:  map[source.FileID][]symbols.SymbolID{},
	}
	for i, sc := range table.Scopes.Data() {
		if sc.Kind == symbols.ScopePrelude {
			continue
		}
		e.scopes[sc.Span.File] = append(e.scopes[sc.Span.File], symbols.ScopeID(i+1)) // #nosec G115 -- arena ids are uint32
	}
	for file, ids := range e.scopes {
		slices.SortStableFunc(ids, func(a, b symbols.ScopeID) int {
			sa, sb := table.Scopes.Get(a).Span, table.Scopes.Get(b).Span
			if sa.Start != sb.Start {
				return int(sa.Start) - int(sb.Start)
			}
			return int(sb.End) - int(sa.End)
		})
		e.scopes[file] = ids
	}
	for i, sym := range table.Symbols.Data() {
		if sym.Flags&symbols.SymbolFlagBuiltin != 0 || sym.Span.Empty() {
			continue
		}
		e.decls[sym.Span.File] = append(e.decls[sym.Span.File], symbols.SymbolID(i+1)) // #nosec G115 -- arena ids are uint32
	}
	for file, ids := range e.decls {
		slices.SortStableFunc(ids, func(a, b symbols.SymbolID) int {
			return int(table.Symbols.Get(a).Span.Start) - int(table.Symbols.Get(b).Span.Start)
		})
		e.decls[file] = ids
	}
	return e, nil
}

// FromResult is New over a driver run.
func FromResult(res *driver.Result) (*Engine, error) {
	if res == nil {
		return nil, ErrNotSealed
	}
	return New(res.Table, res.FileSet)
}

// Table returns the underlying table.
func (e *Engine) Table() *symbols.Table { return e.table }

// FileSet returns the files the table was built from.
func (e *Engine) FileSet() *source.FileSet { return e.fs }

// ScopeAt returns the innermost scope of file enclosing offset.
func (e *Engine) ScopeAt(file source.FileID, offset uint32) (symbols.ScopeID, error) {
	ids := e.scopes[file]
	// всё, что начинается после offset, не подходит
	n, _ := slices.BinarySearchFunc(ids, offset, func(id symbols.ScopeID, off uint32) int {
		if e.table.Scopes.Get(id).Span.Start <= off {
			return -1
		}
		return 1
	})
	best := symbols.NoScopeID
	var bestLen uint32
	for _, id := range ids[:n] {
		sp := e.table.Scopes.Get(id).Span
		if !sp.Contains(offset) {
			continue
		}
		if !best.IsValid() || sp.Len() <= bestLen {
			best, bestLen = id, sp.Len()
		}
	}
	// курсор в самом конце файла: внешний scope файла
	if !best.IsValid() && len(ids) > 0 && e.table.Scopes.Get(ids[0]).Span.End == offset {
		best = ids[0]
	}
	if !best.IsValid() {
		return symbols.NoScopeID, fmt.Errorf("%w: file %d offset %d", ErrNoScope, file, offset)
	}
	return best, nil
}

// Resolve looks path up from scope with every let visible.
func (e *Engine) Resolve(path string, scope symbols.ScopeID) (Definition, error) {
	res, err := e.table.LookupString(path, scope, symbols.NoPos)
	if err != nil {
		return Definition{}, err
	}
	return e.definition(res.Symbol, res.Via()), nil
}

// ResolveAt looks path up as if written at offset of file: only lets
// declared before offset are visible.
func (e *Engine) ResolveAt(file source.FileID, offset uint32, path string) (Definition, error) {
	scope, err := e.ScopeAt(file, offset)
	if err != nil {
		return Definition{}, err
	}
	res, err := e.table.LookupString(path, scope, offset)
	if err != nil {
		return Definition{}, err
	}
	return e.definition(res.Symbol, res.Via()), nil
}

// ReferenceAt returns the reference covering offset.
func (e *Engine) ReferenceAt(file source.FileID, offset uint32) (symbols.Ref, bool) {
	return e.table.RefAt(file, offset)
}

// DefinitionAt returns what the token at offset denotes: the target of a
// reference, or the symbol itself when offset is on a declaration name.
func (e *Engine) DefinitionAt(file source.FileID, offset uint32) (Definition, error) {
	if ref, ok := e.table.RefAt(file, offset); ok {
		if !ref.Target.IsValid() {
			return Definition{}, fmt.Errorf("%w: unresolved reference at %d", symbols.ErrNotFound, offset)
		}
		return e.definition(ref.Target, ref.Via), nil
	}
	ids := e.decls[file]
	n, _ := slices.BinarySearchFunc(ids, offset, func(id symbols.SymbolID, off uint32) int {
		if e.table.Symbols.Get(id).Span.Start <= off {
			return -1
		}
		return 1
	})
	for i := n - 1; i >= 0; i-- {
		sym := e.table.Symbols.Get(ids[i])
		if sym.Span.Contains(offset) {
			return e.definition(ids[i], symbols.NoSymbolID), nil
		}
	}
	return Definition{}, fmt.Errorf("%w: file %d offset %d", ErrNoReference, file, offset)
}

// ReferencesTo returns every reference to id, direct or through an alias,
// in source order. An alias id is followed to its canonical symbol.
func (e *Engine) ReferencesTo(id symbols.SymbolID) []symbols.Ref {
	return e.table.RefsTo(e.table.Canonical(id))
}

// Offset converts a 1-based line and column of file into a byte offset.
func (e *Engine) Offset(file source.FileID, line, col uint32) (uint32, error) {
	f := e.fs.Get(file)
	if f == nil {
		return 0, fmt.Errorf("unknown file %d", file)
	}
	off, ok := f.Offset(source.LineCol{Line: line, Col: col})
	if !ok {
		return 0, fmt.Errorf("%s: no position %d:%d", f.Path, line, col)
	}
	return off, nil
}

// File finds a loaded file by path.
func (e *Engine) File(path string) (*source.File, bool) {
	return e.fs.GetByPath(path)
}

func (e *Engine) definition(id, via symbols.SymbolID) Definition {
	sym := e.table.Symbols.Get(id)
	if sym == nil {
		return Definition{}
	}
	return Definition{
		Symbol:   id,
		Kind:     sym.Kind,
		Name:     e.table.Name(id),
		Qual:     sym.Qual,
		Span:     sym.Span,
		Location: diag.FlatSpan(e.fs, sym.Span),
		Via:      via,
	}
}
