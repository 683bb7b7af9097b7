package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"rustdex/internal/resolve"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

// querier answers the position and path queries shared by `resolve` and
// `repl`.
type querier struct {
	eng  *resolve.Engine
	unit symbols.Unit
}

func newQuerier(eng *resolve.Engine, unitName string) (*querier, error) {
	q := &querier{eng: eng}
	if err := q.useUnit(unitName); err != nil {
		return nil, err
	}
	return q, nil
}

// useUnit picks the unit whose root bare paths are resolved from; "" means
// the first one.
func (q *querier) useUnit(name string) error {
	units := q.eng.Table().Units()
	if len(units) == 0 {
		return errors.New("no compilation units")
	}
	if name == "" {
		q.unit = units[0]
		return nil
	}
	u, ok := q.eng.Table().UnitByName(name)
	if !ok {
		return fmt.Errorf("unknown unit %q", name)
	}
	q.unit = u
	return nil
}

// position parses "file:line:col" against the loaded files.
func (q *querier) position(pos string) (source.FileID, uint32, error) {
	last := strings.LastIndexByte(pos, ':')
	if last < 0 {
		return 0, 0, fmt.Errorf("position %q: want file:line:col", pos)
	}
	mid := strings.LastIndexByte(pos[:last], ':')
	if mid < 0 {
		return 0, 0, fmt.Errorf("position %q: want file:line:col", pos)
	}
	line, err := strconv.ParseUint(pos[mid+1:last], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("position %q: bad line: %w", pos, err)
	}
	col, err := strconv.ParseUint(pos[last+1:], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("position %q: bad column: %w", pos, err)
	}
	f, err := q.file(pos[:mid])
	if err != nil {
		return 0, 0, err
	}
	off, err := q.eng.Offset(f.ID, uint32(line), uint32(col))
	if err != nil {
		return 0, 0, err
	}
	return f.ID, off, nil
}

// file finds a loaded file by its path as given, cleaned, or by suffix.
func (q *querier) file(path string) (*source.File, error) {
	if f, ok := q.eng.File(path); ok {
		return f, nil
	}
	if f, ok := q.eng.File(filepath.Clean(path)); ok {
		return f, nil
	}
	var found *source.File
	for _, f := range q.eng.FileSet().Files() {
		if strings.HasSuffix(filepath.ToSlash(f.Path), "/"+filepath.ToSlash(filepath.Clean(path))) {
			if found != nil {
				return nil, fmt.Errorf("file %q is ambiguous: %s, %s", path, found.Path, f.Path)
			}
			found = f
		}
	}
	if found == nil {
		return nil, fmt.Errorf("file %q is not loaded", path)
	}
	return found, nil
}

// resolvePath resolves path at pos, or from the unit root when pos is "".
func (q *querier) resolvePath(path, pos string) (resolve.Definition, error) {
	if pos == "" {
		return q.eng.Resolve(path, q.unit.Root)
	}
	file, off, err := q.position(pos)
	if err != nil {
		return resolve.Definition{}, err
	}
	return q.eng.ResolveAt(file, off, path)
}

func (q *querier) definitionAt(pos string) (resolve.Definition, error) {
	file, off, err := q.position(pos)
	if err != nil {
		return resolve.Definition{}, err
	}
	return q.eng.DefinitionAt(file, off)
}

// refsTo lists the references to the symbols with qualified path qual.
func (q *querier) refsTo(qual string) ([]symbols.Ref, error) {
	ids := q.eng.Table().SymbolsByQual(qual)
	if len(ids) == 0 {
		def, err := q.eng.Resolve(qual, q.unit.Root)
		if err != nil {
			return nil, err
		}
		ids = []symbols.SymbolID{def.Symbol}
	}
	var refs []symbols.Ref
	for _, id := range ids {
		refs = append(refs, q.eng.ReferencesTo(id)...)
	}
	return refs, nil
}

// describe renders a definition as "kind qual at file:line:col".
func (q *querier) describe(def resolve.Definition) string {
	t := q.eng.Table()
	var sb strings.Builder
	sb.WriteString(def.Kind.String())
	sb.WriteByte(' ')
	if def.Qual != "" {
		sb.WriteString(def.Qual)
	} else {
		sb.WriteString(def.Name)
	}
	if sym := t.Symbols.Get(def.Symbol); sym != nil && sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		sb.WriteString(" (builtin)")
	} else if def.Location.File != "" {
		fmt.Fprintf(&sb, " at %s:%d:%d", def.Location.File, def.Location.Line, def.Location.Col)
	}
	if def.Via.IsValid() && def.Via != def.Symbol {
		if via := t.Symbols.Get(def.Via); via != nil {
			fmt.Fprintf(&sb, " via %s", via.Qual)
		}
	}
	return sb.String()
}
