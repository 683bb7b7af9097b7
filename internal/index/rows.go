// Package index flattens a resolved symbol table into DXR-style def/ref
// rows, reads and writes them as key/value CSV, compares two row sets
// logically and stores runs in SQLite.
package index

import (
	"cmp"
	"slices"
	"strconv"

	"rustdex/internal/diag"
	"rustdex/internal/driver"
	"rustdex/internal/pipeline"
	"rustdex/internal/project"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

// Row kinds.
const (
	KindModule      = "module"
	KindModuleAlias = "module_alias"
	KindStruct      = "struct"
	KindTrait       = "trait"
	KindField       = "field"
	KindFunction    = "function"
	KindStatic      = "static"
	KindVariable    = "variable"
	KindImpl        = "impl"
)

// Column keys.
const (
	ColName        = "name"
	ColQualname    = "qualname"
	ColFileName    = "file_name"
	ColFileLine    = "file_line"
	ColFileCol     = "file_col"
	ColExtentStart = "extent_start"
	ColExtentEnd   = "extent_end"
	ColID          = "id"
	ColRefID       = "refid"
	ColScopeID     = "scopeid"
)

// Row is one def or ref. For refs Name and Qualname describe the target
// definition, RefID its id; Extent and position are the use site.
type Row struct {
	Kind        string `json:"kind" msgpack:"kind" yaml:"kind"`
	Name        string `json:"name" msgpack:"name" yaml:"name"`
	Qualname    string `json:"qualname" msgpack:"qualname" yaml:"qualname"`
	File        string `json:"file_name" msgpack:"file_name" yaml:"file_name"`
	Line        uint32 `json:"file_line" msgpack:"file_line" yaml:"file_line"`
	Col         uint32 `json:"file_col" msgpack:"file_col" yaml:"file_col"`
	ExtentStart uint32 `json:"extent_start" msgpack:"extent_start" yaml:"extent_start"`
	ExtentEnd   uint32 `json:"extent_end" msgpack:"extent_end" yaml:"extent_end"`
	ID          uint32 `json:"id,omitempty" msgpack:"id,omitempty" yaml:"id,omitempty"`
	RefID       uint32 `json:"refid,omitempty" msgpack:"refid,omitempty" yaml:"refid,omitempty"`
	Scope       uint32 `json:"scopeid,omitempty" msgpack:"scopeid,omitempty" yaml:"scopeid,omitempty"`
}

// IsRef reports whether the row describes a use site.
func (r Row) IsRef() bool { return r.RefID != 0 && r.ID == 0 }

// Record converts the row into its key/value form. Zero ids are omitted.
func (r Row) Record() Record {
	rec := Record{Kind: r.Kind}
	rec.Set(ColName, r.Name)
	rec.Set(ColQualname, r.Qualname)
	rec.Set(ColFileName, r.File)
	rec.Set(ColFileLine, strconv.FormatUint(uint64(r.Line), 10))
	rec.Set(ColFileCol, strconv.FormatUint(uint64(r.Col), 10))
	rec.Set(ColExtentStart, strconv.FormatUint(uint64(r.ExtentStart), 10))
	rec.Set(ColExtentEnd, strconv.FormatUint(uint64(r.ExtentEnd), 10))
	if r.ID != 0 {
		rec.Set(ColID, strconv.FormatUint(uint64(r.ID), 10))
	}
	if r.RefID != 0 {
		rec.Set(ColRefID, strconv.FormatUint(uint64(r.RefID), 10))
	}
	if r.Scope != 0 {
		rec.Set(ColScopeID, strconv.FormatUint(uint64(r.Scope), 10))
	}
	return rec
}

// FileRow describes one indexed file.
type FileRow struct {
	Path string `json:"path" msgpack:"path" yaml:"path"`
	Hash string `json:"hash" msgpack:"hash" yaml:"hash"`
	Unit string `json:"unit" msgpack:"unit" yaml:"unit"`
}

// Index is the complete output of one indexing run.
type Index struct {
	Files       []FileRow     `json:"files" msgpack:"files" yaml:"files"`
	Rows        []Row         `json:"rows" msgpack:"rows" yaml:"rows"`
	Diagnostics []diag.Record `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Records returns the key/value form of every row.
func (ix *Index) Records() []Record {
	out := make([]Record, 0, len(ix.Rows))
	for _, r := range ix.Rows {
		out = append(out, r.Record())
	}
	return out
}

// Options tune row generation.
type Options struct {
	// BaseDir, when set, makes file names relative to it.
	BaseDir string
	// SkipRefs drops use-site rows.
	SkipRefs bool
}

// Build flattens a finished run into rows sorted by file, offset and kind.
func Build(res *driver.Result, opts Options) *Index {
	b := builder{
		table:  res.Table,
		fs:     res.FileSet,
		base:   opts.BaseDir,
		units:  make(map[string]string),
		crates: make(map[symbols.SymbolID]string),
	}
	if b.table != nil {
		for _, u := range b.table.Units() {
			b.crates[u.Module] = u.Name
		}
	}
	for _, u := range res.Units {
		for _, f := range u.Files {
			b.units[f] = u.Name
		}
	}

	ix := &Index{}
	for _, f := range res.FileSet.Files() {
		ix.Files = append(ix.Files, FileRow{
			Path: b.path(f.Path),
			Hash: project.Digest(f.Hash).Hex(),
			Unit: b.units[f.Path],
		})
	}
	if b.table != nil {
		ix.Rows = b.defs()
		if !opts.SkipRefs {
			ix.Rows = append(ix.Rows, b.refs()...)
		}
	}
	sortRows(ix.Rows)
	if res.Bag != nil {
		ix.Diagnostics = diag.Records(res.FileSet, res.Bag.Items())
		for i := range ix.Diagnostics {
			ix.Diagnostics[i].Span.File = b.path(ix.Diagnostics[i].Span.File)
		}
	}
	return ix
}

func sortRows(rows []Row) { slices.SortStableFunc(rows, compareRows) }

func compareRows(a, b Row) int {
	return cmp.Or(
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.ExtentStart, b.ExtentStart),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.ExtentEnd, b.ExtentEnd),
	)
}

type builder struct {
	table  *symbols.Table
	fs     *source.FileSet
	base   string
	units  map[string]string
	// crate root module symbols live in the prelude scope
	crates map[symbols.SymbolID]string
}

func (b *builder) path(p string) string {
	if b.base == "" || p == "" {
		return p
	}
	return pipeline.DisplayPath(p, b.base)
}

// defKind maps a symbol onto a row kind; "" means the symbol has no row.
func (b *builder) defKind(sym *symbols.Symbol) string {
	switch sym.Kind {
	case symbols.SymbolModule:
		return KindModule
	case symbols.SymbolAlias:
		if target := b.table.Symbols.Get(sym.Target); target != nil && target.Kind == symbols.SymbolModule {
			return KindModuleAlias
		}
		return ""
	case symbols.SymbolStruct:
		return KindStruct
	case symbols.SymbolTrait:
		return KindTrait
	case symbols.SymbolField:
		return KindField
	case symbols.SymbolFunction:
		return KindFunction
	case symbols.SymbolStatic:
		return KindStatic
	case symbols.SymbolLet, symbols.SymbolParam:
		return KindVariable
	case symbols.SymbolImpl:
		return KindImpl
	default:
		return ""
	}
}

// qualname prefixes the unit-relative path with the crate name. Crate
// root modules are named by the crate alone.
func (b *builder) qualname(id symbols.SymbolID) string {
	sym := b.table.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	unit := b.unitName(id, sym)
	if sym.Qual == "" {
		if unit != "" {
			return unit
		}
		return b.table.Name(id)
	}
	if unit == "" {
		return sym.Qual
	}
	return unit + "::" + sym.Qual
}

func (b *builder) unitName(id symbols.SymbolID, sym *symbols.Symbol) string {
	if name, ok := b.crates[id]; ok {
		return name
	}
	if sc := b.table.Scopes.Get(sym.Scope); sc != nil {
		if u, ok := b.table.Unit(sc.Unit); ok {
			return u.Name
		}
	}
	return ""
}

func (b *builder) position(sp source.Span) (file string, line, col uint32) {
	f := b.fs.Get(sp.File)
	if f == nil {
		return "", 0, 0
	}
	start, _ := b.fs.Resolve(sp)
	return b.path(f.Path), start.Line, start.Col
}

func (b *builder) defs() []Row {
	data := b.table.Symbols.Data()
	out := make([]Row, 0, len(data))
	for i := range data {
		sym := &data[i]
		if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
			continue
		}
		kind := b.defKind(sym)
		if kind == "" {
			continue
		}
		id := symbols.SymbolID(i + 1) // #nosec G115 -- arena ids are uint32
		file, line, col := b.position(sym.Span)
		out = append(out, Row{
			Kind:        kind,
			Name:        b.table.Name(id),
			Qualname:    b.qualname(id),
			File:        file,
			Line:        line,
			Col:         col,
			ExtentStart: sym.Span.Start,
			ExtentEnd:   sym.Span.End,
			ID:          uint32(id),
			Scope:       uint32(sym.Scope),
		})
	}
	return out
}

// refs emits one row per resolved use. Uses of builtins and unresolved
// paths have no definition to point at and are skipped.
func (b *builder) refs() []Row {
	out := make([]Row, 0, len(b.table.Refs))
	for _, ref := range b.table.Refs {
		target := b.table.Canonical(ref.Target)
		sym := b.table.Symbols.Get(target)
		if sym == nil || sym.Flags&symbols.SymbolFlagBuiltin != 0 {
			continue
		}
		file, line, col := b.position(ref.Span)
		out = append(out, Row{
			Kind:        ref.Kind.String(),
			Name:        b.table.Name(target),
			Qualname:    b.qualname(target),
			File:        file,
			Line:        line,
			Col:         col,
			ExtentStart: ref.Span.Start,
			ExtentEnd:   ref.Span.End,
			RefID:       uint32(target),
			Scope:       uint32(ref.Scope),
		})
	}
	return out
}
