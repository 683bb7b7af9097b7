package symbols

import (
	"rustdex/internal/diag"
	"rustdex/internal/source"
)

// Record is the flat, serializable form of one symbol.
type Record struct {
	ID            uint32          `json:"id" msgpack:"id" yaml:"id"`
	QualifiedPath string          `json:"qualified_path" msgpack:"qualified_path" yaml:"qualified_path"`
	Name          string          `json:"name" msgpack:"name" yaml:"name"`
	Kind          string          `json:"kind" msgpack:"kind" yaml:"kind"`
	Span          diag.RecordSpan `json:"span" msgpack:"span" yaml:"span"`
	ParentScopeID uint32          `json:"parent_scope_id" msgpack:"parent_scope_id" yaml:"parent_scope_id"`
	Flags         []string        `json:"flags,omitempty" msgpack:"flags,omitempty" yaml:"flags,omitempty"`
	Type          string          `json:"type,omitempty" msgpack:"type,omitempty" yaml:"type,omitempty"`
	Target        string          `json:"target,omitempty" msgpack:"target,omitempty" yaml:"target,omitempty"`
}

// Export flattens every non-builtin symbol in declaration order. fs may be
// nil, in which case spans carry offsets only.
func (t *Table) Export(fs *source.FileSet) []Record {
	data := t.Symbols.Data()
	out := make([]Record, 0, len(data))
	for i := range data {
		sym := &data[i]
		if sym.Flags&SymbolFlagBuiltin != 0 {
			continue
		}
		rec := Record{
			ID:            uint32(i + 1), // #nosec G115 -- arena ids are uint32
			QualifiedPath: sym.Qual,
			Name:          t.Name(SymbolID(i + 1)),
			Kind:          sym.Kind.String(),
			Span:          diag.FlatSpan(fs, sym.Span),
			ParentScopeID: uint32(sym.Scope),
			Flags:         sym.Flags.Strings(),
			Type:          sym.Type,
		}
		var target SymbolID
		switch sym.Kind {
		case SymbolAlias, SymbolImpl, SymbolField:
			target = sym.Target
		}
		if ts := t.Symbols.Get(target); ts != nil {
			rec.Target = ts.Qual
		}
		out = append(out, rec)
	}
	return out
}
