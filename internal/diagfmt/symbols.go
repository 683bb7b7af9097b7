package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"rustdex/internal/source"
	"rustdex/internal/symbols"
)

// ListFormat selects the encoding of symbol and reference listings.
type ListFormat string

const (
	ListTable   ListFormat = "table"
	ListJSON    ListFormat = "json"
	ListYAML    ListFormat = "yaml"
	ListMsgpack ListFormat = "msgpack"
)

func ParseListFormat(s string) (ListFormat, error) {
	switch f := ListFormat(strings.ToLower(s)); f {
	case ListTable, ListJSON, ListYAML, ListMsgpack:
		return f, nil
	case "":
		return ListTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table|json|yaml|msgpack)", s)
	}
}

// FormatSymbols writes the exported symbol records in the given format.
func FormatSymbols(w io.Writer, recs []symbols.Record, format ListFormat) error {
	switch format {
	case ListJSON:
		return encodeJSON(w, recs)
	case ListYAML:
		return encodeYAML(w, recs)
	case ListMsgpack:
		return msgpack.NewEncoder(w).Encode(recs)
	default:
		t := newTable(w)
		t.AppendHeader(table.Row{"ID", "Kind", "Qualified path", "Location", "Flags", "Target"})
		for _, r := range recs {
			target := r.Target
			if target == "" {
				target = r.Type
			}
			t.AppendRow(table.Row{r.ID, r.Kind, displayQual(r.QualifiedPath, r.Name), recordLoc(r.Span.File, r.Span.Line, r.Span.Col), strings.Join(r.Flags, ","), target})
		}
		t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d symbol(s)", len(recs))})
		t.Render()
		return nil
	}
}

// RefRecord is the flat form of one resolved reference.
type RefRecord struct {
	Kind   string `json:"kind" msgpack:"kind" yaml:"kind"`
	Text   string `json:"text" msgpack:"text" yaml:"text"`
	File   string `json:"file" msgpack:"file" yaml:"file"`
	Line   uint32 `json:"line" msgpack:"line" yaml:"line"`
	Col    uint32 `json:"col" msgpack:"col" yaml:"col"`
	Target string `json:"target" msgpack:"target" yaml:"target"`
	Via    string `json:"via,omitempty" msgpack:"via,omitempty" yaml:"via,omitempty"`
}

// RefRecords flattens the reference table. The target is the canonical
// symbol; Via names the alias the path went through, if any.
func RefRecords(tbl *symbols.Table, fs *source.FileSet) []RefRecord {
	return RefRecordsOf(tbl, tbl.Refs, fs)
}

// RefRecordsOf flattens a subset of the table's references.
func RefRecordsOf(tbl *symbols.Table, refs []symbols.Ref, fs *source.FileSet) []RefRecord {
	out := make([]RefRecord, 0, len(refs))
	for _, ref := range refs {
		rec := RefRecord{Kind: ref.Kind.String()}
		if fs != nil {
			if f := fs.Get(ref.Span.File); f != nil {
				start, _ := fs.Resolve(ref.Span)
				rec.File = f.Path
				rec.Line, rec.Col = start.Line, start.Col
				if ref.Span.End <= uint32(len(f.Content)) { // #nosec G115
					rec.Text = string(f.Content[ref.Span.Start:ref.Span.End])
				}
			}
		}
		rec.Target = symbolLabel(tbl, tbl.Canonical(ref.Target))
		if ref.Via.IsValid() && ref.Via != ref.Target {
			rec.Via = symbolLabel(tbl, ref.Via)
		}
		out = append(out, rec)
	}
	return out
}

func symbolLabel(t *symbols.Table, id symbols.SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<unresolved>"
	}
	if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
		return "builtin " + t.Name(id)
	}
	return displayQual(sym.Qual, t.Name(id))
}

// FormatRefs writes reference records in the given format.
func FormatRefs(w io.Writer, recs []RefRecord, format ListFormat) error {
	switch format {
	case ListJSON:
		return encodeJSON(w, recs)
	case ListYAML:
		return encodeYAML(w, recs)
	case ListMsgpack:
		return msgpack.NewEncoder(w).Encode(recs)
	default:
		t := newTable(w)
		t.AppendHeader(table.Row{"Location", "Kind", "Text", "Target", "Via"})
		for _, r := range recs {
			t.AppendRow(table.Row{recordLoc(r.File, r.Line, r.Col), r.Kind, r.Text, r.Target, r.Via})
		}
		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d reference(s)", len(recs))})
		t.Render()
		return nil
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(TableStyle())
	return t
}

// TableStyle is StyleLight with footers printed as written.
func TableStyle() table.Style {
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	return style
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// displayQual names a crate root, whose qualified path is empty, by its name.
func displayQual(qual, name string) string {
	if qual == "" {
		return name
	}
	return qual
}

func recordLoc(file string, line, col uint32) string {
	if file == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
