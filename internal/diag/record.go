package diag

import (
	"rustdex/internal/source"
)

// Record is the flat, serializable form of a diagnostic.
type Record struct {
	Severity string       `json:"severity" msgpack:"severity" yaml:"severity"`
	Code     string       `json:"code" msgpack:"code" yaml:"code"`
	Message  string       `json:"message" msgpack:"message" yaml:"message"`
	Span     RecordSpan   `json:"span" msgpack:"span" yaml:"span"`
	Internal bool         `json:"internal,omitempty" msgpack:"internal,omitempty" yaml:"internal,omitempty"`
	Notes    []RecordNote `json:"notes,omitempty" msgpack:"notes,omitempty" yaml:"notes,omitempty"`
}

type RecordSpan struct {
	File  string `json:"file" msgpack:"file" yaml:"file"`
	Start uint32 `json:"start" msgpack:"start" yaml:"start"`
	End   uint32 `json:"end" msgpack:"end" yaml:"end"`
	Line  uint32 `json:"line" msgpack:"line" yaml:"line"`
	Col   uint32 `json:"col" msgpack:"col" yaml:"col"`
}

type RecordNote struct {
	Message string     `json:"message" msgpack:"message" yaml:"message"`
	Span    RecordSpan `json:"span" msgpack:"span" yaml:"span"`
}

// FlatSpan resolves a span against fs into a RecordSpan.
func FlatSpan(fs *source.FileSet, sp source.Span) RecordSpan {
	out := RecordSpan{Start: sp.Start, End: sp.End}
	if fs == nil {
		return out
	}
	if f := fs.Get(sp.File); f != nil {
		out.File = f.Path
		start, _ := fs.Resolve(sp)
		out.Line, out.Col = start.Line, start.Col
	}
	return out
}

// ToRecord flattens d. Paths are the FileSet paths as stored.
func ToRecord(fs *source.FileSet, d Diagnostic) Record {
	rec := Record{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Span:     FlatSpan(fs, d.Primary),
		Internal: d.Code.IsInternal(),
	}
	for _, n := range d.Notes {
		rec.Notes = append(rec.Notes, RecordNote{Message: n.Msg, Span: FlatSpan(fs, n.Span)})
	}
	return rec
}

// Records flattens every diagnostic in order.
func Records(fs *source.FileSet, items []Diagnostic) []Record {
	out := make([]Record, 0, len(items))
	for _, d := range items {
		out = append(out, ToRecord(fs, d))
	}
	return out
}
