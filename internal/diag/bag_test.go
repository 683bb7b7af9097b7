package diag

import (
	"testing"

	"rustdex/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 4; i++ {
		b.Add(NewError(SynUnexpectedToken, source.Span{Start: uint32(i), End: uint32(i + 1)}, "x"))
	}
	if b.Len() != 2 || b.Dropped() != 2 {
		t.Fatalf("expected 2 kept and 2 dropped, got %d/%d", b.Len(), b.Dropped())
	}
	unbounded := NewBag(0)
	for i := 0; i < 100; i++ {
		unbounded.Add(NewError(SynUnexpectedToken, source.Span{}, "x"))
	}
	if unbounded.Len() != 100 {
		t.Fatalf("limit 0 must be unbounded, got %d", unbounded.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, SemaUnresolvedSymbol, source.Span{File: 0, Start: 5, End: 6}, "w"))
	b.Add(New(SevError, SynExpectSemicolon, source.Span{File: 0, Start: 5, End: 6}, "e"))
	b.Add(New(SevError, SynExpectSemicolon, source.Span{File: 0, Start: 5, End: 6}, "e"))
	b.Add(New(SevError, LexUnknownChar, source.Span{File: 0, Start: 1, End: 2}, "c"))
	b.Dedup()
	b.Sort()

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedup, got %d", len(items))
	}
	if items[0].Code != LexUnknownChar || items[1].Severity != SevError || items[2].Severity != SevWarning {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestInternalCodes(t *testing.T) {
	if !ICEAmbiguousSymbol.IsInternal() || SemaDuplicateSymbol.IsInternal() {
		t.Fatalf("IsInternal is wrong")
	}
	if got := ICEAmbiguousSymbol.ID(); got != "ICE9001" {
		t.Fatalf("unexpected ID %q", got)
	}
	b := NewBag(0)
	b.Add(NewError(SemaDuplicateSymbol, source.Span{}, "dup"))
	if b.HasInternal() {
		t.Fatalf("no internal diagnostics expected")
	}
	b.Add(NewError(ICEAmbiguousSymbol, source.Span{}, "amb"))
	if !b.HasInternal() {
		t.Fatalf("expected internal diagnostic")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, SemaDuplicateSymbol, source.Span{Start: 4, End: 8}, "duplicate 'x'").
		WithNote(source.Span{Start: 0, End: 1}, "previous declaration here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", b.Len())
	}
	if d := b.Items()[0]; len(d.Notes) != 1 || d.Notes[0].Msg != "previous declaration here" {
		t.Fatalf("note lost: %+v", d)
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	for i := 0; i < 3; i++ {
		r.Report(LexUnknownChar, SevError, source.Span{Start: 1, End: 2}, "unknown character", nil, nil)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", b.Len())
	}
}

func TestRecords(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.rs", []byte("mod a;\nmod a;\n"))
	d := NewError(SemaDuplicateSymbol, source.Span{File: id, Start: 11, End: 12}, "duplicate").
		WithNote(source.Span{File: id, Start: 4, End: 5}, "previous declaration here")
	rec := ToRecord(fs, d)
	if rec.Severity != "error" || rec.Code != "SEM3002" || rec.Span.Line != 2 || rec.Span.Col != 5 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.Notes) != 1 || rec.Notes[0].Span.Line != 1 {
		t.Fatalf("unexpected notes %+v", rec.Notes)
	}
	if rec.Span.File != "m.rs" {
		t.Fatalf("unexpected path %q", rec.Span.File)
	}
}
