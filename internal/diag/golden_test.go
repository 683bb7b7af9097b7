package diag

import (
	"testing"

	"rustdex/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/testdata/golden/sample.rs", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaUnresolvedSymbol,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SemaDuplicateSymbol,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "previous declaration here"},
			},
		},
	}

	expected := "error SEM3002 testdata/golden/sample.rs:1:1 first line second\n" +
		"note SEM3002 testdata/golden/sample.rs:2:1 previous declaration here\n" +
		"warning SEM3005 testdata/golden/sample.rs:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
