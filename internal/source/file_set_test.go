package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("fn a() {}\nfn b() {}\n\nmod c;"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{3, LineCol{1, 4}},
		{9, LineCol{1, 10}}, // the '\n' itself
		{10, LineCol{2, 1}},
		{20, LineCol{3, 1}},
		{21, LineCol{4, 1}},
		{27, LineCol{4, 7}},
	}
	for _, tc := range cases {
		got, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if got != tc.want {
			t.Errorf("offset %d: expected %+v, got %+v", tc.off, tc.want, got)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("ab\ncd\n"))
	f := fs.Get(id)
	for off := uint32(0); off <= uint32(len(f.Content)); off++ {
		lc, _ := fs.Resolve(Span{File: id, Start: off, End: off})
		back, ok := f.Offset(lc)
		if !ok || back != off {
			t.Fatalf("offset %d -> %+v -> %d (ok=%v)", off, lc, back, ok)
		}
	}
	if _, ok := f.Offset(LineCol{Line: 9, Col: 1}); ok {
		t.Fatalf("expected out-of-range line to fail")
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("x.rs", []byte("fn a() {}"))
	second := fs.AddVirtual("x.rs", []byte("fn b() {}"))
	if first == second {
		t.Fatalf("expected distinct ids for two versions")
	}
	latest, ok := fs.GetLatest("x.rs")
	if !ok || latest != second {
		t.Fatalf("expected latest=%d, got %d (ok=%v)", second, latest, ok)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", fs.Len())
	}
	if fs.Get(99) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("l.rs", []byte("one\ntwo\n\nfour")))
	want := []string{"", "one", "two", "", "four", ""}
	for i, w := range want {
		if got := f.GetLine(uint32(i)); got != w {
			t.Errorf("line %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestCRLFAndBOMNormalization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.rs")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFfn a() {}\r\nfn b() {}\r"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if got := string(f.Content); got != "fn a() {}\nfn b() {}\r" {
		t.Fatalf("unexpected content %q", got)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.rs")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
