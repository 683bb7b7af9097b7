package parser

import (
	"testing"

	"rustdex/internal/diag"
)

func TestRecovery_BadStatement(t *testing.T) {
	p := parseSource(t, "fn a() { let = 5; ok(); }\nfn b() {}")
	codes := p.codes()
	if len(codes) != 1 || codes[0] != diag.SynExpectPattern {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	if len(p.top()) != 2 {
		t.Fatalf("both functions must survive, got %d items", len(p.top()))
	}
	fn, _ := p.arenas.Items.Fn(p.top()[0])
	if n := len(p.arenas.Exprs.Block(fn.Body).Stmts); n != 1 {
		t.Errorf("statement after the broken one must be kept, got %d", n)
	}
}

func TestRecovery_GarbageBetweenItems(t *testing.T) {
	p := parseSource(t, "struct S { x: u32 }\ngarbage here\nfn ok() {}")
	codes := p.codes()
	if len(codes) != 1 || codes[0] != diag.SynExpectItem {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	top := p.top()
	if len(top) != 2 || p.name(top[0]) != "S" || p.name(top[1]) != "ok" {
		t.Fatalf("unexpected items")
	}
}

func TestRecovery_StrayBrace(t *testing.T) {
	p := parseSource(t, "} fn a() {}")
	codes := p.codes()
	if len(codes) != 1 || codes[0] != diag.SynUnexpectedTopLevel {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	if len(p.top()) != 1 {
		t.Fatalf("fn a must be parsed")
	}
}

func TestUnclosedDelimiterPointsAtOpening(t *testing.T) {
	src := "mod m {\n    fn a() {}\n"
	p := parseSource(t, src)
	items := p.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynUnclosedDelimiter {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	if sp := items[0].Primary; sp.Start != 6 || sp.End != 7 {
		t.Errorf("primary span must cover the opening brace, got %d..%d", sp.Start, sp.End)
	}
	m, ok := p.arenas.Items.Module(p.top()[0])
	if !ok || len(m.Items) != 1 {
		t.Fatalf("module contents must be kept")
	}
}

func TestMissingSemicolonFix(t *testing.T) {
	src := "fn f() { let x = 1 let y = 2; }"
	p := parseSource(t, src)
	items := p.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynExpectSemicolon {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	d := items[0]
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("expected one fix with one edit")
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != ";" || edit.Span.Start != 18 || edit.Span.End != 18 {
		t.Errorf("unexpected edit %+v", edit)
	}
	fn, _ := p.arenas.Items.Fn(p.top()[0])
	if n := len(p.arenas.Exprs.Block(fn.Body).Stmts); n != 2 {
		t.Errorf("both lets must be kept, got %d", n)
	}
}

func TestExpectedMessage(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"fn 5() {}", "expected identifier, got '5'"},
		{"static X u32 = 1;", "expected ':', got identifier 'u32'"},
		{"fn f() { let x: = 1; }", "expected type, got '='"},
		{"impl X", "expected '{', got end of file"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := parseSource(t, tt.input)
			items := p.bag.Items()
			if len(items) == 0 || items[0].Message != tt.msg {
				t.Fatalf("got %s, want %q", diagnosticsSummary(p.bag), tt.msg)
			}
		})
	}
}

func TestMaxErrors(t *testing.T) {
	p := parseSourceWithOptions(t, "struct; struct; struct; struct; fn ok() {}", Options{MaxErrors: 2})
	if p.bag.Len() != 2 {
		t.Fatalf("reported: %d (%s)", p.bag.Len(), diagnosticsSummary(p.bag))
	}
	if p.res.Errors != 4 {
		t.Errorf("counted errors: got %d, want 4", p.res.Errors)
	}
	if len(p.top()) != 1 {
		t.Errorf("parsing must continue past the budget")
	}
}

func TestLexErrorsNotDuplicated(t *testing.T) {
	p := parseSource(t, "fn f() { let x = 1 $ 2; }")
	codes := p.codes()
	if len(codes) == 0 || codes[0] != diag.LexUnknownChar {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(p.bag))
	}
	for _, c := range codes[1:] {
		if c == diag.LexUnknownChar {
			t.Errorf("lexer error reported twice")
		}
	}
}

func TestRecovery_ItemInsideMethodList(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"pub struct in impl", "impl S { pub struct A; } fn main() {}"},
		{"struct in trait", "trait T { struct A; } fn main() {}"},
		{"static in impl", "impl S { static X: u32 = 1; } fn main() {}"},
		{"mod in impl", "impl S { mod m { fn a() {} } } fn main() {}"},
		{"use in trait", "trait T { use a::b; fn f(); } fn main() {}"},
		{"impl in impl", "impl S { impl T for S {} } fn main() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseSource(t, tt.input)
			if !hasCode(p.codes(), diag.SynExpectItem) {
				t.Fatalf("want %v, diagnostics: %s", diag.SynExpectItem, diagnosticsSummary(p.bag))
			}
			top := p.top()
			if len(top) != 2 || p.name(top[1]) != "main" {
				t.Fatalf("fn main must follow the broken body, got %d items", len(top))
			}
		})
	}
}

func TestRecovery_MethodListAtEOF(t *testing.T) {
	for _, src := range []string{"impl x { trait", "impl S { static", "trait T { struct", "impl S { pub"} {
		p := parseSource(t, src)
		if p.bag.Len() == 0 {
			t.Errorf("%q: expected diagnostics", src)
		}
	}
}

func TestRecovery_StrayCloserInList(t *testing.T) {
	tests := []string{
		"struct S { ) } fn main() {}",
		"struct S { a: u32, ] } fn main() {}",
		"struct S(u32, ]); fn main() {}",
		"fn f(]) {} fn main() {}",
		"use a::{)}; fn main() {}",
	}
	for _, src := range tests {
		p := parseSource(t, src)
		if p.bag.Len() == 0 {
			t.Errorf("%q: expected diagnostics", src)
		}
		top := p.top()
		if len(top) == 0 || p.name(top[len(top)-1]) != "main" {
			t.Errorf("%q: fn main must be parsed, diagnostics: %s", src, diagnosticsSummary(p.bag))
		}
	}
}

func hasCode(codes []diag.Code, want diag.Code) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}
