package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.rs", []byte(input)))
	bag := diag.NewBag(0)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for tok := range lx.All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	tokens = tokens[:len(tokens)-1] // EOF

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d\ninput: %q\ntokens: %v\ndiags: %v",
			len(expected), len(tokens), input, tokensToString(tokens), bag.Items())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, kind token.Kind, text string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != kind || tok.Text != text {
		t.Errorf("input %q: expected %v(%q), got %v(%q)", input, kind, text, tok.Kind, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestKeywordsAndIdents(t *testing.T) {
	expectTokens(t, "mod pub use struct trait impl for fn let static mut as self super crate",
		[]token.Kind{
			token.KwMod, token.KwPub, token.KwUse, token.KwStruct, token.KwTrait, token.KwImpl, token.KwFor,
			token.KwFn, token.KwLet, token.KwStatic, token.KwMut, token.KwAs, token.KwSelf, token.KwSuper, token.KwCrate,
		})
	expectTokens(t, "Mod u32 str _x __ x1 _", []token.Kind{
		token.Ident, token.Ident, token.Ident, token.Ident, token.Ident, token.Ident, token.Underscore,
	})
	expectSingleToken(t, "größe", token.Ident, "größe")
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		in   string
		kind token.Kind
	}{
		{"0", token.IntLit},
		{"1_000", token.IntLit},
		{"25u", token.IntLit},
		{"5u32", token.IntLit},
		{"0xff_u8", token.IntLit},
		{"0b1010", token.IntLit},
		{"0o17", token.IntLit},
		{"1.5", token.FloatLit},
		{"1e-3", token.FloatLit},
		{"2.5e+10f64", token.FloatLit},
		{"3f32", token.FloatLit},
	}
	for _, tc := range cases {
		expectSingleToken(t, tc.in, tc.kind, tc.in)
	}
}

func TestNumberNotFollowedByFraction(t *testing.T) {
	expectTokens(t, "x.0.1", []token.Kind{token.Ident, token.Dot, token.FloatLit})
	expectTokens(t, "1.to_str()", []token.Kind{token.IntLit, token.Dot, token.Ident, token.LParen, token.RParen})
}

func TestBadNumbers(t *testing.T) {
	for _, in := range []string{"0x", "1e", "5usize"} {
		lx, bag := makeTestLexer(in)
		if tok := lx.Next(); tok.Kind != token.Invalid {
			t.Errorf("%q: expected Invalid, got %v", in, tok.Kind)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
			t.Errorf("%q: expected one LexBadNumber, got %v", in, bag.Items())
		}
	}
}

func TestStringsAndChars(t *testing.T) {
	expectSingleToken(t, `"hello \"world\""`, token.StringLit, `"hello \"world\""`)
	expectSingleToken(t, "'a'", token.CharLit, "'a'")
	expectSingleToken(t, `'\n'`, token.CharLit, `'\n'`)
	expectSingleToken(t, `'\u{41}'`, token.CharLit, `'\u{41}'`)
}

func TestUnterminatedStringPointsAtOpeningQuote(t *testing.T) {
	lx, bag := makeTestLexer("let s = \"abc")
	tokens := collectAllTokens(lx)
	if tokens[3].Kind != token.Invalid {
		t.Fatalf("expected Invalid, got %v", tokens[3].Kind)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.LexUnterminatedString || d.Primary.Start != 8 || d.Primary.End != 9 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestUnterminatedChar(t *testing.T) {
	lx, bag := makeTestLexer("'ab\nfn")
	tokens := collectAllTokens(lx)
	if tokens[0].Kind != token.Invalid || tokens[1].Kind != token.KwFn {
		t.Fatalf("unexpected tokens %v", tokensToString(tokens))
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedChar {
		t.Fatalf("expected LexUnterminatedChar, got %v", bag.Items())
	}
}

func TestOperatorsGreedy(t *testing.T) {
	expectTokens(t, ":: : -> => && || == != <= >= ~ # !", []token.Kind{
		token.ColonColon, token.Colon, token.Arrow, token.FatArrow, token.AndAnd, token.OrOr,
		token.EqEq, token.BangEq, token.LtEq, token.GtEq, token.Tilde, token.Hash, token.Bang,
	})
	expectTokens(t, "a:::b", []token.Kind{token.Ident, token.ColonColon, token.Colon, token.Ident})
}

func TestUnknownCharacterIsRecoverable(t *testing.T) {
	lx, bag := makeTestLexer("fn $ main € x")
	tokens := collectAllTokens(lx)
	want := []token.Kind{token.KwFn, token.Invalid, token.Ident, token.Invalid, token.Ident, token.EOF}
	if len(tokens) != len(want) {
		t.Fatalf("unexpected tokens %v", tokensToString(tokens))
	}
	for i := range want {
		if tokens[i].Kind != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], tokens[i].Kind)
		}
	}
	if tokens[3].Text != "€" {
		t.Fatalf("multi-byte unknown char must be one token, got %q", tokens[3].Text)
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	expectTokens(t, "a // line\n/* block /* nested */ */ b /// doc\nc", []token.Kind{token.Ident, token.Ident, token.Ident})

	lx, bag := makeTestLexer("a /* open")
	collectAllTokens(lx)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("expected unterminated block comment, got %v", bag.Items())
	}
	if sp := bag.Items()[0].Primary; sp.Start != 2 || sp.End != 4 {
		t.Fatalf("expected span at '/*', got %v", sp)
	}
}

func TestKeepTrivia(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.rs", []byte("  // c\nfn")))
	lx := lexer.New(file, lexer.Options{KeepTrivia: true})
	tok := lx.Next()
	if tok.Kind != token.KwFn || len(tok.Leading) != 3 {
		t.Fatalf("expected fn with 3 trivia, got %v %+v", tok.Kind, tok.Leading)
	}
	kinds := []token.TriviaKind{token.TriviaSpace, token.TriviaLineComment, token.TriviaNewline}
	for i, k := range kinds {
		if tok.Leading[i].Kind != k {
			t.Errorf("trivia %d: expected %v, got %v", i, k, tok.Leading[i].Kind)
		}
	}
}

func TestPeekAndEOF(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("peek: %q", p.Text)
	}
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("second peek must not advance: %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("next after peek: %q", n.Text)
	}
	lx.Next()
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != token.EOF || tok.Span.Start != 3 {
			t.Fatalf("expected sticky EOF at 3, got %v %v", tok.Kind, tok.Span)
		}
	}
}

func TestResetRestartsSequence(t *testing.T) {
	lx, _ := makeTestLexer("mod a { fn b() {} }")
	first := collectAllTokens(lx)
	lx.Reset()
	second := collectAllTokens(lx)
	if tokensToString(first) != tokensToString(second) {
		t.Fatalf("restart differs:\n%v\n%v", tokensToString(first), tokensToString(second))
	}
	if got := len(lx.Tokens()); got != len(first) {
		t.Fatalf("Tokens() returned %d tokens, want %d", got, len(first))
	}
}

func TestSpansAreByteAccurate(t *testing.T) {
	src := "fn hello(){ let x: u32 = 5; }"
	lx, _ := makeTestLexer(src)
	for _, tok := range collectAllTokens(lx) {
		if got := src[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Fatalf("span %v covers %q but text is %q", tok.Span, got, tok.Text)
		}
	}
}
