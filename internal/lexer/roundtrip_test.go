package lexer_test

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"rustdex/internal/lexer"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

var fragments = []string{
	"mod", "pub", "use", "struct", "trait", "impl", "for", "fn", "let", "static",
	"sub", "sub2", "hello", "x", "_", "msalias", "nested_struct",
	"5", "25u", "1.5", "0xff", `"hi"`, `"a\"b"`, "'c'",
	"::", ":", ";", ",", ".", "->", "=>", "=", "==", "~", "&", "!", "#", "(", ")", "{", "}", "[", "]",
}

var separators = []string{" ", "\n", "\t", " // note\n", " /* c */ ", "\n\n"}

func genSource(t *rapid.T) string {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(rapid.SampledFrom(fragments).Draw(t, "frag"))
		b.WriteString(rapid.SampledFrom(separators).Draw(t, "sep"))
	}
	return b.String()
}

func lexAll(src string, keep bool) []token.Token {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("p.rs", []byte(src)))
	return lexer.New(file, lexer.Options{KeepTrivia: keep}).Tokens()
}

// Concatenating leading trivia and token text restores the input byte for byte.
func TestRoundTripWithTrivia(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := genSource(t)
		var b strings.Builder
		last := uint32(0)
		for _, tok := range lexAll(src, true) {
			if tok.Kind == token.EOF {
				break
			}
			for _, tv := range tok.Leading {
				b.WriteString(tv.Text)
			}
			b.WriteString(tok.Text)
			last = tok.Span.End
		}
		// trailing trivia before EOF is not attached to any token
		b.WriteString(src[last:])
		if b.String() != src {
			t.Fatalf("round trip mismatch:\nsrc: %q\ngot: %q", src, b.String())
		}
	})
}

// Re-lexing the space-joined token texts yields the same token stream.
func TestRelexTokenTexts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := lexAll(genSource(t), false)
		texts := make([]string, 0, len(first))
		for _, tok := range first {
			texts = append(texts, tok.Text)
		}
		second := lexAll(strings.Join(texts, " "), false)
		if len(first) != len(second) {
			t.Fatalf("token count changed: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i].Kind != second[i].Kind || first[i].Text != second[i].Text {
				t.Fatalf("token %d differs: %v(%q) vs %v(%q)", i, first[i].Kind, first[i].Text, second[i].Kind, second[i].Text)
			}
		}
	})
}
