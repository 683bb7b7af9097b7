package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	for lexeme, want := range keywords {
		got, ok := LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v,%v want %v", lexeme, got, ok, want)
		}
		if got.String() != lexeme {
			t.Fatalf("%v.String() = %q, want %q", got, got.String(), lexeme)
		}
	}
	for _, s := range []string{"Mod", "u32", "str", "println", "self_", "_"} {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("%q must not be a keyword", s)
		}
	}
}
