package lexer

import (
	"testing"

	"rustdex/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte("a\nb") {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatalf("expected EOF behaviour at end")
	}
}

func TestPeek2AndPeekAt(t *testing.T) {
	cursor := NewCursor(createFile("ab"))
	if b0, b1, ok := cursor.Peek2(); !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("Peek2 at start: %q %q %v", b0, b1, ok)
	}
	cursor.Bump()
	if _, _, ok := cursor.Peek2(); ok {
		t.Fatalf("Peek2 must fail with one byte left")
	}
	if cursor.PeekAt(0) != 'b' || cursor.PeekAt(1) != 0 {
		t.Fatalf("PeekAt is wrong")
	}
}

func TestMarkReset(t *testing.T) {
	cursor := NewCursor(createFile("hello"))
	m := cursor.Mark()
	cursor.Bump()
	cursor.Bump()
	if sp := cursor.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("unexpected span %v", sp)
	}
	cursor.Reset(m)
	if cursor.Off != 0 || !cursor.Eat('h') || cursor.Eat('x') {
		t.Fatalf("Reset/Eat misbehave")
	}
}
