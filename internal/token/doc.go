// Package token defines lexical token kinds and trivia.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - Whitespace and comments never appear in the main stream; they ride on the
//     next token as Leading trivia.
//   - Primitive type names (u32, str, bool, ...) are identifiers. The symbol
//     layer recognizes them through the prelude.
package token
