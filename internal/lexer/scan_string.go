package lexer

import (
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// scanString: "..." with backslash escapes. Strings may span lines.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '"':
			return lx.emit(token.StringLit, start)
		case '\\':
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, openingSpan(sp), "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// scanChar: 'a', '\n', '\u{41}'. A quote with no closing quote on the same
// line is reported and consumed up to the end of the line.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''
	if lx.cursor.Peek() == '\\' {
		lx.cursor.Bump()
		if lx.cursor.Eat('u') {
			if lx.cursor.Eat('{') {
				for b := lx.cursor.Peek(); isHex(b); b = lx.cursor.Peek() {
					lx.cursor.Bump()
				}
				lx.cursor.Eat('}')
			}
		} else {
			lx.cursor.Bump()
		}
	} else if b := lx.cursor.Peek(); b != '\'' && b != '\n' {
		lx.bumpRune()
	}
	if lx.cursor.Eat('\'') {
		return lx.emit(token.CharLit, start)
	}
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' && lx.cursor.Peek() != '\'' {
		lx.cursor.Bump()
	}
	lx.cursor.Eat('\'')
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedChar, openingSpan(sp), "unterminated character literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
