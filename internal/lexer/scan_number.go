package lexer

import (
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// scanNumber: 0, 123, 1_000, 0b1010, 0o17, 0xff, 1.5, 1e-3, with an optional
// type suffix glued on (25u, 5u32, 1.0f64). Suffix stays in Token.Text.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x', 'X':
			digit = isHex
		}
		if digit != nil {
			lx.cursor.Off += 2
			n := 0
			for b := lx.cursor.Peek(); digit(b) || b == '_'; b = lx.cursor.Peek() {
				if b != '_' {
					n++
				}
				lx.cursor.Bump()
			}
			if n == 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadNumber, sp, "expected digits after base prefix")
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
			}
			return lx.finishNumber(start, kind)
		}
	}

	lx.eatDecimals()

	// дробная часть только если за точкой цифра: "1.foo()" и "1..2" не числа
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDecimals()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			lx.cursor.Reset(mark)
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "expected digit after exponent")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		kind = token.FloatLit
		lx.eatDecimals()
	}

	return lx.finishNumber(start, kind)
}

func (lx *Lexer) eatDecimals() {
	for b := lx.cursor.Peek(); isDec(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}

// finishNumber consumes a literal suffix (u, u32, i64, f32, uint, ...).
func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	if isIdentStartByte(lx.cursor.Peek()) {
		suffixStart := lx.cursor.Mark()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		suffix := lx.text(lx.cursor.SpanFrom(suffixStart))
		if !validSuffix(suffix) {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "invalid suffix '"+suffix+"' on number literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		if suffix[0] == 'f' {
			kind = token.FloatLit
		}
	}
	return lx.emit(kind, start)
}

func validSuffix(s string) bool {
	switch s {
	case "u", "i", "f", "uint", "int", "float",
		"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64":
		return true
	default:
		return false
	}
}
