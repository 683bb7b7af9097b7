package parser

import (
	"fmt"
	"strings"

	"rustdex/internal/diag"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

// peekN returns the n-th upcoming token (0 is the current one).
func (p *Parser) peekN(n int) token.Token {
	for len(p.buf) <= n {
		tok := p.lx.Next()
		if tok.Kind == token.Invalid {
			// лексер уже сообщил об ошибке
			continue
		}
		p.buf = append(p.buf, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if n >= len(p.buf) {
		return p.buf[len(p.buf)-1]
	}
	return p.buf[n]
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

// at — текущий токен имеет kind k?
func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// advance consumes the current token. EOF is never consumed.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok
	}
	p.buf = p.buf[1:]
	p.lastSpan = tok.Span
	return tok
}

// eat consumes the current token when it has kind k.
func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes k or reports code at the current token. Nothing is
// consumed on failure.
func (p *Parser) expect(k token.Kind, code diag.Code) (token.Token, bool) {
	if tok, ok := p.eat(k); ok {
		return tok, true
	}
	p.errExpected(code, k.Describe())
	return token.Token{}, false
}

// expectSemi reports a missing ';' right after the previous token and
// suggests inserting it.
func (p *Parser) expectSemi() bool {
	if _, ok := p.eat(token.Semicolon); ok {
		return true
	}
	at := p.lastSpan.ZeroideToEnd()
	got := p.peek()
	msg := fmt.Sprintf("expected ';', got %s", describeTok(got))
	if b := p.errBuilder(diag.SynExpectSemicolon, at, msg); b != nil {
		b.WithFix("insert ';'", diag.FixEdit{Span: at, NewText: ";"}).Emit()
	}
	return false
}

// closeDelim expects the closing pair of open. When it is missing the
// error points at the opening delimiter.
func (p *Parser) closeDelim(open token.Token, closeKind token.Kind) (token.Token, bool) {
	if tok, ok := p.eat(closeKind); ok {
		return tok, true
	}
	msg := fmt.Sprintf("unclosed delimiter %s, expected %s before %s",
		open.Kind.Describe(), closeKind.Describe(), describeTok(p.peek()))
	if b := p.errBuilder(diag.SynUnclosedDelimiter, open.Span, msg); b != nil {
		b.WithNote(p.peek().Span, "delimiter should be closed here").Emit()
	}
	return token.Token{Kind: closeKind, Span: p.lastSpan.ZeroideToEnd()}, false
}

// errExpected reports "expected A, B or C, got 'x'" at the current token.
func (p *Parser) errExpected(code diag.Code, what ...string) {
	got := p.peek()
	p.err(code, got.Span, fmt.Sprintf("expected %s, got %s", joinExpected(what), describeTok(got)))
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	if b := p.errBuilder(code, sp, msg); b != nil {
		b.Emit()
	}
}

// errBuilder counts the error and returns nil once the budget is spent.
func (p *Parser) errBuilder(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	if p.opts.Reporter == nil || p.opts.Enough() {
		p.opts.CurrentErrors++
		return nil
	}
	p.opts.CurrentErrors++
	return diag.ReportError(p.opts.Reporter, code, sp, msg)
}

func (p *Parser) warn(code diag.Code, sp source.Span, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	diag.ReportWarning(p.opts.Reporter, code, sp, msg).Emit()
}

func joinExpected(what []string) string {
	switch len(what) {
	case 0:
		return "something else"
	case 1:
		return what[0]
	default:
		return strings.Join(what[:len(what)-1], ", ") + " or " + what[len(what)-1]
	}
}

func describeTok(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return fmt.Sprintf("identifier '%s'", tok.Text)
	default:
		if tok.Text != "" {
			return fmt.Sprintf("'%s'", tok.Text)
		}
		return tok.Kind.Describe()
	}
}

// skipAttributes drops `#[...]` and `#![...]` attributes.
func (p *Parser) skipAttributes() {
	for p.at(token.Hash) {
		p.advance()
		p.eat(token.Bang)
		open, ok := p.expect(token.LBracket, diag.SynUnexpectedToken)
		if !ok {
			return
		}
		p.skipBalanced(open)
	}
}

// skipBalanced consumes tokens up to the partner of open (already eaten).
func (p *Parser) skipBalanced(open token.Token) {
	closeKind := closerOf(open.Kind)
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		switch {
		case k == open.Kind:
			depth++
		case k == closeKind:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		}
		p.advance()
	}
	p.closeDelim(open, closeKind)
}

// skipGenerics drops a `<...>` list. Generics are not modeled.
func (p *Parser) skipGenerics() {
	if !p.at(token.Lt) {
		return
	}
	open := p.advance()
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Lt:
			depth++
		case token.Gt:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case token.LBrace, token.Semicolon:
			p.closeDelim(open, token.Gt)
			return
		}
		p.advance()
	}
	p.closeDelim(open, token.Gt)
}

func closerOf(k token.Kind) token.Kind {
	switch k {
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	case token.LBrace:
		return token.RBrace
	case token.Lt:
		return token.Gt
	default:
		return token.Invalid
	}
}

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	tok := p.peek()
	if tok.Kind != token.Ident {
		p.errExpected(diag.SynExpectIdentifier, "identifier")
		return source.NoStringID, tok.Span, false
	}
	p.advance()
	return p.arenas.Strings.InternIdent(tok.Text), tok.Span, true
}
