package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// parsePattern: _ | [mut] name | (p, ...)
func (p *Parser) parsePattern() (ast.PatID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return p.arenas.Pats.New(ast.Pattern{Kind: ast.PatWild, Span: tok.Span}), true
	case token.KwMut, token.Ident:
		_, mut := p.eat(token.KwMut)
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoPatID, false
		}
		return p.arenas.Pats.New(ast.Pattern{Kind: ast.PatIdent, Span: tok.Span.Cover(nameSpan), Name: name, Mut: mut}), true
	case token.LParen:
		open := p.advance()
		var elems []ast.PatID
		for !p.atOr(token.RParen, token.EOF) {
			elem, ok := p.parsePattern()
			if !ok {
				return ast.NoPatID, false
			}
			elems = append(elems, elem)
			if _, comma := p.eat(token.Comma); !comma {
				break
			}
		}
		if _, ok := p.closeDelim(open, token.RParen); !ok {
			return ast.NoPatID, false
		}
		return p.arenas.Pats.New(ast.Pattern{Kind: ast.PatTuple, Span: open.Span.Cover(p.lastSpan), Elems: elems}), true
	default:
		p.errExpected(diag.SynExpectPattern, "pattern")
		return ast.NoPatID, false
	}
}
