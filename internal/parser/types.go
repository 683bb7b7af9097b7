package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// parseType: ~T | &[mut] T | [T] | () | (A, B) | path[<...>]
func (p *Parser) parseType() (ast.TypeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Tilde:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprOwned, Span: tok.Span.Cover(p.lastSpan), Elem: elem}), true
	case token.Amp, token.AndAnd:
		// && T — две ссылки подряд
		p.advance()
		_, mut := p.eat(token.KwMut)
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		sp := tok.Span.Cover(p.lastSpan)
		if tok.Kind == token.AndAnd {
			elem = p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprRef, Span: sp, Elem: elem, Mut: mut})
			mut = false
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprRef, Span: sp, Elem: elem, Mut: mut}), true
	case token.LBracket:
		open := p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		if _, ok := p.closeDelim(open, token.RBracket); !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprArray, Span: open.Span.Cover(p.lastSpan), Elem: elem}), true
	case token.LParen:
		open := p.advance()
		if _, ok := p.eat(token.RParen); ok {
			return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprUnit, Span: open.Span.Cover(p.lastSpan)}), true
		}
		var elems []ast.TypeID
		trailing := false
		for !p.atOr(token.RParen, token.EOF) {
			elem, ok := p.parseType()
			if !ok {
				return ast.NoTypeID, false
			}
			elems = append(elems, elem)
			_, trailing = p.eat(token.Comma)
			if !trailing {
				break
			}
		}
		if _, ok := p.closeDelim(open, token.RParen); !ok {
			return ast.NoTypeID, false
		}
		if len(elems) == 1 && !trailing {
			// (T) is just T
			return elems[0], true
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeExprTuple, Span: open.Span.Cover(p.lastSpan), Elems: elems}), true
	case token.Ident, token.KwSelf, token.KwSuper, token.KwCrate, token.ColonColon:
		path, ok := p.parsePath()
		if !ok {
			return ast.NoTypeID, false
		}
		p.skipGenerics()
		return p.arenas.Types.NewPath(path), true
	default:
		p.errExpected(diag.SynExpectType, "type")
		return ast.NoTypeID, false
	}
}
