package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// parsePath: ['::'] seg ('::' seg)*. The loop stops in front of '::{' and
// '::*' so use trees can pick them up.
func (p *Parser) parsePath() (ast.Path, bool) {
	var path ast.Path
	start := p.peek().Span
	if p.at(token.ColonColon) {
		p.advance()
		path.Global = true
	}
	for {
		seg, ok := p.parsePathSeg(len(path.Segments), path.Segments)
		if !ok {
			return ast.Path{}, false
		}
		path.Segments = append(path.Segments, seg)
		if !p.at(token.ColonColon) {
			break
		}
		next := p.peekN(1).Kind
		if next == token.LBrace || next == token.Star {
			break
		}
		p.advance()
	}
	path.Span = start.Cover(p.lastSpan)
	return path, true
}

func (p *Parser) parsePathSeg(pos int, prev []ast.PathSeg) (ast.PathSeg, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return ast.PathSeg{Kind: ast.SegIdent, Name: p.arenas.Strings.InternIdent(tok.Text), Span: tok.Span}, true
	case token.KwSelf, token.KwCrate:
		if pos != 0 {
			p.err(diag.SynUnexpectedToken, tok.Span, "'"+tok.Text+"' is only allowed at the start of a path")
			return ast.PathSeg{}, false
		}
		p.advance()
		kind := ast.SegSelf
		if tok.Kind == token.KwCrate {
			kind = ast.SegCrate
		}
		return ast.PathSeg{Kind: kind, Span: tok.Span}, true
	case token.KwSuper:
		// super допустим только после других self/super
		for _, s := range prev {
			if s.Kind != ast.SegSuper && s.Kind != ast.SegSelf {
				p.err(diag.SynUnexpectedToken, tok.Span, "'super' is only allowed at the start of a path")
				return ast.PathSeg{}, false
			}
		}
		p.advance()
		return ast.PathSeg{Kind: ast.SegSuper, Span: tok.Span}, true
	default:
		p.errExpected(diag.SynExpectIdentifier, "identifier", "'self'", "'super'", "'crate'")
		return ast.PathSeg{}, false
	}
}
