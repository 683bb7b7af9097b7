package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

// use alias = path; | use path [as alias]; | use path::{tree, ...};
func (p *Parser) parseUseItem(hdr ast.Header) (ast.ItemID, bool) {
	p.advance() // use

	var entries []ast.UseEntry
	if p.at(token.Ident) && p.peekN(1).Kind == token.Assign {
		alias, aliasSpan, _ := p.parseIdent()
		p.advance() // =
		path, ok := p.parsePath()
		if !ok {
			return ast.NoItemID, false
		}
		entries = append(entries, ast.UseEntry{
			Alias:     alias,
			AliasSpan: aliasSpan,
			Path:      path,
			Renamed:   true,
			Span:      aliasSpan.Cover(path.Span),
		})
	} else if !p.parseUseTree(ast.Path{}, &entries) {
		return ast.NoItemID, false
	}
	if !p.expectSemi() {
		return ast.NoItemID, false
	}
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	if len(entries) > 0 {
		hdr.Name, hdr.NameSpan = entries[0].Alias, entries[0].AliasSpan
	}
	return p.arenas.Items.NewUse(hdr, entries), true
}

// parseUseTree appends the bindings of one tree under prefix.
func (p *Parser) parseUseTree(prefix ast.Path, out *[]ast.UseEntry) bool {
	start := p.peek().Span
	path, ok := p.parsePath()
	if !ok {
		return false
	}
	full := joinPaths(prefix, path)

	if p.at(token.ColonColon) {
		p.advance()
		if star, ok := p.eat(token.Star); ok {
			p.err(diag.SynUnsupportedGlob, star.Span, "glob imports are not supported")
			return true
		}
		open, _ := p.eat(token.LBrace)
		for !p.atOr(token.RBrace, token.EOF) {
			if !p.parseUseTree(full, out) {
				p.resyncList(token.RBrace)
			}
			if _, comma := p.eat(token.Comma); !comma {
				break
			}
		}
		_, closed := p.closeDelim(open, token.RBrace)
		return closed
	}

	entry := ast.UseEntry{Path: full, Span: start.Cover(p.lastSpan)}
	if _, as := p.eat(token.KwAs); as {
		alias, aliasSpan, ok := p.parseIdent()
		if !ok {
			return false
		}
		entry.Alias, entry.AliasSpan, entry.Renamed = alias, aliasSpan, true
		entry.Span = entry.Span.Cover(aliasSpan)
		*out = append(*out, entry)
		return true
	}

	last := full.Last()
	switch {
	case last.Kind == ast.SegIdent:
		entry.Alias, entry.AliasSpan = last.Name, last.Span
	case last.Kind == ast.SegSelf && len(full.Segments) > 1 && full.Segments[len(full.Segments)-2].Kind == ast.SegIdent:
		// a::{self} binds a
		full.Segments = full.Segments[:len(full.Segments)-1]
		entry.Path = full
		prev := full.Last()
		entry.Alias, entry.AliasSpan = prev.Name, last.Span
	default:
		p.err(diag.SynExpectIdentifier, last.Span, "this import needs a name, add 'as <name>'")
		return true
	}
	*out = append(*out, entry)
	return true
}

func joinPaths(prefix, tail ast.Path) ast.Path {
	if prefix.IsZero() {
		return tail
	}
	segs := make([]ast.PathSeg, 0, len(prefix.Segments)+len(tail.Segments))
	segs = append(segs, prefix.Segments...)
	segs = append(segs, tail.Segments...)
	return ast.Path{Segments: segs, Span: prefix.Span.Cover(tail.Span), Global: prefix.Global}
}
