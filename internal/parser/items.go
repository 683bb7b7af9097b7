package parser

import (
	"strconv"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

type fnContext uint8

const (
	fnFree  fnContext = iota // free function, body required
	fnTrait                  // trait method, body optional
	fnImpl                   // impl method, body required
)

// mod name; | mod name { items }
func (p *Parser) parseModItem(hdr ast.Header) (ast.ItemID, bool) {
	p.advance() // mod
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	hdr.Name, hdr.NameSpan = name, nameSpan

	if _, semi := p.eat(token.Semicolon); semi {
		hdr.Span = hdr.Span.Cover(p.lastSpan)
		return p.arenas.Items.NewModule(hdr, nil, false, source.Span{}), true
	}
	open, ok := p.eat(token.LBrace)
	if !ok {
		p.errExpected(diag.SynExpectBody, "';'", "'{'")
		return ast.NoItemID, false
	}
	p.beginChildren()
	items, body := p.parseItemList(open)
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	id := p.arenas.Items.NewModule(hdr, items, true, body)
	p.adoptChildren(id)
	return id, true
}

// struct S; | struct S { a: T, ... } | struct S(T, ...);
func (p *Parser) parseStructItem(hdr ast.Header) (ast.ItemID, bool) {
	p.advance() // struct
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	hdr.Name, hdr.NameSpan = name, nameSpan
	p.skipGenerics()

	var fields []ast.FieldID
	unit := false
	switch p.peek().Kind {
	case token.Semicolon:
		p.advance()
		unit = true
	case token.LBrace:
		open := p.advance()
		for !p.atOr(token.RBrace, token.EOF) {
			f, ok := p.parseNamedField()
			if !ok {
				p.resyncList(token.RBrace)
				if !p.at(token.Comma) {
					continue
				}
			} else {
				fields = append(fields, f)
			}
			if _, comma := p.eat(token.Comma); !comma {
				break
			}
		}
		p.closeDelim(open, token.RBrace)
	case token.LParen:
		open := p.advance()
		for i := 0; !p.atOr(token.RParen, token.EOF); i++ {
			start := p.peek().Span
			vis := p.parseFieldVisibility()
			ty, ok := p.parseType()
			if !ok {
				p.resyncList(token.RParen)
			} else {
				fields = append(fields, p.arenas.Items.NewField(ast.StructField{
					Name:       p.arenas.Strings.Intern(strconv.Itoa(i)),
					NameSpan:   start,
					Type:       ty,
					Visibility: vis,
					Span:       start.Cover(p.lastSpan),
				}))
			}
			if _, comma := p.eat(token.Comma); !comma {
				break
			}
		}
		p.closeDelim(open, token.RParen)
		p.expectSemi()
	default:
		p.errExpected(diag.SynExpectBody, "';'", "'{'", "'('")
		return ast.NoItemID, false
	}
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	return p.arenas.Items.NewStruct(hdr, fields, unit), true
}

func (p *Parser) parseFieldVisibility() ast.Visibility {
	if _, ok := p.eat(token.KwPub); ok {
		return ast.VisPublic
	}
	return ast.VisPrivate
}

func (p *Parser) parseNamedField() (ast.FieldID, bool) {
	start := p.peek().Span
	vis := p.parseFieldVisibility()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoFieldID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
		return ast.NoFieldID, false
	}
	ty, ok := p.parseType()
	if !ok {
		return ast.NoFieldID, false
	}
	return p.arenas.Items.NewField(ast.StructField{
		Name:       name,
		NameSpan:   nameSpan,
		Type:       ty,
		Visibility: vis,
		Span:       start.Cover(p.lastSpan),
	}), true
}

// resyncList skips to the next ',' or the closer at depth 0. Stray ')' and
// ']' that do not close the list are skipped; '}' always stops.
func (p *Parser) resyncList(closeKind token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		switch k {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			if depth == 0 {
				if k == closeKind || k == token.RBrace {
					return
				}
				// лишняя закрывающая скобка внутри списка
				p.advance()
				continue
			}
			depth--
		case token.Comma:
			if depth == 0 {
				return
			}
		case token.Semicolon:
			if depth == 0 && closeKind != token.RBrace {
				return
			}
		}
		p.advance()
	}
}

// trait T [: A + B] { fn ...; }
func (p *Parser) parseTraitItem(hdr ast.Header) (ast.ItemID, bool) {
	p.advance() // trait
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	hdr.Name, hdr.NameSpan = name, nameSpan
	p.skipGenerics()

	var supers []ast.Path
	if _, colon := p.eat(token.Colon); colon {
		for {
			path, ok := p.parsePath()
			if !ok {
				return ast.NoItemID, false
			}
			supers = append(supers, path)
			if _, plus := p.eat(token.Plus); !plus {
				break
			}
		}
	}
	open, ok := p.expect(token.LBrace, diag.SynExpectBody)
	if !ok {
		return ast.NoItemID, false
	}
	p.beginChildren()
	items := p.parseMethodList(open, fnTrait)
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	id := p.arenas.Items.NewTrait(hdr, supers, items)
	p.adoptChildren(id)
	return id, true
}

// impl Type { ... } | impl Trait for Type { ... }
func (p *Parser) parseImplItem(hdr ast.Header) (ast.ItemID, bool) {
	implTok := p.advance()
	p.skipGenerics()
	if hdr.Visibility == ast.VisPublic {
		p.warn(diag.SynVisibilityNotAllowed, hdr.Span, "'pub' has no effect on impl blocks")
	}

	first, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	var (
		trait    ast.Path
		hasTrait bool
		target   = first
	)
	if _, isFor := p.eat(token.KwFor); isFor {
		te := p.arenas.Types.Get(first)
		if te.Kind != ast.TypeExprPath {
			p.err(diag.SynUnexpectedToken, te.Span, "expected a trait path before 'for'")
			return ast.NoItemID, false
		}
		trait, hasTrait = te.Path, true
		if target, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}
	open, ok := p.expect(token.LBrace, diag.SynExpectBody)
	if !ok {
		return ast.NoItemID, false
	}
	header := implTok.Span.Cover(open.Span)
	p.beginChildren()
	items := p.parseMethodList(open, fnImpl)
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	id := p.arenas.Items.NewImpl(hdr, trait, hasTrait, target, items, header)
	p.adoptChildren(id)
	return id, true
}

// parseMethodList parses fns inside a trait or impl body.
func (p *Parser) parseMethodList(open token.Token, ctx fnContext) []ast.ItemID {
	var items []ast.ItemID
	for !p.atOr(token.RBrace, token.EOF) {
		start := p.peek().Span
		p.skipAttributes()
		vis := ast.VisPrivate
		if pub, ok := p.eat(token.KwPub); ok {
			vis = ast.VisPublic
			if ctx == fnTrait {
				p.err(diag.SynVisibilityNotAllowed, pub.Span, "'pub' is not allowed on trait methods")
			}
		}
		if !p.at(token.KwFn) {
			p.errExpected(diag.SynExpectItem, "'fn'")
			// resyncItem stops on item keywords, so the offending one goes first
			if p.peek().IsItemStart() {
				p.advance()
			}
			p.resyncItem()
			continue
		}
		id, ok := p.parseFnItem(ast.Header{Span: start, Visibility: vis}, ctx)
		if !ok {
			p.resyncItem()
			continue
		}
		p.noteChild(id)
		items = append(items, id)
	}
	p.closeDelim(open, token.RBrace)
	return items
}

// fn name(params) [-> T] (block | ;)
func (p *Parser) parseFnItem(hdr ast.Header, ctx fnContext) (ast.ItemID, bool) {
	p.advance() // fn
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	hdr.Name, hdr.NameSpan = name, nameSpan
	p.skipGenerics()

	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken)
	if !ok {
		return ast.NoItemID, false
	}
	params := p.parseParams(open, ctx)

	result := ast.NoTypeID
	if _, arrow := p.eat(token.Arrow); arrow {
		if result, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}

	body := ast.NoExprID
	p.beginChildren()
	switch {
	case p.at(token.LBrace):
		body = p.parseBlockExpr()
	case p.at(token.Semicolon) && ctx == fnTrait:
		p.advance()
	default:
		p.adoptChildren(ast.NoItemID)
		if ctx == fnTrait {
			p.errExpected(diag.SynExpectBody, "'{'", "';'")
		} else {
			p.errExpected(diag.SynExpectBody, "'{'")
		}
		return ast.NoItemID, false
	}
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	id := p.arenas.Items.NewFn(hdr, params, result, body)
	p.adoptChildren(id)
	return id, true
}

func (p *Parser) parseParams(open token.Token, ctx fnContext) []ast.ParamID {
	var params []ast.ParamID
	for i := 0; !p.atOr(token.RParen, token.EOF); i++ {
		param, ok := p.parseParam(i == 0 && ctx != fnFree)
		if !ok {
			p.resyncList(token.RParen)
		} else {
			params = append(params, param)
		}
		if _, comma := p.eat(token.Comma); !comma {
			break
		}
	}
	p.closeDelim(open, token.RParen)
	return params
}

// parseParam parses `pat: Type` or, in first position of a method, a receiver.
func (p *Parser) parseParam(allowSelf bool) (ast.ParamID, bool) {
	start := p.peek().Span
	if allowSelf {
		if kind, ok := p.tryReceiver(); ok {
			return p.arenas.Items.NewParam(ast.FnParam{Self: kind, Span: start.Cover(p.lastSpan)}), true
		}
	}
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoParamID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectType); !ok {
		return ast.NoParamID, false
	}
	ty, ok := p.parseType()
	if !ok {
		return ast.NoParamID, false
	}
	return p.arenas.Items.NewParam(ast.FnParam{Pattern: pat, Type: ty, Span: start.Cover(p.lastSpan)}), true
}

// tryReceiver: self | &self | &mut self | ~self
func (p *Parser) tryReceiver() (ast.SelfKind, bool) {
	switch p.peek().Kind {
	case token.KwSelf:
		if p.peekN(1).Kind == token.ColonColon {
			return ast.SelfNone, false
		}
		p.advance()
		return ast.SelfValue, true
	case token.Amp:
		if p.peekN(1).Kind == token.KwSelf {
			p.advance()
			p.advance()
			return ast.SelfRef, true
		}
		if p.peekN(1).Kind == token.KwMut && p.peekN(2).Kind == token.KwSelf {
			p.advance()
			p.advance()
			p.advance()
			return ast.SelfRefMut, true
		}
	case token.Tilde:
		if p.peekN(1).Kind == token.KwSelf {
			p.advance()
			p.advance()
			return ast.SelfOwned, true
		}
	}
	return ast.SelfNone, false
}

// static [mut] NAME: T = expr;
func (p *Parser) parseStaticItem(hdr ast.Header) (ast.ItemID, bool) {
	p.advance() // static
	_, mut := p.eat(token.KwMut)
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	hdr.Name, hdr.NameSpan = name, nameSpan
	if _, ok := p.expect(token.Colon, diag.SynExpectType); !ok {
		return ast.NoItemID, false
	}
	ty, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken); !ok {
		return ast.NoItemID, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoItemID, false
	}
	p.expectSemi()
	hdr.Span = hdr.Span.Cover(p.lastSpan)
	return p.arenas.Items.NewStatic(hdr, ty, value, mut), true
}
