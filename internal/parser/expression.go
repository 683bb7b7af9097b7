package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/token"
)

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(precAssignment)
}

// parseCondExpr parses an if/while condition where `{` starts the body.
func (p *Parser) parseCondExpr() (ast.ExprID, bool) {
	saved := p.noStruct
	p.noStruct = true
	defer func() { p.noStruct = saved }()
	return p.parseExpr()
}

// parseBinaryExpr — разбор бинарных выражений методом Pratt.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		op := p.peek()
		prec, rightAssoc, isBin := binaryPrec(op.Kind)
		if !isBin || prec < minPrec {
			return left, true
		}
		p.advance()
		next := prec + 1
		if rightAssoc {
			next = prec
		}
		right, ok := p.parseBinaryExpr(next)
		if !ok {
			return ast.NoExprID, false
		}
		sp := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(sp, op.Kind, left, right)
	}
}

func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Minus:
		op = ast.UnaryNeg
	case token.Bang:
		op = ast.UnaryNot
	case token.Tilde:
		op = ast.UnaryOwn
	case token.Star:
		op = ast.UnaryDeref
	case token.Amp:
		op = ast.UnaryRef
		if p.peekN(1).Kind == token.KwMut {
			p.advance()
			op = ast.UnaryRefMut
		}
	case token.AndAnd:
		// &&x == &(&x)
		p.advance()
		inner, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		sp := tok.Span.Cover(p.lastSpan)
		inner = p.arenas.Exprs.NewUnary(sp, ast.UnaryRef, inner)
		return p.arenas.Exprs.NewUnary(sp, ast.UnaryRef, inner), true
	default:
		return p.parsePostfixExpr()
	}
	p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewUnary(tok.Span.Cover(p.lastSpan), op, operand), true
}

func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		start := p.arenas.Exprs.Get(expr).Span
		switch p.peek().Kind {
		case token.LParen:
			open := p.advance()
			args, ok := p.parseExprList(open, token.RParen)
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewCall(start.Cover(p.lastSpan), expr, args)
		case token.LBracket:
			open := p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			if _, ok := p.closeDelim(open, token.RBracket); !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewIndex(start.Cover(p.lastSpan), expr, index)
		case token.Dot:
			p.advance()
			name := p.peek()
			if name.Kind != token.Ident && name.Kind != token.IntLit {
				p.errExpected(diag.SynExpectIdentifier, "field name", "method name")
				return ast.NoExprID, false
			}
			p.advance()
			nameID := p.arenas.Strings.InternIdent(name.Text)
			if name.Kind == token.Ident && p.at(token.LParen) {
				open := p.advance()
				args, ok := p.parseExprList(open, token.RParen)
				if !ok {
					return ast.NoExprID, false
				}
				expr = p.arenas.Exprs.NewMethodCall(start.Cover(p.lastSpan), expr, nameID, name.Span, args)
				continue
			}
			expr = p.arenas.Exprs.NewField(start.Cover(p.lastSpan), expr, nameID, name.Span)
		default:
			return expr, true
		}
	}
}

// parseExprList parses `e, e, ...` up to closeKind; open is already eaten.
func (p *Parser) parseExprList(open token.Token, closeKind token.Kind) ([]ast.ExprID, bool) {
	var list []ast.ExprID
	for !p.atOr(closeKind, token.EOF) {
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		list = append(list, e)
		if _, comma := p.eat(token.Comma); !comma {
			break
		}
	}
	if _, ok := p.closeDelim(open, closeKind); !ok {
		return nil, false
	}
	return list, true
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.CharLit, token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, tok.Kind, tok.Text), true
	case token.Ident, token.KwSelf, token.KwSuper, token.KwCrate, token.ColonColon:
		return p.parsePathExpr()
	case token.LParen:
		return p.parseParenExpr()
	case token.LBracket:
		open := p.advance()
		elems, ok := p.parseExprList(open, token.RBracket)
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewList(ast.ExprArray, open.Span.Cover(p.lastSpan), elems), true
	case token.LBrace:
		return p.parseBlockExpr(), true
	case token.KwIf:
		return p.parseIfExpr()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseCondExpr()
		if !ok {
			return ast.NoExprID, false
		}
		body, ok := p.parseBlockAfter("while")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLoop(tok.Span.Cover(p.lastSpan), cond, body), true
	case token.KwLoop:
		p.advance()
		body, ok := p.parseBlockAfter("loop")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLoop(tok.Span.Cover(p.lastSpan), ast.NoExprID, body), true
	case token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if p.startsExpr() {
			v, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			value = v
		}
		return p.arenas.Exprs.NewReturn(tok.Span.Cover(p.lastSpan), value), true
	default:
		p.errExpected(diag.SynExpectExpression, "expression")
		return ast.NoExprID, false
	}
}

// startsExpr reports whether the current token can begin an expression.
func (p *Parser) startsExpr() bool {
	switch p.peek().Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.CharLit, token.KwTrue, token.KwFalse,
		token.Ident, token.KwSelf, token.KwSuper, token.KwCrate, token.ColonColon,
		token.LParen, token.LBracket, token.LBrace, token.KwIf, token.KwWhile, token.KwLoop, token.KwReturn,
		token.Minus, token.Bang, token.Tilde, token.Star, token.Amp, token.AndAnd:
		return true
	default:
		return false
	}
}

// path, name!(args) или Path { field: value }
func (p *Parser) parsePathExpr() (ast.ExprID, bool) {
	path, ok := p.parsePath()
	if !ok {
		return ast.NoExprID, false
	}
	if p.at(token.Bang) && len(path.Segments) == 1 && !path.Global && path.Segments[0].Kind == ast.SegIdent &&
		p.peekN(1).Kind == token.LParen {
		p.advance() // !
		open := p.advance()
		args, ok := p.parseExprList(open, token.RParen)
		if !ok {
			return ast.NoExprID, false
		}
		seg := path.Segments[0]
		return p.arenas.Exprs.NewMacro(path.Span.Cover(p.lastSpan), seg.Name, seg.Span, args), true
	}
	if p.at(token.LBrace) && !p.noStruct {
		return p.parseStructLit(path)
	}
	return p.arenas.Exprs.NewPath(path), true
}

func (p *Parser) parseStructLit(path ast.Path) (ast.ExprID, bool) {
	open := p.advance()
	var fields []ast.StructLitField
	for !p.atOr(token.RBrace, token.EOF) {
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoExprID, false
		}
		field := ast.StructLitField{Name: name, NameSpan: nameSpan}
		if _, colon := p.eat(token.Colon); colon {
			saved := p.noStruct
			p.noStruct = false
			field.Value, ok = p.parseExpr()
			p.noStruct = saved
			if !ok {
				return ast.NoExprID, false
			}
		}
		fields = append(fields, field)
		if _, comma := p.eat(token.Comma); !comma {
			break
		}
	}
	if _, ok := p.closeDelim(open, token.RBrace); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewStruct(path.Span.Cover(p.lastSpan), path, fields), true
}

// () | (e) | (e,) | (a, b)
func (p *Parser) parseParenExpr() (ast.ExprID, bool) {
	open := p.advance()
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	if _, ok := p.eat(token.RParen); ok {
		return p.arenas.Exprs.NewList(ast.ExprTuple, open.Span.Cover(p.lastSpan), nil), true
	}
	var elems []ast.ExprID
	trailing := false
	for !p.atOr(token.RParen, token.EOF) {
		e, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, e)
		_, trailing = p.eat(token.Comma)
		if !trailing {
			break
		}
	}
	if _, ok := p.closeDelim(open, token.RParen); !ok {
		return ast.NoExprID, false
	}
	sp := open.Span.Cover(p.lastSpan)
	if len(elems) == 1 && !trailing {
		return p.arenas.Exprs.NewList(ast.ExprParen, sp, elems), true
	}
	return p.arenas.Exprs.NewList(ast.ExprTuple, sp, elems), true
}

// if cond { } [else (if ... | { })]
func (p *Parser) parseIfExpr() (ast.ExprID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseCondExpr()
	if !ok {
		return ast.NoExprID, false
	}
	then, ok := p.parseBlockAfter("if")
	if !ok {
		return ast.NoExprID, false
	}
	els := ast.NoExprID
	if _, ok := p.eat(token.KwElse); ok {
		if p.at(token.KwIf) {
			els, ok = p.parseIfExpr()
		} else {
			els, ok = p.parseBlockAfter("else")
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
	return p.arenas.Exprs.NewIf(ifTok.Span.Cover(p.lastSpan), cond, then, els), true
}

func (p *Parser) parseBlockAfter(what string) (ast.ExprID, bool) {
	if !p.at(token.LBrace) {
		p.errExpected(diag.SynExpectBody, "'{' after '"+what+"'")
		return ast.NoExprID, false
	}
	return p.parseBlockExpr(), true
}

// isBlockLike reports whether e ends with '}' and may omit ';' as a statement.
func (p *Parser) isBlockLike(e ast.ExprID) bool {
	switch p.arenas.Exprs.Get(e).Kind {
	case ast.ExprBlock, ast.ExprIf, ast.ExprWhile, ast.ExprLoop:
		return true
	default:
		return false
	}
}
