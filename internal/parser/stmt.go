package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/token"
)

// parseBlockExpr parses `{ stmts [tail] }`. The caller guarantees '{'.
func (p *Parser) parseBlockExpr() ast.ExprID {
	open := p.advance()
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	var stmts []ast.StmtID
	tail := ast.NoExprID
	for !p.atOr(token.RBrace, token.EOF) {
		if tail.IsValid() {
			// выражение без ';' не в хвосте блока
			stmts = append(stmts, p.arenas.Stmts.NewExpr(p.arenas.Exprs.Get(tail).Span, tail, false))
			tail = ast.NoExprID
		}
		stmt, expr, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		if expr.IsValid() {
			tail = expr
			continue
		}
		if stmt.IsValid() {
			stmts = append(stmts, stmt)
		}
	}
	p.closeDelim(open, token.RBrace)
	return p.arenas.Exprs.NewBlock(open.Span.Cover(p.lastSpan), stmts, tail)
}

// parseStmt returns either a statement or, for an expression that is
// directly followed by '}', a tail expression.
func (p *Parser) parseStmt() (ast.StmtID, ast.ExprID, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Semicolon:
		p.advance()
		return p.arenas.Stmts.NewEmpty(tok.Span), ast.NoExprID, true
	case tok.Kind == token.KwLet:
		return p.parseLetStmt()
	case tok.IsItemStart():
		item, ok := p.parseItem()
		if !ok {
			return ast.NoStmtID, ast.NoExprID, false
		}
		return p.arenas.Stmts.NewItem(p.arenas.Items.Get(item).Span, item), ast.NoExprID, true
	}

	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, ast.NoExprID, false
	}
	sp := p.arenas.Exprs.Get(expr).Span
	if _, semi := p.eat(token.Semicolon); semi {
		return p.arenas.Stmts.NewExpr(sp.Cover(p.lastSpan), expr, true), ast.NoExprID, true
	}
	if p.at(token.RBrace) {
		return ast.NoStmtID, expr, true
	}
	if p.isBlockLike(expr) {
		return p.arenas.Stmts.NewExpr(sp, expr, false), ast.NoExprID, true
	}
	p.expectSemi()
	return p.arenas.Stmts.NewExpr(sp, expr, false), ast.NoExprID, true
}

// let pat [: T] [= expr];
func (p *Parser) parseLetStmt() (ast.StmtID, ast.ExprID, bool) {
	letTok := p.advance()
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoStmtID, ast.NoExprID, false
	}
	ty := ast.NoTypeID
	if _, colon := p.eat(token.Colon); colon {
		if ty, ok = p.parseType(); !ok {
			return ast.NoStmtID, ast.NoExprID, false
		}
	}
	value := ast.NoExprID
	if _, eq := p.eat(token.Assign); eq {
		if value, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, ast.NoExprID, false
		}
	}
	p.expectSemi()
	return p.arenas.Stmts.NewLet(letTok.Span.Cover(p.lastSpan), pat, ty, value), ast.NoExprID, true
}

// resyncStmt skips to the end of the broken statement: a ';' at depth 0
// is consumed, a closing '}' of the block is left for the caller.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
