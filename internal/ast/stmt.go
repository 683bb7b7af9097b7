package ast

import (
	"rustdex/internal/source"
)

type StmtKind uint8

const (
	StmtLet  StmtKind = iota
	StmtExpr          // expression statement, with or without ';'
	StmtItem          // nested item inside a block
	StmtEmpty         // stray ';'
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// LetStmt: `let pat [: Type] [= value];`. Type and Value are optional.
type LetStmt struct {
	Pattern PatID
	Type    TypeID
	Value   ExprID
}

type ExprStmt struct {
	Expr ExprID
	Semi bool
}

type Stmts struct {
	Arena *Arena[Stmt]
	Lets  *Arena[LetStmt]
	Exprs *Arena[ExprStmt]
	Items *Arena[ItemID]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena: NewArena[Stmt](capHint),
		Lets:  NewArena[LetStmt](capHint / 2),
		Exprs: NewArena[ExprStmt](capHint / 2),
		Items: NewArena[ItemID](capHint / 8),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewLet(span source.Span, pat PatID, typ TypeID, value ExprID) StmtID {
	p := s.Lets.Allocate(LetStmt{Pattern: pat, Type: typ, Value: value})
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtLet, Span: span, Payload: PayloadID(p)}))
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID, semi bool) StmtID {
	p := s.Exprs.Allocate(ExprStmt{Expr: expr, Semi: semi})
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtExpr, Span: span, Payload: PayloadID(p)}))
}

func (s *Stmts) NewItem(span source.Span, item ItemID) StmtID {
	p := s.Items.Allocate(item)
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtItem, Span: span, Payload: PayloadID(p)}))
}

func (s *Stmts) NewEmpty(span source.Span) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtEmpty, Span: span}))
}

func (s *Stmts) Let(id StmtID) *LetStmt {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil
	}
	return s.Lets.Get(uint32(st.Payload))
}

func (s *Stmts) Expr(id StmtID) *ExprStmt {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil
	}
	return s.Exprs.Get(uint32(st.Payload))
}

func (s *Stmts) Item(id StmtID) ItemID {
	st := s.Get(id)
	if st == nil || st.Kind != StmtItem {
		return NoItemID
	}
	return *s.Items.Get(uint32(st.Payload))
}
