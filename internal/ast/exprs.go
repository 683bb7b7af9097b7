package ast

import (
	"rustdex/internal/source"
	"rustdex/internal/token"
)

// Exprs manages allocation of expressions and their payloads.
type Exprs struct {
	Arena       *Arena[Expr]
	Paths       *Arena[Path]
	Lits        *Arena[ExprLitData]
	Calls       *Arena[ExprCallData]
	MethodCalls *Arena[ExprMethodCallData]
	Fields      *Arena[ExprFieldData]
	Indices     *Arena[ExprIndexData]
	Unaries     *Arena[ExprUnaryData]
	Binaries    *Arena[ExprBinaryData]
	Lists       *Arena[ExprListData]
	Blocks      *Arena[ExprBlockData]
	Structs     *Arena[ExprStructData]
	Ifs         *Arena[ExprIfData]
	Loops       *Arena[ExprLoopData]
	Returns     *Arena[ExprReturnData]
	Macros      *Arena[ExprMacroData]
}

func NewExprs(capHint uint) *Exprs {
	small := capHint / 8
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Paths:       NewArena[Path](capHint / 2),
		Lits:        NewArena[ExprLitData](capHint / 4),
		Calls:       NewArena[ExprCallData](capHint / 4),
		MethodCalls: NewArena[ExprMethodCallData](small),
		Fields:      NewArena[ExprFieldData](small),
		Indices:     NewArena[ExprIndexData](small),
		Unaries:     NewArena[ExprUnaryData](small),
		Binaries:    NewArena[ExprBinaryData](capHint / 4),
		Lists:       NewArena[ExprListData](small),
		Blocks:      NewArena[ExprBlockData](small),
		Structs:     NewArena[ExprStructData](small),
		Ifs:         NewArena[ExprIfData](small),
		Loops:       NewArena[ExprLoopData](small),
		Returns:     NewArena[ExprReturnData](small),
		Macros:      NewArena[ExprMacroData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kinds ...ExprKind) (uint32, bool) {
	ex := e.Get(id)
	if ex == nil {
		return 0, false
	}
	for _, k := range kinds {
		if ex.Kind == k {
			return uint32(ex.Payload), true
		}
	}
	return 0, false
}

func (e *Exprs) NewPath(p Path) ExprID {
	return e.new(ExprPath, p.Span, e.Paths.Allocate(p))
}

func (e *Exprs) NewLit(span source.Span, kind token.Kind, text string) ExprID {
	return e.new(ExprLit, span, e.Lits.Allocate(ExprLitData{Kind: kind, Text: text}))
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(ExprCallData{Callee: callee, Args: args}))
}

func (e *Exprs) NewMethodCall(span source.Span, recv ExprID, name source.StringID, nameSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprMethodCall, span, e.MethodCalls.Allocate(ExprMethodCallData{
		Receiver: recv, Name: name, NameSpan: nameSpan, Args: args,
	}))
}

func (e *Exprs) NewField(span source.Span, target ExprID, name source.StringID, nameSpan source.Span) ExprID {
	return e.new(ExprField, span, e.Fields.Allocate(ExprFieldData{Target: target, Name: name, NameSpan: nameSpan}))
}

func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) NewBinary(span source.Span, op token.Kind, left, right ExprID) ExprID {
	kind := ExprBinary
	if op == token.Assign {
		kind = ExprAssign
	}
	return e.new(kind, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

// NewList allocates a Paren, Tuple or Array expression.
func (e *Exprs) NewList(kind ExprKind, span source.Span, elems []ExprID) ExprID {
	return e.new(kind, span, e.Lists.Allocate(ExprListData{Elems: elems}))
}

func (e *Exprs) NewBlock(span source.Span, stmts []StmtID, tail ExprID) ExprID {
	return e.new(ExprBlock, span, e.Blocks.Allocate(ExprBlockData{Stmts: stmts, Tail: tail}))
}

func (e *Exprs) NewStruct(span source.Span, path Path, fields []StructLitField) ExprID {
	return e.new(ExprStruct, span, e.Structs.Allocate(ExprStructData{Path: path, Fields: fields}))
}

func (e *Exprs) NewIf(span source.Span, cond, then, els ExprID) ExprID {
	return e.new(ExprIf, span, e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els}))
}

// NewLoop allocates `while cond body` (cond valid) or `loop body`.
func (e *Exprs) NewLoop(span source.Span, cond, body ExprID) ExprID {
	kind := ExprLoop
	if cond.IsValid() {
		kind = ExprWhile
	}
	return e.new(kind, span, e.Loops.Allocate(ExprLoopData{Cond: cond, Body: body}))
}

func (e *Exprs) NewReturn(span source.Span, value ExprID) ExprID {
	return e.new(ExprReturn, span, e.Returns.Allocate(ExprReturnData{Value: value}))
}

func (e *Exprs) NewMacro(span source.Span, name source.StringID, nameSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprMacro, span, e.Macros.Allocate(ExprMacroData{Name: name, NameSpan: nameSpan, Args: args}))
}

func (e *Exprs) Path(id ExprID) *Path {
	if p, ok := e.payload(id, ExprPath); ok {
		return e.Paths.Get(p)
	}
	return nil
}

func (e *Exprs) Lit(id ExprID) *ExprLitData {
	if p, ok := e.payload(id, ExprLit); ok {
		return e.Lits.Get(p)
	}
	return nil
}

func (e *Exprs) Call(id ExprID) *ExprCallData {
	if p, ok := e.payload(id, ExprCall); ok {
		return e.Calls.Get(p)
	}
	return nil
}

func (e *Exprs) MethodCall(id ExprID) *ExprMethodCallData {
	if p, ok := e.payload(id, ExprMethodCall); ok {
		return e.MethodCalls.Get(p)
	}
	return nil
}

func (e *Exprs) Field(id ExprID) *ExprFieldData {
	if p, ok := e.payload(id, ExprField); ok {
		return e.Fields.Get(p)
	}
	return nil
}

func (e *Exprs) Index(id ExprID) *ExprIndexData {
	if p, ok := e.payload(id, ExprIndex); ok {
		return e.Indices.Get(p)
	}
	return nil
}

func (e *Exprs) Unary(id ExprID) *ExprUnaryData {
	if p, ok := e.payload(id, ExprUnary); ok {
		return e.Unaries.Get(p)
	}
	return nil
}

func (e *Exprs) Binary(id ExprID) *ExprBinaryData {
	if p, ok := e.payload(id, ExprBinary, ExprAssign); ok {
		return e.Binaries.Get(p)
	}
	return nil
}

func (e *Exprs) List(id ExprID) *ExprListData {
	if p, ok := e.payload(id, ExprParen, ExprTuple, ExprArray); ok {
		return e.Lists.Get(p)
	}
	return nil
}

func (e *Exprs) Block(id ExprID) *ExprBlockData {
	if p, ok := e.payload(id, ExprBlock); ok {
		return e.Blocks.Get(p)
	}
	return nil
}

func (e *Exprs) Struct(id ExprID) *ExprStructData {
	if p, ok := e.payload(id, ExprStruct); ok {
		return e.Structs.Get(p)
	}
	return nil
}

func (e *Exprs) If(id ExprID) *ExprIfData {
	if p, ok := e.payload(id, ExprIf); ok {
		return e.Ifs.Get(p)
	}
	return nil
}

func (e *Exprs) Loop(id ExprID) *ExprLoopData {
	if p, ok := e.payload(id, ExprWhile, ExprLoop); ok {
		return e.Loops.Get(p)
	}
	return nil
}

func (e *Exprs) Return(id ExprID) *ExprReturnData {
	if p, ok := e.payload(id, ExprReturn); ok {
		return e.Returns.Get(p)
	}
	return nil
}

func (e *Exprs) Macro(id ExprID) *ExprMacroData {
	if p, ok := e.payload(id, ExprMacro); ok {
		return e.Macros.Get(p)
	}
	return nil
}

// Children returns the direct sub-expressions of id in source order.
// Blocks report only their tail: statements are walked by the caller.
func (e *Exprs) Children(id ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	var out []ExprID
	add := func(ids ...ExprID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch expr.Kind {
	case ExprCall:
		c := e.Call(id)
		add(c.Callee)
		add(c.Args...)
	case ExprMethodCall:
		c := e.MethodCall(id)
		add(c.Receiver)
		add(c.Args...)
	case ExprField:
		add(e.Field(id).Target)
	case ExprIndex:
		c := e.Index(id)
		add(c.Target, c.Index)
	case ExprUnary:
		add(e.Unary(id).Operand)
	case ExprBinary, ExprAssign:
		c := e.Binary(id)
		add(c.Left, c.Right)
	case ExprParen, ExprTuple, ExprArray:
		add(e.List(id).Elems...)
	case ExprBlock:
		add(e.Block(id).Tail)
	case ExprStruct:
		for _, f := range e.Struct(id).Fields {
			add(f.Value)
		}
	case ExprIf:
		c := e.If(id)
		add(c.Cond, c.Then, c.Else)
	case ExprWhile, ExprLoop:
		c := e.Loop(id)
		add(c.Cond, c.Body)
	case ExprReturn:
		add(e.Return(id).Value)
	case ExprMacro:
		add(e.Macro(id).Args...)
	}
	return out
}
