package ast

import (
	"rustdex/internal/source"
	"rustdex/internal/token"
)

type ExprKind uint8

const (
	ExprPath ExprKind = iota // a::b::c, also a first-class fn reference
	ExprLit
	ExprCall       // callee(args)
	ExprMethodCall // recv.name(args)
	ExprField      // target.name / target.0
	ExprIndex      // target[index]
	ExprUnary
	ExprBinary
	ExprAssign
	ExprParen
	ExprTuple
	ExprArray
	ExprBlock
	ExprStruct // Path { field: value, ... }
	ExprIf
	ExprWhile
	ExprLoop
	ExprReturn
	ExprMacro // name!(args)
)

var exprKindNames = [...]string{
	ExprPath: "Path", ExprLit: "Lit", ExprCall: "Call", ExprMethodCall: "MethodCall", ExprField: "Field",
	ExprIndex: "Index", ExprUnary: "Unary", ExprBinary: "Binary", ExprAssign: "Assign", ExprParen: "Paren",
	ExprTuple: "Tuple", ExprArray: "Array", ExprBlock: "Block", ExprStruct: "Struct", ExprIf: "If",
	ExprWhile: "While", ExprLoop: "Loop", ExprReturn: "Return", ExprMacro: "Macro",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr(?)"
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type UnaryOp uint8

const (
	UnaryNeg    UnaryOp = iota // -x
	UnaryNot                   // !x
	UnaryOwn                   // ~x
	UnaryRef                   // &x
	UnaryRefMut                // &mut x
	UnaryDeref                 // *x
)

type ExprLitData struct {
	Kind token.Kind
	Text string
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprMethodCallData struct {
	Receiver ExprID
	Name     source.StringID
	NameSpan source.Span
	Args     []ExprID
}

type ExprFieldData struct {
	Target   ExprID
	Name     source.StringID // field name or tuple index text
	NameSpan source.Span
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

// ExprBinaryData also serves ExprAssign (Op == token.Assign).
type ExprBinaryData struct {
	Op    token.Kind
	Left  ExprID
	Right ExprID
}

// ExprListData serves Paren (one element), Tuple and Array.
type ExprListData struct {
	Elems []ExprID
}

type ExprBlockData struct {
	Stmts []StmtID
	Tail  ExprID
}

type StructLitField struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID // NoExprID for shorthand `S { x }`
}

type ExprStructData struct {
	Path   Path
	Fields []StructLitField
}

type ExprIfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

// ExprLoopData serves While (Cond set) and Loop.
type ExprLoopData struct {
	Cond ExprID
	Body ExprID
}

type ExprReturnData struct {
	Value ExprID
}

type ExprMacroData struct {
	Name     source.StringID
	NameSpan source.Span
	Args     []ExprID
}
