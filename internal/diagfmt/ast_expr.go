package diagfmt

import (
	"rustdex/internal/ast"
)

var unaryOpNames = [...]string{
	ast.UnaryNeg:    "-",
	ast.UnaryNot:    "!",
	ast.UnaryOwn:    "~",
	ast.UnaryRef:    "&",
	ast.UnaryRefMut: "&mut",
	ast.UnaryDeref:  "*",
}

func (d *dumper) expr(id ast.ExprID) ASTNodeOutput {
	e := d.b.Exprs.Get(id)
	if e == nil {
		return ASTNodeOutput{Type: "Expr", Text: "<none>"}
	}
	node := ASTNodeOutput{Type: "Expr", Kind: e.Kind.String(), Span: e.Span}
	exprs := d.b.Exprs

	switch e.Kind {
	case ast.ExprPath:
		if p := exprs.Path(id); p != nil {
			node.Text = p.String(d.b.Strings)
		}
	case ast.ExprLit:
		if lit := exprs.Lit(id); lit != nil {
			node.Text = lit.Text
			node.set("lit", lit.Kind.String())
		}
	case ast.ExprCall:
		if c := exprs.Call(id); c != nil {
			node.add(d.expr(c.Callee))
			d.exprList(&node, c.Args)
		}
	case ast.ExprMethodCall:
		if c := exprs.MethodCall(id); c != nil {
			node.Text = d.name(c.Name)
			node.add(d.expr(c.Receiver))
			d.exprList(&node, c.Args)
		}
	case ast.ExprField:
		if f := exprs.Field(id); f != nil {
			node.Text = d.name(f.Name)
			node.add(d.expr(f.Target))
		}
	case ast.ExprIndex:
		if ix := exprs.Index(id); ix != nil {
			node.add(d.expr(ix.Target))
			node.add(d.expr(ix.Index))
		}
	case ast.ExprUnary:
		if u := exprs.Unary(id); u != nil {
			if int(u.Op) < len(unaryOpNames) {
				node.Text = unaryOpNames[u.Op]
			}
			node.add(d.expr(u.Operand))
		}
	case ast.ExprBinary, ast.ExprAssign:
		if bin := exprs.Binary(id); bin != nil {
			node.Text = bin.Op.String()
			node.add(d.expr(bin.Left))
			node.add(d.expr(bin.Right))
		}
	case ast.ExprParen, ast.ExprTuple, ast.ExprArray:
		if l := exprs.List(id); l != nil {
			d.exprList(&node, l.Elems)
		}
	case ast.ExprBlock:
		if blk := exprs.Block(id); blk != nil {
			for _, sid := range blk.Stmts {
				node.add(d.stmt(sid))
			}
			if blk.Tail.IsValid() {
				tail := d.expr(blk.Tail)
				tail.set("tail", true)
				node.add(tail)
			}
		}
	case ast.ExprStruct:
		if s := exprs.Struct(id); s != nil {
			node.Text = s.Path.String(d.b.Strings)
			for _, f := range s.Fields {
				field := ASTNodeOutput{Type: "FieldInit", Span: f.NameSpan, Text: d.name(f.Name)}
				if f.Value.IsValid() {
					field.add(d.expr(f.Value))
				} else {
					field.set("shorthand", true)
				}
				node.add(field)
			}
		}
	case ast.ExprIf:
		if c := exprs.If(id); c != nil {
			node.add(d.expr(c.Cond))
			node.add(d.expr(c.Then))
			if c.Else.IsValid() {
				node.add(d.expr(c.Else))
			}
		}
	case ast.ExprWhile, ast.ExprLoop:
		if l := exprs.Loop(id); l != nil {
			if l.Cond.IsValid() {
				node.add(d.expr(l.Cond))
			}
			node.add(d.expr(l.Body))
		}
	case ast.ExprReturn:
		if r := exprs.Return(id); r != nil && r.Value.IsValid() {
			node.add(d.expr(r.Value))
		}
	case ast.ExprMacro:
		if m := exprs.Macro(id); m != nil {
			node.Text = d.name(m.Name) + "!"
			d.exprList(&node, m.Args)
		}
	}
	return node
}

func (d *dumper) exprList(node *ASTNodeOutput, ids []ast.ExprID) {
	for _, id := range ids {
		node.add(d.expr(id))
	}
}
