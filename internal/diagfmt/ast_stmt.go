package diagfmt

import (
	"rustdex/internal/ast"
)

var stmtKindNames = [...]string{
	ast.StmtLet:   "Let",
	ast.StmtExpr:  "Expr",
	ast.StmtItem:  "Item",
	ast.StmtEmpty: "Empty",
}

func (d *dumper) stmt(id ast.StmtID) ASTNodeOutput {
	st := d.b.Stmts.Get(id)
	if st == nil {
		return ASTNodeOutput{Type: "Stmt", Text: "<nil>"}
	}
	kind := "Stmt(?)"
	if int(st.Kind) < len(stmtKindNames) {
		kind = stmtKindNames[st.Kind]
	}
	node := ASTNodeOutput{Type: "Stmt", Kind: kind, Span: st.Span}

	switch st.Kind {
	case ast.StmtLet:
		if let := d.b.Stmts.Let(id); let != nil {
			node.add(d.pat(let.Pattern))
			if let.Type.IsValid() {
				node.add(d.typ(let.Type))
			}
			if let.Value.IsValid() {
				node.add(d.expr(let.Value))
			}
		}
	case ast.StmtExpr:
		if es := d.b.Stmts.Expr(id); es != nil {
			if es.Semi {
				node.set("semi", true)
			}
			node.add(d.expr(es.Expr))
		}
	case ast.StmtItem:
		node.add(d.item(d.b.Stmts.Item(id)))
	}
	return node
}
