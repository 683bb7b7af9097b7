package diagfmt

import (
	"rustdex/internal/ast"
)

func (d *dumper) typ(id ast.TypeID) ASTNodeOutput {
	te := d.b.Types.Get(id)
	if !id.IsValid() || te == nil {
		return ASTNodeOutput{Type: "Type", Text: "<inferred>"}
	}
	// типы короткие: печатаем целиком одной строкой
	node := ASTNodeOutput{Type: "Type", Kind: te.Kind.String(), Span: te.Span, Text: d.b.Types.String(id, d.b.Strings)}
	if te.Kind == ast.TypeExprRef && te.Mut {
		node.set("mut", true)
	}
	return node
}

func (d *dumper) pat(id ast.PatID) ASTNodeOutput {
	p := d.b.Pats.Get(id)
	if !id.IsValid() || p == nil {
		return ASTNodeOutput{Type: "Pat", Text: "<nil>"}
	}
	node := ASTNodeOutput{Type: "Pat", Span: p.Span}
	switch p.Kind {
	case ast.PatIdent:
		node.Kind = "Ident"
		node.Text = d.name(p.Name)
		if p.Mut {
			node.set("mut", true)
		}
	case ast.PatWild:
		node.Kind = "Wild"
		node.Text = "_"
	case ast.PatTuple:
		node.Kind = "Tuple"
		for _, e := range p.Elems {
			node.add(d.pat(e))
		}
	}
	return node
}
