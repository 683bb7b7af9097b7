package diagfmt

import (
	"fmt"

	"rustdex/internal/ast"
	"rustdex/internal/source"
)

func (d *dumper) item(id ast.ItemID) ASTNodeOutput {
	item := d.b.Items.Get(id)
	if item == nil {
		return ASTNodeOutput{Type: "Item", Text: "<nil>"}
	}
	node := ASTNodeOutput{Type: "Item", Kind: item.Kind.String(), Span: item.Span}
	if item.Name != source.NoStringID {
		node.Text = d.name(item.Name)
	}
	if item.Visibility == ast.VisPublic {
		node.set("pub", true)
	}

	switch item.Kind {
	case ast.ItemModule:
		if m, ok := d.b.Items.Module(id); ok {
			node.set("inline", m.Inline)
			for _, child := range m.Items {
				node.add(d.item(child))
			}
		}
	case ast.ItemStruct:
		if s, ok := d.b.Items.Struct(id); ok {
			if s.Unit {
				node.set("unit", true)
			}
			for _, fid := range s.Fields {
				f := d.b.Items.Field(fid)
				if f == nil {
					continue
				}
				field := ASTNodeOutput{Type: "Field", Span: f.Span, Text: d.name(f.Name)}
				if f.Visibility == ast.VisPublic {
					field.set("pub", true)
				}
				field.add(d.typ(f.Type))
				node.add(field)
			}
		}
	case ast.ItemTrait:
		if tr, ok := d.b.Items.Trait(id); ok {
			for _, sup := range tr.Supers {
				node.add(d.path("Super", sup))
			}
			for _, child := range tr.Items {
				node.add(d.item(child))
			}
		}
	case ast.ItemImpl:
		if impl, ok := d.b.Items.Impl(id); ok {
			if impl.HasTrait {
				node.add(d.path("Trait", impl.Trait))
			}
			target := d.typ(impl.Target)
			target.Type = "Target"
			node.add(target)
			for _, child := range impl.Items {
				node.add(d.item(child))
			}
		}
	case ast.ItemFn:
		if fn, ok := d.b.Items.Fn(id); ok {
			d.fn(&node, fn)
		}
	case ast.ItemUse:
		if use, ok := d.b.Items.Use(id); ok {
			for _, e := range use.Entries {
				entry := ASTNodeOutput{Type: "UseEntry", Span: e.Span, Text: d.name(e.Alias)}
				if e.Renamed {
					entry.set("renamed", true)
				}
				entry.add(d.path("Path", e.Path))
				node.add(entry)
			}
		}
	case ast.ItemStatic:
		if st, ok := d.b.Items.Static(id); ok {
			if st.Mut {
				node.set("mut", true)
			}
			if st.Type.IsValid() {
				node.add(d.typ(st.Type))
			}
			if st.Value.IsValid() {
				node.add(d.expr(st.Value))
			}
		}
	}
	return node
}

func (d *dumper) fn(node *ASTNodeOutput, fn *ast.FnItem) {
	for i, pid := range fn.Params {
		p := d.b.Items.Param(pid)
		if p == nil {
			continue
		}
		param := ASTNodeOutput{Type: "Param", Span: p.Span, Text: fmt.Sprintf("#%d", i)}
		if p.Self != ast.SelfNone {
			param.Kind = "self"
			param.Text = p.Self.String()
		} else {
			param.add(d.pat(p.Pattern))
			param.add(d.typ(p.Type))
		}
		node.add(param)
	}
	if fn.Result.IsValid() {
		result := d.typ(fn.Result)
		result.Type = "Result"
		node.add(result)
	}
	if fn.HasBody() {
		node.add(d.expr(fn.Body))
	} else {
		node.set("body", false)
	}
}

func (d *dumper) path(typ string, p ast.Path) ASTNodeOutput {
	return ASTNodeOutput{Type: typ, Span: p.Span, Text: p.String(d.b.Strings)}
}
