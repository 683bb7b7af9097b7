package symbols

import (
	"strings"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

// typeRefs records references for every path inside a type expression and
// returns the symbol named by its base path, if any.
func (b *Builder) typeRefs(ab *ast.Builder, id ast.TypeID, scope ScopeID, pos uint32, sev diag.Severity) SymbolID {
	te := ab.Types.Get(id)
	if te == nil {
		return NoSymbolID
	}
	switch te.Kind {
	case ast.TypeExprPath:
		found, _ := b.resolvePathRefs(te.Path, scope, pos, RefType, sev)
		return found
	case ast.TypeExprOwned, ast.TypeExprRef, ast.TypeExprArray:
		return b.typeRefs(ab, te.Elem, scope, pos, sev)
	case ast.TypeExprTuple:
		for _, e := range te.Elems {
			b.typeRefs(ab, e, scope, pos, sev)
		}
	}
	return NoSymbolID
}

func (b *Builder) resolveStructs() {
	t := b.table
	for _, id := range b.structs {
		info := b.decls[id]
		scope := t.Symbols.Get(id).Members
		for _, f := range t.Symbols.Get(id).Fields {
			typ := b.typeRefs(info.ast, b.fieldTypes[f], scope, itemPos, diag.SevError)
			t.Symbols.Get(f).Target = typ
		}
	}
}

func (b *Builder) resolveStatics() {
	t := b.table
	for _, id := range b.statics {
		info := b.decls[id]
		st, ok := info.ast.Items.Static(info.item)
		if !ok {
			continue
		}
		sym := t.Symbols.Get(id)
		scope, qual := sym.Scope, sym.Qual
		b.typeRefs(info.ast, st.Type, scope, itemPos, diag.SevError)
		if st.Value.IsValid() {
			w := bodyWalker{b: b, ab: info.ast, item: info.item, qual: qual}
			w.expr(st.Value, scope)
		}
	}
}

func (b *Builder) resolveFns() {
	t := b.table
	for _, id := range b.fns {
		info := b.decls[id]
		fn, ok := info.ast.Items.Fn(info.item)
		if !ok {
			continue
		}
		sym := t.Symbols.Get(id)
		w := bodyWalker{b: b, ab: info.ast, item: info.item, qual: sym.Qual}
		scope := sym.Members
		for _, pid := range fn.Params {
			w.param(info.ast.Items.Param(pid), scope)
		}
		if fn.Result.IsValid() {
			b.typeRefs(info.ast, fn.Result, scope, itemPos, diag.SevError)
		}
		if fn.HasBody() {
			w.expr(fn.Body, scope)
		}
	}
}

// bodyWalker declares the locals of one function body and records the
// references made from it.
type bodyWalker struct {
	b    *Builder
	ab   *ast.Builder
	item ast.ItemID
	qual string
}

func (w *bodyWalker) param(p *ast.FnParam, scope ScopeID) {
	if p.Self != ast.SelfNone {
		w.b.declare(scope, Symbol{
			Name:    w.b.selfName,
			Kind:    SymbolParam,
			Span:    p.Span,
			Extent:  p.Span,
			Decl:    SymbolDecl{File: p.Span.File, Item: w.item},
			Qual:    qualJoin(w.qual, "self"),
			Visible: p.Span.End,
			Type:    p.Self.String(),
		})
		return
	}
	if p.Type.IsValid() {
		w.b.typeRefs(w.ab, p.Type, scope, itemPos, diag.SevError)
	}
	w.bind(p.Pattern, p.Type, ast.NoExprID, SymbolParam, scope, p.Span, p.Span.End, ast.NoStmtID)
}

// bind declares every name of pattern. Type hints come from the annotation
// when present, else from the literal kind of the initializer.
func (w *bodyWalker) bind(pat ast.PatID, typ ast.TypeID, value ast.ExprID, kind SymbolKind, scope ScopeID, extent source.Span, visible uint32, stmt ast.StmtID) {
	hints := make(map[ast.PatID]string)
	w.typeHints(pat, typ, value, hints)
	for _, bid := range w.ab.Pats.Bindings(pat) {
		bp := w.ab.Pats.Get(bid)
		var flags SymbolFlags
		if bp.Mut {
			flags |= SymbolFlagMutable
		}
		w.b.declare(scope, Symbol{
			Name:    bp.Name,
			Kind:    kind,
			Span:    bp.Span,
			Extent:  extent,
			Flags:   flags,
			Decl:    SymbolDecl{File: bp.Span.File, Item: w.item, Stmt: stmt, Pat: bid},
			Qual:    qualJoin(w.qual, w.ab.Name(bp.Name)),
			Visible: visible,
			Type:    hints[bid],
		})
	}
}

func (w *bodyWalker) typeHints(pat ast.PatID, typ ast.TypeID, value ast.ExprID, out map[ast.PatID]string) {
	p := w.ab.Pats.Get(pat)
	if p == nil {
		return
	}
	switch p.Kind {
	case ast.PatIdent:
		if typ.IsValid() {
			out[pat] = w.ab.Types.String(typ, w.ab.Strings)
		} else if value.IsValid() {
			out[pat] = w.literalType(value)
		}
	case ast.PatTuple:
		var elemTypes []ast.TypeID
		if te := w.ab.Types.Get(typ); te != nil && te.Kind == ast.TypeExprTuple {
			elemTypes = te.Elems
		}
		var elemValues []ast.ExprID
		if e := w.ab.Exprs.Get(value); e != nil && e.Kind == ast.ExprTuple {
			elemValues = w.ab.Exprs.List(value).Elems
		}
		for i, el := range p.Elems {
			var et ast.TypeID
			var ev ast.ExprID
			if len(elemTypes) == len(p.Elems) {
				et = elemTypes[i]
			}
			if len(elemValues) == len(p.Elems) {
				ev = elemValues[i]
			}
			w.typeHints(el, et, ev, out)
		}
	}
}

// literalType names the type of a literal initializer: int suffixes are
// honored, "~" marks an owned value.
func (w *bodyWalker) literalType(id ast.ExprID) string {
	e := w.ab.Exprs.Get(id)
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ast.ExprLit:
		lit := w.ab.Exprs.Lit(id)
		switch lit.Kind {
		case token.IntLit:
			return intSuffix(lit.Text)
		case token.FloatLit:
			if i := strings.IndexByte(lit.Text, 'f'); i > 0 {
				return lit.Text[i:]
			}
			return "float"
		case token.StringLit:
			return "&str"
		case token.CharLit:
			return "char"
		case token.KwTrue, token.KwFalse:
			return "bool"
		}
	case ast.ExprUnary:
		u := w.ab.Exprs.Unary(id)
		if inner := w.literalType(u.Operand); inner != "" && u.Op == ast.UnaryOwn {
			return "~" + strings.TrimPrefix(inner, "&")
		}
	case ast.ExprParen:
		if elems := w.ab.Exprs.List(id).Elems; len(elems) == 1 {
			return w.literalType(elems[0])
		}
	}
	return ""
}

func intSuffix(text string) string {
	i := strings.IndexAny(text, "ui")
	if i < 0 {
		return "int"
	}
	switch suffix := text[i:]; suffix {
	case "u":
		return "uint"
	case "i":
		return "int"
	default:
		return suffix
	}
}

func (w *bodyWalker) expr(id ast.ExprID, scope ScopeID) {
	e := w.ab.Exprs.Get(id)
	if e == nil {
		return
	}
	b := w.b
	switch e.Kind {
	case ast.ExprBlock:
		w.block(id, e.Span, scope)
		return
	case ast.ExprPath:
		path := w.ab.Exprs.Path(id)
		b.resolvePathRefs(*path, scope, path.Span.Start, RefVariable, diag.SevWarning)
		return
	case ast.ExprCall:
		call := w.ab.Exprs.Call(id)
		if ce := w.ab.Exprs.Get(call.Callee); ce != nil && ce.Kind == ast.ExprPath {
			path := w.ab.Exprs.Path(call.Callee)
			b.resolvePathRefs(*path, scope, path.Span.Start, RefFunction, diag.SevWarning)
		} else {
			w.expr(call.Callee, scope)
		}
		for _, a := range call.Args {
			w.expr(a, scope)
		}
		return
	case ast.ExprStruct:
		w.structLit(id, scope)
		return
	case ast.ExprMacro:
		m := w.ab.Exprs.Macro(id)
		if pre := b.table.Scopes.Get(b.table.Prelude); pre != nil {
			for _, fid := range pre.Names[m.Name] {
				if b.table.Symbols.Get(fid).Kind == SymbolFunction {
					b.table.Refs = append(b.table.Refs, Ref{Span: m.NameSpan, Kind: RefFunction, Target: fid, Scope: scope})
					break
				}
			}
		}
	}
	for _, c := range w.ab.Exprs.Children(id) {
		w.expr(c, scope)
	}
}

func (w *bodyWalker) block(id ast.ExprID, span source.Span, outer ScopeID) {
	scope, ok := w.b.blocks[blockKey{file: span.File, expr: id}]
	if !ok {
		scope = outer
	}
	blk := w.ab.Exprs.Block(id)
	for _, sid := range blk.Stmts {
		st := w.ab.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtLet:
			let := w.ab.Stmts.Let(sid)
			if let.Value.IsValid() {
				w.expr(let.Value, scope)
			}
			if let.Type.IsValid() {
				w.b.typeRefs(w.ab, let.Type, scope, st.Span.Start, diag.SevWarning)
			}
			w.bind(let.Pattern, let.Type, let.Value, SymbolLet, scope, st.Span, st.Span.End, sid)
		case ast.StmtExpr:
			w.expr(w.ab.Stmts.Expr(sid).Expr, scope)
		}
	}
	if blk.Tail.IsValid() {
		w.expr(blk.Tail, scope)
	}
}

// structLit records the struct path and one reference per field. A
// shorthand field `S { x }` only references the variable x.
func (w *bodyWalker) structLit(id ast.ExprID, scope ScopeID) {
	t := w.b.table
	lit := w.ab.Exprs.Struct(id)
	target, _ := w.b.resolvePathRefs(lit.Path, scope, lit.Path.Span.Start, RefType, diag.SevWarning)
	var fields *Scope
	if sym := t.Symbols.Get(target); sym != nil && sym.Kind == SymbolStruct {
		fields = t.Scopes.Get(sym.Members)
	}
	for _, f := range lit.Fields {
		if !f.Value.IsValid() {
			path := ast.Path{Segments: []ast.PathSeg{{Kind: ast.SegIdent, Name: f.Name, Span: f.NameSpan}}, Span: f.NameSpan}
			w.b.resolvePathRefs(path, scope, f.NameSpan.Start, RefVariable, diag.SevWarning)
			continue
		}
		if fields != nil {
			for _, fid := range fields.Names[f.Name] {
				if t.Symbols.Get(fid).Kind == SymbolField {
					t.Refs = append(t.Refs, Ref{Span: f.NameSpan, Kind: RefVariable, Target: fid, Scope: scope})
					break
				}
			}
		}
		w.expr(f.Value, scope)
	}
}
