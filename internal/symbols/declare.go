package symbols

import (
	"rustdex/internal/ast"
)

// Declare runs pass 1 for one crate: every item-level declaration is
// registered, nothing is resolved yet.
func (b *Builder) Declare(c Crate) UnitID {
	if b.done {
		panic("symbols: Declare after Resolve")
	}
	t := b.table
	file := c.Root.AST.Files.Get(c.Root.File)
	unitID := UnitID(len(t.units) + 1)

	crate := t.Symbols.New(&Symbol{
		Name:   c.Root.AST.Strings.InternIdent(c.Name),
		Kind:   SymbolModule,
		Scope:  t.Prelude,
		Span:   file.Span.ZeroideToStart(),
		Extent: file.Span,
		Flags:  SymbolFlagPublic,
		Decl:   SymbolDecl{File: file.Span.File},
	})
	pre := t.Scopes.Get(t.Prelude)
	pre.Symbols = append(pre.Symbols, crate)

	root := t.Scopes.New(ScopeUnit, t.Prelude, crate, file.Span)
	t.Scopes.Get(root).Unit = unitID
	t.Symbols.Get(crate).Members = root
	t.units = append(t.units, Unit{Name: c.Name, Root: root, Module: crate, File: file.Span.File})

	d := declarer{b: b, crate: c}
	d.items(c.Root.AST, file.Items, root, "")
	return unitID
}

type declarer struct {
	b     *Builder
	crate Crate
}

func (d *declarer) items(ab *ast.Builder, items []ast.ItemID, scope ScopeID, prefix string) {
	for _, id := range items {
		d.item(ab, id, scope, prefix)
	}
}

func (d *declarer) item(ab *ast.Builder, id ast.ItemID, scope ScopeID, prefix string) {
	item := ab.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemModule:
		d.module(ab, id, item, scope, prefix)
	case ast.ItemStruct:
		d.structItem(ab, id, item, scope, prefix)
	case ast.ItemTrait:
		d.trait(ab, id, item, scope, prefix)
	case ast.ItemImpl:
		d.impl(ab, id, item, scope, prefix)
	case ast.ItemFn:
		d.fn(ab, id, scope, prefix, 0)
	case ast.ItemUse:
		d.use(ab, id, item, scope, prefix)
	case ast.ItemStatic:
		d.static(ab, id, item, scope, prefix)
	}
}

// itemSymbol fills the fields every named item shares.
func itemSymbol(ab *ast.Builder, id ast.ItemID, item *ast.Item, kind SymbolKind, qual string) Symbol {
	return Symbol{
		Name:   item.Name,
		Kind:   kind,
		Span:   item.NameSpan,
		Extent: item.Span,
		Flags:  visFlags(item.Visibility),
		Decl:   SymbolDecl{File: item.Span.File, Item: id},
		Qual:   qual,
	}
}

func (d *declarer) module(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	mod, _ := ab.Items.Module(id)
	qual := qualJoin(prefix, ab.Name(item.Name))
	sym := itemSymbol(ab, id, item, SymbolModule, qual)

	items, span, inner := mod.Items, mod.Body, ab
	if !mod.Inline {
		items, span = nil, item.Span
		if src, ok := d.crate.Modules[ModuleKey{File: item.Span.File, Item: id}]; ok {
			f := src.AST.Files.Get(src.File)
			items, span, inner = f.Items, f.Span, src.AST
			sym.Flags |= SymbolFlagExternal
		}
	}
	symID := d.b.declare(scope, sym)
	if !symID.IsValid() {
		return
	}
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	modScope := d.b.newScope(ScopeModule, scope, symID, span)
	d.items(inner, items, modScope, qual)
}

func (d *declarer) structItem(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	st, _ := ab.Items.Struct(id)
	qual := qualJoin(prefix, ab.Name(item.Name))
	symID := d.b.declare(scope, itemSymbol(ab, id, item, SymbolStruct, qual))
	if !symID.IsValid() {
		return
	}
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	d.b.structs = append(d.b.structs, symID)
	inner := d.b.newScope(ScopeStruct, scope, symID, item.Span)

	t := d.b.table
	for _, fid := range st.Fields {
		f := ab.Items.Field(fid)
		fieldID := d.b.declare(inner, Symbol{
			Name:   f.Name,
			Kind:   SymbolField,
			Span:   f.NameSpan,
			Extent: f.Span,
			Flags:  visFlags(f.Visibility),
			Decl:   SymbolDecl{File: f.Span.File, Item: id},
			Qual:   qualJoin(qual, ab.Name(f.Name)),
			Type:   ab.Types.String(f.Type, ab.Strings),
		})
		if !fieldID.IsValid() {
			continue
		}
		d.b.fieldTypes[fieldID] = f.Type
		parent := t.Symbols.Get(symID)
		parent.Fields = append(parent.Fields, fieldID)
	}
}

func (d *declarer) trait(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	tr, _ := ab.Items.Trait(id)
	qual := qualJoin(prefix, ab.Name(item.Name))
	symID := d.b.declare(scope, itemSymbol(ab, id, item, SymbolTrait, qual))
	if !symID.IsValid() {
		return
	}
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	d.b.traits = append(d.b.traits, symID)
	inner := d.b.newScope(ScopeTrait, scope, symID, item.Span)
	for _, m := range tr.Items {
		if mid := d.fn(ab, m, inner, qual, SymbolFlagMethod|SymbolFlagPublic); mid.IsValid() {
			sym := d.b.table.Symbols.Get(symID)
			sym.Methods = append(sym.Methods, mid)
		}
	}
}

func (d *declarer) impl(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	impl, _ := ab.Items.Impl(id)
	qual := ab.Types.String(impl.Target, ab.Strings)
	if impl.HasTrait {
		qual = "<" + qual + " as " + impl.Trait.String(ab.Strings) + ">"
	}
	qual = qualJoin(prefix, qual)
	symID := d.b.declare(scope, Symbol{
		Kind:   SymbolImpl,
		Span:   impl.Header,
		Extent: item.Span,
		Decl:   SymbolDecl{File: item.Span.File, Item: id},
		Qual:   qual,
	})
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	d.b.impls = append(d.b.impls, symID)
	inner := d.b.newScope(ScopeImpl, scope, symID, item.Span)
	for _, m := range impl.Items {
		if mid := d.fn(ab, m, inner, qual, SymbolFlagMethod); mid.IsValid() {
			sym := d.b.table.Symbols.Get(symID)
			sym.Methods = append(sym.Methods, mid)
		}
	}
}

func (d *declarer) fn(ab *ast.Builder, id ast.ItemID, scope ScopeID, prefix string, flags SymbolFlags) SymbolID {
	item := ab.Items.Get(id)
	fn, _ := ab.Items.Fn(id)
	qual := qualJoin(prefix, ab.Name(item.Name))
	sym := itemSymbol(ab, id, item, SymbolFunction, qual)
	sym.Flags |= flags
	if !fn.HasBody() {
		sym.Flags |= SymbolFlagRequired
	}
	symID := d.b.declare(scope, sym)
	if !symID.IsValid() {
		return NoSymbolID
	}
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	d.b.fns = append(d.b.fns, symID)
	inner := d.b.newScope(ScopeFunction, scope, symID, item.Span)
	if fn.HasBody() {
		d.expr(ab, fn.Body, inner, qual)
	}
	return symID
}

func (d *declarer) use(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	u, _ := ab.Items.Use(id)
	for _, e := range u.Entries {
		symID := d.b.declare(scope, Symbol{
			Name:   e.Alias,
			Kind:   SymbolAlias,
			Span:   e.AliasSpan,
			Extent: e.Span,
			Flags:  visFlags(item.Visibility),
			Decl:   SymbolDecl{File: item.Span.File, Item: id},
			Qual:   qualJoin(prefix, ab.Name(e.Alias)),
		})
		if !symID.IsValid() {
			continue
		}
		d.b.decls[symID] = declInfo{ast: ab, item: id}
		d.b.aliases = append(d.b.aliases, symID)
		d.b.aliasPaths[symID] = e.Path
	}
}

func (d *declarer) static(ab *ast.Builder, id ast.ItemID, item *ast.Item, scope ScopeID, prefix string) {
	st, _ := ab.Items.Static(id)
	sym := itemSymbol(ab, id, item, SymbolStatic, qualJoin(prefix, ab.Name(item.Name)))
	if st.Mut {
		sym.Flags |= SymbolFlagMutable
	}
	sym.Type = ab.Types.String(st.Type, ab.Strings)
	symID := d.b.declare(scope, sym)
	if !symID.IsValid() {
		return
	}
	d.b.decls[symID] = declInfo{ast: ab, item: id}
	d.b.statics = append(d.b.statics, symID)
	if st.Value.IsValid() {
		d.expr(ab, st.Value, scope, prefix)
	}
}

// expr opens a scope for every block and registers the items nested in it.
func (d *declarer) expr(ab *ast.Builder, id ast.ExprID, scope ScopeID, prefix string) {
	e := ab.Exprs.Get(id)
	if e == nil {
		return
	}
	if e.Kind != ast.ExprBlock {
		for _, c := range ab.Exprs.Children(id) {
			d.expr(ab, c, scope, prefix)
		}
		return
	}
	blk := ab.Exprs.Block(id)
	inner := d.b.newScope(ScopeBlock, scope, NoSymbolID, e.Span)
	d.b.blocks[blockKey{file: e.Span.File, expr: id}] = inner
	for _, sid := range blk.Stmts {
		st := ab.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtItem:
			d.item(ab, ab.Stmts.Item(sid), inner, prefix)
		case ast.StmtLet:
			if v := ab.Stmts.Let(sid).Value; v.IsValid() {
				d.expr(ab, v, inner, prefix)
			}
		case ast.StmtExpr:
			d.expr(ab, ab.Stmts.Expr(sid).Expr, inner, prefix)
		}
	}
	if blk.Tail.IsValid() {
		d.expr(ab, blk.Tail, inner, prefix)
	}
}
