package parser

import (
	"testing"

	"rustdex/internal/ast"
)

const mainFixture = `mod sub {
    pub mod sub2 {
        pub fn hello() {
            println("hello from sub2");
        }
    }
}

fn hello() {
    let x: u32 = 5;
    println(x.to_str());
}

fn main() {
    hello();
    sub::sub2::hello();
}
`

func TestParseFile_ModuleTree(t *testing.T) {
	p := parseSource(t, mainFixture)
	p.mustClean(t)

	top := p.top()
	if len(top) != 3 {
		t.Fatalf("expected 3 top-level items, got %d", len(top))
	}
	want := []string{"sub", "hello", "main"}
	for i, id := range top {
		if got := p.name(id); got != want[i] {
			t.Errorf("item %d: got %q, want %q", i, got, want[i])
		}
		if parent := p.arenas.Items.Get(id).Parent; parent != ast.NoItemID {
			t.Errorf("item %q: top-level parent must be empty, got %d", want[i], parent)
		}
	}

	sub, ok := p.arenas.Items.Module(top[0])
	if !ok || !sub.Inline || len(sub.Items) != 1 {
		t.Fatalf("unexpected sub module: %+v", sub)
	}
	sub2ID := sub.Items[0]
	sub2 := p.arenas.Items.Get(sub2ID)
	if sub2.Visibility != ast.VisPublic || sub2.Parent != top[0] {
		t.Fatalf("sub2: vis=%v parent=%d", sub2.Visibility, sub2.Parent)
	}
	inner := p.arenas.Items.Children(sub2ID)
	if len(inner) != 1 || p.name(inner[0]) != "hello" {
		t.Fatalf("sub2 children: %v", inner)
	}
	if p.arenas.Items.Get(inner[0]).Parent != sub2ID {
		t.Errorf("hello must point back at sub2")
	}
}

func TestParseFile_FnBody(t *testing.T) {
	p := parseSource(t, mainFixture)
	p.mustClean(t)

	fn, ok := p.arenas.Items.Fn(p.top()[1])
	if !ok || !fn.HasBody() {
		t.Fatal("hello must have a body")
	}
	block := p.arenas.Exprs.Block(fn.Body)
	if len(block.Stmts) != 2 || block.Tail.IsValid() {
		t.Fatalf("expected 2 statements without tail, got %d (tail=%v)", len(block.Stmts), block.Tail)
	}
	let := p.arenas.Stmts.Let(block.Stmts[0])
	if let == nil {
		t.Fatal("first statement must be let")
	}
	if pat := p.arenas.Pats.Get(let.Pattern); pat.Kind != ast.PatIdent || p.arenas.Name(pat.Name) != "x" {
		t.Errorf("unexpected pattern %+v", pat)
	}
	if path, ok := p.arenas.Types.BasePath(let.Type); !ok || path.String(p.arenas.Strings) != "u32" {
		t.Errorf("unexpected let type")
	}

	call := p.arenas.Stmts.Expr(block.Stmts[1])
	if call == nil || !call.Semi {
		t.Fatal("second statement must be an expression with ';'")
	}
	data := p.arenas.Exprs.Call(call.Expr)
	if data == nil || len(data.Args) != 1 {
		t.Fatalf("expected call with one argument")
	}
	mc := p.arenas.Exprs.MethodCall(data.Args[0])
	if mc == nil || p.arenas.Name(mc.Name) != "to_str" {
		t.Fatalf("expected method call to_str")
	}

	mainFn, _ := p.arenas.Items.Fn(p.top()[2])
	stmts := p.arenas.Exprs.Block(mainFn.Body).Stmts
	last := p.arenas.Stmts.Expr(stmts[1])
	callee := p.arenas.Exprs.Call(last.Expr).Callee
	if path := p.arenas.Exprs.Path(callee); path == nil || path.String(p.arenas.Strings) != "sub::sub2::hello" {
		t.Fatalf("unexpected callee")
	}
}

func TestParseStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		unit   bool
		fields []string
		public []bool
	}{
		{name: "unit", input: "struct Unit;", unit: true},
		{name: "named", input: "pub struct P { pub x: u32, y: ~str, }", fields: []string{"x", "y"}, public: []bool{true, false}},
		{name: "tuple", input: "struct T(u32, pub ~str);", fields: []string{"0", "1"}, public: []bool{false, true}},
		{name: "empty braces", input: "struct E {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseSource(t, tt.input)
			p.mustClean(t)
			st, ok := p.arenas.Items.Struct(p.top()[0])
			if !ok {
				t.Fatal("expected struct")
			}
			if st.Unit != tt.unit {
				t.Errorf("unit: got %v, want %v", st.Unit, tt.unit)
			}
			if len(st.Fields) != len(tt.fields) {
				t.Fatalf("fields: got %d, want %d", len(st.Fields), len(tt.fields))
			}
			for i, fid := range st.Fields {
				f := p.arenas.Items.Field(fid)
				if got := p.arenas.Name(f.Name); got != tt.fields[i] {
					t.Errorf("field %d: got %q, want %q", i, got, tt.fields[i])
				}
				if (f.Visibility == ast.VisPublic) != tt.public[i] {
					t.Errorf("field %d: visibility %v", i, f.Visibility)
				}
			}
		})
	}
}

func TestParseTraitAndImpl(t *testing.T) {
	src := `trait Shape : Named + Sized {
    fn area(&self) -> f64;
    fn describe(&self) -> ~str { ~"shape" }
}
impl Shape for Circle {
    fn area(&self) -> f64 { 3.14 }
}
impl Circle {
    pub fn new(r: f64) -> Circle { Circle { r: r } }
    fn grow(&mut self, by: f64) {}
}
`
	p := parseSource(t, src)
	p.mustClean(t)
	top := p.top()
	if len(top) != 3 {
		t.Fatalf("expected 3 items, got %d", len(top))
	}

	tr, ok := p.arenas.Items.Trait(top[0])
	if !ok || len(tr.Supers) != 2 || len(tr.Items) != 2 {
		t.Fatalf("unexpected trait %+v", tr)
	}
	area, _ := p.arenas.Items.Fn(tr.Items[0])
	describe, _ := p.arenas.Items.Fn(tr.Items[1])
	if area.HasBody() || !describe.HasBody() {
		t.Errorf("area must be required, describe provided")
	}
	if self := p.arenas.Items.Param(area.Params[0]); self.Self != ast.SelfRef {
		t.Errorf("receiver: got %v", self.Self)
	}

	impl, ok := p.arenas.Items.Impl(top[1])
	if !ok || !impl.HasTrait || impl.Trait.String(p.arenas.Strings) != "Shape" {
		t.Fatalf("unexpected trait impl")
	}
	if target, _ := p.arenas.Types.BasePath(impl.Target); target.String(p.arenas.Strings) != "Circle" {
		t.Errorf("impl target: %q", target.String(p.arenas.Strings))
	}
	if got := p.text(impl.Header); got != "impl Shape for Circle {" {
		t.Errorf("impl header: %q", got)
	}

	inherent, _ := p.arenas.Items.Impl(top[2])
	if inherent.HasTrait || len(inherent.Items) != 2 {
		t.Fatalf("unexpected inherent impl")
	}
	if p.arenas.Items.Get(inherent.Items[0]).Visibility != ast.VisPublic {
		t.Errorf("new must be public")
	}
	grow, _ := p.arenas.Items.Fn(inherent.Items[1])
	if len(grow.Params) != 2 || p.arenas.Items.Param(grow.Params[0]).Self != ast.SelfRefMut {
		t.Errorf("grow params")
	}
	if p.arenas.Items.Get(inherent.Items[1]).Parent != top[2] {
		t.Errorf("method parent must be the impl")
	}
}

func TestParseStatic(t *testing.T) {
	p := parseSource(t, "static yy: uint = 25u;\nstatic mut Z: u32 = 1;")
	p.mustClean(t)
	yy, ok := p.arenas.Items.Static(p.top()[0])
	if !ok || yy.Mut {
		t.Fatalf("yy")
	}
	if lit := p.arenas.Exprs.Lit(yy.Value); lit == nil || lit.Text != "25u" {
		t.Errorf("yy value")
	}
	z, _ := p.arenas.Items.Static(p.top()[1])
	if !z.Mut || p.name(p.top()[1]) != "Z" {
		t.Errorf("Z must be mutable")
	}
}

func TestParseTupleParam(t *testing.T) {
	p := parseSource(t, "fn f((z, a): (u32, ~str), _: u8) {}")
	p.mustClean(t)
	fn, _ := p.arenas.Items.Fn(p.top()[0])
	if len(fn.Params) != 2 {
		t.Fatalf("params: %d", len(fn.Params))
	}
	first := p.arenas.Items.Param(fn.Params[0])
	if got := len(p.arenas.Pats.Bindings(first.Pattern)); got != 2 {
		t.Errorf("bindings: got %d, want 2", got)
	}
	if te := p.arenas.Types.Get(first.Type); te.Kind != ast.TypeExprTuple || len(te.Elems) != 2 {
		t.Errorf("expected tuple type")
	}
	second := p.arenas.Items.Param(fn.Params[1])
	if p.arenas.Pats.Get(second.Pattern).Kind != ast.PatWild {
		t.Errorf("expected wildcard")
	}
}

func TestItemSpanIncludesVisibility(t *testing.T) {
	src := "pub fn f() -> u32 { 1 }"
	p := parseSource(t, src)
	p.mustClean(t)
	item := p.arenas.Items.Get(p.top()[0])
	if got := p.text(item.Span); got != src {
		t.Errorf("span: %q", got)
	}
	if got := p.text(item.NameSpan); got != "f" {
		t.Errorf("name span: %q", got)
	}
}

func TestNestedItemInFnBody(t *testing.T) {
	p := parseSource(t, "fn outer() { fn inner() {} inner(); }")
	p.mustClean(t)
	outer := p.top()[0]
	fn, _ := p.arenas.Items.Fn(outer)
	stmts := p.arenas.Exprs.Block(fn.Body).Stmts
	if len(stmts) != 2 {
		t.Fatalf("stmts: %d", len(stmts))
	}
	inner := p.arenas.Stmts.Item(stmts[0])
	if !inner.IsValid() || p.arenas.Items.Get(inner).Parent != outer {
		t.Errorf("inner must be parented to outer")
	}
}

func TestModDeclaration(t *testing.T) {
	p := parseSource(t, "mod other;\npub mod inline {}")
	p.mustClean(t)
	decl, _ := p.arenas.Items.Module(p.top()[0])
	if decl.Inline {
		t.Errorf("mod other; must not be inline")
	}
	inline, _ := p.arenas.Items.Module(p.top()[1])
	if !inline.Inline || len(inline.Items) != 0 {
		t.Errorf("inline module")
	}
}

func TestAttributesSkipped(t *testing.T) {
	p := parseSource(t, "#[test]\nfn a() {}\n#![allow(dead_code)]\nfn b() {}")
	p.mustClean(t)
	if len(p.top()) != 2 {
		t.Fatalf("items: %d", len(p.top()))
	}
}
