package symbols

import (
	"errors"
	"testing"

	"rustdex/internal/diag"
)

func TestAliases_Transparency(t *testing.T) {
	b := buildSource(t, `mod sub {
    pub mod sub2 {
        pub struct nested_struct { pub field2: u32 }
    }
}
use msalias = sub::sub2;
use sub::sub2::nested_struct;
fn main() {
    let s = msalias::nested_struct { field2: 1 };
    let t = nested_struct { field2: 2 };
}
`)
	b.mustClean(t)

	viaAlias := b.mustResolve(t, "msalias::nested_struct", b.root(), NoPos)
	direct := b.mustResolve(t, "sub::sub2::nested_struct", b.root(), NoPos)
	if viaAlias.Symbol != direct.Symbol {
		t.Fatalf("alias must be transparent: %d != %d", viaAlias.Symbol, direct.Symbol)
	}
	alias := b.table.Symbols.Get(viaAlias.Segments[0])
	if alias.Kind != SymbolAlias || alias.Target != direct.Segments[1] {
		t.Fatalf("msalias = %+v", alias)
	}

	short := b.mustResolve(t, "nested_struct", b.root(), NoPos)
	if short.Symbol != direct.Symbol || !short.Via().IsValid() {
		t.Fatalf("use without rename: %+v", short)
	}

	refs := b.table.RefsTo(viaAlias.Segments[0])
	if len(refs) != 1 || refs[0].Target != direct.Segments[1] {
		t.Fatalf("msalias refs = %+v", refs)
	}
	field, ok := b.table.RefAt(b.main().ID, b.offset(t, "field2: 1", 0, 0))
	if !ok || b.table.Symbols.Get(field.Target).Kind != SymbolField {
		t.Fatalf("field ref = %+v", field)
	}
}

func TestAliases_ForwardAndChained(t *testing.T) {
	b := buildSource(t, `use x = m::y;
mod m {
    pub use y = super::z::W;
}
mod z {
    pub struct W;
}
`)
	b.mustClean(t)
	x := b.mustResolve(t, "x", b.root(), NoPos)
	w := b.mustResolve(t, "z::W", b.root(), NoPos)
	if x.Symbol != w.Symbol {
		t.Fatal("x must flatten to z::W")
	}
	if target := b.table.Symbols.Get(x.Segments[0]).Target; target != w.Symbol {
		t.Fatalf("stored target must be canonical, got %d", target)
	}
}

func TestAliases_Dangling(t *testing.T) {
	b := buildSource(t, `use nothing::here;
use a = b;
use b = a;
fn main() { here(); }
`)
	if n := b.count(diag.SemaDanglingAlias); n != 3 {
		t.Fatalf("want 3 dangling aliases, got %d: %s", n, summary(b.bag))
	}
	_, err := b.table.LookupString("a", b.root(), NoPos)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("dangling alias lookup: %v", err)
	}
	var le *LookupError
	if !errors.As(err, &le) || le.Segment != "a" {
		t.Fatalf("lookup error = %#v", err)
	}
}

func TestAliases_GroupedAndRenamed(t *testing.T) {
	b := buildSource(t, `mod m {
    pub fn f() {}
    pub fn g() {}
}
use m::{f, g as h};
fn main() { f(); h(); }
`)
	b.mustClean(t)
	h := b.mustResolve(t, "h", b.root(), NoPos)
	g := b.mustResolve(t, "m::g", b.root(), NoPos)
	if h.Symbol != g.Symbol {
		t.Fatal("h must alias m::g")
	}

	// the shared prefix `m` is one reference, not one per entry
	prefix := b.offset(t, "m::{", 0, 0)
	n := 0
	for _, r := range b.table.Refs {
		if r.Span.File == b.main().ID && r.Span.Start == prefix {
			n++
			if r.Kind != RefModule {
				t.Errorf("prefix ref kind = %v", r.Kind)
			}
		}
	}
	if n != 1 {
		t.Fatalf("refs on the use prefix = %d, want 1", n)
	}
	if err := b.table.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLookup_Errors(t *testing.T) {
	b := buildSource(t, `mod m { pub struct S; }
fn main() {}
`)
	cases := []struct {
		path   string
		target error
		msg    string
	}{
		{"nope", ErrNotFound, "cannot find 'nope' in this scope"},
		{"m::nope", ErrNotFound, "cannot find 'nope' in 'm'"},
		{"main::x", ErrNotFound, "'main' is a function, not a module, type or trait"},
		{"super::m", ErrSuperAtRoot, "there are too many leading 'super' keywords"},
		{"Self", ErrSelfOutsideImpl, "'Self' is only available in impls and traits"},
		{"m::self", ErrNotFound, "'self' is only allowed at the start of a path"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := b.table.LookupString(tc.path, b.root(), NoPos)
			if !errors.Is(err, tc.target) {
				t.Fatalf("err = %v, want %v", err, tc.target)
			}
			if err.Error() != tc.msg {
				t.Fatalf("msg = %q, want %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestLookup_Absolute(t *testing.T) {
	b := buildSource(t, `mod m { pub struct S; }
fn main() {}
`)
	for _, p := range []string{"::m::S", "crate::m::S", "self::m::S"} {
		res := b.mustResolve(t, p, b.root(), NoPos)
		if b.table.Symbols.Get(res.Symbol).Qual != "m::S" {
			t.Fatalf("%s resolved to %d", p, res.Symbol)
		}
	}
}

func TestLookup_Name(t *testing.T) {
	b := buildSource(t, `mod m { pub struct S; }
fn main() {}
`)
	id, err := b.table.LookupName(b.root(), "main", NoPos)
	if err != nil {
		t.Fatalf("LookupName(main): %v", err)
	}
	if sym := b.table.Symbols.Get(id); sym == nil || sym.Kind != SymbolFunction {
		t.Fatalf("main resolved to %+v", sym)
	}
	id, err = b.table.LookupName(b.root(), "nope", NoPos)
	if !errors.Is(err, ErrNotFound) || id.IsValid() {
		t.Fatalf("LookupName(nope) = %d, %v", id, err)
	}
}
