package symbols

import (
	"slices"
	"strings"
	"testing"

	"rustdex/internal/diag"
)

const traitFixture = `trait SuperTrait {
    fn dummy(&self) { }
}

trait SomeTrait : SuperTrait {
    fn Method(&self) -> uint;
}

struct nofields;

impl SomeTrait for nofields {
    fn Method(&self) -> uint { 42 }
}
`

func TestTraits_SupertraitUnsatisfied(t *testing.T) {
	b := buildSource(t, traitFixture)
	d := b.only(t, diag.SemaSupertraitUnsatisfied)
	if !strings.HasPrefix(b.text(d.Primary), "impl SomeTrait for nofields") {
		t.Fatalf("primary must be the impl header, got %q", b.text(d.Primary))
	}
	if len(d.Notes) != 2 {
		t.Fatalf("want bound and declaration notes, got %+v", d.Notes)
	}
	if got := b.text(d.Notes[0].Span); got != "SuperTrait" || d.Notes[0].Span.Start < b.offset(t, "trait SomeTrait", 0, 0) {
		t.Errorf("first note must be the bound, got %q at %d", got, d.Notes[0].Span.Start)
	}
	if d.Notes[1].Span.Start != b.offset(t, "SuperTrait", 0, 0) {
		t.Errorf("second note must be the supertrait declaration")
	}
	if b.bag.Len() != 1 {
		t.Fatalf("unexpected diagnostics: %s", summary(b.bag))
	}
}

func TestTraits_SupertraitSatisfied(t *testing.T) {
	b := buildSource(t, traitFixture+"impl SuperTrait for nofields { }\n")
	b.mustClean(t)

	nofields := b.mustResolve(t, "nofields", b.root(), NoPos).Symbol
	some := b.mustResolve(t, "SomeTrait", b.root(), NoPos).Symbol
	super := b.mustResolve(t, "SuperTrait", b.root(), NoPos).Symbol
	if !b.table.Implements(nofields, some) || !b.table.Implements(nofields, super) {
		t.Fatal("both traits are implemented directly")
	}
	if cl := b.table.SuperClosure(some); !slices.Equal(cl, []SymbolID{super}) {
		t.Fatalf("closure = %v", cl)
	}
	caps := b.table.Symbols.Get(nofields).Caps
	if len(caps) != 2 {
		t.Fatalf("caps = %v", caps)
	}
}

func TestTraits_SatisfiesThroughClosure(t *testing.T) {
	b := buildSource(t, traitFixture)
	nofields := b.mustResolve(t, "nofields", b.root(), NoPos).Symbol
	super := b.mustResolve(t, "SuperTrait", b.root(), NoPos).Symbol
	if b.table.Implements(nofields, super) {
		t.Fatal("no direct impl of SuperTrait")
	}
	if !b.table.Satisfies(nofields, super) {
		t.Fatal("SomeTrait requires SuperTrait")
	}
}

func TestTraits_Cycle(t *testing.T) {
	b := buildSource(t, `trait A : B { }
trait B : C { }
trait C : A { }
trait D : D { }
`)
	if n := b.count(diag.SemaCyclicSupertrait); n != 2 {
		t.Fatalf("want one report per cycle, got %d: %s", n, summary(b.bag))
	}
	a := b.mustResolve(t, "A", b.root(), NoPos).Symbol
	if cl := b.table.SuperClosure(a); len(cl) != 2 {
		t.Fatalf("closure of A = %v", cl)
	}
	d := b.mustResolve(t, "D", b.root(), NoPos).Symbol
	if cl := b.table.SuperClosure(d); len(cl) != 0 {
		t.Fatalf("closure of D must exclude D itself, got %v", cl)
	}
}

func TestTraits_KindErrors(t *testing.T) {
	b := buildSource(t, `struct S;
trait T : S { }
fn f() {}
impl S for S { }
impl T for f { }
`)
	if n := b.count(diag.SemaExpectedTrait); n != 2 {
		t.Errorf("expected-trait: %s", summary(b.bag))
	}
	if n := b.count(diag.SemaExpectedType); n != 1 {
		t.Errorf("expected-type: %s", summary(b.bag))
	}
}

func TestTraits_MethodChecks(t *testing.T) {
	b := buildSource(t, `trait T {
    fn a(&self);
    fn b(&self);
    fn c(&self) { }
}
struct S;
impl T for S {
    fn a(&self) { }
    fn extra(&self) { }
}
`)
	missing := b.only(t, diag.SemaMissingTraitMethod)
	if !strings.Contains(missing.Message, "'b'") || strings.Contains(missing.Message, "'c'") {
		t.Errorf("missing: %q", missing.Message)
	}
	unknown := b.only(t, diag.SemaUnknownTraitMethod)
	if b.text(unknown.Primary) != "extra" {
		t.Errorf("unknown primary = %q", b.text(unknown.Primary))
	}
}

func TestTraits_MethodsThroughImpl(t *testing.T) {
	b := buildSource(t, traitFixture+`impl SuperTrait for nofields { }
mod other {
    pub fn call() { super::nofields::Method(); }
}
`)
	b.mustClean(t)
	res := b.mustResolve(t, "nofields::Method", b.root(), NoPos)
	if q := b.table.Symbols.Get(res.Symbol).Qual; q != "<nofields as SomeTrait>::Method" {
		t.Fatalf("qual = %q", q)
	}
}
