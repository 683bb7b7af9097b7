package symbols

import (
	"fmt"
	"slices"
	"strings"

	"rustdex/internal/diag"
	"rustdex/internal/source"
)

func (b *Builder) resolveSupertraits() {
	t := b.table
	for _, id := range b.traits {
		info := b.decls[id]
		tr, ok := info.ast.Items.Trait(info.item)
		if !ok {
			continue
		}
		scope := t.Symbols.Get(id).Members
		for _, path := range tr.Supers {
			super, ok := b.resolvePathRefs(path, scope, itemPos, RefType, diag.SevError)
			if !ok {
				continue
			}
			ss := t.Symbols.Get(super)
			if ss.Kind != SymbolTrait {
				diag.ReportError(b.reporter, diag.SemaExpectedTrait, path.Span,
					fmt.Sprintf("expected a trait, found %s '%s'", ss.Kind, t.Name(super))).Emit()
				continue
			}
			sym := t.Symbols.Get(id)
			if slices.Contains(sym.Supers, super) {
				continue
			}
			sym.Supers = append(sym.Supers, super)
			b.superSpans[[2]SymbolID{id, super}] = path.Span
		}
	}
	b.reportSuperCycles()
	for _, id := range b.traits {
		t.supers[id] = t.computeClosure(id)
	}
}

// reportSuperCycles walks the supertrait graph depth-first; each back edge
// closes one cycle, reported once whatever trait it is entered from.
func (b *Builder) reportSuperCycles() {
	t := b.table
	const (
		white = iota
		grey
		black
	)
	color := make(map[SymbolID]int, len(b.traits))
	seen := make(map[string]bool)
	var stack []SymbolID

	var visit func(id SymbolID)
	visit = func(id SymbolID) {
		color[id] = grey
		stack = append(stack, id)
		for _, s := range t.Symbols.Get(id).Supers {
			switch color[s] {
			case white:
				visit(s)
			case grey:
				start := slices.Index(stack, s)
				cycle := slices.Clone(stack[start:])
				key := slices.Clone(cycle)
				slices.Sort(key)
				k := fmt.Sprint(key)
				if seen[k] {
					continue
				}
				seen[k] = true
				names := make([]string, 0, len(cycle)+1)
				for _, c := range cycle {
					names = append(names, t.Name(c))
				}
				names = append(names, t.Name(s))
				rb := diag.ReportError(b.reporter, diag.SemaCyclicSupertrait, b.superSpans[[2]SymbolID{id, s}],
					"cyclic supertrait: "+strings.Join(names, " -> "))
				for _, c := range cycle {
					rb.WithNote(t.Symbols.Get(c).Span, fmt.Sprintf("'%s' declared here", t.Name(c)))
				}
				rb.Emit()
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}
	for _, id := range b.traits {
		if color[id] == white {
			visit(id)
		}
	}
}

func (b *Builder) resolveImpls() {
	t := b.table
	for _, id := range b.impls {
		info := b.decls[id]
		ab := info.ast
		impl, ok := ab.Items.Impl(info.item)
		if !ok {
			continue
		}
		scope := t.Symbols.Get(id).Scope

		var target SymbolID
		if found := b.typeRefs(ab, impl.Target, scope, itemPos, diag.SevError); found.IsValid() {
			if ts := t.Symbols.Get(found); ts.Kind.IsType() {
				target = found
			} else {
				diag.ReportError(b.reporter, diag.SemaExpectedType, ab.Types.Get(impl.Target).Span,
					fmt.Sprintf("expected a type, found %s '%s'", ts.Kind, t.Name(found))).Emit()
			}
		}

		var trait SymbolID
		if impl.HasTrait {
			if found, ok := b.resolvePathRefs(impl.Trait, scope, itemPos, RefType, diag.SevError); ok {
				if ts := t.Symbols.Get(found); ts.Kind == SymbolTrait {
					trait = found
				} else {
					diag.ReportError(b.reporter, diag.SemaExpectedTrait, impl.Trait.Span,
						fmt.Sprintf("expected a trait, found %s '%s'", ts.Kind, t.Name(found))).Emit()
				}
			}
		}

		sym := t.Symbols.Get(id)
		sym.Target, sym.Trait = target, trait
		if target.IsValid() {
			ts := t.Symbols.Get(target)
			ts.Impls = append(ts.Impls, id)
			if trait.IsValid() && !slices.Contains(ts.Caps, trait) {
				ts.Caps = append(ts.Caps, trait)
			}
		}
		if trait.IsValid() {
			b.checkTraitMethods(id, trait, impl.Header)
		}
	}
}

// checkTraitMethods compares the methods of impl with the signatures of trait.
func (b *Builder) checkTraitMethods(impl, trait SymbolID, header source.Span) {
	t := b.table
	is, ts := t.Symbols.Get(impl), t.Symbols.Get(trait)
	provided := make(map[string]bool, len(is.Methods))
	for _, m := range is.Methods {
		provided[t.Name(m)] = true
	}
	declared := make(map[string]bool, len(ts.Methods))
	var missing []string
	for _, m := range ts.Methods {
		name := t.Name(m)
		declared[name] = true
		if t.Symbols.Get(m).Flags&SymbolFlagRequired != 0 && !provided[name] {
			missing = append(missing, "'"+name+"'")
		}
	}
	if len(missing) > 0 {
		diag.ReportError(b.reporter, diag.SemaMissingTraitMethod, header,
			fmt.Sprintf("not all trait methods implemented, missing: %s", strings.Join(missing, ", "))).
			WithNote(ts.Span, fmt.Sprintf("trait '%s' declared here", t.Name(trait))).
			Emit()
	}
	for _, m := range is.Methods {
		if name := t.Name(m); !declared[name] {
			ms := t.Symbols.Get(m)
			diag.ReportError(b.reporter, diag.SemaUnknownTraitMethod, ms.Span,
				fmt.Sprintf("method '%s' is not a member of trait '%s'", name, t.Name(trait))).Emit()
		}
	}
}

// checkSupertraits reports trait impls whose target lacks an impl of some
// trait in the supertrait closure.
func (b *Builder) checkSupertraits() {
	t := b.table
	for _, id := range b.impls {
		sym := t.Symbols.Get(id)
		if !sym.Target.IsValid() || !sym.Trait.IsValid() {
			continue
		}
		for _, super := range t.SuperClosure(sym.Trait) {
			if t.Implements(sym.Target, super) {
				continue
			}
			msg := fmt.Sprintf("the trait bound '%s: %s' is not satisfied", t.Name(sym.Target), t.Name(super))
			rb := diag.ReportError(b.reporter, diag.SemaSupertraitUnsatisfied, sym.Span, msg)
			if by, span, ok := b.boundOf(sym.Trait, super); ok {
				rb.WithNote(span, fmt.Sprintf("required by this bound in '%s'", t.Name(by)))
			}
			ss := t.Symbols.Get(super)
			rb.WithNote(ss.Span, fmt.Sprintf("trait '%s' declared here", t.Name(super)))
			rb.Emit()
		}
	}
}

// boundOf finds the trait in the closure of trait that lists super directly.
func (b *Builder) boundOf(trait, super SymbolID) (SymbolID, source.Span, bool) {
	for _, c := range append([]SymbolID{trait}, b.table.SuperClosure(trait)...) {
		if span, ok := b.superSpans[[2]SymbolID{c, super}]; ok {
			return c, span, true
		}
	}
	return NoSymbolID, spanNone, false
}
