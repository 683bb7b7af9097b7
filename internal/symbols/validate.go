package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the structural invariants of the table and joins every
// violation into one error.
func (t *Table) Validate() error {
	var errs []error
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	roots := 0
	for i := range t.Scopes.Data() {
		id := ScopeID(i + 1)
		sc := t.Scopes.Get(id)
		if !sc.Parent.IsValid() {
			roots++
		} else if parent := t.Scopes.Get(sc.Parent); parent == nil {
			addf("scope %d: parent %d out of range", id, sc.Parent)
		} else if !slices.Contains(parent.Children, id) {
			addf("scope %d: missing from children of %d", id, sc.Parent)
		}
		if sc.Owner.IsValid() && t.Symbols.Get(sc.Owner) == nil {
			addf("scope %d: owner %d out of range", id, sc.Owner)
		}
		for name, bucket := range sc.Names {
			items := 0
			for _, sid := range bucket {
				sym := t.Symbols.Get(sid)
				if sym == nil {
					addf("scope %d: symbol %d out of range", id, sid)
					continue
				}
				if sym.Name != name || sym.Scope != id {
					addf("scope %d: symbol %d indexed under the wrong name or scope", id, sid)
				}
				if !sym.Kind.IsLocal() {
					items++
				}
			}
			if items > 1 {
				addf("scope %d: %d items share the name '%s'", id, items, t.Strings.MustLookup(name))
			}
		}
	}
	if roots != 1 {
		addf("expected exactly one root scope, found %d", roots)
	}

	for i := range t.Symbols.Data() {
		id := SymbolID(i + 1)
		sym := t.Symbols.Get(id)
		sc := t.Scopes.Get(sym.Scope)
		if sc == nil {
			addf("symbol %d: defining scope %d out of range", id, sym.Scope)
			continue
		}
		if !slices.Contains(sc.Symbols, id) {
			addf("symbol %d: not listed in scope %d", id, sym.Scope)
		}
		if sym.Kind == SymbolAlias && sym.Target.IsValid() {
			if target := t.Symbols.Get(sym.Target); target == nil || target.Kind == SymbolAlias {
				addf("alias %d: target %d is not canonical", id, sym.Target)
			}
		}
	}

	if t.sealed {
		for i := 1; i < len(t.Refs); i++ {
			prev, cur := t.Refs[i-1].Span, t.Refs[i].Span
			if prev.File == cur.File && cur.Start < prev.End {
				addf("refs overlap at %s and %s", prev, cur)
			}
		}
	}
	return errors.Join(errs...)
}
