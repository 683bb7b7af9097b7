package symbols

import (
	"errors"
	"fmt"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/source"
)

// Resolve runs pass 2 over everything declared so far and seals the table.
// Calling it again returns the same table.
func (b *Builder) Resolve() *Table {
	t := b.table
	if b.done {
		return t
	}
	b.resolveAliases()
	b.resolveSupertraits()
	b.resolveImpls()
	b.checkSupertraits()
	b.resolveStructs()
	b.resolveStatics()
	b.resolveFns()
	b.reportDangling()

	t.sortRefs()
	t.sealed = true
	b.done = true

	if b.opts.Validate {
		if err := t.Validate(); err != nil {
			diag.ReportError(b.reporter, diag.ICETableInvariant, spanNone, err.Error()).Emit()
		}
	}
	return t
}

// resolvePathRefs looks path up and records one reference per named
// segment. Failures are reported; the failing segment is kept with no target.
func (b *Builder) resolvePathRefs(path ast.Path, scope ScopeID, pos uint32, hint RefKind, sev diag.Severity) (SymbolID, bool) {
	if path.IsZero() {
		return NoSymbolID, false
	}
	res, err := b.table.LookupPath(path, scope, pos)
	b.addSegmentRefs(path, res, scope)
	if err != nil {
		b.reportLookup(err, path.Span, sev)
		failed := len(res.Segments)
		if failed < len(path.Segments) && path.Segments[failed].Kind == ast.SegIdent {
			kind := RefModule
			if failed == len(path.Segments)-1 {
				kind = hint
			}
			b.table.Refs = append(b.table.Refs, Ref{Span: path.Segments[failed].Span, Kind: kind, Scope: scope})
		}
		return NoSymbolID, false
	}
	return res.Symbol, true
}

func (b *Builder) addSegmentRefs(path ast.Path, res Resolution, scope ScopeID) {
	t := b.table
	for i, id := range res.Segments {
		if i >= len(path.Segments) {
			continue
		}
		target := t.Canonical(id)
		sym := t.Symbols.Get(target)
		if sym == nil {
			continue
		}
		// `self` counts only as the receiver, never as a module segment
		if kind := path.Segments[i].Kind; kind != ast.SegIdent && (kind != ast.SegSelf || sym.Kind != SymbolParam) {
			continue
		}
		ref := Ref{Span: path.Segments[i].Span, Kind: RefKindOf(sym.Kind), Target: target, Scope: scope}
		if id != target {
			ref.Via = id
		}
		t.Refs = append(t.Refs, ref)
	}
}

// reportLookup turns a lookup failure into a diagnostic. sev applies to
// plain unresolved names; the other classes have fixed severities.
func (b *Builder) reportLookup(err error, fallback source.Span, sev diag.Severity) {
	t := b.table
	span := fallback
	var le *LookupError
	if errors.As(err, &le) && le.Span != spanNone {
		span = le.Span
	}
	switch {
	case errors.Is(err, ErrAmbiguous):
		rb := diag.ReportError(b.reporter, diag.ICEAmbiguousSymbol, span, err.Error())
		if le != nil {
			for _, c := range le.Candidates {
				if sym := t.Symbols.Get(c); sym != nil && sym.Span != spanNone {
					rb.WithNote(sym.Span, "candidate declared here")
				}
			}
		}
		rb.Emit()
	case le != nil && le.Private.IsValid():
		rb := diag.ReportError(b.reporter, diag.SemaPrivateItem, span, err.Error())
		if sym := t.Symbols.Get(le.Private); sym != nil {
			rb.WithNote(sym.Span, fmt.Sprintf("'%s' declared here", t.Name(le.Private)))
		}
		rb.Emit()
	case errors.Is(err, ErrSuperAtRoot):
		diag.ReportError(b.reporter, diag.SemaSuperAtRoot, span, err.Error()).Emit()
	case errors.Is(err, ErrSelfOutsideImpl):
		diag.ReportError(b.reporter, diag.SemaSelfOutsideImpl, span, err.Error()).Emit()
	default:
		diag.NewReportBuilder(b.reporter, sev, diag.SemaUnresolvedSymbol, span, err.Error()).Emit()
	}
}

func (b *Builder) reportDangling() {
	t := b.table
	for _, id := range b.aliases {
		sym := t.Symbols.Get(id)
		if sym.Flags&SymbolFlagDangling == 0 {
			continue
		}
		err := b.aliasErrs[id]
		if errors.Is(err, ErrAmbiguous) {
			b.reportLookup(err, sym.Extent, diag.SevError)
			continue
		}
		msg := fmt.Sprintf("unresolved alias '%s'", t.Name(id))
		if err != nil {
			msg += ": " + err.Error()
		}
		diag.ReportError(b.reporter, diag.SemaDanglingAlias, sym.Extent, msg).Emit()
	}
}
