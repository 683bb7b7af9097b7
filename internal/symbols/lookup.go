package symbols

import (
	"errors"
	"fmt"
	"strings"

	"rustdex/internal/ast"
	"rustdex/internal/source"
)

var (
	// ErrNotFound: no symbol matches along the scope chain.
	ErrNotFound = errors.New("symbol not found")
	// ErrAmbiguous flags more than one candidate for a name. The builder
	// never registers duplicates, so this always means a table defect.
	ErrAmbiguous = errors.New("ambiguous symbol")

	// ErrSuperAtRoot and ErrSelfOutsideImpl refine ErrNotFound.
	ErrSuperAtRoot     = fmt.Errorf("%w: 'super' at crate root", ErrNotFound)
	ErrSelfOutsideImpl = fmt.Errorf("%w: 'Self' outside impl or trait", ErrNotFound)

	errPendingAlias = errors.New("alias target not resolved yet")
)

// NoPos makes every let binding of a scope visible.
const NoPos = ^uint32(0)

// LookupError describes where and why a path lookup failed.
type LookupError struct {
	Path       string
	Segment    string
	Index      int
	Err        error
	Reason     string
	Span       source.Span // failing segment, when known
	Candidates []SymbolID
	Private    SymbolID // the symbol found but not visible
}

func (e *LookupError) Error() string {
	switch {
	case errors.Is(e.Err, ErrAmbiguous):
		return fmt.Sprintf("'%s' is ambiguous (%d candidates)", e.Segment, len(e.Candidates))
	case e.Reason != "":
		return e.Reason
	case e.Index == 0:
		return fmt.Sprintf("cannot find '%s' in this scope", e.Segment)
	default:
		return fmt.Sprintf("cannot find '%s' in '%s'", e.Segment, prefixOf(e.Path, e.Index))
	}
}

func (e *LookupError) Unwrap() error { return e.Err }

func prefixOf(path string, n int) string {
	global := strings.HasPrefix(path, "::")
	parts := strings.Split(strings.TrimPrefix(path, "::"), "::")
	if n > len(parts) {
		n = len(parts)
	}
	out := strings.Join(parts[:n], "::")
	if global {
		return "::" + out
	}
	return out
}

// Resolution is the outcome of a path lookup: Symbol is canonical (aliases
// followed), Segments keeps what each segment named as written.
type Resolution struct {
	Symbol   SymbolID
	Segments []SymbolID
}

// Via returns the alias used by the last segment, if any.
func (r Resolution) Via() SymbolID {
	if n := len(r.Segments); n > 0 && r.Segments[n-1] != r.Symbol {
		return r.Segments[n-1]
	}
	return NoSymbolID
}

type segment struct {
	kind ast.SegKind
	name source.StringID
	text string
	span source.Span
}

// LookupName resolves a single identifier from scope outward.
func (t *Table) LookupName(scope ScopeID, name string, pos uint32) (SymbolID, error) {
	res, err := t.LookupString(name, scope, pos)
	return res.Symbol, err
}

// LookupPath resolves a parsed path used inside scope at pos.
func (t *Table) LookupPath(path ast.Path, scope ScopeID, pos uint32) (Resolution, error) {
	return t.lookupPath(path, scope, pos, NoSymbolID)
}

func (t *Table) lookupPath(path ast.Path, scope ScopeID, pos uint32, skip SymbolID) (Resolution, error) {
	segs := make([]segment, len(path.Segments))
	for i, s := range path.Segments {
		segs[i] = segment{kind: s.Kind, name: s.Name, text: s.Text(t.Strings), span: s.Span}
	}
	return t.lookupSegments(segs, path.Global, scope, pos, skip)
}

// LookupString resolves a textual path such as "sub::sub2::hello" or
// "::a::b". Names never seen by the interner simply fail with ErrNotFound.
func (t *Table) LookupString(path string, scope ScopeID, pos uint32) (Resolution, error) {
	path = strings.TrimSpace(path)
	global := strings.HasPrefix(path, "::")
	body := strings.TrimPrefix(path, "::")
	if body == "" {
		return Resolution{}, &LookupError{Path: path, Err: ErrNotFound, Reason: "empty path"}
	}
	parts := strings.Split(body, "::")
	segs := make([]segment, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		seg := segment{text: p}
		switch p {
		case "self":
			seg.kind = ast.SegSelf
		case "super":
			seg.kind = ast.SegSuper
		case "crate":
			seg.kind = ast.SegCrate
		default:
			seg.kind = ast.SegIdent
			seg.name, _ = t.Strings.Find(source.NormalizeIdent(p))
		}
		segs[i] = seg
	}
	return t.lookupSegments(segs, global, scope, pos, NoSymbolID)
}

func pathText(segs []segment, global bool) string {
	var b strings.Builder
	if global {
		b.WriteString("::")
	}
	for i, s := range segs {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(s.text)
	}
	return b.String()
}

func (t *Table) lookupSegments(segs []segment, global bool, scope ScopeID, pos uint32, skip SymbolID) (Resolution, error) {
	res := Resolution{Segments: make([]SymbolID, 0, len(segs))}
	if len(segs) == 0 {
		return res, &LookupError{Err: ErrNotFound, Reason: "empty path"}
	}
	fail := func(i int, err error, reason string) (Resolution, error) {
		le := &LookupError{Path: pathText(segs, global), Segment: segs[i].text, Index: i, Err: err, Reason: reason, Span: segs[i].span}
		var inner *LookupError
		if errors.As(err, &inner) {
			le.Err, le.Candidates, le.Private = inner.Err, inner.Candidates, inner.Private
			if le.Reason == "" {
				le.Reason = inner.Reason
			}
		}
		return res, le
	}

	// a lone `self` is the receiver when a method encloses the use site
	if len(segs) == 1 && !global && segs[0].kind == ast.SegSelf {
		if id, ok := t.receiver(scope, pos, skip); ok {
			res.Segments = append(res.Segments, id)
			res.Symbol = id
			return res, nil
		}
	}

	var cur SymbolID
	i := 0
	switch {
	case global || segs[0].kind == ast.SegCrate:
		root := t.Scopes.Get(t.UnitRoot(scope))
		if root == nil {
			return fail(0, ErrNotFound, "no crate root for this scope")
		}
		cur = root.Owner
		if !global {
			res.Segments = append(res.Segments, cur)
			i = 1
		}
	case segs[0].kind == ast.SegSelf || segs[0].kind == ast.SegSuper:
		mod := t.ModuleOf(scope)
		for ; i < len(segs) && (segs[i].kind == ast.SegSelf || segs[i].kind == ast.SegSuper); i++ {
			if segs[i].kind == ast.SegSuper {
				sc := t.Scopes.Get(mod)
				if sc == nil || sc.Kind == ScopeUnit {
					return fail(i, ErrSuperAtRoot, "there are too many leading 'super' keywords")
				}
				mod = t.ModuleOf(sc.Parent)
			}
			res.Segments = append(res.Segments, t.Scopes.Get(mod).Owner)
		}
		cur = t.Scopes.Get(mod).Owner
	default:
		id, err := t.lookupLexical(scope, segs[0].name, pos, skip)
		if errors.Is(err, ErrNotFound) && segs[0].text == "Self" {
			id, err = t.selfType(scope)
		}
		if err != nil {
			return fail(0, err, "")
		}
		res.Segments = append(res.Segments, id)
		if cur, err = t.follow(id); err != nil {
			return fail(0, err, "")
		}
		i = 1
	}

	for ; i < len(segs); i++ {
		if segs[i].kind != ast.SegIdent {
			return fail(i, ErrNotFound, fmt.Sprintf("'%s' is only allowed at the start of a path", segs[i].text))
		}
		id, err := t.lookupMember(cur, segs[i].name, scope)
		if err != nil {
			return fail(i, err, "")
		}
		res.Segments = append(res.Segments, id)
		if cur, err = t.follow(id); err != nil {
			return fail(i, err, "")
		}
	}
	res.Symbol = cur
	return res, nil
}

// receiver finds the `self` parameter visible from scope, if any.
func (t *Table) receiver(scope ScopeID, pos uint32, skip SymbolID) (SymbolID, bool) {
	name, ok := t.Strings.Find("self")
	if !ok {
		return NoSymbolID, false
	}
	id, err := t.lookupLexical(scope, name, pos, skip)
	if err != nil {
		return NoSymbolID, false
	}
	if sym := t.Symbols.Get(id); sym == nil || sym.Kind != SymbolParam {
		return NoSymbolID, false
	}
	return id, true
}

// follow dereferences an alias.
func (t *Table) follow(id SymbolID) (SymbolID, error) {
	sym := t.Symbols.Get(id)
	if sym == nil || sym.Kind != SymbolAlias {
		return id, nil
	}
	if sym.Target.IsValid() {
		return sym.Target, nil
	}
	if sym.Flags&SymbolFlagDangling != 0 {
		return NoSymbolID, &LookupError{Err: ErrNotFound, Reason: fmt.Sprintf("alias '%s' does not resolve", t.Name(id))}
	}
	return NoSymbolID, errPendingAlias
}

// lookupLexical walks from scope outward. Member scopes are skipped; past a
// function boundary only items stay visible.
func (t *Table) lookupLexical(scope ScopeID, name source.StringID, pos uint32, skip SymbolID) (SymbolID, error) {
	crossedFn := false
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		if !sc.Kind.IsMember() {
			found, err := t.lookupLocal(sc, name, pos, crossedFn, skip)
			if err != nil || found.IsValid() {
				return found, err
			}
		}
		if sc.Kind == ScopeFunction {
			crossedFn = true
		}
		id = sc.Parent
	}
	return NoSymbolID, ErrNotFound
}

// lookupLocal checks one scope: visible lets first (latest wins), then
// aliases, then items.
func (t *Table) lookupLocal(sc *Scope, name source.StringID, pos uint32, itemsOnly bool, skip SymbolID) (SymbolID, error) {
	bucket := sc.Names[name]
	if len(bucket) == 0 {
		return NoSymbolID, nil
	}
	if !itemsOnly {
		for i := len(bucket) - 1; i >= 0; i-- {
			if sym := t.Symbols.Get(bucket[i]); sym.Kind.IsLocal() && sym.Visible <= pos {
				return bucket[i], nil
			}
		}
	}
	var aliases, items []SymbolID
	for _, id := range bucket {
		if id == skip {
			continue
		}
		switch sym := t.Symbols.Get(id); {
		case sym.Kind == SymbolAlias:
			aliases = append(aliases, id)
		case !sym.Kind.IsLocal():
			items = append(items, id)
		}
	}
	for _, group := range [][]SymbolID{aliases, items} {
		switch len(group) {
		case 0:
			continue
		case 1:
			return group[0], nil
		default:
			return NoSymbolID, &LookupError{Err: ErrAmbiguous, Candidates: group}
		}
	}
	return NoSymbolID, nil
}

// lookupMember resolves name inside container as seen from scope.
func (t *Table) lookupMember(container SymbolID, name source.StringID, from ScopeID) (SymbolID, error) {
	sym := t.Symbols.Get(container)
	if sym == nil {
		return NoSymbolID, ErrNotFound
	}
	var candidates []SymbolID
	switch sym.Kind {
	case SymbolModule, SymbolTrait:
		if sc := t.Scopes.Get(sym.Members); sc != nil {
			for _, id := range sc.Names[name] {
				if !t.Symbols.Get(id).Kind.IsLocal() {
					candidates = append(candidates, id)
				}
			}
		}
	case SymbolStruct, SymbolType:
		// методы из impl-блоков; собственные impl раньше trait impl
		var inherent, viaTrait []SymbolID
		for _, implID := range sym.Impls {
			impl := t.Symbols.Get(implID)
			sc := t.Scopes.Get(impl.Members)
			if sc == nil {
				continue
			}
			if impl.Trait.IsValid() {
				viaTrait = append(viaTrait, sc.Names[name]...)
			} else {
				inherent = append(inherent, sc.Names[name]...)
			}
		}
		candidates = inherent
		if len(candidates) == 0 {
			candidates = viaTrait
		}
	default:
		return NoSymbolID, &LookupError{
			Err:    ErrNotFound,
			Reason: fmt.Sprintf("'%s' is a %s, not a module, type or trait", t.Name(container), sym.Kind),
		}
	}
	switch len(candidates) {
	case 0:
		return NoSymbolID, ErrNotFound
	case 1:
	default:
		return NoSymbolID, &LookupError{Err: ErrAmbiguous, Candidates: candidates}
	}
	id := candidates[0]
	if !t.VisibleFrom(id, from) {
		return NoSymbolID, &LookupError{
			Err:     ErrNotFound,
			Reason:  fmt.Sprintf("'%s' is private", t.Name(id)),
			Private: id,
		}
	}
	return id, nil
}

// VisibleFrom reports whether id may be named from scope: public items are
// visible everywhere, private ones inside their module and its descendants.
func (t *Table) VisibleFrom(id SymbolID, from ScopeID) bool {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return false
	}
	if !from.IsValid() || sym.Flags&(SymbolFlagPublic|SymbolFlagBuiltin) != 0 {
		return true
	}
	if sym.Flags&SymbolFlagMethod != 0 {
		if owner := t.Symbols.Get(t.Scopes.Get(sym.Scope).Owner); owner != nil {
			// методы trait и trait impl публичны вместе с trait
			if owner.Kind == SymbolTrait || (owner.Kind == SymbolImpl && owner.Trait.IsValid()) {
				return true
			}
		}
	}
	return t.IsWithin(from, t.ModuleOf(sym.Scope))
}

// selfType resolves `Self` inside an impl (the target type) or a trait.
func (t *Table) selfType(scope ScopeID) (SymbolID, error) {
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		switch sc.Kind {
		case ScopeTrait:
			return sc.Owner, nil
		case ScopeImpl:
			if target := t.Symbols.Get(sc.Owner).Target; target.IsValid() {
				return target, nil
			}
			return NoSymbolID, ErrNotFound
		case ScopeModule, ScopeUnit:
			return NoSymbolID, &LookupError{Err: ErrSelfOutsideImpl, Reason: "'Self' is only available in impls and traits"}
		}
		id = sc.Parent
	}
	return NoSymbolID, ErrNotFound
}
