package symbols

import (
	"errors"
	"fmt"
	"slices"
)

var errAliasCycle = errors.New("alias cycle")

// resolveAliases binds every alias to its canonical target. Aliases may
// name other aliases declared anywhere, so resolution repeats until a round
// makes no progress; whatever is still pending then is part of a cycle.
func (b *Builder) resolveAliases() {
	t := b.table
	pending := slices.Clone(b.aliases)
	for len(pending) > 0 {
		var next []SymbolID
		for _, id := range pending {
			sym := t.Symbols.Get(id)
			path := b.aliasPaths[id]
			res, err := t.lookupPath(path, sym.Scope, itemPos, id)
			if errors.Is(err, errPendingAlias) {
				next = append(next, id)
				continue
			}
			b.addSegmentRefs(path, res, sym.Scope)
			if err != nil {
				sym.Flags |= SymbolFlagDangling
				b.aliasErrs[id] = err
				if failed := len(res.Segments); failed < len(path.Segments) {
					t.Refs = append(t.Refs, Ref{Span: path.Segments[failed].Span, Kind: RefModule, Scope: sym.Scope})
				}
				continue
			}
			sym.Target = res.Symbol
		}
		if len(next) == len(pending) {
			for _, id := range next {
				t.Symbols.Get(id).Flags |= SymbolFlagDangling
				b.aliasErrs[id] = fmt.Errorf("%w through '%s'", errAliasCycle, b.aliasPaths[id].String(t.Strings))
			}
			return
		}
		pending = next
	}
}
