package ast

import "rustdex/internal/source"

// ImplItem: `impl Trait for Type { ... }` or inherent `impl Type { ... }`
// (HasTrait false).
type ImplItem struct {
	Trait    Path
	HasTrait bool
	Target   TypeID
	Items    []ItemID
	Header   source.Span // from `impl` to the opening brace
}

func (i *Items) NewImpl(h Header, trait Path, hasTrait bool, target TypeID, items []ItemID, header source.Span) ItemID {
	p := i.Impls.Allocate(ImplItem{Trait: trait, HasTrait: hasTrait, Target: target, Items: items, Header: header})
	return i.new(ItemImpl, h, PayloadID(p))
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	p, ok := i.payload(id, ItemImpl)
	if !ok {
		return nil, false
	}
	return i.Impls.Get(p), true
}
