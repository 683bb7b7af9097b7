package ast

import "rustdex/internal/source"

// ModuleItem is `mod name { ... }` or, when Inline is false, `mod name;`.
type ModuleItem struct {
	Items  []ItemID
	Inline bool
	Body   source.Span // braces; empty for `mod name;`
}

func (i *Items) NewModule(h Header, items []ItemID, inline bool, body source.Span) ItemID {
	p := i.Modules.Allocate(ModuleItem{Items: items, Inline: inline, Body: body})
	return i.new(ItemModule, h, PayloadID(p))
}

func (i *Items) Module(id ItemID) (*ModuleItem, bool) {
	p, ok := i.payload(id, ItemModule)
	if !ok {
		return nil, false
	}
	return i.Modules.Get(p), true
}
