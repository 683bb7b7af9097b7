package ast

import "rustdex/internal/source"

// UseEntry binds Alias to Path. For `use a::b;` the alias is the last segment.
type UseEntry struct {
	Alias     source.StringID
	AliasSpan source.Span
	Path      Path
	Renamed   bool // `use x = p;` or `use p as x;`
	Span      source.Span
}

// UseItem is one `use` declaration; a group `use a::{b, c as d};` yields several entries.
type UseItem struct {
	Entries []UseEntry
}

func (i *Items) NewUse(h Header, entries []UseEntry) ItemID {
	p := i.Uses.Allocate(UseItem{Entries: entries})
	return i.new(ItemUse, h, PayloadID(p))
}

func (i *Items) Use(id ItemID) (*UseItem, bool) {
	p, ok := i.payload(id, ItemUse)
	if !ok {
		return nil, false
	}
	return i.Uses.Get(p), true
}
