package ast

import (
	"rustdex/internal/source"
)

type ItemKind uint8

const (
	ItemModule ItemKind = iota
	ItemStruct
	ItemTrait
	ItemImpl
	ItemFn
	ItemUse
	ItemStatic
)

func (k ItemKind) String() string {
	switch k {
	case ItemModule:
		return "mod"
	case ItemStruct:
		return "struct"
	case ItemTrait:
		return "trait"
	case ItemImpl:
		return "impl"
	case ItemFn:
		return "fn"
	case ItemUse:
		return "use"
	case ItemStatic:
		return "static"
	default:
		return "item"
	}
}

// Item is the common header of every declaration. Parent is a lookup-only
// back reference to the enclosing item (NoItemID at file level).
type Item struct {
	Kind       ItemKind
	Span       source.Span
	Name       source.StringID
	NameSpan   source.Span
	Visibility Visibility
	Parent     ItemID
	Payload    PayloadID
}

type Items struct {
	Arena   *Arena[Item]
	Modules *Arena[ModuleItem]
	Structs *Arena[StructItem]
	Fields  *Arena[StructField]
	Traits  *Arena[TraitItem]
	Impls   *Arena[ImplItem]
	Fns     *Arena[FnItem]
	Params  *Arena[FnParam]
	Uses    *Arena[UseItem]
	Statics *Arena[StaticItem]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena:   NewArena[Item](capHint),
		Modules: NewArena[ModuleItem](capHint / 4),
		Structs: NewArena[StructItem](capHint / 4),
		Fields:  NewArena[StructField](capHint / 2),
		Traits:  NewArena[TraitItem](capHint / 8),
		Impls:   NewArena[ImplItem](capHint / 8),
		Fns:     NewArena[FnItem](capHint / 2),
		Params:  NewArena[FnParam](capHint),
		Uses:    NewArena[UseItem](capHint / 4),
		Statics: NewArena[StaticItem](capHint / 8),
	}
}

// Header holds the fields shared by every item constructor.
type Header struct {
	Span       source.Span
	Name       source.StringID
	NameSpan   source.Span
	Visibility Visibility
	Parent     ItemID
}

func (i *Items) new(kind ItemKind, h Header, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:       kind,
		Span:       h.Span,
		Name:       h.Name,
		NameSpan:   h.NameSpan,
		Visibility: h.Visibility,
		Parent:     h.Parent,
		Payload:    payload,
	}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

// SetParent fixes up the back reference once the enclosing item exists.
func (i *Items) SetParent(id, parent ItemID) {
	if it := i.Get(id); it != nil {
		it.Parent = parent
	}
}

func (i *Items) payload(id ItemID, kind ItemKind) (uint32, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != kind {
		return 0, false
	}
	return uint32(item.Payload), true
}

// Children returns the directly nested items of a module, trait or impl.
func (i *Items) Children(id ItemID) []ItemID {
	item := i.Get(id)
	if item == nil {
		return nil
	}
	switch item.Kind {
	case ItemModule:
		return i.Modules.Get(uint32(item.Payload)).Items
	case ItemTrait:
		return i.Traits.Get(uint32(item.Payload)).Items
	case ItemImpl:
		return i.Impls.Get(uint32(item.Payload)).Items
	default:
		return nil
	}
}
