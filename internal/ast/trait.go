package ast

// TraitItem: `trait Name: Super1 + Super2 { fn ...; }`.
type TraitItem struct {
	Supers []Path
	Items  []ItemID
}

func (i *Items) NewTrait(h Header, supers []Path, items []ItemID) ItemID {
	p := i.Traits.Allocate(TraitItem{Supers: supers, Items: items})
	return i.new(ItemTrait, h, PayloadID(p))
}

func (i *Items) Trait(id ItemID) (*TraitItem, bool) {
	p, ok := i.payload(id, ItemTrait)
	if !ok {
		return nil, false
	}
	return i.Traits.Get(p), true
}
