package ast

type StaticItem struct {
	Type  TypeID
	Value ExprID
	Mut   bool
}

func (i *Items) NewStatic(h Header, typ TypeID, value ExprID, mut bool) ItemID {
	p := i.Statics.Allocate(StaticItem{Type: typ, Value: value, Mut: mut})
	return i.new(ItemStatic, h, PayloadID(p))
}

func (i *Items) Static(id ItemID) (*StaticItem, bool) {
	p, ok := i.payload(id, ItemStatic)
	if !ok {
		return nil, false
	}
	return i.Statics.Get(p), true
}
