package ast

import "rustdex/internal/source"

type StructField struct {
	Name       source.StringID
	NameSpan   source.Span
	Type       TypeID
	Visibility Visibility
	Span       source.Span
}

// StructItem: Unit is true for `struct S;`; otherwise Fields keeps declaration order.
type StructItem struct {
	Fields []FieldID
	Unit   bool
}

func (i *Items) NewField(f StructField) FieldID {
	return FieldID(i.Fields.Allocate(f))
}

func (i *Items) Field(id FieldID) *StructField {
	return i.Fields.Get(uint32(id))
}

func (i *Items) NewStruct(h Header, fields []FieldID, unit bool) ItemID {
	p := i.Structs.Allocate(StructItem{Fields: fields, Unit: unit})
	return i.new(ItemStruct, h, PayloadID(p))
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	p, ok := i.payload(id, ItemStruct)
	if !ok {
		return nil, false
	}
	return i.Structs.Get(p), true
}
