package ast

import "rustdex/internal/source"

type SelfKind uint8

const (
	SelfNone   SelfKind = iota
	SelfValue           // self
	SelfRef             // &self
	SelfRefMut          // &mut self
	SelfOwned           // ~self
)

func (k SelfKind) String() string {
	switch k {
	case SelfValue:
		return "self"
	case SelfRef:
		return "&self"
	case SelfRefMut:
		return "&mut self"
	case SelfOwned:
		return "~self"
	default:
		return ""
	}
}

// FnParam is either a receiver (Self != SelfNone) or `pattern: Type`.
type FnParam struct {
	Self    SelfKind
	Pattern PatID
	Type    TypeID
	Span    source.Span
}

// FnItem: Body is a block expression, NoExprID for a bodiless trait method.
type FnItem struct {
	Params []ParamID
	Result TypeID
	Body   ExprID
}

func (f *FnItem) HasBody() bool { return f.Body.IsValid() }

func (i *Items) NewParam(p FnParam) ParamID {
	return ParamID(i.Params.Allocate(p))
}

func (i *Items) Param(id ParamID) *FnParam {
	return i.Params.Get(uint32(id))
}

func (i *Items) NewFn(h Header, params []ParamID, result TypeID, body ExprID) ItemID {
	p := i.Fns.Allocate(FnItem{Params: params, Result: result, Body: body})
	return i.new(ItemFn, h, PayloadID(p))
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	p, ok := i.payload(id, ItemFn)
	if !ok {
		return nil, false
	}
	return i.Fns.Get(p), true
}
