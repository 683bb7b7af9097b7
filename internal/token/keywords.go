package token

var keywords = map[string]Kind{
	"mod":    KwMod,
	"pub":    KwPub,
	"use":    KwUse,
	"struct": KwStruct,
	"trait":  KwTrait,
	"impl":   KwImpl,
	"for":    KwFor,
	"fn":     KwFn,
	"let":    KwLet,
	"static": KwStatic,
	"mut":    KwMut,
	"as":     KwAs,
	"self":   KwSelf,
	"super":  KwSuper,
	"crate":  KwCrate,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"loop":   KwLoop,
	"return": KwReturn,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword возвращает тип и bool, если ident является ключевым словом.
// Только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
