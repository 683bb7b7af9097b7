package token

import (
	"rustdex/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

func (t Token) IsLiteral() bool   { return t.Kind.IsLiteral() }
func (t Token) IsPunctOrOp() bool { return t.Kind.IsPunctOrOp() }
func (t Token) IsKeyword() bool   { return t.Kind.IsKeyword() }
func (t Token) IsIdent() bool     { return t.Kind == Ident }

// IsItemStart reports whether the token can begin an item. Used for recovery.
func (t Token) IsItemStart() bool {
	switch t.Kind {
	case KwMod, KwPub, KwUse, KwStruct, KwTrait, KwImpl, KwFn, KwStatic, Hash:
		return true
	default:
		return false
	}
}
