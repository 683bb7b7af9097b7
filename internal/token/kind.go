package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid marks an unrecognized or malformed lexeme.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	KwMod    // mod
	KwPub    // pub
	KwUse    // use
	KwStruct // struct
	KwTrait  // trait
	KwImpl   // impl
	KwFor    // for
	KwFn     // fn
	KwLet    // let
	KwStatic // static
	KwMut    // mut
	KwAs     // as
	KwSelf   // self
	KwSuper  // super
	KwCrate  // crate
	KwIf     // if
	KwElse   // else
	KwWhile  // while
	KwLoop   // loop
	KwReturn // return
	KwTrue   // true
	KwFalse  // false

	IntLit    // 25, 25u, 0x1f_u8
	FloatLit  // 1.5, 2e10f64
	StringLit // "..."
	CharLit   // 'a'

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Assign     // =
	EqEq       // ==
	Bang       // !
	BangEq     // !=
	Lt         // <
	LtEq       // <=
	Gt         // >
	GtEq       // >=
	Amp        // &
	Pipe       // |
	Caret      // ^
	Tilde      // ~
	AndAnd     // &&
	OrOr       // ||
	Colon      // :
	ColonColon // ::
	Semicolon  // ;
	Comma      // ,
	Dot        // .
	Arrow      // ->
	FatArrow   // =>
	Hash       // #
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Underscore // _

	kindCount
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident",
	KwMod: "mod", KwPub: "pub", KwUse: "use", KwStruct: "struct", KwTrait: "trait", KwImpl: "impl",
	KwFor: "for", KwFn: "fn", KwLet: "let", KwStatic: "static", KwMut: "mut", KwAs: "as",
	KwSelf: "self", KwSuper: "super", KwCrate: "crate", KwIf: "if", KwElse: "else", KwWhile: "while",
	KwLoop: "loop", KwReturn: "return", KwTrue: "true", KwFalse: "false",
	IntLit: "IntLit", FloatLit: "FloatLit", StringLit: "StringLit", CharLit: "CharLit",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=", EqEq: "==",
	Bang: "!", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Amp: "&", Pipe: "|",
	Caret: "^", Tilde: "~", AndAnd: "&&", OrOr: "||", Colon: ":", ColonColon: "::",
	Semicolon: ";", Comma: ",", Dot: ".", Arrow: "->", FatArrow: "=>", Hash: "#",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Underscore: "_",
}

// String returns the lexeme for fixed tokens and a class name otherwise.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Describe renders the kind for "expected X, got Y" messages.
func (k Kind) Describe() string {
	switch k {
	case Ident:
		return "identifier"
	case EOF:
		return "end of file"
	case Invalid:
		return "invalid token"
	case IntLit, FloatLit, StringLit, CharLit:
		return "literal"
	default:
		return "'" + k.String() + "'"
	}
}

func (k Kind) IsKeyword() bool { return k >= KwMod && k <= KwFalse }

func (k Kind) IsLiteral() bool {
	return k == IntLit || k == FloatLit || k == StringLit || k == CharLit || k == KwTrue || k == KwFalse
}

func (k Kind) IsPunctOrOp() bool { return k >= Plus && k <= Underscore }
