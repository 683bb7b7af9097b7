package symbols

import (
	"rustdex/internal/ast"
	"rustdex/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolModule
	SymbolStruct
	SymbolTrait
	SymbolFunction
	SymbolStatic
	SymbolField
	SymbolImpl
	SymbolAlias
	SymbolLet
	SymbolParam
	SymbolType // builtin primitive type
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolModule:
		return "module"
	case SymbolStruct:
		return "struct"
	case SymbolTrait:
		return "trait"
	case SymbolFunction:
		return "function"
	case SymbolStatic:
		return "static"
	case SymbolField:
		return "field"
	case SymbolImpl:
		return "impl"
	case SymbolAlias:
		return "alias"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	case SymbolType:
		return "type"
	default:
		return "invalid"
	}
}

// IsType reports whether the kind may appear in type position.
func (k SymbolKind) IsType() bool {
	return k == SymbolStruct || k == SymbolTrait || k == SymbolType
}

// IsLocal — let и параметры: видимость зависит от позиции.
func (k SymbolKind) IsLocal() bool { return k == SymbolLet || k == SymbolParam }

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagMutable
	SymbolFlagBuiltin
	SymbolFlagMethod   // fn declared in a trait or impl
	SymbolFlagRequired // trait method without a default body
	SymbolFlagDangling // alias whose target never resolved
	SymbolFlagExternal // module loaded from its own file
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	if f&SymbolFlagMethod != 0 {
		labels = append(labels, "method")
	}
	if f&SymbolFlagRequired != 0 {
		labels = append(labels, "required")
	}
	if f&SymbolFlagDangling != 0 {
		labels = append(labels, "dangling")
	}
	if f&SymbolFlagExternal != 0 {
		labels = append(labels, "external")
	}
	return labels
}

// SymbolDecl points back at the AST node that declared the symbol.
type SymbolDecl struct {
	File source.FileID
	Item ast.ItemID
	Stmt ast.StmtID
	Pat  ast.PatID
}

// Symbol describes a named entity. Span is the name, Extent the whole
// declaration. Relations are filled in pass 2 and never mutated afterwards.
type Symbol struct {
	Name    source.StringID
	Kind    SymbolKind
	Scope   ScopeID // defining scope
	Span    source.Span
	Extent  source.Span
	Flags   SymbolFlags
	Decl    SymbolDecl
	Qual    string
	Members ScopeID // scope opened by modules, structs, traits, impls and fns

	// Visible is the offset from which a let or param can be referenced.
	Visible uint32
	// Type is a display hint for lets and statics (annotation or literal kind).
	Type string

	Fields  []SymbolID // struct fields in declaration order
	Methods []SymbolID // trait signatures / impl methods

	// Target is the canonical symbol of an alias, the implementing type of
	// an impl or the declared type of a field.
	Target SymbolID
	// Trait is the trait satisfied by an impl.
	Trait SymbolID
	// Supers are the direct supertraits of a trait.
	Supers []SymbolID
	// Impls lists impl symbols targeting a type; Caps the traits they satisfy.
	Impls []SymbolID
	Caps  []SymbolID
}

func (s *Symbol) IsPublic() bool { return s.Flags&SymbolFlagPublic != 0 }

// RefKind classifies a use site.
type RefKind uint8

const (
	RefModule RefKind = iota + 1
	RefType
	RefFunction
	RefVariable
)

func (k RefKind) String() string {
	switch k {
	case RefModule:
		return "module_ref"
	case RefType:
		return "type_ref"
	case RefFunction:
		return "function_ref"
	case RefVariable:
		return "variable_ref"
	default:
		return "ref"
	}
}

// RefKindOf maps a target symbol kind to the kind of reference to it.
func RefKindOf(k SymbolKind) RefKind {
	switch k {
	case SymbolModule:
		return RefModule
	case SymbolStruct, SymbolTrait, SymbolType, SymbolImpl:
		return RefType
	case SymbolFunction:
		return RefFunction
	default:
		return RefVariable
	}
}

// Ref is one resolved (or unresolved, Target invalid) use of a name. Via is
// the alias the reference went through, if any.
type Ref struct {
	Span   source.Span
	Kind   RefKind
	Target SymbolID
	Via    SymbolID
	Scope  ScopeID
}
