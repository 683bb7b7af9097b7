package symbols

import (
	"rustdex/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopePrelude            // builtins shared by every unit
	ScopeUnit               // root module of a compilation unit
	ScopeModule             // mod name { ... } / mod name;
	ScopeStruct             // fields
	ScopeTrait              // method signatures
	ScopeImpl               // impl methods
	ScopeFunction           // parameters
	ScopeBlock              // let bindings and nested items
)

func (k ScopeKind) String() string {
	switch k {
	case ScopePrelude:
		return "prelude"
	case ScopeUnit:
		return "unit"
	case ScopeModule:
		return "module"
	case ScopeStruct:
		return "struct"
	case ScopeTrait:
		return "trait"
	case ScopeImpl:
		return "impl"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// IsModule reports whether names in the scope form a module namespace.
func (k ScopeKind) IsModule() bool { return k == ScopeUnit || k == ScopeModule }

// IsMember reports whether the scope holds members reachable only through a
// path (Type::name), never by walking outward.
func (k ScopeKind) IsMember() bool { return k == ScopeStruct || k == ScopeTrait || k == ScopeImpl }

// Scope models a lexical scope with a parent-child hierarchy. Owner is the
// symbol that opened it (NoSymbolID for the prelude and for blocks).
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Owner    SymbolID
	Unit     UnitID
	Span     source.Span
	Names    map[source.StringID][]SymbolID
	Symbols  []SymbolID
	Children []ScopeID
}
