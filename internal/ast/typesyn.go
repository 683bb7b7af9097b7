package ast

import (
	"strings"

	"rustdex/internal/source"
)

type TypeExprKind uint8

const (
	TypeExprPath  TypeExprKind = iota // a::B
	TypeExprOwned                     // ~T
	TypeExprRef                       // &T, &mut T
	TypeExprArray                     // [T]
	TypeExprTuple                     // (A, B)
	TypeExprUnit                      // ()
)

func (k TypeExprKind) String() string {
	switch k {
	case TypeExprPath:
		return "Path"
	case TypeExprOwned:
		return "Owned"
	case TypeExprRef:
		return "Ref"
	case TypeExprArray:
		return "Array"
	case TypeExprTuple:
		return "Tuple"
	case TypeExprUnit:
		return "Unit"
	default:
		return "Type(?)"
	}
}

type TypeExpr struct {
	Kind  TypeExprKind
	Span  source.Span
	Path  Path     // TypeExprPath
	Elem  TypeID   // Owned, Ref, Array
	Elems []TypeID // Tuple
	Mut   bool     // &mut
}

type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) New(te TypeExpr) TypeID {
	return TypeID(t.Arena.Allocate(te))
}

func (t *TypeExprs) NewPath(p Path) TypeID {
	return t.New(TypeExpr{Kind: TypeExprPath, Span: p.Span, Path: p})
}

func (t *TypeExprs) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// BasePath strips ~, & and [] wrappers and returns the named path, if any.
func (t *TypeExprs) BasePath(id TypeID) (Path, bool) {
	for {
		te := t.Get(id)
		if te == nil {
			return Path{}, false
		}
		switch te.Kind {
		case TypeExprPath:
			return te.Path, true
		case TypeExprOwned, TypeExprRef, TypeExprArray:
			id = te.Elem
		default:
			return Path{}, false
		}
	}
}

// String renders the type expression back to source form.
func (t *TypeExprs) String(id TypeID, strs *source.Interner) string {
	te := t.Get(id)
	if te == nil {
		return ""
	}
	switch te.Kind {
	case TypeExprPath:
		return te.Path.String(strs)
	case TypeExprOwned:
		return "~" + t.String(te.Elem, strs)
	case TypeExprRef:
		if te.Mut {
			return "&mut " + t.String(te.Elem, strs)
		}
		return "&" + t.String(te.Elem, strs)
	case TypeExprArray:
		return "[" + t.String(te.Elem, strs) + "]"
	case TypeExprTuple:
		parts := make([]string, len(te.Elems))
		for i, e := range te.Elems {
			parts[i] = t.String(e, strs)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TypeExprUnit:
		return "()"
	default:
		return "?"
	}
}
