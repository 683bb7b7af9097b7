package ast

import (
	"rustdex/internal/source"
)

type PatKind uint8

const (
	PatIdent PatKind = iota // x, mut x
	PatWild                 // _
	PatTuple                // (a, (b, _))
)

type Pattern struct {
	Kind  PatKind
	Span  source.Span
	Name  source.StringID
	Mut   bool
	Elems []PatID
}

type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{Arena: NewArena[Pattern](capHint)}
}

func (p *Patterns) New(pat Pattern) PatID {
	return PatID(p.Arena.Allocate(pat))
}

func (p *Patterns) Get(id PatID) *Pattern {
	return p.Arena.Get(uint32(id))
}

// Bindings returns the identifier patterns bound by id, left to right.
func (p *Patterns) Bindings(id PatID) []PatID {
	var out []PatID
	var walk func(PatID)
	walk = func(id PatID) {
		pat := p.Get(id)
		if pat == nil {
			return
		}
		switch pat.Kind {
		case PatIdent:
			out = append(out, id)
		case PatTuple:
			for _, e := range pat.Elems {
				walk(e)
			}
		}
	}
	walk(id)
	return out
}
