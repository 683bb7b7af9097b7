package ast

import (
	"strings"

	"rustdex/internal/source"
)

type SegKind uint8

const (
	SegIdent SegKind = iota
	SegSelf          // self
	SegSuper         // super
	SegCrate         // crate
)

type PathSeg struct {
	Kind SegKind
	Name source.StringID // NoStringID for self/super/crate
	Span source.Span
}

// Path is a '::'-separated name as written, e.g. sub::sub2::hello.
type Path struct {
	Segments []PathSeg
	Span     source.Span
	Global   bool // leading '::'
}

func (p Path) IsZero() bool { return len(p.Segments) == 0 }

// Last returns the final segment; Path must not be empty.
func (p Path) Last() PathSeg { return p.Segments[len(p.Segments)-1] }

// String renders the path with the given interner.
func (p Path) String(strs *source.Interner) string {
	var b strings.Builder
	if p.Global {
		b.WriteString("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(seg.Text(strs))
	}
	return b.String()
}

func (s PathSeg) Text(strs *source.Interner) string {
	switch s.Kind {
	case SegSelf:
		return "self"
	case SegSuper:
		return "super"
	case SegCrate:
		return "crate"
	default:
		name, _ := strs.Lookup(s.Name)
		return name
	}
}
