package testkit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"rustdex/internal/ast"
	"rustdex/internal/source"
	"rustdex/internal/symbols"
	"rustdex/internal/token"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is within file content bounds and points at sf
// 2) every item span is non-empty and fully contained in file.Span
// 3) file.Span covers the union of item spans (if any items exist)
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	// 1) file span sanity
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	// 2) item spans within file span; 3) file covers union
	var union source.Span
	var haveItem bool
	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		sp := item.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if !f.Span.Encloses(sp) {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		if !item.NameSpan.Empty() && !sp.Encloses(item.NameSpan) {
			return fmt.Errorf("name span %v is outside item span %v", item.NameSpan, sp)
		}
		if !haveItem {
			union = sp
			haveItem = true
		} else {
			union = union.Cover(sp)
		}
	}
	if haveItem && !f.Span.Encloses(union) {
		return fmt.Errorf("file span %v does not cover union of items %v", f.Span, union)
	}
	return nil
}

// CheckTokenInvariants checks a token stream of sf: spans are ordered and
// non-overlapping, Text is the exact source slice and the stream ends with
// a single EOF at the end of the content.
func CheckTokenInvariants(tokens []token.Token, sf *source.File) error {
	if len(tokens) == 0 {
		return fmt.Errorf("empty token stream")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var prevEnd uint32
	for i, tok := range tokens {
		if tok.Span.File != sf.ID {
			return fmt.Errorf("token %d: file %d, want %d", i, tok.Span.File, sf.ID)
		}
		if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start || tok.Span.End > lenContent {
			return fmt.Errorf("token %d (%v): bad span %v after offset %d", i, tok.Kind, tok.Span, prevEnd)
		}
		if tok.Kind == token.EOF {
			if i != len(tokens)-1 {
				return fmt.Errorf("EOF at %d of %d tokens", i, len(tokens))
			}
			if tok.Span.Start != lenContent {
				return fmt.Errorf("EOF at offset %d, content is %d bytes", tok.Span.Start, lenContent)
			}
			continue
		}
		if tok.Kind != token.Invalid {
			if got := string(sf.Content[tok.Span.Start:tok.Span.End]); got != tok.Text {
				return fmt.Errorf("token %d: text %q, source has %q", i, tok.Text, got)
			}
		}
		prevEnd = tok.Span.End
	}
	if tokens[len(tokens)-1].Kind != token.EOF {
		return fmt.Errorf("stream does not end with EOF")
	}
	return nil
}

// CheckTableSpans checks that every declared symbol (span and extent) and
// every reference points inside the content of its file.
func CheckTableSpans(t *symbols.Table, fs *source.FileSet) error {
	var errs []error
	check := func(what string, sp source.Span) {
		f := fs.Get(sp.File)
		if f == nil {
			errs = append(errs, fmt.Errorf("%s: unknown file %d", what, sp.File))
			return
		}
		if int(sp.End) > len(f.Content) || sp.Start > sp.End {
			errs = append(errs, fmt.Errorf("%s: span %v outside %s", what, sp, f.Path))
		}
	}
	for id := symbols.SymbolID(1); int(id) <= t.Symbols.Len(); id++ {
		sym := t.Symbols.Get(id)
		if sym == nil || sym.Flags&symbols.SymbolFlagBuiltin != 0 {
			continue
		}
		check(fmt.Sprintf("symbol %s", sym.Qual), sym.Span)
		check(fmt.Sprintf("extent of %s", sym.Qual), sym.Extent)
	}
	for i, r := range t.Refs {
		check(fmt.Sprintf("ref %d", i), r.Span)
	}
	return errors.Join(errs...)
}
