package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"rustdex/internal/diag"
	"rustdex/internal/source"
)

// fixEditPreview holds the whole lines touched by one edit, before and after.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	endLine := max(endPos.Line, startPos.Line)

	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	blockStart := min(lineStartOffset(file, startPos.Line, size), size)
	blockEnd := min(max(lineEndOffset(file, endLine, size), blockStart), size)

	if edit.Span.Start < blockStart || edit.Span.Start > blockEnd {
		return fixEditPreview{}, fmt.Errorf("edit span start %d out of range for preview block", edit.Span.Start)
	}
	if edit.Span.End < edit.Span.Start || edit.Span.End > blockEnd {
		return fixEditPreview{}, fmt.Errorf("edit span end %d out of range for preview block", edit.Span.End)
	}

	original := string(file.Content[blockStart:blockEnd])
	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart
	after := original[:relStart] + edit.NewText + original[relEnd:]

	return fixEditPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

// splitPreviewLines drops the final newline so "a\n" gives one line.
func splitPreviewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func lineStartOffset(f *source.File, line, size uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if idx := int(line) - 2; idx < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}

// lineEndOffset includes the terminating '\n'.
func lineEndOffset(f *source.File, line, size uint32) uint32 {
	if line == 0 {
		return 0
	}
	if idx := int(line) - 1; idx < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}
