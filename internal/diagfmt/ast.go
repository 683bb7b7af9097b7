package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"rustdex/internal/ast"
	"rustdex/internal/source"
)

// ASTNodeOutput is one node of an AST dump; the same tree feeds the pretty,
// tree and JSON renderings.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
	Fields   map[string]any  `json:"fields,omitempty"`
}

func (n *ASTNodeOutput) add(child ASTNodeOutput) {
	n.Children = append(n.Children, child)
}

func (n *ASTNodeOutput) set(key string, val any) {
	if n.Fields == nil {
		n.Fields = make(map[string]any)
	}
	n.Fields[key] = val
}

// BuildAST returns the dump tree of one parsed file.
func BuildAST(builder *ast.Builder, fileID ast.FileID) (ASTNodeOutput, error) {
	file := builder.Files.Get(fileID)
	if file == nil {
		return ASTNodeOutput{}, fmt.Errorf("file %d not found", fileID)
	}
	d := dumper{b: builder}
	root := ASTNodeOutput{Type: "File", Span: file.Span}
	for _, id := range file.Items {
		root.add(d.item(id))
	}
	return root, nil
}

// FormatASTPretty prints the tree with box-drawing guides, one node per line.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	header := "File"
	if fs != nil {
		if f := fs.Get(root.Span.File); f != nil {
			header = f.FormatPath("auto", fs.BaseDir())
		}
	}
	if _, err := fmt.Fprintf(w, "%s (span: %s)\n", header, formatSpan(root.Span, fs)); err != nil {
		return err
	}
	return writePrettyChildren(w, root.Children, fs, "")
}

func writePrettyChildren(w io.Writer, nodes []ASTNodeOutput, fs *source.FileSet, prefix string) error {
	for i := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(&nodes[i], fs)); err != nil {
			return err
		}
		if err := writePrettyChildren(w, nodes[i].Children, fs, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTTree prints the tree top-down with the root centered above its
// children.
func FormatASTTree(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	block := renderTree(toTreeNode(&root, fs))
	for _, line := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTJSON writes the dump tree as indented JSON.
func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(root)
}

func nodeLabel(n *ASTNodeOutput, fs *source.FileSet) string {
	var sb strings.Builder
	sb.WriteString(n.Type)
	if n.Kind != "" {
		sb.WriteByte(':')
		sb.WriteString(n.Kind)
	}
	if n.Text != "" {
		sb.WriteByte(' ')
		sb.WriteString(n.Text)
	}
	if len(n.Fields) > 0 {
		keys := make([]string, 0, len(n.Fields))
		for k := range n.Fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, n.Fields[k]))
		}
		sb.WriteString(" [")
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteByte(']')
	}
	sb.WriteString(" (span: ")
	sb.WriteString(formatSpan(n.Span, fs))
	sb.WriteByte(')')
	return sb.String()
}

// formatSpan renders "line:col-line:col" when fs is known and raw offsets
// otherwise.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.Get(span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

type dumper struct {
	b *ast.Builder
}

func (d *dumper) name(id source.StringID) string {
	if s := d.b.Name(id); s != "" {
		return s
	}
	return "<anon>"
}
