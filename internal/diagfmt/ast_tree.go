package diagfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"rustdex/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

// treeBlock is a rendered subtree; width is in terminal cells, root is the
// column the parent connector attaches to.
type treeBlock struct {
	lines []string
	width int
	root  int
}

func toTreeNode(n *ASTNodeOutput, fs *source.FileSet) *treeNode {
	node := &treeNode{label: treeLabel(n, fs)}
	for i := range n.Children {
		node.children = append(node.children, toTreeNode(&n.Children[i], fs))
	}
	return node
}

// treeLabel is shorter than nodeLabel: the vertical layout gets wide fast.
func treeLabel(n *ASTNodeOutput, fs *source.FileSet) string {
	label := n.Type
	if n.Kind != "" {
		label += ":" + n.Kind
	}
	if n.Text != "" {
		label += " " + n.Text
	}
	if n.Type == "File" && fs != nil {
		if f := fs.Get(n.Span.File); f != nil {
			label = f.FormatPath("basename", fs.BaseDir())
		}
	}
	return label
}

func renderTree(node *treeNode) treeBlock {
	label := node.label
	labelWidth := runewidth.StringWidth(label)

	if len(node.children) == 0 {
		return treeBlock{
			lines: []string{label},
			width: labelWidth,
			root:  labelWidth / 2,
		}
	}

	childBlocks := make([]treeBlock, len(node.children))
	maxChildHeight := 0
	for i, child := range node.children {
		childBlocks[i] = renderTree(child)
		if len(childBlocks[i].lines) > maxChildHeight {
			maxChildHeight = len(childBlocks[i].lines)
		}
	}

	const spacing = 3

	positions := make([]int, len(childBlocks))
	totalWidth := 0
	for i, block := range childBlocks {
		positions[i] = totalWidth + block.root
		totalWidth += block.width
		if i != len(childBlocks)-1 {
			totalWidth += spacing
		}
	}

	childrenCenter := (positions[0] + positions[len(positions)-1]) / 2
	rootPos := labelWidth / 2
	shift := childrenCenter - rootPos

	childPrefix := 0
	if shift < 0 {
		childPrefix = -shift
		for i := range positions {
			positions[i] += childPrefix
		}
		totalWidth += childPrefix
		shift = 0
		rootPos = labelWidth / 2
	} else {
		rootPos += shift
	}

	width := totalWidth
	rootLine := label
	if shift > 0 {
		rootLine = strings.Repeat(" ", shift) + label
	}
	if rw := runewidth.StringWidth(rootLine); rw > width {
		width = rw
		for i := range positions {
			if positions[i] >= width {
				width = positions[i] + 1
			}
		}
	}
	rootLine = runewidth.FillRight(rootLine, width)

	connector := make([]byte, width)
	for i := range connector {
		connector[i] = ' '
	}
	if rootPos >= width {
		needed := rootPos - width + 1
		rootLine += strings.Repeat(" ", needed)
		connector = append(connector, make([]byte, needed)...)
		for i := width; i < len(connector); i++ {
			connector[i] = ' '
		}
		width = len(connector)
	}
	connector[rootPos] = '|'
	for _, pos := range positions {
		switch {
		case pos < rootPos:
			connector[pos] = '/'
		case pos > rootPos:
			connector[pos] = '\\'
		default:
			connector[pos] = '|'
		}
	}
	connectorLine := string(connector)

	childLines := make([]string, maxChildHeight)
	for row := range maxChildHeight {
		var sb strings.Builder
		if childPrefix > 0 {
			sb.WriteString(strings.Repeat(" ", childPrefix))
		}
		for i, block := range childBlocks {
			line := ""
			if row < len(block.lines) {
				line = block.lines[row]
			}
			line = runewidth.FillRight(line, block.width)
			sb.WriteString(line)
			if i != len(childBlocks)-1 {
				sb.WriteString(strings.Repeat(" ", spacing))
			}
		}
		rowStr := sb.String()
		rowStr = runewidth.FillRight(rowStr, width)
		childLines[row] = rowStr
	}

	lines := make([]string, 0, 2+len(childLines))
	lines = append(lines, rootLine, connectorLine)
	lines = append(lines, childLines...)

	return treeBlock{
		lines: lines,
		width: width,
		root:  rootPos,
	}
}
