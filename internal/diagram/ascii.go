package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rendis/langcanvas/pkg/schema"
)

// issueTag returns a short ASCII indicator for a validation overlay.
func issueTag(ov *IssueOverlay) string {
	if ov == nil {
		return ""
	}
	if ov.Severity == schema.SeverityError {
		return fmt.Sprintf("[ERR %d]", ov.Errors)
	}
	return fmt.Sprintf("[WARN %d]", ov.Warnings)
}

// kindTag marks the node type inside its box.
func kindTag(kind schema.NodeType) string {
	switch kind {
	case schema.NodeTypeStart, schema.NodeTypeEnd:
		return ""
	default:
		return "<" + string(kind) + ">"
	}
}

// RenderASCII renders a DiagramModel as a text-based ASCII diagram.
// It uses a level-based layout with box-drawing characters, followed by the
// edge list, since branches and loops do not fit a single column of arrows.
func RenderASCII(model *DiagramModel) string {
	var b strings.Builder

	if model.Title != "" {
		b.WriteString(fmt.Sprintf("=== %s ===\n\n", model.Title))
	}

	for levelIdx, level := range model.Levels {
		var boxes []asciiBox
		for _, nodeID := range level {
			node := findNode(model.Nodes, nodeID)
			if node == nil {
				continue
			}
			boxes = append(boxes, makeBox(node))
		}

		renderBoxRow(&b, boxes)

		if levelIdx < len(model.Levels)-1 {
			renderConnector(&b, len(boxes))
		}
	}

	if len(model.Edges) > 0 {
		b.WriteString("\n--- connections ---\n")
		for _, edge := range model.Edges {
			renderEdge(&b, model, edge)
		}
	}

	return b.String()
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

// makeBox creates an ASCII box for a node.
func makeBox(node *Node) asciiBox {
	contentLines := []string{firstLine(node.Label)}
	if tag := kindTag(node.Kind); tag != "" {
		contentLines = append(contentLines, tag)
	}
	if tag := issueTag(node.Issue); tag != "" {
		contentLines = append(contentLines, tag)
	}

	maxLen := 0
	for _, line := range contentLines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	width := maxLen + 4 // 2 border + 2 padding

	var lines []string
	lines = append(lines, "┌"+strings.Repeat("─", width-2)+"┐")
	for _, content := range contentLines {
		padded := content + strings.Repeat(" ", maxLen-utf8.RuneCountInString(content))
		lines = append(lines, "│ "+padded+" │")
	}
	lines = append(lines, "└"+strings.Repeat("─", width-2)+"┘")

	return asciiBox{lines: lines, width: width}
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// renderBoxRow writes boxes side by side.
func renderBoxRow(b *strings.Builder, boxes []asciiBox) {
	if len(boxes) == 0 {
		return
	}

	maxHeight := 0
	for _, box := range boxes {
		if len(box.lines) > maxHeight {
			maxHeight = len(box.lines)
		}
	}

	for row := 0; row < maxHeight; row++ {
		for i, box := range boxes {
			if i > 0 {
				b.WriteString("  ") // gap between boxes
			}
			if row < len(box.lines) {
				b.WriteString(box.lines[row])
			} else {
				b.WriteString(strings.Repeat(" ", box.width))
			}
		}
		b.WriteByte('\n')
	}
}

// renderConnector draws a vertical connector between levels.
func renderConnector(b *strings.Builder, boxCount int) {
	if boxCount == 0 {
		return
	}
	b.WriteString("       │\n")
	b.WriteString("       ▼\n")
}

// renderEdge writes one "From ─→ To [label]" line. Loops use a dotted arrow.
func renderEdge(b *strings.Builder, model *DiagramModel, edge Edge) {
	arrow := "─→"
	if edge.Kind == EdgeKindLoop {
		arrow = "┈→"
	}
	line := fmt.Sprintf("  %s %s %s", displayName(model, edge.From), arrow, displayName(model, edge.To))
	if edge.Label != "" {
		line += fmt.Sprintf(" [%s]", edge.Label)
	}
	b.WriteString(line + "\n")
}

func displayName(model *DiagramModel, id string) string {
	if n := findNode(model.Nodes, id); n != nil {
		return firstLine(n.Label)
	}
	return id
}

// findNode looks up a node by ID in the model's node list.
func findNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
