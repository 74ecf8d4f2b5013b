package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/langcanvas/pkg/schema"
)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string.
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	b.WriteString("graph TD\n")

	// Title as comment.
	if model.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", model.Title))
	}

	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	for _, edge := range model.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", mermaidEscapeLabel(edge.Label))
		}
		b.WriteString(fmt.Sprintf("    %s %s%s %s\n",
			mermaidSafeID(edge.From), mermaidArrow(edge.Kind), label, mermaidSafeID(edge.To)))
	}

	// Validation class definitions.
	b.WriteString("\n")
	b.WriteString("    classDef invalid fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef warning fill:#b7791a,stroke:#8a5c14,color:#fff\n")

	for _, node := range model.Nodes {
		if node.Issue == nil {
			continue
		}
		cls := "warning"
		if node.Issue.Severity == schema.SeverityError {
			cls = "invalid"
		}
		b.WriteString(fmt.Sprintf("    class %s %s\n", mermaidSafeID(node.ID), cls))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the appropriate shape.
func mermaidNodeDef(node *Node) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscapeLabel(firstLine(node.Label))

	switch node.Kind {
	case schema.NodeTypeConditional:
		return fmt.Sprintf("%s{%q}", id, label)
	case schema.NodeTypeParallel:
		return fmt.Sprintf("%s{{%q}}", id, label)
	case schema.NodeTypeTool:
		return fmt.Sprintf("%s[[%q]]", id, label)
	case schema.NodeTypeFunction:
		return fmt.Sprintf("%s([%q])", id, label)
	case schema.NodeTypeStart, schema.NodeTypeEnd:
		return fmt.Sprintf("%s((%q))", id, label)
	default: // agent
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidArrow draws loops dotted and conditional branches thick.
func mermaidArrow(kind EdgeKind) string {
	switch kind {
	case EdgeKindLoop:
		return "-.->"
	case EdgeKindConditional:
		return "==>"
	default:
		return "-->"
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
// Replaces dots, dashes and spaces with underscores.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return "n_" + r.Replace(id)
}

// mermaidEscapeLabel replaces characters that end a Mermaid label early.
func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer(`"`, "'", "|", "/")
	return r.Replace(s)
}
