package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RenderASCIIAuto renders through the mermaid-ascii binary in binDir when it is
// present, falling back to RenderASCII.
func RenderASCIIAuto(ctx context.Context, model *DiagramModel, binDir string) string {
	if binDir != "" {
		binPath := filepath.Join(binDir, "mermaid-ascii")
		if _, err := os.Stat(binPath); err == nil {
			result, err := RenderASCIIViaCLI(ctx, model, binPath)
			if err == nil {
				return result
			}
		}
	}
	return RenderASCII(model)
}

// RenderASCIIViaCLI pipes simplified Mermaid syntax through the mermaid-ascii binary.
func RenderASCIIViaCLI(ctx context.Context, model *DiagramModel, binPath string) (string, error) {
	cmd := exec.CommandContext(ctx, binPath)
	cmd.Stdin = strings.NewReader(RenderMermaidForCLI(model))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("mermaid-ascii: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// RenderMermaidForCLI generates the Mermaid subset mermaid-ascii understands:
// edge lines only, with node labels as identifiers. Nodes without edges are
// emitted bare so they still show up.
func RenderMermaidForCLI(model *DiagramModel) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	displayID := make(map[string]string, len(model.Nodes))
	for _, node := range model.Nodes {
		displayID[node.ID] = cliNodeID(node)
	}
	resolve := func(id string) string {
		if d, ok := displayID[id]; ok {
			return d
		}
		return mermaidSafeID(id)
	}

	connected := make(map[string]bool, len(model.Nodes))
	for _, edge := range model.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", mermaidEscapeLabel(edge.Label))
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n", resolve(edge.From), label, resolve(edge.To)))
		connected[edge.From] = true
		connected[edge.To] = true
	}
	for _, node := range model.Nodes {
		if !connected[node.ID] {
			b.WriteString(fmt.Sprintf("    %s\n", resolve(node.ID)))
		}
	}

	return b.String()
}

// cliNodeID builds a display ID for the mermaid-ascii CLI with the issue tag
// folded in, e.g. "Search-ERR".
func cliNodeID(node *Node) string {
	id := firstLine(node.Label)
	if id == "" {
		id = node.ID
	}
	if node.Issue != nil {
		id += "-" + strings.ToUpper(string(node.Issue.Severity)[:3])
	}
	return strings.ReplaceAll(id, " ", "-")
}
