package diagram

import (
	"fmt"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Build constructs a DiagramModel from a canvas graph and an optional
// validation result. Nodes are layered by longest path from the roots over
// non-loop edges; nodes caught in undeclared cycles share a final level.
func Build(title string, nodes []schema.Node, edges []schema.Edge, result *schema.ValidationResult) *DiagramModel {
	if title == "" {
		title = "Workflow"
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	levels := buildLevels(nodes, edges, known)

	index := make(map[string]*Node, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		index[n.ID] = &Node{
			ID:    n.ID,
			Label: nodeLabel(n),
			Kind:  n.Type,
			Issue: overlayFor(n.ID, result),
		}
	}

	ordered := make([]*Node, 0, len(nodes))
	for _, level := range levels {
		for _, id := range level {
			ordered = append(ordered, index[id])
		}
	}

	return &DiagramModel{
		Title:  title,
		Nodes:  ordered,
		Edges:  buildEdges(edges, known),
		Levels: levels,
	}
}

// nodeLabel shows the bound function under the node label when there is one.
func nodeLabel(n *schema.Node) string {
	if n.Function.Name != "" {
		return fmt.Sprintf("%s\n(%s)", n.DisplayName(), n.Function.Name)
	}
	return n.DisplayName()
}

// overlayFor summarizes the issues referencing a node.
func overlayFor(nodeID string, result *schema.ValidationResult) *IssueOverlay {
	if result == nil {
		return nil
	}
	issues := result.ForNode(nodeID)
	if len(issues) == 0 {
		return nil
	}
	ov := &IssueOverlay{Severity: schema.SeverityWarning}
	for _, is := range issues {
		if is.Severity == schema.SeverityError {
			ov.Errors++
			ov.Severity = schema.SeverityError
		} else {
			ov.Warnings++
		}
	}
	return ov
}

// buildEdges keeps edges whose endpoints exist and labels them for display.
func buildEdges(edges []schema.Edge, known map[string]bool) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		out = append(out, Edge{From: e.Source, To: e.Target, Label: edgeLabel(e), Kind: edgeKind(e)})
	}
	return out
}

func edgeKind(e schema.Edge) EdgeKind {
	switch {
	case e.Loop != nil:
		return EdgeKindLoop
	case e.Conditional != nil:
		return EdgeKindConditional
	default:
		return EdgeKindPlain
	}
}

// edgeLabel combines the edge label with its routing or loop metadata:
// "approved #1", "retry (loop max 3)".
func edgeLabel(e schema.Edge) string {
	label := e.Label
	if e.Conditional != nil {
		tag := fmt.Sprintf("#%d", e.Conditional.Priority)
		if e.Conditional.IsDefault {
			tag = "default"
		}
		label = joinLabel(label, tag)
	}
	if e.Loop != nil {
		tag := "loop"
		if e.Loop.MaxIterations > 0 {
			tag = fmt.Sprintf("loop max %d", e.Loop.MaxIterations)
		}
		if label == "" {
			label = tag
		} else {
			label = fmt.Sprintf("%s (%s)", label, tag)
		}
	}
	return label
}

func joinLabel(label, tag string) string {
	if label == "" {
		return tag
	}
	return label + " " + tag
}

// buildLevels assigns each node the length of the longest non-loop path
// reaching it from a root.
func buildLevels(nodes []schema.Node, edges []schema.Edge, known map[string]bool) [][]string {
	succ := make(map[string][]string, len(nodes))
	indeg := make(map[string]int, len(nodes))
	for _, e := range edges {
		if e.Loop != nil || !known[e.Source] || !known[e.Target] || e.Source == e.Target {
			continue
		}
		succ[e.Source] = append(succ[e.Source], e.Target)
		indeg[e.Target]++
	}

	level := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if indeg[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if level[id]+1 > level[next] {
				level[next] = level[id] + 1
			}
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	depth := 0
	for _, n := range nodes {
		if indeg[n.ID] == 0 && level[n.ID]+1 > depth {
			depth = level[n.ID] + 1
		}
	}

	levels := make([][]string, depth)
	var cyclic []string
	for _, n := range nodes {
		if indeg[n.ID] > 0 {
			cyclic = append(cyclic, n.ID)
			continue
		}
		levels[level[n.ID]] = append(levels[level[n.ID]], n.ID)
	}
	if len(cyclic) > 0 {
		levels = append(levels, cyclic)
	}
	return levels
}
