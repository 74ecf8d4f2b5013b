package validation

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rendis/langcanvas/internal/priority"
	"github.com/rendis/langcanvas/pkg/schema"
)

// startNodeOffset is how far left of the leftmost node a generated start node lands.
const startNodeOffset = 200.0

// AutoFix applies the safe repairs for issues and returns the repaired graph with
// a description of each change. Fixes key on issue codes; issues without a
// known fix are left for the user. The inputs are not modified.
func AutoFix(nodes []schema.Node, edges []schema.Edge, issues []schema.ValidationIssue) ([]schema.Node, []schema.Edge, []string) {
	outNodes := append([]schema.Node(nil), nodes...)
	outEdges := append([]schema.Edge(nil), edges...)
	var applied []string

	drop := make(map[string]string)
	var renames [][]string
	var reset []string
	resetSeen := make(map[string]bool)
	needStart := false

	for _, is := range issues {
		switch is.Code {
		case schema.IssueStartAsTarget:
			for _, id := range is.EdgeIDs {
				drop[id] = "removed edge %q into the start node"
			}
		case schema.IssueEndAsSource:
			for _, id := range is.EdgeIDs {
				drop[id] = "removed edge %q out of the end node"
			}
		case schema.IssueMissingSource, schema.IssueMissingTarget:
			for _, id := range is.EdgeIDs {
				drop[id] = "removed edge %q referencing a missing node"
			}
		case schema.IssueDuplicateEdge:
			if len(is.EdgeIDs) > 1 {
				for _, id := range is.EdgeIDs[1:] {
					drop[id] = "removed duplicate edge %q"
				}
			}
		case schema.IssueNoStartNode:
			needStart = true
		case schema.IssueDuplicateLabel:
			renames = append(renames, is.NodeIDs)
		case schema.IssueDuplicatePriority, schema.IssueInvalidPriority:
			for _, id := range is.NodeIDs {
				if !resetSeen[id] {
					resetSeen[id] = true
					reset = append(reset, id)
				}
			}
		}
	}

	if len(drop) > 0 {
		kept := outEdges[:0:0]
		for _, e := range outEdges {
			if format, ok := drop[e.ID]; ok {
				applied = append(applied, fmt.Sprintf(format, e.ID))
				continue
			}
			kept = append(kept, e)
		}
		outEdges = kept
	}

	for _, ids := range renames {
		applied = append(applied, renameDuplicates(outNodes, ids)...)
	}

	if needStart && len(nodesOfType(outNodes, schema.NodeTypeStart)) == 0 {
		var msg string
		outNodes, outEdges, msg = addStartNode(outNodes, outEdges)
		applied = append(applied, msg)
	}

	for _, id := range reset {
		outEdges = priority.ResetPriorities(id, outNodes, outEdges)
		name := id
		if n, ok := schema.NodeByID(outNodes)[id]; ok {
			name = n.DisplayName()
		}
		applied = append(applied, fmt.Sprintf("reset branch priorities of %q", name))
	}

	return outNodes, outEdges, applied
}

// renameDuplicates keeps the first node's label and suffixes the others with the
// lowest free number: "Search", "Search 2", "Search 3".
func renameDuplicates(nodes []schema.Node, ids []string) []string {
	if len(ids) < 2 {
		return nil
	}
	taken := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		taken[schema.NormalizeLabel(n.Label)] = true
	}

	var applied []string
	for _, id := range ids[1:] {
		for i := range nodes {
			if nodes[i].ID != id {
				continue
			}
			base := nodes[i].Label
			for suffix := 2; ; suffix++ {
				candidate := fmt.Sprintf("%s %d", base, suffix)
				if !taken[schema.NormalizeLabel(candidate)] {
					taken[schema.NormalizeLabel(candidate)] = true
					nodes[i].Label = candidate
					applied = append(applied, fmt.Sprintf("renamed duplicate label %q to %q", base, candidate))
					break
				}
			}
		}
	}
	return applied
}

// addStartNode places a start node left of the leftmost node and connects it to
// the leftmost node that has no incoming edges.
func addStartNode(nodes []schema.Node, edges []schema.Edge) ([]schema.Node, []schema.Edge, string) {
	incoming := make(map[string]bool, len(edges))
	for _, e := range edges {
		incoming[e.Target] = true
	}

	pos := schema.Position{}
	minX := math.Inf(1)
	var entry *schema.Node
	for i := range nodes {
		n := &nodes[i]
		if n.Position.X < minX {
			minX = n.Position.X
			pos = schema.Position{X: n.Position.X - startNodeOffset, Y: n.Position.Y}
		}
		if incoming[n.ID] || n.Type == schema.NodeTypeEnd {
			continue
		}
		if entry == nil || n.Position.X < entry.Position.X {
			entry = n
		}
	}

	start := schema.Node{
		ID:       uuid.NewString(),
		Label:    freeLabel(nodes, "Start"),
		Type:     schema.NodeTypeStart,
		Position: pos,
		Config:   schema.DefaultConfig(schema.NodeTypeStart),
	}
	msg := fmt.Sprintf("added start node %q", start.Label)

	if entry != nil {
		edges = append(edges, schema.Edge{ID: uuid.NewString(), Source: start.ID, Target: entry.ID})
		msg = fmt.Sprintf("added start node %q connected to %q", start.Label, entry.DisplayName())
	}
	return append(nodes, start), edges, msg
}

func freeLabel(nodes []schema.Node, base string) string {
	taken := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		taken[schema.NormalizeLabel(n.Label)] = true
	}
	label := base
	for i := 2; taken[schema.NormalizeLabel(label)]; i++ {
		label = fmt.Sprintf("%s %d", base, i)
	}
	return label
}
