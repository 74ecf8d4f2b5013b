package validation

import (
	"fmt"
	"strings"

	"github.com/rendis/langcanvas/pkg/schema"
)

// validateStartNodes requires exactly one start node.
func validateStartNodes(nodes []schema.Node) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	starts := nodesOfType(nodes, schema.NodeTypeStart)
	switch {
	case len(starts) == 0:
		result.AddError(schema.CategoryStructure, schema.IssueNoStartNode,
			"workflow has no start node", nil, nil)
	case len(starts) > 1:
		ids := make([]string, len(starts))
		for i, n := range starts {
			ids[i] = n.ID
		}
		result.AddError(schema.CategoryStructure, schema.IssueMultipleStartNodes,
			fmt.Sprintf("workflow has %d start nodes; exactly one is allowed", len(starts)),
			ids, nil)
	}
	return result
}

// validateLabels reports non-empty labels shared by more than one node, compared
// trimmed and case-insensitively. One issue per duplicated label.
func validateLabels(nodes []schema.Node) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	groups := make(map[string][]string)
	var order []string
	for _, n := range nodes {
		key := schema.NormalizeLabel(n.Label)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n.ID)
	}

	for _, key := range order {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}
		result.AddError(schema.CategoryStructure, schema.IssueDuplicateLabel,
			fmt.Sprintf("label %q is used by %d nodes; labels must be unique", key, len(ids)),
			ids, nil)
	}
	return result
}

// validateOutgoing warns about every non-end node without an outgoing edge.
func validateOutgoing(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	hasOut := make(map[string]bool, len(edges))
	for _, e := range edges {
		hasOut[e.Source] = true
	}
	for _, n := range nodes {
		if n.Type == schema.NodeTypeEnd || hasOut[n.ID] {
			continue
		}
		result.AddWarning(schema.CategoryStructure, schema.IssueNoOutgoingEdge,
			fmt.Sprintf("node %q has no outgoing connections", n.DisplayName()),
			[]string{n.ID}, nil)
	}
	return result
}

// validateEdgeRefs checks that every edge joins existing nodes and respects the
// start/end direction rules.
func validateEdgeRefs(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	idx := schema.NodeByID(nodes)

	for _, e := range edges {
		src, srcOK := idx[e.Source]
		dst, dstOK := idx[e.Target]

		if !srcOK {
			result.AddError(schema.CategoryStructure, schema.IssueMissingSource,
				fmt.Sprintf("edge %q references missing source node %q", e.ID, e.Source),
				nil, []string{e.ID})
		}
		if !dstOK {
			result.AddError(schema.CategoryStructure, schema.IssueMissingTarget,
				fmt.Sprintf("edge %q references missing target node %q", e.ID, e.Target),
				nil, []string{e.ID})
		}
		if dstOK && dst.Type == schema.NodeTypeStart {
			result.AddError(schema.CategoryStructure, schema.IssueStartAsTarget,
				fmt.Sprintf("start node %q cannot have incoming connections", dst.DisplayName()),
				[]string{dst.ID}, []string{e.ID})
		}
		if srcOK && src.Type == schema.NodeTypeEnd {
			result.AddError(schema.CategoryStructure, schema.IssueEndAsSource,
				fmt.Sprintf("end node %q cannot have outgoing connections", src.DisplayName()),
				[]string{src.ID}, []string{e.ID})
		}
	}
	return result
}

// validateDuplicateEdges reports plain edges repeating the (source, target)
// pair of an earlier plain edge. Edge IDs are listed in input order, so the
// first one is the edge to keep.
func validateDuplicateEdges(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	idx := schema.NodeByID(nodes)

	type pair struct{ source, target string }
	groups := make(map[pair][]string)
	var order []pair
	for _, e := range edges {
		if e.Loop != nil {
			continue
		}
		k := pair{e.Source, e.Target}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e.ID)
	}

	for _, k := range order {
		ids := groups[k]
		if len(ids) < 2 {
			continue
		}
		result.AddError(schema.CategoryStructure, schema.IssueDuplicateEdge,
			fmt.Sprintf("%d edges connect %s to %s; keep one", len(ids),
				displayList([]string{k.source}, idx), displayList([]string{k.target}, idx)),
			[]string{k.source, k.target}, ids)
	}
	return result
}

// validateToolFanOut allows a tool node at most one outgoing edge.
func validateToolFanOut(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, n := range nodes {
		if n.Type != schema.NodeTypeTool {
			continue
		}
		out := schema.OutEdges(n.ID, edges)
		if len(out) <= 1 {
			continue
		}
		result.AddError(schema.CategoryStructure, schema.IssueToolFanOut,
			fmt.Sprintf("tool node %q has %d outgoing connections; tools allow one, route through a conditional node instead",
				n.DisplayName(), len(out)),
			[]string{n.ID}, edgeIDsOf(out))
	}
	return result
}

// --- helpers ---

func nodeIDs(nodes []schema.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func nodesOfType(nodes []schema.Node, t schema.NodeType) []schema.Node {
	var out []schema.Node
	for _, n := range nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func edgeIDsOf(edges []schema.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

// displayList renders node IDs by display name for messages.
func displayList(ids []string, idx map[string]*schema.Node) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id
		if n, ok := idx[id]; ok {
			names[i] = n.DisplayName()
		}
	}
	return strings.Join(names, ", ")
}
