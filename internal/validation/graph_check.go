package validation

import (
	"fmt"
	"sort"

	"github.com/rendis/langcanvas/internal/graph"
	"github.com/rendis/langcanvas/pkg/schema"
)

// validateCycles reports undeclared cycles. Edges carrying loop metadata are
// declared loops and are left out of the search; loop safety is checked separately.
func validateCycles(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	plain := make([]schema.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Loop == nil {
			plain = append(plain, e)
		}
	}

	comps := graph.CycleComponents(nodeIDs(nodes), plain)
	if len(comps) == 0 {
		return result
	}

	// An edge belongs to a cycle only when both ends share a component.
	component := make(map[string]int)
	var cycle []string
	for i, comp := range comps {
		for _, id := range comp {
			component[id] = i
		}
		cycle = append(cycle, comp...)
	}
	sort.Strings(cycle)

	var edgeIDs []string
	for _, e := range plain {
		ci, inSrc := component[e.Source]
		cj, inDst := component[e.Target]
		if inSrc && inDst && ci == cj {
			edgeIDs = append(edgeIDs, e.ID)
		}
	}

	result.AddError(schema.CategoryStructure, schema.IssueCycle,
		fmt.Sprintf("workflow contains a cycle through %s; declare the closing edge as a loop or remove it",
			displayList(cycle, schema.NodeByID(nodes))),
		cycle, edgeIDs)
	return result
}

// validateReachability warns about nodes that cannot be reached from the start
// node. It only runs when there is exactly one start node.
func validateReachability(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	starts := nodesOfType(nodes, schema.NodeTypeStart)
	if len(starts) != 1 {
		return result
	}

	reached := graph.Reachable(starts[0].ID, edges)
	for _, n := range nodes {
		if n.Type == schema.NodeTypeStart || reached[n.ID] {
			continue
		}
		result.AddWarning(schema.CategoryStructure, schema.IssueUnreachableNode,
			fmt.Sprintf("node %q is not reachable from the start node", n.DisplayName()),
			[]string{n.ID}, nil)
	}
	return result
}
