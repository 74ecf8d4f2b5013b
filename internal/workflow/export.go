package workflow

import (
	"fmt"
	"strings"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Export builds the document for a graph. Node ids become labels in edge
// references, every node gets its transitions, and the entry point is the label
// of the start node when there is exactly one. Labels must be unique, since
// import resolves edges by label.
func Export(nodes []schema.Node, edges []schema.Edge) (*Document, error) {
	labels := make(map[string]string, len(nodes))
	owners := make(map[string][]string)
	for _, n := range nodes {
		label := n.DisplayName()
		labels[n.ID] = label
		key := schema.NormalizeLabel(label)
		owners[key] = append(owners[key], n.ID)
	}
	var dups []string
	for _, n := range nodes {
		key := schema.NormalizeLabel(labels[n.ID])
		if ids := owners[key]; len(ids) > 1 && ids[0] == n.ID {
			dups = append(dups, fmt.Sprintf("%q (%s)", labels[n.ID], strings.Join(ids, ", ")))
		}
	}
	if len(dups) > 0 {
		return nil, schema.NewErrorf(schema.ErrCodeConflict,
			"cannot export: duplicate node labels %s", strings.Join(dups, "; ")).
			WithDetails(map[string]any{"duplicates": dups})
	}

	labelOf := func(id string) string {
		if l, ok := labels[id]; ok {
			return l
		}
		return id
	}

	doc := &Document{
		Version: Version,
		Nodes:   make([]schema.Node, len(nodes)),
		Edges:   make([]schema.Edge, len(edges)),
	}

	var starts []string
	for i, n := range nodes {
		n.Label = labels[n.ID]
		n.Transitions = transitions(n.ID, edges, labelOf)
		doc.Nodes[i] = n
		if n.Type == schema.NodeTypeStart {
			starts = append(starts, n.Label)
		}
	}
	if len(starts) == 1 {
		doc.EntryPoint = starts[0]
	}

	for i, e := range edges {
		e.Source = labelOf(e.Source)
		e.Target = labelOf(e.Target)
		doc.Edges[i] = e
	}
	return doc, nil
}

// ExportJSON is Export followed by Marshal.
func ExportJSON(nodes []schema.Node, edges []schema.Edge) ([]byte, error) {
	doc, err := Export(nodes, edges)
	if err != nil {
		return nil, err
	}
	return Marshal(doc)
}

func transitions(nodeID string, edges []schema.Edge, labelOf func(string) string) []schema.Transition {
	var out []schema.Transition
	for _, e := range schema.OutEdges(nodeID, edges) {
		t := schema.Transition{Target: labelOf(e.Target), Condition: e.Label}
		if e.Conditional != nil {
			t.Priority = e.Conditional.Priority
			if e.Conditional.Condition != "" {
				t.Condition = e.Conditional.Condition
			}
		}
		out = append(out, t)
	}
	return out
}
