// Package priority enforces unique, positive routing priorities among the
// conditional out-edges of a node.
package priority

import (
	"math"
	"sort"

	"github.com/rendis/langcanvas/pkg/schema"
)

// RowTolerance is the vertical band, in pixels, inside which targets count as one row
// when priorities are reset by position.
const RowTolerance = 20.0

// Conflict reports the edges sharing a priority with the one being edited.
type Conflict struct {
	HasConflict      bool
	ConflictingEdges []schema.Edge
}

// ValidatePriorityConflicts scans the conditional out-edges of nodeID, skipping
// excludeEdgeID, for edges already using priority.
func ValidatePriorityConflicts(nodeID string, priority int, edges []schema.Edge, excludeEdgeID string) Conflict {
	var c Conflict
	for _, e := range edges {
		if e.Source != nodeID || e.Conditional == nil || e.ID == excludeEdgeID {
			continue
		}
		if e.Conditional.Priority == priority {
			c.ConflictingEdges = append(c.ConflictingEdges, e)
		}
	}
	c.HasConflict = len(c.ConflictingEdges) > 0
	return c
}

// Conflicts groups the conditional out-edges of nodeID by priority and returns
// only the groups with more than one edge.
func Conflicts(nodeID string, edges []schema.Edge) map[int][]schema.Edge {
	groups := make(map[int][]schema.Edge)
	for _, e := range edges {
		if e.Source == nodeID && e.Conditional != nil {
			groups[e.Conditional.Priority] = append(groups[e.Conditional.Priority], e)
		}
	}
	for p, g := range groups {
		if len(g) < 2 {
			delete(groups, p)
		}
	}
	return groups
}

// NextPriority returns one more than the highest priority among the conditional
// out-edges of nodeID, or 1 when there are none.
func NextPriority(nodeID string, edges []schema.Edge) int {
	highest := 0
	for _, e := range edges {
		if e.Source == nodeID && e.Conditional != nil && e.Conditional.Priority > highest {
			highest = e.Conditional.Priority
		}
	}
	return highest + 1
}

// ResetPriorities renumbers the out-edges of nodeID 1..n by the position of their
// targets: top to bottom, then left to right, with targets whose y lies within
// RowTolerance of a row's first target counted in that row. Out-edges without
// conditional metadata get some. The input slice is not modified.
func ResetPriorities(nodeID string, nodes []schema.Node, edges []schema.Edge) []schema.Edge {
	idx := schema.NodeByID(nodes)
	out := make([]schema.Edge, len(edges))
	copy(out, edges)

	type ranked struct {
		i   int
		pos schema.Position
	}
	var owned []ranked
	for i, e := range out {
		if e.Source != nodeID {
			continue
		}
		pos := schema.Position{X: math.Inf(1), Y: math.Inf(1)} // unknown targets sort last
		if n, ok := idx[e.Target]; ok {
			pos = n.Position
		}
		owned = append(owned, ranked{i: i, pos: pos})
	}

	sort.SliceStable(owned, func(a, b int) bool { return owned[a].pos.Y < owned[b].pos.Y })

	// Band into rows anchored at each row's topmost target, then order rows by x.
	for start := 0; start < len(owned); {
		end := start + 1
		for end < len(owned) && owned[end].pos.Y-owned[start].pos.Y <= RowTolerance {
			end++
		}
		row := owned[start:end]
		sort.SliceStable(row, func(a, b int) bool { return row[a].pos.X < row[b].pos.X })
		start = end
	}

	for rank, r := range owned {
		meta := schema.ConditionalMeta{}
		if out[r.i].Conditional != nil {
			meta = *out[r.i].Conditional
		}
		meta.Priority = rank + 1
		out[r.i].Conditional = &meta
	}
	return out
}
