package geometry

import "github.com/rendis/langcanvas/pkg/schema"

// DefaultEdgeSpacing separates parallel edges between the same pair of nodes.
const DefaultEdgeSpacing = 16.0

// ParallelOffsets spreads edges that join the same unordered node pair
// symmetrically around zero, in input order: two edges get -s/2 and +s/2,
// three get -s, 0, +s. A lone edge gets 0.
func ParallelOffsets(edges []schema.Edge, spacing float64) map[string]float64 {
	type pair struct{ a, b string }
	groups := make(map[pair][]string)
	var order []pair

	for _, e := range edges {
		k := pair{e.Source, e.Target}
		if k.b < k.a {
			k.a, k.b = k.b, k.a
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e.ID)
	}

	offsets := make(map[string]float64, len(edges))
	for _, k := range order {
		ids := groups[k]
		mid := float64(len(ids)-1) / 2
		for i, id := range ids {
			offsets[id] = (float64(i) - mid) * spacing
		}
	}
	return offsets
}

// OrthogonalPath returns the elbow route from src to dst: across to the middle,
// down or up, then across again. The vertical segment is shifted by offset so
// parallel edges do not overlap.
func OrthogonalPath(src, dst schema.Position, offset float64) []schema.Position {
	midX := (src.X+dst.X)/2 + offset
	return []schema.Position{
		src,
		{X: midX, Y: src.Y},
		{X: midX, Y: dst.Y},
		dst,
	}
}
