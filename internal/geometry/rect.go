// Package geometry holds the pure canvas math: rectangle hit-testing, rectangle
// selection, multi-node drags and edge path offsets. Nothing here touches a
// rendering surface; node bounds come from a LayoutQuery.
package geometry

import (
	"math"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Default node box used when bounds are derived from positions alone.
const (
	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 64.0
)

// Rect is an axis-aligned rectangle in canvas pixels. X/Y is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RectFromPoints builds the rectangle spanned by two corners in any order.
func RectFromPoints(a, b schema.Position) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of r.
func (r Rect) Center() schema.Position {
	return schema.Position{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// RectIntersects reports whether a node's bounds overlap the selection.
// Touching edges count; a zero-area selection never selects anything.
func RectIntersects(node, selection Rect) bool {
	if selection.Empty() {
		return false
	}
	return node.X <= selection.Right() &&
		selection.X <= node.Right() &&
		node.Y <= selection.Bottom() &&
		selection.Y <= node.Bottom()
}

// LayoutQuery supplies the on-canvas bounds of a node.
type LayoutQuery interface {
	Bounds(nodeID string) (Rect, bool)
}

// StaticLayout is a LayoutQuery over precomputed bounds.
type StaticLayout map[string]Rect

// Bounds implements LayoutQuery.
func (l StaticLayout) Bounds(nodeID string) (Rect, bool) {
	r, ok := l[nodeID]
	return r, ok
}

// NodeLayout derives bounds from node positions using the default node box.
func NodeLayout(nodes []schema.Node) StaticLayout {
	l := make(StaticLayout, len(nodes))
	for _, n := range nodes {
		l[n.ID] = Rect{X: n.Position.X, Y: n.Position.Y, W: DefaultNodeWidth, H: DefaultNodeHeight}
	}
	return l
}

// SelectInRect returns the ids, in input order, whose bounds intersect selection.
// Ids the layout does not know are skipped.
func SelectInRect(layout LayoutQuery, ids []string, selection Rect) []string {
	var hits []string
	for _, id := range ids {
		b, ok := layout.Bounds(id)
		if ok && RectIntersects(b, selection) {
			hits = append(hits, id)
		}
	}
	return hits
}
