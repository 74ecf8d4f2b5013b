package canvas

import (
	"log/slog"
	"slices"

	"github.com/rendis/langcanvas/internal/geometry"
	"github.com/rendis/langcanvas/pkg/schema"
)

// Selection returns the selected node ids in selection order.
func (e *Editor) Selection() []string {
	return slices.Clone(e.selected)
}

// Select replaces the selection. Unknown and repeated ids are dropped.
func (e *Editor) Select(ids ...string) {
	known := make(map[string]bool, len(e.nodes))
	for _, n := range e.nodes {
		known[n.ID] = true
	}
	selected := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] && !slices.Contains(selected, id) {
			selected = append(selected, id)
		}
	}
	e.selected = selected
}

// BeginRectSelect starts a rubber-band selection at p. With additive set the
// current selection is kept and extended.
func (e *Editor) BeginRectSelect(p schema.Position, additive bool) {
	e.rect.Begin(p, additive, e.selected)
}

// UpdateRectSelect drags the free corner of the rubber band to p.
func (e *Editor) UpdateRectSelect(p schema.Position) {
	e.rect.Update(p)
}

// RectSelecting reports whether a rubber-band selection is in progress.
func (e *Editor) RectSelecting() bool {
	return e.rect.Active()
}

// CommitRectSelect ends the rubber band and selects the nodes it touches.
// A nil layout measures nodes at their default size.
func (e *Editor) CommitRectSelect(layout geometry.LayoutQuery) []string {
	if !e.rect.Active() {
		return e.Selection()
	}
	if layout == nil {
		layout = geometry.NodeLayout(e.nodes)
	}
	e.selected = e.rect.Commit(layout, e.nodeIDs())
	return e.Selection()
}

// CancelRectSelect abandons the rubber band and restores the selection it
// started from.
func (e *Editor) CancelRectSelect() {
	if !e.rect.Active() {
		return
	}
	e.selected = e.rect.Cancel()
}

// MoveSelection drags every selected node by (dx, dy) and returns how many moved.
func (e *Editor) MoveSelection(dx, dy float64) int {
	if len(e.selected) == 0 || (dx == 0 && dy == 0) {
		return 0
	}
	positions := make(map[string]schema.Position, len(e.nodes))
	for _, n := range e.nodes {
		positions[n.ID] = n.Position
	}
	moved := geometry.MoveNodes(positions, e.selected, dx, dy)
	for i := range e.nodes {
		if p, ok := moved[e.nodes[i].ID]; ok {
			e.nodes[i].Position = p
		}
	}

	ctx := e.context()
	e.logger.DebugContext(ctx, "canvas: nodes moved",
		slog.String("event", schema.EventNodesMoved),
		slog.Int("nodes", len(moved)),
		slog.Float64("dx", dx),
		slog.Float64("dy", dy))
	e.persist(ctx)
	return len(moved)
}

// EdgePaths returns the orthogonal route of every edge whose endpoints exist,
// with parallel edges between the same pair spread DefaultEdgeSpacing apart.
func (e *Editor) EdgePaths() map[string][]schema.Position {
	layout := geometry.NodeLayout(e.nodes)
	offsets := geometry.ParallelOffsets(e.edges, geometry.DefaultEdgeSpacing)

	paths := make(map[string][]schema.Position, len(e.edges))
	for _, ed := range e.edges {
		src, ok := layout.Bounds(ed.Source)
		if !ok {
			continue
		}
		dst, ok := layout.Bounds(ed.Target)
		if !ok {
			continue
		}
		paths[ed.ID] = geometry.OrthogonalPath(src.Center(), dst.Center(), offsets[ed.ID])
	}
	return paths
}
