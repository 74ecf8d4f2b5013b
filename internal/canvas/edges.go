package canvas

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/rendis/langcanvas/internal/connection"
	"github.com/rendis/langcanvas/internal/logging"
	"github.com/rendis/langcanvas/internal/priority"
	"github.com/rendis/langcanvas/pkg/schema"
)

// ConnectOptions tunes the edge created by Connect.
type ConnectOptions struct {
	Label string
	Value string
	// LoopType overrides the inferred type when the edge closes a loop.
	LoopType schema.LoopType
}

// ConnectResult reports the outcome of a connect gesture. A refused
// connection has Success false and a message in Error.
type ConnectResult struct {
	Success bool
	Error   string
	Edge    *schema.Edge
}

// Connect draws an edge from source to target if the connection validator
// admits it. Edges that close a loop get loop metadata; edges leaving a
// conditional node get the next free priority.
func (e *Editor) Connect(source, target string, opts ConnectOptions) ConnectResult {
	ctx := e.context()

	res := connection.Validate(source, target, e.nodes, e.edges)
	if !res.Valid {
		e.logger.InfoContext(ctx, "canvas: connection refused",
			slog.String("event", schema.EventConnectRefused),
			slog.String("source", source),
			slog.String("target", target),
			slog.String("reason", res.Error))
		return ConnectResult{Error: res.Error}
	}

	edge := schema.Edge{
		ID:     e.newID(),
		Source: source,
		Target: target,
		Label:  opts.Label,
		Value:  opts.Value,
	}

	if res.IsLoop {
		meta := &schema.LoopMeta{Type: res.LoopType, Inferred: true}
		if opts.LoopType != "" {
			if !opts.LoopType.Valid() {
				msg := fmt.Sprintf("unknown loop type %q", opts.LoopType)
				e.logger.InfoContext(ctx, "canvas: connection refused",
					slog.String("event", schema.EventConnectRefused),
					slog.String("reason", msg))
				return ConnectResult{Error: msg}
			}
			meta = &schema.LoopMeta{Type: opts.LoopType}
		}
		edge.Loop = meta
	}

	if src := schema.NodeByID(e.nodes)[source]; src.Type == schema.NodeTypeConditional {
		edge.Conditional = &schema.ConditionalMeta{
			FunctionName:   src.Function.Name,
			Priority:       priority.NextPriority(source, e.edges),
			EvaluationMode: schema.EvalFirstMatch,
		}
	}

	e.edges = append(e.edges, edge)

	ctx = logging.WithEdgeID(ctx, edge.ID)
	attrs := []any{
		slog.String("event", schema.EventEdgeAdded),
		slog.String("source", source),
		slog.String("target", target),
	}
	if edge.Loop != nil {
		attrs = append(attrs, slog.String("loop_type", string(edge.Loop.Type)))
	}
	e.logger.InfoContext(ctx, "canvas: edge added", attrs...)
	e.persist(ctx)

	out := edge.Clone()
	return ConnectResult{Success: true, Edge: &out}
}

// SetEdgeConditional replaces the routing metadata of an edge leaving a
// conditional node. A priority already used by a sibling edge is rejected
// with the conflicting edge ids in the error details.
func (e *Editor) SetEdgeConditional(edgeID string, meta schema.ConditionalMeta) error {
	i := e.edgeIndex(edgeID)
	if i < 0 {
		return schema.NewErrorf(schema.ErrCodeNotFound, "edge %q not found", edgeID).WithEdge(edgeID)
	}
	edge := e.edges[i]

	src, ok := schema.NodeByID(e.nodes)[edge.Source]
	if !ok || src.Type != schema.NodeTypeConditional {
		return schema.NewErrorf(schema.ErrCodeInvalidConnection,
			"edge %q does not leave a conditional node", edgeID).WithEdge(edgeID)
	}
	if meta.Priority < 1 {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"priority must be a positive integer, got %d", meta.Priority).WithEdge(edgeID)
	}

	conflict := priority.ValidatePriorityConflicts(edge.Source, meta.Priority, e.edges, edgeID)
	if conflict.HasConflict {
		ids := make([]string, len(conflict.ConflictingEdges))
		for j, c := range conflict.ConflictingEdges {
			ids[j] = c.ID
		}
		return schema.NewErrorf(schema.ErrCodeConflict,
			"priority %d is already used by another branch of %q", meta.Priority, src.DisplayName()).
			WithEdge(edgeID).
			WithDetails(map[string]any{"conflicting_edges": ids})
	}

	e.edges[i].Conditional = &meta
	e.edgeUpdated(edgeID)
	return nil
}

// SetEdgeLoop replaces the loop metadata of an edge. The type must be known
// and max iterations cannot be negative. An explicit type clears Inferred.
func (e *Editor) SetEdgeLoop(edgeID string, meta schema.LoopMeta) error {
	i := e.edgeIndex(edgeID)
	if i < 0 {
		return schema.NewErrorf(schema.ErrCodeNotFound, "edge %q not found", edgeID).WithEdge(edgeID)
	}
	if !meta.Type.Valid() {
		return schema.NewErrorf(schema.ErrCodeValidation, "unknown loop type %q", meta.Type).WithEdge(edgeID)
	}
	if meta.MaxIterations < 0 {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"max iterations cannot be negative, got %d", meta.MaxIterations).WithEdge(edgeID)
	}
	meta.Inferred = false
	e.edges[i].Loop = &meta
	e.edgeUpdated(edgeID)
	return nil
}

// SetEdgeLabel changes the label shown on an edge.
func (e *Editor) SetEdgeLabel(edgeID, label string) error {
	i := e.edgeIndex(edgeID)
	if i < 0 {
		return schema.NewErrorf(schema.ErrCodeNotFound, "edge %q not found", edgeID).WithEdge(edgeID)
	}
	e.edges[i].Label = label
	e.edgeUpdated(edgeID)
	return nil
}

func (e *Editor) edgeUpdated(edgeID string) {
	ctx := logging.WithEdgeID(e.context(), edgeID)
	e.logger.InfoContext(ctx, "canvas: edge updated", slog.String("event", schema.EventEdgeUpdated))
	e.persist(ctx)
}

// ResetPriorities renumbers the branches of a conditional node by the layout
// of their targets.
func (e *Editor) ResetPriorities(nodeID string) error {
	n, ok := schema.NodeByID(e.nodes)[nodeID]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", nodeID).WithNode(nodeID)
	}
	if n.Type != schema.NodeTypeConditional {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"node %q is not a conditional node", n.DisplayName()).WithNode(nodeID)
	}
	e.edges = priority.ResetPriorities(nodeID, e.nodes, e.edges)

	ctx := logging.WithNodeID(e.context(), nodeID)
	e.logger.InfoContext(ctx, "canvas: priorities reset", slog.String("event", schema.EventPriorityReset))
	e.persist(ctx)
	return nil
}

// RemoveEdges deletes the given edges and returns how many were removed.
func (e *Editor) RemoveEdges(ids ...string) int {
	before := len(e.edges)
	e.edges = slices.DeleteFunc(e.edges, func(ed schema.Edge) bool { return slices.Contains(ids, ed.ID) })
	removed := before - len(e.edges)
	if removed == 0 {
		return 0
	}

	ctx := e.context()
	e.logger.InfoContext(ctx, "canvas: edges removed",
		slog.String("event", schema.EventEdgesRemoved),
		slog.Int("edges", removed))
	e.persist(ctx)
	return removed
}
