// Package canvas holds the editable workflow graph and applies user gestures
// to it through the connection, priority, validation and geometry packages.
package canvas

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rendis/langcanvas/internal/expressions"
	"github.com/rendis/langcanvas/internal/geometry"
	"github.com/rendis/langcanvas/internal/logging"
	"github.com/rendis/langcanvas/internal/store"
	"github.com/rendis/langcanvas/internal/validation"
	"github.com/rendis/langcanvas/internal/workflow"
	"github.com/rendis/langcanvas/pkg/schema"
)

// persistTimeout bounds a single save of the canvas state.
const persistTimeout = 5 * time.Second

// Options configures an Editor. Every field is optional.
type Options struct {
	// CanvasID tags log records and is otherwise opaque.
	CanvasID string
	// Persister receives the graph after every mutation. Nil disables persistence.
	Persister *store.Persister
	// Validator defaults to a WorkflowValidator with the standard expression engines.
	Validator validation.Validator
	Logger    *slog.Logger
	// NewID generates node and edge ids. Defaults to uuid.NewString.
	NewID func() string
}

// Editor is the stateful canvas. It is not safe for concurrent use.
type Editor struct {
	id        string
	nodes     []schema.Node
	edges     []schema.Edge
	selected  []string
	rect      geometry.RectSelection
	validator validation.Validator
	importer  *workflow.Importer
	persister *store.Persister
	logger    *slog.Logger
	newID     func() string
}

// New creates an empty Editor.
func New(opts Options) (*Editor, error) {
	e := &Editor{
		id:        opts.CanvasID,
		validator: opts.Validator,
		persister: opts.Persister,
		logger:    opts.Logger,
		newID:     opts.NewID,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.validator == nil {
		engines, err := expressions.NewSet()
		if err != nil {
			return nil, err
		}
		wv, err := validation.NewWorkflowValidator(engines)
		if err != nil {
			return nil, err
		}
		e.validator = wv
	}

	im, err := workflow.NewImporter()
	if err != nil {
		return nil, err
	}
	e.importer = im
	return e, nil
}

// Nodes returns a deep copy of the nodes in insertion order. Changing it
// leaves the canvas untouched; use UpdateNode instead.
func (e *Editor) Nodes() []schema.Node {
	return schema.CloneNodes(e.nodes)
}

// Edges returns a deep copy of the edges in insertion order, metadata included.
func (e *Editor) Edges() []schema.Edge {
	return schema.CloneEdges(e.edges)
}

// Node returns a copy of the node with the given id.
func (e *Editor) Node(id string) (schema.Node, bool) {
	i := e.nodeIndex(id)
	if i < 0 {
		return schema.Node{}, false
	}
	return e.nodes[i].Clone(), true
}

// Edge returns a copy of the edge with the given id.
func (e *Editor) Edge(id string) (schema.Edge, bool) {
	i := e.edgeIndex(id)
	if i < 0 {
		return schema.Edge{}, false
	}
	return e.edges[i].Clone(), true
}

// AddNode places a new node of type t with its default config.
func (e *Editor) AddNode(t schema.NodeType, label string, pos schema.Position) (schema.Node, error) {
	n, err := schema.NewNode(e.newID(), t, label, pos)
	if err != nil {
		return schema.Node{}, err
	}
	e.nodes = append(e.nodes, *n)

	ctx := logging.WithNodeID(e.context(), n.ID)
	e.logger.InfoContext(ctx, "canvas: node added",
		slog.String("event", schema.EventNodeAdded),
		slog.String("type", string(t)),
		slog.String("label", label))
	e.persist(ctx)
	return n.Clone(), nil
}

// UpdateNode applies fn to the node with the given id. fn cannot change the id.
func (e *Editor) UpdateNode(id string, fn func(*schema.Node)) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id).WithNode(id)
	}
	n := e.nodes[i].Clone()
	fn(&n)
	n.ID = id
	if !n.Type.Valid() {
		return schema.NewErrorf(schema.ErrCodeValidation, "unknown node type %q", n.Type).WithNode(id)
	}
	e.nodes[i] = n

	ctx := logging.WithNodeID(e.context(), id)
	e.logger.InfoContext(ctx, "canvas: node updated", slog.String("event", schema.EventNodeUpdated))
	e.persist(ctx)
	return nil
}

// RemoveNodes deletes the given nodes together with every edge touching them
// and drops them from the selection. It returns the number of nodes removed.
func (e *Editor) RemoveNodes(ids ...string) int {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}

	before := len(e.nodes)
	e.nodes = slices.DeleteFunc(e.nodes, func(n schema.Node) bool { return gone[n.ID] })
	removed := before - len(e.nodes)
	if removed == 0 {
		return 0
	}
	edgesBefore := len(e.edges)
	e.edges = slices.DeleteFunc(e.edges, func(ed schema.Edge) bool { return gone[ed.Source] || gone[ed.Target] })
	e.selected = slices.DeleteFunc(e.selected, func(id string) bool { return gone[id] })

	ctx := e.context()
	e.logger.InfoContext(ctx, "canvas: nodes removed",
		slog.String("event", schema.EventNodesRemoved),
		slog.Int("nodes", removed),
		slog.Int("edges", edgesBefore-len(e.edges)))
	e.persist(ctx)
	return removed
}

// context returns a fresh context carrying the canvas id.
func (e *Editor) context() context.Context {
	ctx := context.Background()
	if e.id != "" {
		ctx = logging.WithCanvasID(ctx, e.id)
	}
	return ctx
}

// persist saves the graph. Failures are logged and never surface to the caller.
func (e *Editor) persist(ctx context.Context) {
	if e.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	err := e.persister.Save(ctx, e.nodes, e.edges)
	if err == nil {
		return
	}
	attrs := []any{
		slog.String("event", schema.EventPersistFailed),
		slog.String("error", err.Error()),
	}
	if cause := errors.Unwrap(err); cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	e.logger.WarnContext(ctx, "canvas: persist failed", attrs...)
}

func (e *Editor) nodeIndex(id string) int {
	return slices.IndexFunc(e.nodes, func(n schema.Node) bool { return n.ID == id })
}

func (e *Editor) edgeIndex(id string) int {
	return slices.IndexFunc(e.edges, func(ed schema.Edge) bool { return ed.ID == id })
}

func (e *Editor) nodeIDs() []string {
	ids := make([]string, len(e.nodes))
	for i, n := range e.nodes {
		ids[i] = n.ID
	}
	return ids
}
