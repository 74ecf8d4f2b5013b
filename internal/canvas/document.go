package canvas

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rendis/langcanvas/internal/validation"
	"github.com/rendis/langcanvas/internal/workflow"
	"github.com/rendis/langcanvas/pkg/schema"
)

// Validate runs every graph check against the current canvas.
func (e *Editor) Validate() *schema.ValidationResult {
	return e.validator.Validate(e.nodes, e.edges)
}

// AutoFix validates the canvas, applies the safe repairs and returns a
// description of each one. Issues without a safe repair are left in place.
func (e *Editor) AutoFix() []string {
	res := e.Validate()
	nodes, edges, applied := validation.AutoFix(e.nodes, e.edges, res.Issues)
	if len(applied) == 0 {
		return nil
	}
	e.nodes, e.edges = nodes, edges
	e.pruneSelection()

	ctx := e.context()
	e.logger.InfoContext(ctx, "canvas: auto-fix applied",
		slog.String("event", schema.EventAutoFixed),
		slog.Int("fixes", len(applied)),
		slog.String("applied", strings.Join(applied, "; ")))
	e.persist(ctx)
	return applied
}

// Import replaces the canvas with the workflow document in data. On failure
// the canvas is left untouched and the error lists every problem found.
func (e *Editor) Import(data []byte) error {
	res := e.importer.Import(data)
	if !res.OK() {
		return res.Err()
	}
	e.nodes, e.edges = res.Nodes, res.Edges
	e.selected = nil

	ctx := e.context()
	e.logger.InfoContext(ctx, "canvas: workflow imported",
		slog.String("event", schema.EventImported),
		slog.String("name", res.Name),
		slog.Int("nodes", len(e.nodes)),
		slog.Int("edges", len(e.edges)))
	e.persist(ctx)
	return nil
}

// Export returns the canvas as a workflow document.
func (e *Editor) Export() (*workflow.Document, error) {
	return workflow.Export(e.nodes, e.edges)
}

// ExportJSON returns the canvas as an indented workflow document.
func (e *Editor) ExportJSON() ([]byte, error) {
	return workflow.ExportJSON(e.nodes, e.edges)
}

// Load replaces the canvas with the persisted state, if any. It reports
// whether a saved state was found. A version mismatch wipes the saved state
// and is returned as an error; the canvas stays empty.
func (e *Editor) Load(ctx context.Context) (bool, error) {
	if e.persister == nil {
		return false, nil
	}
	st, err := e.persister.Load(ctx)
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, nil
	}
	e.nodes, e.edges = st.Nodes, st.Edges
	e.selected = nil

	e.logger.InfoContext(ctx, "canvas: state loaded",
		slog.String("event", schema.EventStateLoaded),
		slog.Int("nodes", len(e.nodes)),
		slog.Int("edges", len(e.edges)),
		slog.Time("saved_at", st.Timestamp))
	return true, nil
}

// Clear empties the canvas and deletes the persisted state.
func (e *Editor) Clear(ctx context.Context) error {
	e.nodes, e.edges, e.selected = nil, nil, nil
	if e.persister != nil {
		if err := e.persister.Clear(ctx); err != nil {
			return err
		}
	}
	e.logger.InfoContext(ctx, "canvas: state cleared", slog.String("event", schema.EventStateCleared))
	return nil
}

func (e *Editor) pruneSelection() {
	if len(e.selected) == 0 {
		return
	}
	e.Select(e.selected...)
}
