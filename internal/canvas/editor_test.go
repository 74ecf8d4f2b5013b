package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/rendis/langcanvas/internal/geometry"
	"github.com/rendis/langcanvas/internal/logging"
	"github.com/rendis/langcanvas/internal/store"
	"github.com/rendis/langcanvas/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type fixture struct {
	editor *Editor
	kv     *store.MemoryKV
	logs   *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	var buf bytes.Buffer
	e := newEditor(t, store.NewPersister(kv), &buf)
	return &fixture{editor: e, kv: kv, logs: &buf}
}

func newEditor(t *testing.T, p *store.Persister, w *bytes.Buffer) *Editor {
	t.Helper()
	seq := 0
	e, err := New(Options{
		CanvasID:  "canvas-test",
		Persister: p,
		Logger:    logging.New("debug", "json", w),
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	require.NoError(t, err)
	return e
}

func mustAdd(t *testing.T, e *Editor, typ schema.NodeType, label string, x, y float64) string {
	t.Helper()
	n, err := e.AddNode(typ, label, schema.Position{X: x, Y: y})
	require.NoError(t, err)
	return n.ID
}

func mustConnect(t *testing.T, e *Editor, src, dst string) schema.Edge {
	t.Helper()
	res := e.Connect(src, dst, ConnectOptions{})
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Edge)
	return *res.Edge
}

func saved(t *testing.T, kv store.KV) *store.State {
	t.Helper()
	st, err := store.NewPersister(kv).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	return st
}

func events(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var out []string
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		if ev, ok := rec["event"].(string); ok {
			out = append(out, ev)
		}
	}
	return out
}

type failingKV struct{ store.MemoryKV }

func (*failingKV) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

// --- nodes ---

func TestAddNode_DefaultConfigAndPersist(t *testing.T) {
	f := newFixture(t)

	n, err := f.editor.AddNode(schema.NodeTypeAgent, "Planner", schema.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "id-1", n.ID)
	assert.Equal(t, schema.DefaultConfig(schema.NodeTypeAgent), n.Config)

	st := saved(t, f.kv)
	require.Len(t, st.Nodes, 1)
	assert.Equal(t, "Planner", st.Nodes[0].Label)
	assert.Equal(t, []string{schema.EventNodeAdded}, events(t, f.logs))
}

func TestAddNode_UnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.editor.AddNode("router", "R", schema.Position{})
	require.Error(t, err)
	assert.Empty(t, f.editor.Nodes())
}

func TestUpdateNode(t *testing.T) {
	f := newFixture(t)
	id := mustAdd(t, f.editor, schema.NodeTypeTool, "Search", 0, 0)

	err := f.editor.UpdateNode(id, func(n *schema.Node) {
		n.ID = "hijacked"
		n.Label = "Web Search"
		n.Function.Name = "web_search"
	})
	require.NoError(t, err)

	n, ok := f.editor.Node(id)
	require.True(t, ok)
	assert.Equal(t, "Web Search", n.Label)
	assert.Equal(t, "web_search", n.Function.Name)
	_, ok = f.editor.Node("hijacked")
	assert.False(t, ok)

	err = f.editor.UpdateNode("missing", func(*schema.Node) {})
	var cErr *schema.CanvasError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeNotFound, cErr.Code)

	err = f.editor.UpdateNode(id, func(n *schema.Node) { n.Type = "bogus" })
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeValidation, cErr.Code)
}

func TestRemoveNodes_DropsIncidentEdgesAndSelection(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	s := mustAdd(t, e, schema.NodeTypeStart, "Start", 0, 0)
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 200, 0)
	end := mustAdd(t, e, schema.NodeTypeEnd, "End", 400, 0)
	mustConnect(t, e, s, a)
	mustConnect(t, e, a, end)
	e.Select(a, end)

	assert.Equal(t, 1, e.RemoveNodes(a, "ghost"))
	assert.Len(t, e.Nodes(), 2)
	assert.Empty(t, e.Edges())
	assert.Equal(t, []string{end}, e.Selection())
	assert.Equal(t, 0, e.RemoveNodes("ghost"))

	st := saved(t, f.kv)
	assert.Len(t, st.Nodes, 2)
	assert.Empty(t, st.Edges)
}

// --- connections ---

func TestConnect_RefusedLeavesGraphUnchanged(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	s := mustAdd(t, e, schema.NodeTypeStart, "Start", 0, 0)
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 200, 0)
	end := mustAdd(t, e, schema.NodeTypeEnd, "End", 400, 0)
	mustConnect(t, e, s, a)

	tests := []struct {
		name     string
		src, dst string
	}{
		{name: "into start", src: a, dst: s},
		{name: "out of end", src: end, dst: a},
		{name: "duplicate", src: s, dst: a},
		{name: "missing", src: a, dst: "ghost"},
		{name: "start self loop", src: s, dst: s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Connect(tt.src, tt.dst, ConnectOptions{})
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
			assert.Nil(t, res.Edge)
			assert.Len(t, e.Edges(), 1)
		})
	}
	assert.Contains(t, events(t, f.logs), schema.EventConnectRefused)
}

func TestConnect_LoopInferredAndExplicit(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "Agent", 0, 0)
	tool := mustAdd(t, e, schema.NodeTypeTool, "Search", 200, 0)
	mustConnect(t, e, a, tool)

	back := mustConnect(t, e, tool, a)
	require.NotNil(t, back.Loop)
	assert.Equal(t, schema.LoopToolBased, back.Loop.Type)
	assert.True(t, back.Loop.Inferred)
	assert.Nil(t, back.Conditional)

	res := e.Connect(a, a, ConnectOptions{LoopType: schema.LoopHumanInLoop, Label: "review"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, schema.LoopHumanInLoop, res.Edge.Loop.Type)
	assert.False(t, res.Edge.Loop.Inferred)
	assert.Equal(t, "review", res.Edge.Label)

	res = e.Connect(tool, tool, ConnectOptions{LoopType: "forever"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown loop type")
}

func TestConnect_SelfLoopInferred(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "Agent", 0, 0)
	edge := mustConnect(t, f.editor, a, a)
	require.NotNil(t, edge.Loop)
	assert.Equal(t, schema.LoopSelf, edge.Loop.Type)
}

func TestConnect_ConditionalBranchesGetNextPriority(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	c := mustAdd(t, e, schema.NodeTypeConditional, "Route", 0, 0)
	require.NoError(t, e.UpdateNode(c, func(n *schema.Node) { n.Function.Name = "route" }))
	x := mustAdd(t, e, schema.NodeTypeAgent, "X", 200, 0)
	y := mustAdd(t, e, schema.NodeTypeAgent, "Y", 200, 200)

	ex := mustConnect(t, e, c, x)
	ey := mustConnect(t, e, c, y)
	require.NotNil(t, ex.Conditional)
	assert.Equal(t, 1, ex.Conditional.Priority)
	assert.Equal(t, 2, ey.Conditional.Priority)
	assert.Equal(t, "route", ey.Conditional.FunctionName)
	assert.Equal(t, schema.EvalFirstMatch, ey.Conditional.EvaluationMode)
}

func TestSetEdgeConditional(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	c := mustAdd(t, e, schema.NodeTypeConditional, "Route", 0, 0)
	x := mustAdd(t, e, schema.NodeTypeAgent, "X", 200, 0)
	y := mustAdd(t, e, schema.NodeTypeAgent, "Y", 200, 200)
	ex := mustConnect(t, e, c, x)
	ey := mustConnect(t, e, c, y)

	var cErr *schema.CanvasError
	err := e.SetEdgeConditional(ey.ID, schema.ConditionalMeta{Priority: 1})
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeConflict, cErr.Code)
	assert.Equal(t, []string{ex.ID}, cErr.Details["conflicting_edges"])

	err = e.SetEdgeConditional(ey.ID, schema.ConditionalMeta{Priority: 0})
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeValidation, cErr.Code)

	require.NoError(t, e.SetEdgeConditional(ey.ID, schema.ConditionalMeta{Priority: 5, Condition: `state.ok == true`}))
	got, _ := e.Edge(ey.ID)
	assert.Equal(t, 5, got.Conditional.Priority)
	assert.Equal(t, `state.ok == true`, got.Conditional.Condition)

	// Editing an edge to its own priority is not a conflict.
	require.NoError(t, e.SetEdgeConditional(ex.ID, schema.ConditionalMeta{Priority: 1, IsDefault: true}))

	err = e.SetEdgeConditional("ghost", schema.ConditionalMeta{Priority: 1})
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeNotFound, cErr.Code)
}

func TestSetEdgeConditional_RequiresConditionalSource(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, f.editor, schema.NodeTypeAgent, "B", 200, 0)
	ab := mustConnect(t, f.editor, a, b)

	var cErr *schema.CanvasError
	err := f.editor.SetEdgeConditional(ab.ID, schema.ConditionalMeta{Priority: 1})
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeInvalidConnection, cErr.Code)
}

func TestAccessors_ReturnDeepCopies(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	c := mustAdd(t, e, schema.NodeTypeConditional, "Route", 0, 0)
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 200, 0)
	ca := mustConnect(t, e, c, a)
	back := mustConnect(t, e, a, c)
	require.NotNil(t, back.Loop)
	require.NoError(t, e.UpdateNode(a, func(n *schema.Node) {
		n.Config.Metadata = map[string]any{"model": map[string]any{"name": "small"}}
	}))

	es := e.Edges()
	for i := range es {
		if es[i].Conditional != nil {
			es[i].Conditional.Priority = -7
		}
		if es[i].Loop != nil {
			es[i].Loop.MaxIterations = 99
		}
	}
	ns := e.Nodes()
	for i := range ns {
		if ns[i].Config.Retry != nil {
			ns[i].Config.Retry.MaxAttempts = 42
		}
		if m, ok := ns[i].Config.Metadata["model"].(map[string]any); ok {
			m["name"] = "huge"
		}
	}
	ca.Conditional.Priority = -1

	got, ok := e.Edge(ca.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Conditional.Priority)
	got.Conditional.Priority = -3
	loop, _ := e.Edge(back.ID)
	assert.Zero(t, loop.Loop.MaxIterations)

	node, ok := e.Node(a)
	require.True(t, ok)
	assert.Equal(t, 3, node.Config.Retry.MaxAttempts)
	assert.Equal(t, map[string]any{"name": "small"}, node.Config.Metadata["model"])

	assert.Empty(t, e.Validate().ByCode(schema.IssueInvalidPriority))
	again, _ := e.Edge(ca.ID)
	assert.Equal(t, 1, again.Conditional.Priority)
}

func TestUpdateNode_RejectedChangeLeavesNodeIntact(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)

	err := f.editor.UpdateNode(a, func(n *schema.Node) {
		n.Config.Retry.MaxAttempts = 99
		n.Type = "bogus"
	})
	require.Error(t, err)

	node, _ := f.editor.Node(a)
	assert.Equal(t, schema.NodeTypeAgent, node.Type)
	assert.Equal(t, 3, node.Config.Retry.MaxAttempts)
}

func TestSetEdgeLoop(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	self := mustConnect(t, f.editor, a, a)

	require.NoError(t, f.editor.SetEdgeLoop(self.ID, schema.LoopMeta{
		Type:                 schema.LoopSelf,
		TerminationCondition: "iteration >= 3",
		Inferred:             true,
	}))
	got, _ := f.editor.Edge(self.ID)
	assert.Equal(t, "iteration >= 3", got.Loop.TerminationCondition)
	assert.False(t, got.Loop.Inferred)

	assert.Error(t, f.editor.SetEdgeLoop(self.ID, schema.LoopMeta{Type: "spin"}))
	assert.Error(t, f.editor.SetEdgeLoop(self.ID, schema.LoopMeta{Type: schema.LoopSelf, MaxIterations: -1}))
	assert.Error(t, f.editor.SetEdgeLoop("ghost", schema.LoopMeta{Type: schema.LoopSelf}))
}

func TestSetEdgeLabel(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, f.editor, schema.NodeTypeAgent, "B", 200, 0)
	ab := mustConnect(t, f.editor, a, b)

	require.NoError(t, f.editor.SetEdgeLabel(ab.ID, "next"))
	got, _ := f.editor.Edge(ab.ID)
	assert.Equal(t, "next", got.Label)
	assert.Error(t, f.editor.SetEdgeLabel("ghost", "x"))
}

func TestResetPriorities_ByTargetPosition(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	c := mustAdd(t, e, schema.NodeTypeConditional, "Route", 0, 0)
	low := mustAdd(t, e, schema.NodeTypeAgent, "Low", 200, 300)
	high := mustAdd(t, e, schema.NodeTypeAgent, "High", 200, 0)
	toLow := mustConnect(t, e, c, low)
	toHigh := mustConnect(t, e, c, high)

	require.NoError(t, e.ResetPriorities(c))
	gotLow, _ := e.Edge(toLow.ID)
	gotHigh, _ := e.Edge(toHigh.ID)
	assert.Equal(t, 1, gotHigh.Conditional.Priority)
	assert.Equal(t, 2, gotLow.Conditional.Priority)
	assert.Contains(t, events(t, f.logs), schema.EventPriorityReset)

	assert.Error(t, e.ResetPriorities(low))
	assert.Error(t, e.ResetPriorities("ghost"))
}

func TestRemoveEdges(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, f.editor, schema.NodeTypeAgent, "B", 200, 0)
	ab := mustConnect(t, f.editor, a, b)

	assert.Equal(t, 1, f.editor.RemoveEdges(ab.ID, "ghost"))
	assert.Empty(t, f.editor.Edges())
	assert.Equal(t, 0, f.editor.RemoveEdges(ab.ID))
	assert.Empty(t, saved(t, f.kv).Edges)
}

// --- selection ---

func TestRectSelect_ReplaceAdditiveAndCancel(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, e, schema.NodeTypeAgent, "B", 300, 0)
	c := mustAdd(t, e, schema.NodeTypeAgent, "C", 0, 300)

	e.BeginRectSelect(schema.Position{X: -10, Y: -10}, false)
	assert.True(t, e.RectSelecting())
	e.UpdateRectSelect(schema.Position{X: 400, Y: 100})
	assert.Equal(t, []string{a, b}, e.CommitRectSelect(nil))
	assert.False(t, e.RectSelecting())

	e.Select(c)
	e.BeginRectSelect(schema.Position{X: 310, Y: 10}, true)
	e.UpdateRectSelect(schema.Position{X: 320, Y: 20})
	assert.Equal(t, []string{c, b}, e.CommitRectSelect(nil))

	e.BeginRectSelect(schema.Position{X: -10, Y: -10}, false)
	e.UpdateRectSelect(schema.Position{X: 1000, Y: 1000})
	e.CancelRectSelect()
	assert.Equal(t, []string{c, b}, e.Selection())
}

func TestRectSelect_CustomLayoutAndClickWithoutDrag(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 0, 0)
	e.Select(a)

	layout := geometry.StaticLayout{a: {X: 500, Y: 500, W: 10, H: 10}}
	e.BeginRectSelect(schema.Position{X: 0, Y: 0}, false)
	e.UpdateRectSelect(schema.Position{X: 100, Y: 100})
	assert.Empty(t, e.CommitRectSelect(layout))

	// A zero-area rectangle selects nothing.
	e.BeginRectSelect(schema.Position{X: 5, Y: 5}, false)
	assert.Empty(t, e.CommitRectSelect(nil))
}

func TestSelect_FiltersUnknownAndDuplicates(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	f.editor.Select(a, "ghost", a)
	assert.Equal(t, []string{a}, f.editor.Selection())
}

func TestMoveSelection(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, e, schema.NodeTypeAgent, "B", 300, 0)

	assert.Equal(t, 0, e.MoveSelection(10, 10))
	e.Select(a)
	assert.Equal(t, 1, e.MoveSelection(15, -5))

	na, _ := e.Node(a)
	nb, _ := e.Node(b)
	assert.Equal(t, schema.Position{X: 15, Y: -5}, na.Position)
	assert.Equal(t, schema.Position{X: 300, Y: 0}, nb.Position)
	assert.Equal(t, schema.Position{X: 15, Y: -5}, saved(t, f.kv).Nodes[0].Position)
}

func TestEdgePaths_ParallelEdgesSpread(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, e, schema.NodeTypeAgent, "B", 400, 0)
	ab := mustConnect(t, e, a, b)
	ba := mustConnect(t, e, b, a)

	paths := e.EdgePaths()
	require.Len(t, paths, 2)
	require.Len(t, paths[ab.ID], 4)
	assert.InDelta(t, geometry.DefaultEdgeSpacing, paths[ba.ID][1].X-paths[ab.ID][1].X, 1e-9)
}

// --- validation and documents ---

func TestValidate_LinearGraphHasNoIssues(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	s := mustAdd(t, e, schema.NodeTypeStart, "Start", 0, 0)
	a := mustAdd(t, e, schema.NodeTypeTool, "A", 200, 0)
	end := mustAdd(t, e, schema.NodeTypeEnd, "End", 400, 0)
	mustConnect(t, e, s, a)
	mustConnect(t, e, a, end)

	res := e.Validate()
	assert.True(t, res.Valid())
	assert.Empty(t, res.Issues)
	assert.Empty(t, e.AutoFix())
}

func TestAutoFix_AddsStartNode(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	a := mustAdd(t, e, schema.NodeTypeAgent, "A", 100, 50)
	end := mustAdd(t, e, schema.NodeTypeEnd, "End", 400, 50)
	mustConnect(t, e, a, end)
	require.NotEmpty(t, e.Validate().ByCode(schema.IssueNoStartNode))

	applied := e.AutoFix()
	require.NotEmpty(t, applied)
	assert.Len(t, e.Nodes(), 3)
	assert.Empty(t, e.Validate().ByCode(schema.IssueNoStartNode))
	assert.Contains(t, events(t, f.logs), schema.EventAutoFixed)
	assert.Len(t, saved(t, f.kv).Nodes, 3)
}

func TestImportExport_RoundTrip(t *testing.T) {
	f := newFixture(t)
	e := f.editor
	s := mustAdd(t, e, schema.NodeTypeStart, "Start", 0, 0)
	a := mustAdd(t, e, schema.NodeTypeAgent, "Writer", 200, 0)
	end := mustAdd(t, e, schema.NodeTypeEnd, "End", 400, 0)
	mustConnect(t, e, s, a)
	mustConnect(t, e, a, end)

	data, err := e.ExportJSON()
	require.NoError(t, err)

	other := newEditor(t, nil, &bytes.Buffer{})
	require.NoError(t, other.Import(data))
	require.Len(t, other.Nodes(), 3)
	require.Len(t, other.Edges(), 2)
	labels := make([]string, 0, 3)
	for _, n := range other.Nodes() {
		labels = append(labels, n.Label)
	}
	assert.Equal(t, []string{"Start", "Writer", "End"}, labels)

	doc, err := other.Export()
	require.NoError(t, err)
	assert.Equal(t, "Start", doc.EntryPoint)
}

func TestImport_FailureKeepsCanvas(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.editor, schema.NodeTypeAgent, "Keep", 0, 0)

	err := f.editor.Import([]byte(`{"version":"1.0.0","nodes":[{"label":"A","type":"agent"}],"edges":[{"source":"A","target":"Nope"}]}`))
	var cErr *schema.CanvasError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeImport, cErr.Code)
	require.Len(t, f.editor.Nodes(), 1)
	assert.Equal(t, "Keep", f.editor.Nodes()[0].Label)
}

// --- persistence ---

func TestLoad_RestoresSavedState(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	b := mustAdd(t, f.editor, schema.NodeTypeAgent, "B", 200, 0)
	mustConnect(t, f.editor, a, b)

	var buf bytes.Buffer
	restored := newEditor(t, store.NewPersister(f.kv), &buf)
	found, err := restored.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, f.editor.Nodes(), restored.Nodes())
	assert.Equal(t, f.editor.Edges(), restored.Edges())
	assert.Equal(t, []string{schema.EventStateLoaded}, events(t, &buf))
}

func TestLoad_NothingSavedOrNoPersister(t *testing.T) {
	f := newFixture(t)
	found, err := f.editor.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)

	bare := newEditor(t, nil, &bytes.Buffer{})
	found, err = bare.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoad_VersionMismatchWipes(t *testing.T) {
	f := newFixture(t)
	stale, err := json.Marshal(store.State{Version: "0.9.0", Nodes: []schema.Node{{ID: "x"}}})
	require.NoError(t, err)
	require.NoError(t, f.kv.Set(context.Background(), store.StateKey, stale))

	_, err = f.editor.Load(context.Background())
	var cErr *schema.CanvasError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, schema.ErrCodeVersionMismatch, cErr.Code)
	assert.Empty(t, f.editor.Nodes())

	found, err := f.editor.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	a := mustAdd(t, f.editor, schema.NodeTypeAgent, "A", 0, 0)
	f.editor.Select(a)

	require.NoError(t, f.editor.Clear(context.Background()))
	assert.Empty(t, f.editor.Nodes())
	assert.Empty(t, f.editor.Selection())
	_, err := f.kv.Get(context.Background(), store.StateKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, events(t, f.logs), schema.EventStateCleared)
}

func TestPersistFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	e := newEditor(t, store.NewPersister(&failingKV{}), &buf)

	_, err := e.AddNode(schema.NodeTypeAgent, "A", schema.Position{})
	require.NoError(t, err)
	assert.Len(t, e.Nodes(), 1)

	assert.Equal(t, []string{schema.EventNodeAdded, schema.EventPersistFailed}, events(t, &buf))
	assert.Contains(t, buf.String(), `"canvas_id":"canvas-test"`)
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, slog.Default(), e.logger)

	n, err := e.AddNode(schema.NodeTypeStart, "Start", schema.Position{})
	require.NoError(t, err)
	assert.Len(t, n.ID, 36)
}
