package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode_DefaultConfig(t *testing.T) {
	n, err := NewNode("p1", NodeTypeParallel, "Fan out", Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, ConcurrencyParallel, n.Config.Concurrency)
	assert.Equal(t, Position{X: 10, Y: 20}, n.Position)

	n, err = NewNode("a1", NodeTypeAgent, "Agent", Position{})
	require.NoError(t, err)
	require.NotNil(t, n.Config.Retry)
	assert.Equal(t, 3, n.Config.Retry.MaxAttempts)
}

func TestNewNode_UnknownType(t *testing.T) {
	_, err := NewNode("x", NodeType("router"), "X", Position{})
	require.Error(t, err)
	cErr, ok := err.(*CanvasError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeValidation, cErr.Code)
	assert.Equal(t, "x", cErr.NodeID)
}

func TestDefaultConfig_ValidForEveryType(t *testing.T) {
	for _, nt := range NodeTypes {
		assert.NoError(t, DefaultConfig(nt).Validate(nt), "default config of %s", nt)
	}
}

func TestNodeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		typ     NodeType
		cfg     NodeConfig
		wantErr string
	}{
		{name: "negative timeout", typ: NodeTypeTool, cfg: NodeConfig{Timeout: -1}, wantErr: "timeout"},
		{name: "retry on start", typ: NodeTypeStart, cfg: NodeConfig{Retry: &RetryPolicy{MaxAttempts: 1}}, wantErr: "retry"},
		{name: "unknown backoff", typ: NodeTypeAgent, cfg: NodeConfig{Retry: &RetryPolicy{Backoff: "jitter"}}, wantErr: "backoff"},
		{name: "negative attempts", typ: NodeTypeAgent, cfg: NodeConfig{Retry: &RetryPolicy{MaxAttempts: -2}}, wantErr: "max_attempts"},
		{name: "parallel tool", typ: NodeTypeTool, cfg: NodeConfig{Concurrency: ConcurrencyParallel}, wantErr: "parallel"},
		{name: "unknown concurrency", typ: NodeTypeAgent, cfg: NodeConfig{Concurrency: "async"}, wantErr: "concurrency"},
		{name: "parallel agent ok", typ: NodeTypeAgent, cfg: NodeConfig{Concurrency: ConcurrencyParallel}},
		{name: "empty ok", typ: NodeTypeEnd, cfg: NodeConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.typ)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoopMeta_Bounded(t *testing.T) {
	assert.False(t, (&LoopMeta{Type: LoopUnconditional}).Bounded())
	assert.True(t, (&LoopMeta{Type: LoopUnconditional, MaxIterations: 3}).Bounded())
	assert.True(t, (&LoopMeta{Type: LoopConditional, TerminationCondition: "done"}).Bounded())
	assert.True(t, (&LoopMeta{Type: LoopHumanInLoop, HumanInterrupt: true}).Bounded())
	assert.False(t, (&LoopMeta{Type: LoopSelf, HumanInterrupt: true}).Bounded())
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "agent one", NormalizeLabel("  Agent ONE "))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestOutEdgesAndIndex(t *testing.T) {
	edges := []Edge{{ID: "e1", Source: "a", Target: "b"}, {ID: "e2", Source: "b", Target: "c"}, {ID: "e3", Source: "a", Target: "c"}}
	out := OutEdges("a", edges)
	require.Len(t, out, 2)
	assert.Equal(t, "e1", out[0].ID)
	assert.Equal(t, "e3", out[1].ID)

	idx := NodeByID([]Node{{ID: "a", Label: "A"}, {ID: "b"}})
	assert.Equal(t, "A", idx["a"].DisplayName())
	assert.Equal(t, "b", idx["b"].DisplayName())
}

func TestClone_SharesNothing(t *testing.T) {
	n := Node{
		ID:       "n1",
		Function: Function{Name: "f", InputSchema: map[string]string{"q": "string"}},
		Config: NodeConfig{
			Retry:    &RetryPolicy{MaxAttempts: 2},
			Metadata: map[string]any{"tags": []any{"a"}, "model": map[string]any{"name": "m"}},
			Tags:     []string{"x"},
		},
		Transitions: []Transition{{Target: "End"}},
	}
	c := n.Clone()
	c.Function.InputSchema["q"] = "int"
	c.Config.Retry.MaxAttempts = 9
	c.Config.Metadata["tags"].([]any)[0] = "b"
	c.Config.Metadata["model"].(map[string]any)["name"] = "other"
	c.Config.Tags[0] = "y"
	c.Transitions[0].Target = "Elsewhere"

	assert.Equal(t, "string", n.Function.InputSchema["q"])
	assert.Equal(t, 2, n.Config.Retry.MaxAttempts)
	assert.Equal(t, []any{"a"}, n.Config.Metadata["tags"])
	assert.Equal(t, map[string]any{"name": "m"}, n.Config.Metadata["model"])
	assert.Equal(t, []string{"x"}, n.Config.Tags)
	assert.Equal(t, "End", n.Transitions[0].Target)

	e := Edge{ID: "e1", Conditional: &ConditionalMeta{Priority: 1}, Loop: &LoopMeta{MaxIterations: 3}}
	ec := CloneEdges([]Edge{e})
	ec[0].Conditional.Priority = 5
	ec[0].Loop.MaxIterations = 0
	assert.Equal(t, 1, e.Conditional.Priority)
	assert.Equal(t, 3, e.Loop.MaxIterations)

	assert.Nil(t, CloneNodes(nil))
	assert.Nil(t, CloneEdges(nil))
	assert.Nil(t, Node{}.Clone().Config.Metadata)
}
