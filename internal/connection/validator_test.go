package connection

import (
	"fmt"
	"testing"

	"github.com/rendis/langcanvas/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, t schema.NodeType) schema.Node {
	return schema.Node{ID: id, Label: id, Type: t}
}

func edge(src, dst string) schema.Edge {
	return schema.Edge{ID: src + "->" + dst, Source: src, Target: dst}
}

func baseNodes() []schema.Node {
	return []schema.Node{
		node("start", schema.NodeTypeStart),
		node("agent", schema.NodeTypeAgent),
		node("tool", schema.NodeTypeTool),
		node("cond", schema.NodeTypeConditional),
		node("end", schema.NodeTypeEnd),
	}
}

// --- Admission ---

func TestValidate_PlainConnection(t *testing.T) {
	r := Validate("start", "agent", baseNodes(), nil)
	assert.True(t, r.Valid)
	assert.False(t, r.IsLoop)
	assert.Empty(t, r.Error)
}

func TestValidate_UnknownNodes(t *testing.T) {
	r := Validate("ghost", "agent", baseNodes(), nil)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "ghost")

	r = Validate("agent", "ghost", baseNodes(), nil)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "ghost")
}

func TestValidate_EndSourceRefused(t *testing.T) {
	r := Validate("end", "agent", baseNodes(), nil)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "outgoing")
}

func TestValidate_StartTargetRefused(t *testing.T) {
	r := Validate("agent", "start", baseNodes(), nil)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "incoming")
}

func TestValidate_DuplicateRefused(t *testing.T) {
	r := Validate("start", "agent", baseNodes(), []schema.Edge{edge("start", "agent")})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "already exists")
}

func TestValidate_ReverseIsNotDuplicate(t *testing.T) {
	r := Validate("tool", "agent", baseNodes(), []schema.Edge{edge("agent", "tool")})
	require.True(t, r.Valid)
	assert.True(t, r.IsLoop)
}

func TestValidate_ConditionalOutDegreeCap(t *testing.T) {
	nodes := baseNodes()
	var edges []schema.Edge
	for i := 0; i < schema.MaxConditionalBranches; i++ {
		id := fmt.Sprintf("branch-%d", i)
		nodes = append(nodes, node(id, schema.NodeTypeAgent))
		edges = append(edges, edge("cond", id))
	}
	r := Validate("cond", "end", nodes, edges)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "maximum")

	r = Validate("cond", "end", nodes, edges[:schema.MaxConditionalBranches-1])
	assert.True(t, r.Valid)
}

// --- Loops ---

func TestValidate_SelfLoop(t *testing.T) {
	r := Validate("agent", "agent", baseNodes(), nil)
	assert.True(t, r.Valid)
	assert.True(t, r.IsLoop)
	assert.Equal(t, schema.LoopSelf, r.LoopType)
}

func TestValidate_SelfLoopOnStartOrEndRefused(t *testing.T) {
	for _, id := range []string{"start", "end"} {
		r := Validate(id, id, baseNodes(), nil)
		assert.False(t, r.Valid, id)
		assert.Contains(t, r.Error, "cannot loop")
	}
}

func TestValidate_CycleBecomesLoop(t *testing.T) {
	edges := []schema.Edge{edge("start", "agent"), edge("agent", "cond")}
	r := Validate("cond", "agent", baseNodes(), edges)
	assert.True(t, r.Valid)
	assert.True(t, r.IsLoop)
	assert.Equal(t, schema.LoopConditional, r.LoopType)
}

func TestIsValidLoopConnection_Types(t *testing.T) {
	nodes := append(baseNodes(), node("agent2", schema.NodeTypeAgent))
	tests := []struct {
		name  string
		src   string
		dst   string
		edges []schema.Edge
		want  schema.LoopType
	}{
		{name: "tool source", src: "tool", dst: "agent", edges: []schema.Edge{edge("agent", "tool")}, want: schema.LoopToolBased},
		{name: "tool target", src: "agent", dst: "tool", edges: []schema.Edge{edge("tool", "agent")}, want: schema.LoopToolBased},
		{name: "conditional wins over tool", src: "cond", dst: "tool", edges: []schema.Edge{edge("tool", "cond")}, want: schema.LoopConditional},
		{name: "plain", src: "agent", dst: "agent2", edges: []schema.Edge{edge("agent2", "agent")}, want: schema.LoopUnconditional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := IsValidLoopConnection(tt.src, tt.dst, nodes, tt.edges)
			assert.True(t, r.Valid)
			assert.True(t, r.IsLoop)
			assert.Equal(t, tt.want, r.LoopType)
		})
	}
}

func TestIsValidLoopConnection_NotALoop(t *testing.T) {
	r := IsValidLoopConnection("start", "agent", baseNodes(), []schema.Edge{edge("agent", "tool")})
	assert.True(t, r.Valid)
	assert.False(t, r.IsLoop)
	assert.Empty(t, r.LoopType)
}

func TestIsValidLoopConnection_SelfAlwaysSelfLoop(t *testing.T) {
	for _, n := range baseNodes() {
		r := IsValidLoopConnection(n.ID, n.ID, baseNodes(), nil)
		assert.True(t, r.IsLoop, n.ID)
		assert.Equal(t, schema.LoopSelf, r.LoopType, n.ID)
	}
}

func TestInferLoopType_NilNodes(t *testing.T) {
	assert.Equal(t, schema.LoopUnconditional, InferLoopType(nil, nil))
}
