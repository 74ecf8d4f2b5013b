package graph

import (
	"strconv"
	"testing"

	"github.com/rendis/langcanvas/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func edges(pairs ...string) []schema.Edge {
	out := make([]schema.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, schema.Edge{ID: pairs[i] + "-" + pairs[i+1], Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

// --- Reachability ---

func TestReachable_Linear(t *testing.T) {
	got := Reachable("a", edges("a", "b", "b", "c"))
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, got)
}

func TestReachable_IncludesStartOnly(t *testing.T) {
	got := Reachable("lonely", edges("a", "b"))
	assert.Equal(t, map[string]bool{"lonely": true}, got)
}

func TestReachable_Cyclic(t *testing.T) {
	got := Reachable("a", edges("a", "b", "b", "a", "b", "c", "d", "a"))
	assert.True(t, got["c"])
	assert.False(t, got["d"], "d only points into the reachable set")
}

func TestReachable_DeepChain(t *testing.T) {
	var es []schema.Edge
	for i := 0; i < 10000; i++ {
		es = append(es, schema.Edge{Source: "n" + strconv.Itoa(i), Target: "n" + strconv.Itoa(i+1)})
	}
	got := Reachable("n0", es)
	assert.Len(t, got, 10001)
}

func TestHasPath(t *testing.T) {
	es := edges("a", "b", "b", "c")
	assert.True(t, HasPath("a", "c", es))
	assert.False(t, HasPath("c", "a", es))
	assert.True(t, HasPath("x", "x", es))
}

// --- Cycles ---

func TestCycleNodes_None(t *testing.T) {
	assert.Empty(t, CycleNodes([]string{"a", "b", "c", "d"}, edges("a", "b", "a", "c", "b", "d", "c", "d")))
}

func TestCycleNodes_Simple(t *testing.T) {
	got := CycleNodes([]string{"a", "b", "c"}, edges("a", "b", "b", "c", "c", "a"))
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestCycleNodes_OnlyParticipants(t *testing.T) {
	// start -> a -> b -> c -> a, c -> end
	got := CycleNodes([]string{"start", "a", "b", "c", "end"},
		edges("start", "a", "a", "b", "b", "c", "c", "a", "c", "end"))
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestCycleNodes_SelfEdge(t *testing.T) {
	got := CycleNodes([]string{"a", "b"}, edges("a", "b", "b", "b"))
	assert.Equal(t, []string{"b"}, got)
}

func TestCycleNodes_TwoDisjointCycles(t *testing.T) {
	got := CycleNodes([]string{"a", "b", "c", "d"}, edges("a", "b", "b", "a", "c", "d", "d", "c"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestCycleNodes_UnlistedEndpoints(t *testing.T) {
	got := CycleNodes(nil, edges("x", "y", "y", "x"))
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestCycleNodes_ClosingEdgeIntoFinishedNode(t *testing.T) {
	// 1 -> 3 finishes 3 before 1 -> 2 -> 3 is explored.
	got := CycleNodes([]string{"1", "2", "3"}, edges("1", "3", "3", "1", "1", "2", "2", "3"))
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestCycleComponents(t *testing.T) {
	// a <-> b and c <-> d joined by the one-way chord b -> c; e self-loops.
	got := CycleComponents([]string{"a", "b", "c", "d", "e", "f"},
		edges("a", "b", "b", "a", "b", "c", "c", "d", "d", "c", "e", "e", "e", "f"))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, got)

	assert.Empty(t, CycleComponents([]string{"a", "b"}, edges("a", "b")))
}

func TestCycleComponents_DeepChain(t *testing.T) {
	const n = 5000
	ids := make([]string, n)
	var pairs []string
	for i := range ids {
		ids[i] = "n" + strconv.Itoa(i)
		if i > 0 {
			pairs = append(pairs, ids[i-1], ids[i])
		}
	}
	pairs = append(pairs, ids[n-1], ids[0])

	comps := CycleComponents(ids, edges(pairs...))
	if assert.Len(t, comps, 1) {
		assert.Len(t, comps[0], n)
	}
}

func TestHasCycle(t *testing.T) {
	assert.False(t, HasCycle([]string{"a", "b"}, edges("a", "b")))
	assert.True(t, HasCycle([]string{"a", "b"}, edges("a", "b", "b", "a")))
}

func TestBuildAdjacency_DedupesPairs(t *testing.T) {
	adj := BuildAdjacency(edges("a", "b", "a", "b", "a", "c"))
	assert.Equal(t, []string{"b", "c"}, adj["a"])
}
