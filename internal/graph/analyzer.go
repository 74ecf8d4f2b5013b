// Package graph holds the traversal utilities shared by connection-time checks
// and the aggregate validator: forward reachability and cycle participation.
package graph

import (
	"sort"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Adjacency maps a node ID to the targets of its outgoing edges, in edge order.
type Adjacency map[string][]string

// BuildAdjacency indexes edges by source. Duplicate (source, target) pairs are kept once.
func BuildAdjacency(edges []schema.Edge) Adjacency {
	adj := make(Adjacency, len(edges))
	seen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		k := [2]string{e.Source, e.Target}
		if seen[k] {
			continue
		}
		seen[k] = true
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// Reachable returns every node reachable from start by forward traversal,
// start included. Uses an explicit stack.
func Reachable(start string, edges []schema.Edge) map[string]bool {
	return BuildAdjacency(edges).Reachable(start)
}

// Reachable is the adjacency form of the package-level Reachable.
func (adj Adjacency) Reachable(start string) map[string]bool {
	visited := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[node] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return visited
}

// HasPath reports whether to is reachable from from. A node always reaches itself.
func HasPath(from, to string, edges []schema.Edge) bool {
	if from == to {
		return true
	}
	return Reachable(from, edges)[to]
}

// CycleComponents returns the strongly connected components that contain a
// cycle: two or more mutually reachable nodes, or one node with a self-edge.
// Every node on any cycle belongs to exactly one of them. IDs inside a
// component are sorted and components are ordered by their first ID.
//
// Tarjan's algorithm with an explicit call stack. Roots are visited in
// nodeIDs order, then any edge source not listed in nodeIDs.
func CycleComponents(nodeIDs []string, edges []schema.Edge) [][]string {
	adj := BuildAdjacency(edges)

	roots := append([]string(nil), nodeIDs...)
	listed := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		listed[id] = true
	}
	selfEdge := make(map[string]bool)
	for _, e := range edges {
		if !listed[e.Source] {
			listed[e.Source] = true
			roots = append(roots, e.Source)
		}
		if e.Source == e.Target {
			selfEdge[e.Source] = true
		}
	}

	type frame struct {
		node string
		next int // index into adj[node] of the next edge to explore
	}

	index := make(map[string]int, len(roots))
	low := make(map[string]int, len(roots))
	onStack := make(map[string]bool)
	var stack []string
	var comps [][]string
	counter := 0

	visit := func(id string) {
		index[id], low[id] = counter, counter
		counter++
		stack = append(stack, id)
		onStack[id] = true
	}

	for _, root := range roots {
		if _, seen := index[root]; seen {
			continue
		}
		visit(root)
		calls := []frame{{node: root}}

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			if targets := adj[top.node]; top.next < len(targets) {
				w := targets[top.next]
				top.next++
				if _, seen := index[w]; !seen {
					visit(w)
					calls = append(calls, frame{node: w})
				} else if onStack[w] {
					low[top.node] = min(low[top.node], index[w])
				}
				continue
			}

			v := top.node
			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].node
				low[parent] = min(low[parent], low[v])
			}
			if low[v] != index[v] {
				continue
			}

			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 || selfEdge[v] {
				sort.Strings(comp)
				comps = append(comps, comp)
			}
		}
	}

	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// CycleNodes returns the sorted IDs of every node that sits on some cycle.
// A self-edge makes its node a participant.
func CycleNodes(nodeIDs []string, edges []schema.Edge) []string {
	var out []string
	for _, comp := range CycleComponents(nodeIDs, edges) {
		out = append(out, comp...)
	}
	sort.Strings(out)
	return out
}

// HasCycle reports whether edges contain any cycle.
func HasCycle(nodeIDs []string, edges []schema.Edge) bool {
	return len(CycleNodes(nodeIDs, edges)) > 0
}
