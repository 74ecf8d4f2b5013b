package schema

import (
	"maps"
	"slices"
)

// Clone returns a copy of n that shares no maps, slices or pointers with it.
func (n Node) Clone() Node {
	n.Function.InputSchema = maps.Clone(n.Function.InputSchema)
	n.Function.OutputSchema = maps.Clone(n.Function.OutputSchema)
	n.Config = n.Config.Clone()
	n.Transitions = slices.Clone(n.Transitions)
	return n
}

// Clone returns a copy of c. Metadata is copied recursively through nested
// maps and slices.
func (c NodeConfig) Clone() NodeConfig {
	if c.Retry != nil {
		r := *c.Retry
		c.Retry = &r
	}
	if c.Metadata != nil {
		c.Metadata = cloneValue(c.Metadata).(map[string]any)
	}
	c.Tags = slices.Clone(c.Tags)
	return c
}

// Clone returns a copy of e with its own routing and loop metadata.
func (e Edge) Clone() Edge {
	if e.Conditional != nil {
		c := *e.Conditional
		e.Conditional = &c
	}
	if e.Loop != nil {
		l := *e.Loop
		e.Loop = &l
	}
	return e
}

// CloneNodes deep-copies a node slice. nil stays nil.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges deep-copies an edge slice. nil stays nil.
func CloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, item := range x {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, item := range x {
			s[i] = cloneValue(item)
		}
		return s
	}
	return v
}
