package schema

import (
	"fmt"
	"strings"
)

// NodeType enumerates the kinds of nodes on the canvas.
type NodeType string

const (
	NodeTypeStart       NodeType = "start"
	NodeTypeAgent       NodeType = "agent"
	NodeTypeTool        NodeType = "tool"
	NodeTypeFunction    NodeType = "function"
	NodeTypeConditional NodeType = "conditional"
	NodeTypeParallel    NodeType = "parallel"
	NodeTypeEnd         NodeType = "end"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{
	NodeTypeStart, NodeTypeAgent, NodeTypeTool, NodeTypeFunction,
	NodeTypeConditional, NodeTypeParallel, NodeTypeEnd,
}

// Valid reports whether t is one of the enumerated node types.
func (t NodeType) Valid() bool {
	for _, v := range NodeTypes {
		if v == t {
			return true
		}
	}
	return false
}

// MaxConditionalBranches caps the out-degree of a conditional node.
const MaxConditionalBranches = 8

// Position is a point on the canvas in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a typed vertex of the workflow graph.
type Node struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Type        NodeType     `json:"type"`
	Position    Position     `json:"position"`
	Function    Function     `json:"function"`
	Config      NodeConfig   `json:"config"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// Function describes the callable a node is bound to.
type Function struct {
	Name         string            `json:"name"`
	InputSchema  map[string]string `json:"input_schema,omitempty"`  // field -> type name
	OutputSchema map[string]string `json:"output_schema,omitempty"` // field -> type name
}

// Transition summarizes one outgoing route of a node, by target label.
type Transition struct {
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
	Priority  int    `json:"priority,omitempty"`
}

// NewNode creates a node with the per-type default config.
func NewNode(id string, t NodeType, label string, pos Position) (*Node, error) {
	if !t.Valid() {
		return nil, NewErrorf(ErrCodeValidation, "unknown node type %q", t).WithNode(id)
	}
	return &Node{
		ID:       id,
		Label:    label,
		Type:     t,
		Position: pos,
		Config:   DefaultConfig(t),
	}, nil
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	Target      string           `json:"target"`
	Label       string           `json:"label,omitempty"`
	Value       string           `json:"value,omitempty"`
	Conditional *ConditionalMeta `json:"conditional,omitempty"`
	Loop        *LoopMeta        `json:"loop,omitempty"`
}

// EvaluationMode controls how a conditional node picks among its branches.
type EvaluationMode string

const (
	EvalFirstMatch EvaluationMode = "first-match"
	EvalAllMatches EvaluationMode = "all-matches"
)

// ConditionalMeta is the routing metadata of an edge leaving a conditional node.
type ConditionalMeta struct {
	FunctionName   string         `json:"function_name"`
	Priority       int            `json:"priority"`
	IsDefault      bool           `json:"is_default,omitempty"`
	EvaluationMode EvaluationMode `json:"evaluation_mode,omitempty"` // first-match | all-matches (default: first-match)
	Condition      string         `json:"condition,omitempty"`       // CEL expression
}

// LoopType classifies an edge that closes a cycle.
type LoopType string

const (
	LoopConditional   LoopType = "conditional"
	LoopSelf          LoopType = "self-loop"
	LoopHumanInLoop   LoopType = "human-in-loop"
	LoopToolBased     LoopType = "tool-based"
	LoopUnconditional LoopType = "unconditional"
)

// Valid reports whether t is a known loop type.
func (t LoopType) Valid() bool {
	switch t {
	case LoopConditional, LoopSelf, LoopHumanInLoop, LoopToolBased, LoopUnconditional:
		return true
	}
	return false
}

// LoopMeta is the metadata of an edge that closes a cycle.
type LoopMeta struct {
	Type                 LoopType `json:"type"`
	TerminationCondition string   `json:"termination_condition,omitempty"` // Expr expression
	MaxIterations        int      `json:"max_iterations,omitempty"`
	HumanInterrupt       bool     `json:"human_interrupt,omitempty"`
	Iteration            int      `json:"iteration,omitempty"`
	Inferred             bool     `json:"inferred,omitempty"` // type guessed from node types
}

// Bounded reports whether the loop has some way to stop.
func (l *LoopMeta) Bounded() bool {
	if l.TerminationCondition != "" || l.MaxIterations > 0 {
		return true
	}
	return l.Type == LoopHumanInLoop && l.HumanInterrupt
}

// NodeByID indexes nodes by ID. Later duplicates win.
func NodeByID(nodes []Node) map[string]*Node {
	idx := make(map[string]*Node, len(nodes))
	for i := range nodes {
		idx[nodes[i].ID] = &nodes[i]
	}
	return idx
}

// OutEdges returns the edges leaving nodeID, in input order.
func OutEdges(nodeID string, edges []Edge) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// NormalizeLabel is the comparison key for label uniqueness: trimmed and lower-cased.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// DisplayName returns the node label, falling back to its ID.
func (n *Node) DisplayName() string {
	if strings.TrimSpace(n.Label) != "" {
		return n.Label
	}
	return n.ID
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.DisplayName(), n.Type)
}
