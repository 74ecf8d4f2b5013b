package diagram

import "github.com/rendis/langcanvas/pkg/schema"

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title  string
	Nodes  []*Node
	Edges  []Edge
	Levels [][]string
}

// Node represents a single canvas node in the diagram.
type Node struct {
	ID    string
	Label string
	Kind  schema.NodeType
	Issue *IssueOverlay
}

// IssueOverlay carries validation findings for a node.
type IssueOverlay struct {
	Severity schema.ValidationSeverity // worst severity among the node's issues
	Errors   int
	Warnings int
}

// EdgeKind distinguishes how an edge is drawn.
type EdgeKind string

const (
	EdgeKindPlain       EdgeKind = "plain"
	EdgeKindConditional EdgeKind = "conditional"
	EdgeKindLoop        EdgeKind = "loop"
)

// Edge represents a connection between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Kind  EdgeKind
}
