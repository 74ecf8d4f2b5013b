// Package connection implements admission control for edges drawn on the canvas.
package connection

import (
	"fmt"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Result is the verdict for one attempted connection. A refused connection
// carries a human-readable Error; nothing here returns a Go error.
type Result struct {
	Valid    bool
	Error    string
	IsLoop   bool
	LoopType schema.LoopType
}

// Validate decides whether an edge source->target may be added to the graph.
//
// Connections that close a cycle are accepted and reported as loops so the
// loop-safety checks can take over, rather than being refused outright.
func Validate(sourceID, targetID string, nodes []schema.Node, edges []schema.Edge) Result {
	idx := schema.NodeByID(nodes)
	source, ok := idx[sourceID]
	if !ok {
		return refuse(fmt.Sprintf("source node %q does not exist", sourceID))
	}
	target, ok := idx[targetID]
	if !ok {
		return refuse(fmt.Sprintf("target node %q does not exist", targetID))
	}

	if sourceID == targetID {
		lr := IsValidLoopConnection(sourceID, targetID, nodes, edges)
		if !lr.Valid {
			return refuse(lr.Error)
		}
	}

	if source.Type == schema.NodeTypeEnd {
		return refuse(fmt.Sprintf("end node %q cannot have outgoing connections", source.DisplayName()))
	}
	if target.Type == schema.NodeTypeStart {
		return refuse(fmt.Sprintf("start node %q cannot have incoming connections", target.DisplayName()))
	}

	outDegree := 0
	for _, e := range edges {
		if e.Source != sourceID {
			continue
		}
		if e.Target == targetID {
			return refuse(fmt.Sprintf("a connection from %q to %q already exists", source.DisplayName(), target.DisplayName()))
		}
		outDegree++
	}

	if source.Type == schema.NodeTypeConditional && outDegree >= schema.MaxConditionalBranches {
		return refuse(fmt.Sprintf("conditional node %q already has the maximum of %d branches",
			source.DisplayName(), schema.MaxConditionalBranches))
	}

	lr := IsValidLoopConnection(sourceID, targetID, nodes, edges)
	if !lr.Valid {
		return refuse(lr.Error)
	}
	return Result{Valid: true, IsLoop: lr.IsLoop, LoopType: lr.LoopType}
}

func refuse(msg string) Result {
	return Result{Error: msg}
}
