package connection

import (
	"fmt"

	"github.com/rendis/langcanvas/internal/graph"
	"github.com/rendis/langcanvas/pkg/schema"
)

// LoopResult is the Loop Classifier verdict for a proposed edge.
type LoopResult struct {
	Valid    bool
	IsLoop   bool
	LoopType schema.LoopType
	Error    string
}

// IsValidLoopConnection classifies the edge source->target against the existing edges.
//
// Self-edges are always self-loops; start and end nodes cannot carry one. A
// non-self edge is a loop when target already reaches source. Its type is a
// best-effort default inferred from the endpoint types (see InferLoopType);
// callers that know better pass an explicit type when storing the edge.
func IsValidLoopConnection(sourceID, targetID string, nodes []schema.Node, edges []schema.Edge) LoopResult {
	idx := schema.NodeByID(nodes)
	source, target := idx[sourceID], idx[targetID]

	if sourceID == targetID {
		if source != nil && (source.Type == schema.NodeTypeStart || source.Type == schema.NodeTypeEnd) {
			return LoopResult{
				IsLoop:   true,
				LoopType: schema.LoopSelf,
				Error:    fmt.Sprintf("%s nodes cannot loop to themselves", source.Type),
			}
		}
		return LoopResult{Valid: true, IsLoop: true, LoopType: schema.LoopSelf}
	}

	if !graph.HasPath(targetID, sourceID, edges) {
		return LoopResult{Valid: true}
	}

	return LoopResult{
		Valid:    true,
		IsLoop:   true,
		LoopType: InferLoopType(source, target),
	}
}

// InferLoopType guesses a loop type from the endpoints of the closing edge:
// a conditional source routes the loop, a tool endpoint drives it, anything else
// is unconditional. Nil nodes count as neither.
func InferLoopType(source, target *schema.Node) schema.LoopType {
	if source != nil && source.Type == schema.NodeTypeConditional {
		return schema.LoopConditional
	}
	if (source != nil && source.Type == schema.NodeTypeTool) || (target != nil && target.Type == schema.NodeTypeTool) {
		return schema.LoopToolBased
	}
	return schema.LoopUnconditional
}
