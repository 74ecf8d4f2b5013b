package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/langcanvas/pkg/schema"
)

// RenderImage renders a DiagramModel as a PNG image using graphviz.
// Returns the PNG bytes.
func RenderImage(ctx context.Context, model *DiagramModel) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, fmt.Errorf("diagram: create node %s: %w", node.ID, nErr)
		}
		gvNode.SetLabel(node.Label)
		applyNodeStyle(gvNode, node)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range model.Edges {
		fromGV, toGV := gvNodes[edge.From], gvNodes[edge.To]
		if fromGV == nil || toGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr != nil {
			return nil, fmt.Errorf("diagram: create edge %s->%s: %w", edge.From, edge.To, eErr)
		}
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
		switch edge.Kind {
		case EdgeKindLoop:
			e.SetStyle(cgraph.DashedEdgeStyle)
		case EdgeKindConditional:
			e.SetStyle(cgraph.BoldEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// applyNodeStyle sets graphviz attributes based on node kind and issues.
func applyNodeStyle(gvNode *cgraph.Node, node *Node) {
	switch node.Kind {
	case schema.NodeTypeAgent, schema.NodeTypeTool:
		gvNode.SetShape(cgraph.BoxShape)
	case schema.NodeTypeFunction:
		gvNode.SetShape(cgraph.EllipseShape)
	case schema.NodeTypeConditional:
		gvNode.SetShape(cgraph.DiamondShape)
	case schema.NodeTypeParallel:
		gvNode.SetShape(cgraph.HexagonShape)
	case schema.NodeTypeStart, schema.NodeTypeEnd:
		gvNode.SetShape(cgraph.CircleShape)
		gvNode.SetWidth(0.5)
		gvNode.SetHeight(0.5)
	}

	if node.Issue != nil {
		applyIssueColor(gvNode, node.Issue.Severity)
	}
}

// applyIssueColor fills nodes that carry validation issues.
func applyIssueColor(gvNode *cgraph.Node, severity schema.ValidationSeverity) {
	gvNode.SetStyle(cgraph.FilledNodeStyle)
	gvNode.SetFontColor("white")
	if severity == schema.SeverityError {
		gvNode.SetFillColor("#8b1a1a")
		return
	}
	gvNode.SetFillColor("#b7791a")
}
