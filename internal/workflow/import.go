package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rendis/langcanvas/internal/validation"
	"github.com/rendis/langcanvas/pkg/schema"
)

// ImportResult is the graph read from a document plus every problem found.
// Nodes and edges hold whatever could be resolved; callers should only adopt
// them when Errors is empty.
type ImportResult struct {
	Name   string
	Nodes  []schema.Node
	Edges  []schema.Edge
	Errors []string
}

// OK reports whether the import found no problems.
func (r *ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// Err converts the error list into a CanvasError, or nil when there is none.
func (r *ImportResult) Err() error {
	if r.OK() {
		return nil
	}
	msg := r.Errors[0]
	if len(r.Errors) > 1 {
		msg = fmt.Sprintf("import failed with %d errors", len(r.Errors))
	}
	return schema.NewError(schema.ErrCodeImport, msg).
		WithDetails(map[string]any{"errors": r.Errors})
}

// Importer reads workflow documents. It is safe for concurrent use.
type Importer struct {
	documents *validation.DocumentValidator
	newID     func() string
}

// NewImporter creates an Importer that assigns fresh UUIDs to nodes and edges.
func NewImporter() (*Importer, error) {
	dv, err := validation.NewDocumentValidator()
	if err != nil {
		return nil, err
	}
	return &Importer{documents: dv, newID: uuid.NewString}, nil
}

// Import checks data against the document schema, resolves label references and
// regenerates every id. It never stops at the first problem it can recover from.
func (im *Importer) Import(data []byte) *ImportResult {
	result := &ImportResult{}

	if err := im.documents.ValidateDocument(data); err != nil {
		result.Errors = append(result.Errors, violations(err)...)
		return result
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("decode workflow: %s", err))
		return result
	}
	result.Name = doc.Name

	major, err := majorVersion(doc.Version)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if want, _ := majorVersion(Version); major != want {
		result.Errors = append(result.Errors,
			fmt.Sprintf("unsupported workflow version %q (expected %d.x)", doc.Version, want))
		return result
	}

	// Labels are the join key for edges, so they must be unique.
	byLabel := make(map[string]string, len(doc.Nodes))
	dupSeen := make(map[string]bool)
	for _, n := range doc.Nodes {
		key := schema.NormalizeLabel(n.Label)
		if _, taken := byLabel[key]; taken {
			if !dupSeen[key] {
				dupSeen[key] = true
				result.Errors = append(result.Errors, fmt.Sprintf("duplicate node label %q", n.Label))
			}
			continue
		}
		byLabel[key] = ""
	}
	if len(dupSeen) > 0 {
		return result
	}

	for _, n := range doc.Nodes {
		n.ID = im.newID()
		if n.Config.Concurrency == "" && n.Config.Timeout == 0 && n.Config.Retry == nil {
			n.Config = schema.DefaultConfig(n.Type)
		}
		byLabel[schema.NormalizeLabel(n.Label)] = n.ID
		result.Nodes = append(result.Nodes, n)
	}

	if doc.EntryPoint != "" {
		id, ok := byLabel[schema.NormalizeLabel(doc.EntryPoint)]
		if !ok || !isStart(result.Nodes, id) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("entry point %q does not name a start node", doc.EntryPoint))
		}
	}

	for i, e := range doc.Edges {
		src, srcOK := byLabel[schema.NormalizeLabel(e.Source)]
		dst, dstOK := byLabel[schema.NormalizeLabel(e.Target)]
		if !srcOK {
			result.Errors = append(result.Errors,
				fmt.Sprintf("edge %d (%s -> %s): unknown source node %q", i+1, e.Source, e.Target, e.Source))
		}
		if !dstOK {
			result.Errors = append(result.Errors,
				fmt.Sprintf("edge %d (%s -> %s): unknown target node %q", i+1, e.Source, e.Target, e.Target))
		}
		if !srcOK || !dstOK {
			continue
		}
		e.ID = im.newID()
		e.Source = src
		e.Target = dst
		result.Edges = append(result.Edges, e)
	}

	return result
}

func isStart(nodes []schema.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return n.Type == schema.NodeTypeStart
		}
	}
	return false
}

// violations flattens a document validation error into messages.
func violations(err error) []string {
	if cErr, ok := err.(*schema.CanvasError); ok {
		if list, ok := cErr.Details["violations"].([]string); ok {
			return list
		}
		return []string{cErr.Message}
	}
	return []string{err.Error()}
}
