package validation

import (
	"sync"

	"github.com/rendis/langcanvas/internal/expressions"
	"github.com/rendis/langcanvas/pkg/schema"
)

// Validator checks a canvas graph for structural and configuration problems.
// Implementations never mutate their input and never stop at the first issue.
type Validator interface {
	Validate(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult
	ValidateDocument(data []byte) error
}

var defaultValidator = sync.OnceValues(func() (*WorkflowValidator, error) {
	engines, err := expressions.NewSet()
	if err != nil {
		return nil, err
	}
	return NewWorkflowValidator(engines)
})

// Validate runs every graph check against nodes and edges with the default
// expression engines. Expression checks are skipped if the engines fail to build.
func Validate(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	wv, err := defaultValidator()
	if err != nil {
		return validateGraph(nodes, edges, nil)
	}
	return wv.Validate(nodes, edges)
}
