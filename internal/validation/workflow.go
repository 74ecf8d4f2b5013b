package validation

import (
	"github.com/rendis/langcanvas/internal/expressions"
	"github.com/rendis/langcanvas/pkg/schema"
)

// WorkflowValidator runs the graph checks in a fixed order, plus document
// schema validation for imports:
//  1. Start node count, label uniqueness, undeclared cycles, reachability
//  2. Outgoing edges, edge references, duplicate edges, tool fan-out
//  3. Conditional branches and priorities
//  4. Loop safety, expressions, node configs
//
// No check short-circuits: every issue found is reported.
type WorkflowValidator struct {
	documents *DocumentValidator
	engines   *expressions.Set
}

// NewWorkflowValidator creates a WorkflowValidator.
// engines may be nil to skip expression compilation.
func NewWorkflowValidator(engines *expressions.Set) (*WorkflowValidator, error) {
	dv, err := NewDocumentValidator()
	if err != nil {
		return nil, err
	}
	return &WorkflowValidator{
		documents: dv,
		engines:   engines,
	}, nil
}

// Validate runs every check and returns the aggregated result.
func (wv *WorkflowValidator) Validate(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	return validateGraph(nodes, edges, wv.engines)
}

// ValidateDocument delegates to the underlying DocumentValidator.
func (wv *WorkflowValidator) ValidateDocument(data []byte) error {
	return wv.documents.ValidateDocument(data)
}

func validateGraph(nodes []schema.Node, edges []schema.Edge, engines *expressions.Set) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	result.Merge(validateStartNodes(nodes))
	result.Merge(validateLabels(nodes))
	result.Merge(validateCycles(nodes, edges))
	result.Merge(validateReachability(nodes, edges))
	result.Merge(validateOutgoing(nodes, edges))
	result.Merge(validateEdgeRefs(nodes, edges))
	result.Merge(validateDuplicateEdges(nodes, edges))
	result.Merge(validateToolFanOut(nodes, edges))
	result.Merge(validateBranches(nodes, edges))
	result.Merge(validatePriorities(nodes, edges))

	result.Merge(validateDefaults(nodes, edges))
	result.Merge(validateLoops(edges))
	result.Merge(validateExpressions(edges, engines))
	result.Merge(validateConfigs(nodes))

	return result
}

var _ Validator = (*WorkflowValidator)(nil)
