package validation

import (
	"fmt"

	"github.com/rendis/langcanvas/internal/expressions"
	"github.com/rendis/langcanvas/pkg/schema"
)

// validateLoops checks declared loops for a way to stop. The loop type only
// matters here: a human-in-loop edge with an interrupt counts as bounded.
func validateLoops(edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, e := range edges {
		if e.Loop == nil {
			continue
		}
		ends := []string{e.Source, e.Target}
		if e.Source == e.Target {
			ends = ends[:1]
		}

		if e.Loop.Type != "" && !e.Loop.Type.Valid() {
			result.AddError(schema.CategoryConfiguration, schema.IssueInvalidLoopType,
				fmt.Sprintf("loop edge %q has unknown loop type %q", e.ID, e.Loop.Type),
				ends, []string{e.ID})
		}
		if e.Loop.MaxIterations < 0 {
			result.AddError(schema.CategoryConfiguration, schema.IssueInvalidMaxIterations,
				fmt.Sprintf("loop edge %q has negative max_iterations %d", e.ID, e.Loop.MaxIterations),
				ends, []string{e.ID})
			continue
		}
		if !e.Loop.Bounded() {
			result.AddWarning(schema.CategoryConfiguration, schema.IssueUnboundedLoop,
				fmt.Sprintf("loop edge %q has no termination condition or max_iterations and may run forever", e.ID),
				ends, []string{e.ID})
		}
	}
	return result
}

// validateExpressions compiles every routing condition and termination
// condition. A nil engine skips its check.
func validateExpressions(edges []schema.Edge, engines *expressions.Set) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if engines == nil {
		return result
	}

	for _, e := range edges {
		if e.Conditional != nil && e.Conditional.Condition != "" && engines.Routing != nil {
			if err := engines.Routing.Compile(e.Conditional.Condition); err != nil {
				result.AddError(schema.CategoryData, schema.IssueInvalidExpression,
					fmt.Sprintf("edge %q: invalid routing condition: %s", e.ID, err.Error()),
					[]string{e.Source}, []string{e.ID})
			}
		}
		if e.Loop != nil && e.Loop.TerminationCondition != "" && engines.Termination != nil {
			if err := engines.Termination.Compile(e.Loop.TerminationCondition); err != nil {
				result.AddError(schema.CategoryData, schema.IssueInvalidExpression,
					fmt.Sprintf("edge %q: invalid termination condition: %s", e.ID, err.Error()),
					[]string{e.Source}, []string{e.ID})
			}
		}
	}
	return result
}

// validateConfigs runs each node's config checks for its type.
func validateConfigs(nodes []schema.Node) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, n := range nodes {
		if !n.Type.Valid() {
			result.AddError(schema.CategoryConfiguration, schema.IssueInvalidNodeConfig,
				fmt.Sprintf("node %q has unknown type %q", n.DisplayName(), n.Type),
				[]string{n.ID}, nil)
			continue
		}
		if err := n.Config.Validate(n.Type); err != nil {
			msg := err.Error()
			if cErr, ok := err.(*schema.CanvasError); ok {
				msg = cErr.Message
			}
			result.AddError(schema.CategoryConfiguration, schema.IssueInvalidNodeConfig,
				fmt.Sprintf("node %q: %s", n.DisplayName(), msg),
				[]string{n.ID}, nil)
		}
	}
	return result
}
