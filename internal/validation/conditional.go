package validation

import (
	"fmt"
	"sort"

	"github.com/rendis/langcanvas/internal/priority"
	"github.com/rendis/langcanvas/pkg/schema"
)

// validateBranches checks the shape of each conditional node: a lone branch is
// suspicious, and branch labels must tell the branches apart.
func validateBranches(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, n := range nodesOfType(nodes, schema.NodeTypeConditional) {
		out := schema.OutEdges(n.ID, edges)
		if len(out) == 1 {
			result.AddWarning(schema.CategoryConditional, schema.IssueSingleBranch,
				fmt.Sprintf("conditional node %q has a single branch", n.DisplayName()),
				[]string{n.ID}, edgeIDsOf(out))
		}

		byLabel := make(map[string][]string)
		var order []string
		for _, e := range out {
			key := schema.NormalizeLabel(e.Label)
			if key == "" {
				continue
			}
			if _, seen := byLabel[key]; !seen {
				order = append(order, key)
			}
			byLabel[key] = append(byLabel[key], e.ID)
		}
		for _, key := range order {
			if ids := byLabel[key]; len(ids) > 1 {
				result.AddError(schema.CategoryConditional, schema.IssueDuplicateBranchLabel,
					fmt.Sprintf("conditional node %q has %d branches labelled %q", n.DisplayName(), len(ids), key),
					[]string{n.ID}, ids)
			}
		}
	}
	return result
}

// validatePriorities reports shared and non-positive branch priorities on
// conditional nodes.
func validatePriorities(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, n := range nodesOfType(nodes, schema.NodeTypeConditional) {
		conflicts := priority.Conflicts(n.ID, edges)
		shared := make([]int, 0, len(conflicts))
		for p := range conflicts {
			shared = append(shared, p)
		}
		sort.Ints(shared)
		for _, p := range shared {
			result.AddError(schema.CategoryConditional, schema.IssueDuplicatePriority,
				fmt.Sprintf("conditional node %q has %d branches with priority %d", n.DisplayName(), len(conflicts[p]), p),
				[]string{n.ID}, edgeIDsOf(conflicts[p]))
		}

		for _, e := range schema.OutEdges(n.ID, edges) {
			if e.Conditional != nil && e.Conditional.Priority <= 0 {
				result.AddError(schema.CategoryConditional, schema.IssueInvalidPriority,
					fmt.Sprintf("branch %q of %q has priority %d; priorities start at 1", e.ID, n.DisplayName(), e.Conditional.Priority),
					[]string{n.ID}, []string{e.ID})
			}
		}
	}
	return result
}

// validateDefaults allows at most one default branch per conditional node and
// warns when a node exceeds the branch cap.
func validateDefaults(nodes []schema.Node, edges []schema.Edge) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, n := range nodesOfType(nodes, schema.NodeTypeConditional) {
		out := schema.OutEdges(n.ID, edges)

		var defaults []string
		for _, e := range out {
			if e.Conditional != nil && e.Conditional.IsDefault {
				defaults = append(defaults, e.ID)
			}
		}
		if len(defaults) > 1 {
			result.AddError(schema.CategoryConditional, schema.IssueMultipleDefaults,
				fmt.Sprintf("conditional node %q has %d default branches; at most one is allowed", n.DisplayName(), len(defaults)),
				[]string{n.ID}, defaults)
		}

		if len(out) > schema.MaxConditionalBranches {
			result.AddWarning(schema.CategoryStructure, schema.IssueTooManyBranches,
				fmt.Sprintf("conditional node %q has %d branches (max %d)", n.DisplayName(), len(out), schema.MaxConditionalBranches),
				[]string{n.ID}, edgeIDsOf(out))
		}
	}
	return result
}
