package schema

import (
	"encoding/json"
	"fmt"
)

// ValidationSeverity indicates whether an issue is an error or warning.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// IssueCategory groups issues by the part of the workflow they concern.
type IssueCategory string

const (
	CategoryStructure     IssueCategory = "structure"
	CategoryConfiguration IssueCategory = "configuration"
	CategoryData          IssueCategory = "data"
	CategoryConditional   IssueCategory = "conditional"
)

// Issue codes. Auto-fix keys on these, never on message text.
const (
	IssueNoStartNode          = "NO_START_NODE"
	IssueMultipleStartNodes   = "MULTIPLE_START_NODES"
	IssueDuplicateLabel       = "DUPLICATE_LABEL"
	IssueCycle                = "CYCLE_DETECTED"
	IssueUnreachableNode      = "UNREACHABLE_NODE"
	IssueNoOutgoingEdge       = "NO_OUTGOING_EDGE"
	IssueMissingSource        = "MISSING_SOURCE_NODE"
	IssueMissingTarget        = "MISSING_TARGET_NODE"
	IssueStartAsTarget        = "START_AS_TARGET"
	IssueEndAsSource          = "END_AS_SOURCE"
	IssueDuplicateEdge        = "DUPLICATE_EDGE"
	IssueToolFanOut           = "TOOL_MULTIPLE_OUTPUTS"
	IssueSingleBranch         = "CONDITIONAL_SINGLE_BRANCH"
	IssueDuplicateBranchLabel = "DUPLICATE_BRANCH_LABEL"
	IssueDuplicatePriority    = "DUPLICATE_PRIORITY"
	IssueInvalidPriority      = "INVALID_PRIORITY"
	IssueMultipleDefaults     = "MULTIPLE_DEFAULT_BRANCHES"
	IssueTooManyBranches      = "TOO_MANY_BRANCHES"
	IssueUnboundedLoop        = "UNBOUNDED_LOOP"
	IssueInvalidLoopType      = "INVALID_LOOP_TYPE"
	IssueInvalidMaxIterations = "INVALID_MAX_ITERATIONS"
	IssueInvalidExpression    = "INVALID_EXPRESSION"
	IssueInvalidNodeConfig    = "INVALID_NODE_CONFIG"
)

// ValidationIssue is a single validation problem with the nodes and edges it concerns.
type ValidationIssue struct {
	Severity ValidationSeverity `json:"severity"`
	Category IssueCategory      `json:"category"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	NodeIDs  []string           `json:"nodeIds,omitempty"`
	EdgeIDs  []string           `json:"edgeIds,omitempty"`
}

// ValidationResult aggregates all issues from one validation pass.
// Issues keep the order in which checks produced them.
type ValidationResult struct {
	Issues       []ValidationIssue
	ErrorCount   int
	WarningCount int
}

// Valid returns true if there are no errors (warnings are acceptable).
func (r *ValidationResult) Valid() bool {
	return r.ErrorCount == 0
}

// AddError appends an error-severity issue.
func (r *ValidationResult) AddError(category IssueCategory, code, message string, nodeIDs, edgeIDs []string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Severity: SeverityError, Category: category, Code: code, Message: message,
		NodeIDs: nodeIDs, EdgeIDs: edgeIDs,
	})
	r.ErrorCount++
}

// AddWarning appends a warning-severity issue.
func (r *ValidationResult) AddWarning(category IssueCategory, code, message string, nodeIDs, edgeIDs []string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Severity: SeverityWarning, Category: category, Code: code, Message: message,
		NodeIDs: nodeIDs, EdgeIDs: edgeIDs,
	})
	r.WarningCount++
}

// Merge combines another ValidationResult into this one.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.ErrorCount += other.ErrorCount
	r.WarningCount += other.WarningCount
}

// Errors returns the error-severity issues.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

// ByCode returns every issue carrying the given code.
func (r *ValidationResult) ByCode(code string) []ValidationIssue {
	var out []ValidationIssue
	for _, is := range r.Issues {
		if is.Code == code {
			out = append(out, is)
		}
	}
	return out
}

// ForNode returns the issues that reference the node, for per-node highlighting.
func (r *ValidationResult) ForNode(nodeID string) []ValidationIssue {
	var out []ValidationIssue
	for _, is := range r.Issues {
		if contains(is.NodeIDs, nodeID) {
			out = append(out, is)
		}
	}
	return out
}

// ForEdge returns the issues that reference the edge.
func (r *ValidationResult) ForEdge(edgeID string) []ValidationIssue {
	var out []ValidationIssue
	for _, is := range r.Issues {
		if contains(is.EdgeIDs, edgeID) {
			out = append(out, is)
		}
	}
	return out
}

func (r *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, is := range r.Issues {
		if is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

// MarshalJSON emits {isValid, issues, errorCount, warningCount}.
func (r *ValidationResult) MarshalJSON() ([]byte, error) {
	issues := r.Issues
	if issues == nil {
		issues = []ValidationIssue{}
	}
	return json.Marshal(struct {
		IsValid      bool              `json:"isValid"`
		Issues       []ValidationIssue `json:"issues"`
		ErrorCount   int               `json:"errorCount"`
		WarningCount int               `json:"warningCount"`
	}{r.Valid(), issues, r.ErrorCount, r.WarningCount})
}

// ToError converts the result to a CanvasError if invalid, nil if valid.
func (r *ValidationResult) ToError() error {
	if r.Valid() {
		return nil
	}

	errs := r.Errors()
	msg := errs[0].Message
	if len(errs) > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", len(errs))
	}

	return NewError(ErrCodeValidation, msg).
		WithDetails(map[string]any{
			"error_count":   r.ErrorCount,
			"warning_count": r.WarningCount,
			"issues":        r.Issues,
		})
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
