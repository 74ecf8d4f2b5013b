package expressions

import "context"

// Engine evaluates expressions attached to canvas edges.
// Three implementations: CEL (conditional routing), Expr (loop termination), GoJQ (workflow queries).
type Engine interface {
	Name() string
	Compile(expression string) error
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// Set bundles the engines the validator needs.
type Set struct {
	Routing     Engine // conditional edge conditions
	Termination Engine // loop termination conditions
}

// NewSet builds the default engine set: CEL for routing, Expr for termination.
func NewSet() (*Set, error) {
	cel, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Set{Routing: cel, Termination: NewExprEngine()}, nil
}
