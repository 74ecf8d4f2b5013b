package expressions

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Routing conditions may reference these maps plus the integer iteration.
var celVariables = []string{"state", "output", "node"}

// CELEngine checks and evaluates the routing conditions of conditional edges.
// Variables visible to a condition:
//   - state:     map(string, dyn), workflow state at the routing node
//   - output:    map(string, dyn), output of the routing node's function
//   - node:      map(string, dyn), routing node metadata (id, label, type)
//   - iteration: int, loop iteration counter of the edge
type CELEngine struct {
	env      *cel.Env
	programs *programCache[cel.Program]
}

// NewCELEngine builds the routing environment.
func NewCELEngine() (*CELEngine, error) {
	opts := make([]cel.EnvOption, 0, len(celVariables)+1)
	for _, name := range celVariables {
		opts = append(opts, cel.Variable(name, cel.MapType(cel.StringType, cel.DynType)))
	}
	opts = append(opts, cel.Variable("iteration", cel.IntType))

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	e := &CELEngine{env: env}
	e.programs = newProgramCache(e.build)
	return e, nil
}

func (e *CELEngine) Name() string { return "cel" }

// Compile type-checks expression against the routing variables.
func (e *CELEngine) Compile(expression string) error {
	if expression == "" {
		return emptyExpression("CEL")
	}
	_, err := e.programs.get(expression)
	return err
}

func (e *CELEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyExpression("CEL")
	}
	prg, err := e.programs.get(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.ContextEval(ctx, activation(data))
	if err != nil {
		return nil, expressionError("CEL", "evaluation", expression, err)
	}
	return out.Value(), nil
}

func (e *CELEngine) build(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if err := issues.Err(); err != nil {
		return nil, expressionError("CEL", "compile", expression, err)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, expressionError("CEL", "program", expression, err)
	}
	return prg, nil
}

// activation fills absent routing maps with empty ones and coerces iteration
// to int64 so conditions never hit a nil reference.
func activation(data map[string]any) map[string]any {
	vars := make(map[string]any, len(celVariables)+1)
	for _, key := range celVariables {
		v, ok := data[key]
		if !ok || v == nil {
			v = map[string]any{}
		}
		vars[key] = v
	}

	vars["iteration"] = int64(0)
	switch n := data["iteration"].(type) {
	case int:
		vars["iteration"] = int64(n)
	case int64:
		vars["iteration"] = n
	case float64:
		vars["iteration"] = int64(n)
	}
	return vars
}

var _ Engine = (*CELEngine)(nil)
