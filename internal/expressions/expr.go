package expressions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngine compiles and evaluates loop termination conditions. A condition
// sees the loop state, the iteration counter and max_iterations as top-level
// variables; undefined names are allowed because the state shape is only
// known at run time.
type ExprEngine struct {
	programs *programCache[*vm.Program]
}

func NewExprEngine() *ExprEngine {
	return &ExprEngine{programs: newProgramCache(compileExpr)}
}

func (e *ExprEngine) Name() string { return "expr" }

func (e *ExprEngine) Compile(expression string) error {
	if expression == "" {
		return emptyExpression("expr")
	}
	_, err := e.programs.get(expression)
	return err
}

// Evaluate runs expression with data as its environment. A nil map behaves
// like an empty one.
func (e *ExprEngine) Evaluate(_ context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyExpression("expr")
	}
	prg, err := e.programs.get(expression)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	out, err := vm.Run(prg, data)
	if err != nil {
		return nil, expressionError("expr", "evaluation", expression, err)
	}
	return out, nil
}

func compileExpr(expression string) (*vm.Program, error) {
	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, expressionError("expr", "compile", expression, err)
	}
	return prg, nil
}

var _ Engine = (*ExprEngine)(nil)
