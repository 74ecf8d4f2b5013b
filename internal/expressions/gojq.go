package expressions

import (
	"context"

	"github.com/itchyny/gojq"
)

// GoJQEngine runs jq queries over exported workflow documents
// (`langcanvas query`). Queries cannot read the process environment.
type GoJQEngine struct {
	programs *programCache[*gojq.Code]
}

func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{programs: newProgramCache(compileJQ)}
}

func (e *GoJQEngine) Name() string { return "jq" }

func (e *GoJQEngine) Compile(expression string) error {
	if expression == "" {
		return emptyExpression("jq")
	}
	_, err := e.programs.get(expression)
	return err
}

// Evaluate returns nil for no output, the value itself for one output and
// a []any for several.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	results, err := e.EvaluateAll(ctx, expression, data)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// EvaluateAll collects every output of the query in order.
func (e *GoJQEngine) EvaluateAll(ctx context.Context, expression string, data map[string]any) ([]any, error) {
	if expression == "" {
		return nil, emptyExpression("jq")
	}
	code, err := e.programs.get(expression)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, jqValue(data))
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := v.(error); isErr {
			return nil, expressionError("jq", "evaluation", expression, err)
		}
		results = append(results, v)
	}
}

func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, expressionError("jq", "parse", expression, err)
	}
	code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, expressionError("jq", "compile", expression, err)
	}
	return code, nil
}

// jqValue rewrites Go values into the shapes gojq walks: numbers become
// float64 and only map[string]any and []any containers are kept.
func jqValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, item := range x {
			m[k] = jqValue(item)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, item := range x {
			s[i] = jqValue(item)
		}
		return s
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}

var _ Engine = (*GoJQEngine)(nil)
