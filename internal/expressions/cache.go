package expressions

import (
	"sync"

	"github.com/rendis/langcanvas/pkg/schema"
)

// programCache memoizes compiled programs by source text. Safe for
// concurrent use; an expression is compiled at most once per cache even when
// several goroutines miss at the same time.
type programCache[P any] struct {
	compile func(string) (P, error)

	mu       sync.RWMutex
	programs map[string]P
}

func newProgramCache[P any](compile func(string) (P, error)) *programCache[P] {
	return &programCache[P]{compile: compile, programs: make(map[string]P)}
}

func (c *programCache[P]) get(expression string) (P, error) {
	c.mu.RLock()
	p, ok := c.programs[expression]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[expression]; ok {
		return p, nil
	}
	p, err := c.compile(expression)
	if err != nil {
		return p, err
	}
	c.programs[expression] = p
	return p, nil
}

func (c *programCache[P]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// expressionError reports a failed compile or evaluation of expression by
// the named engine. stage is "parse", "compile", "evaluation" and so on.
func expressionError(engine, stage, expression string, err error) *schema.CanvasError {
	return schema.NewErrorf(schema.ErrCodeExpression, "%s %s failed for %q: %s", engine, stage, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression, "engine": engine})
}

func emptyExpression(engine string) *schema.CanvasError {
	return schema.NewErrorf(schema.ErrCodeExpression, "empty %s expression", engine)
}
