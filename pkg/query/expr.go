// ABOUTME: CEL expression filter over annotations
// ABOUTME: Compiled programs are cached per expression

package query

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Evaluator evaluates boolean CEL expressions against an annotation bound to "a"
type Evaluator struct {
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new expression evaluator with caching
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]cel.Program),
	}
}

// Compile checks an expression and caches its program
func (e *Evaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

// Match evaluates expr for one annotation
func (e *Evaluator) Match(expr string, a *annotation.Annotation) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"a": activation(a),
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}
	return result, nil
}

// CacheSize returns the number of cached expressions
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, exists := e.cache[expr]
	e.mu.RUnlock()
	if exists {
		return prg, nil
	}

	prg, err := compileCEL(expr)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

func compileCEL(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("a", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return prg, nil
}

// activation flattens an annotation into the CEL variable shape
func activation(a *annotation.Annotation) map[string]any {
	labels := make([]any, len(a.Labels))
	for i, l := range a.Labels {
		labels[i] = l
	}

	return map[string]any{
		"id":        a.ID,
		"text":      a.Text,
		"author":    a.AuthorName,
		"role":      string(a.AuthorRole),
		"type":      string(a.CommentType),
		"status":    string(a.Status),
		"assignee":  a.AssigneeName(),
		"labels":    labels,
		"timestamp": a.SortTime(),
		"general":   a.Timestamp == nil,
		"regions":   int64(len(a.Regions)),
		"internal":  a.IsInternal,
		"due":       a.DueDate != nil,
	}
}
