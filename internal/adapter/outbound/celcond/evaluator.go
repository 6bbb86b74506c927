// Package celcond provides the CEL-based route condition evaluator. Route
// conditions may carry an optional expression over the actor context; the
// evaluator compiles each expression once and evaluates it per request under
// a cost budget.
package celcond

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/cabinet-platform/kernel/internal/domain/authz"
	"github.com/cabinet-platform/kernel/internal/domain/routing"
)

// maxExpressionLength caps condition expressions at load.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit, bounding evaluation work per
// request.
const maxCostBudget = 100_000

// maxNestingDepth caps parenthesis/bracket nesting in an expression.
const maxNestingDepth = 50

// Evaluator compiles and evaluates route condition expressions.
type Evaluator struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator whose environment exposes the actor
// context: actor_id, actor_type, role, and scopes.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("actor_id", cel.StringType),
		cel.Variable("actor_type", cel.StringType),
		cel.Variable("role", cel.StringType),
		cel.Variable("scopes", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create condition environment: %w", err)
	}
	return &Evaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Precompile compiles every condition expression in the graph so malformed
// policies fail at boot instead of at request time.
func (e *Evaluator) Precompile(graph *routing.Graph) error {
	for i := range graph.Routes {
		route := &graph.Routes[i]
		if route.Conditions == nil || route.Conditions.Expression == "" {
			continue
		}
		if _, err := e.compile(route.Conditions.Expression); err != nil {
			return fmt.Errorf("route %q: %w", route.ID, err)
		}
	}
	return nil
}

// Evaluate runs expression against the actor context and returns the boolean
// outcome. Non-boolean results are errors.
func (e *Evaluator) Evaluate(expression string, ctx *authz.Context) (bool, error) {
	prg, err := e.compile(expression)
	if err != nil {
		return false, err
	}

	scopes := make([]string, len(ctx.Scopes))
	copy(scopes, ctx.Scopes)

	out, _, err := prg.Eval(map[string]any{
		"actor_id":   ctx.ActorID,
		"actor_type": ctx.ActorType,
		"role":       ctx.Role,
		"scopes":     scopes,
	})
	if err != nil {
		return false, fmt.Errorf("condition evaluation failed: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("condition expression did not produce a boolean")
	}
	return result, nil
}

// compile returns the cached program for expression, compiling on first use.
func (e *Evaluator) compile(expression string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("expression exceeds %d characters", maxExpressionLength)
	}
	if err := validateNesting(expression); err != nil {
		return nil, err
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	compiled, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	e.mu.Lock()
	e.programs[expression] = compiled
	e.mu.Unlock()
	return compiled, nil
}

// validateNesting bounds parenthesis, bracket, and brace nesting depth.
func validateNesting(expr string) error {
	depth := 0
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxNestingDepth {
				return fmt.Errorf("expression nesting exceeds depth %d", maxNestingDepth)
			}
		case ')', ']', '}':
			depth--
		}
	}
	return nil
}

var _ routing.ConditionEvaluator = (*Evaluator)(nil)
