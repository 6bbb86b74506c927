package routing

import (
	"github.com/cabinet-platform/kernel/internal/domain/authz"
	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

// AuthorizeRoute decides whether capability may traverse the edge from→to
// for the given actor. Candidates are evaluated in declaration order and the
// first route whose conditions pass wins. When parentCapability is non-empty
// the call is a nested one and the capability chain whitelist must allow it.
// eval may be nil when no route carries a condition expression.
func AuthorizeRoute(
	graph *Graph,
	from, to Node,
	capability string,
	ctx *authz.Context,
	parentCapability string,
	eval ConditionEvaluator,
) error {
	candidates := graph.FindRoutes(from, to, capability)
	if len(candidates) == 0 {
		return ipc.NewError(ipc.CodeRoutingDenied,
			"no route from %s:%s to %s:%s for capability %q",
			from.Type, from.ID, to.Type, to.ID, capability)
	}

	for _, route := range candidates {
		ok, err := conditionsPass(route, ctx, eval)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if parentCapability != "" && !graph.ChainAllowed(parentCapability, capability) {
			return ipc.NewError(ipc.CodeRoutingDenied,
				"capability chain %q -> %q not allowed", parentCapability, capability)
		}
		return nil
	}

	return ipc.NewError(ipc.CodeRoutingDenied, "route conditions not satisfied")
}

func conditionsPass(route *Route, ctx *authz.Context, eval ConditionEvaluator) (bool, error) {
	cond := route.Conditions
	if cond == nil {
		return true, nil
	}

	if len(cond.AllowedRoles) > 0 {
		found := false
		for _, role := range cond.AllowedRoles {
			if role == ctx.Role {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}

	for _, scope := range cond.RequiredScopes {
		if !ctx.HasScope(scope) {
			return false, nil
		}
	}

	if cond.Expression != "" {
		if eval == nil {
			return false, ipc.NewError(ipc.CodeInternal,
				"route %q has a condition expression but no evaluator is wired", route.ID)
		}
		ok, err := eval.Evaluate(cond.Expression, ctx)
		if err != nil {
			return false, ipc.NewError(ipc.CodeRoutingDenied,
				"condition evaluation failed for route %q", route.ID)
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}
