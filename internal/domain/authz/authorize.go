package authz

import (
	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

// Authorize decides whether the actor in ctx may invoke capability. Three
// gates apply in order: the role must exist, the role must carry the
// capability, and the capability's requirement entry must be satisfied. A
// capability with no requirement entry is denied: absence is never an
// allowance.
func Authorize(
	ctx *Context,
	capability string,
	roles map[string]Role,
	requirements map[string]CapabilityRequirement,
) error {
	role, ok := roles[ctx.Role]
	if !ok {
		return ipc.NewError(ipc.CodeUnknownRole, "unknown role %q", ctx.Role)
	}

	if !role.HasCapability(capability) {
		return ipc.NewError(ipc.CodePermissionDenied,
			"role %q does not have capability %q", ctx.Role, capability)
	}

	req, ok := requirements[capability]
	if !ok {
		return ipc.NewError(ipc.CodePermissionDenied,
			"capability %q has no policy entry", capability)
	}

	if len(req.RequiredRoles) > 0 && !contains(req.RequiredRoles, ctx.Role) {
		return ipc.NewError(ipc.CodePermissionDenied,
			"role %q not authorized for capability %q", ctx.Role, capability)
	}

	for _, scope := range req.RequiredScopes {
		if !ctx.HasScope(scope) {
			return ipc.NewError(ipc.CodePermissionDenied,
				"missing required scope %q for capability %q", scope, capability)
		}
	}

	return nil
}

// ExtractContext pulls the actor context out of a command payload. The first
// element of actor.roles becomes the effective role; scopes default to empty.
func ExtractContext(command map[string]any) (*Context, error) {
	contextObj := ipc.ObjectField(command, "context")
	if contextObj == nil {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "missing context field in command")
	}
	actor := ipc.ObjectField(contextObj, "actor")
	if actor == nil {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "missing actor in context")
	}

	actorID := ipc.StringField(actor, "id")
	if actorID == "" {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "missing or invalid actor.id")
	}
	actorType := ipc.StringField(actor, "type")
	if actorType == "" {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "missing or invalid actor.type")
	}

	rolesVal, ok := actor["roles"].([]any)
	if !ok {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "missing or invalid actor.roles")
	}
	role := ""
	if len(rolesVal) > 0 {
		role, _ = rolesVal[0].(string)
	}
	if role == "" {
		return nil, ipc.NewError(ipc.CodeInvalidCommand, "no roles specified for actor")
	}

	var scopes []string
	if scopesVal, ok := actor["scopes"].([]any); ok {
		for _, s := range scopesVal {
			if str, ok := s.(string); ok {
				scopes = append(scopes, str)
			}
		}
	}

	return &Context{
		ActorID:   actorID,
		ActorType: actorType,
		Role:      role,
		Scopes:    scopes,
	}, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
