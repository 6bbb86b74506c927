// Package authz contains the capability authorization domain: roles,
// per-capability requirements, and the deny-by-default authorization check.
package authz

import "strings"

// Role is one named role from the access policy.
type Role struct {
	// Description is the human-readable purpose of the role.
	Description string `yaml:"description"`
	// Scopes are the coarse permission strings granted to the role.
	Scopes []string `yaml:"scopes"`
	// Capabilities lists the capabilities the role may invoke. An entry
	// ending in ".*" matches every capability sharing the prefix up to and
	// including the dot. Nil means the role can invoke nothing.
	Capabilities []string `yaml:"capabilities"`
	// RateLimitPerMinute bounds request volume for actors holding the role.
	// Enforcement is external to the kernel pipeline.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	// MaxRequestSizeBytes bounds inbound request size for the role.
	MaxRequestSizeBytes int64 `yaml:"max_request_size_bytes"`
}

// HasScope reports whether the role carries the given scope.
func (r *Role) HasScope(scope string) bool {
	for _, s := range r.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasCapability reports whether the role may invoke capability, honoring
// suffix wildcards ("storage.*" matches "storage.listings.create").
func (r *Role) HasCapability(capability string) bool {
	for _, cap := range r.Capabilities {
		if cap == capability {
			return true
		}
		if suffix, ok := strings.CutSuffix(cap, ".*"); ok && strings.HasPrefix(capability, suffix+".") {
			return true
		}
	}
	return false
}

// CapabilityRequirement is the per-capability gate from the access policy.
// A capability with no requirement entry is denied outright.
type CapabilityRequirement struct {
	// RequiredScopes must all be present on the actor.
	RequiredScopes []string `yaml:"required_scopes"`
	// RequiredRoles must include the actor's effective role when set.
	RequiredRoles []string `yaml:"required_roles"`
}

// Context is the authenticated actor context extracted from a command.
type Context struct {
	// ActorID identifies the requesting actor.
	ActorID string
	// ActorType classifies the actor (user, service, ...).
	ActorType string
	// Role is the actor's effective role: the first element of the roles
	// array on the wire.
	Role string
	// Scopes are the actor's scopes; empty when absent from the command.
	Scopes []string
}

// HasScope reports whether the actor carries the given scope.
func (c *Context) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
