// Package routing contains the allowlist routing domain: the edge graph,
// route conditions, capability chaining, and capability-to-module endpoint
// resolution.
package routing

import (
	"strings"

	"github.com/cabinet-platform/kernel/internal/domain/authz"
)

// NodeType classifies a routing endpoint.
type NodeType string

// Node types accepted in the routing policy.
const (
	NodeTypeUI       NodeType = "ui"
	NodeTypeModule   NodeType = "module"
	NodeTypeRegistry NodeType = "registry"
	NodeTypePlatform NodeType = "platform"
)

// Valid reports whether t is one of the enumerated node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeUI, NodeTypeModule, NodeTypeRegistry, NodeTypePlatform:
		return true
	}
	return false
}

// Node is one endpoint of a route.
type Node struct {
	Type NodeType `yaml:"type"`
	ID   string   `yaml:"id"`
}

// Conditions are the optional per-route gates evaluated against the actor.
type Conditions struct {
	// RequiredScopes must all be present on the actor when set.
	RequiredScopes []string `yaml:"required_scopes"`
	// AllowedRoles must include the actor's role when set.
	AllowedRoles []string `yaml:"allowed_roles"`
	// Expression is an optional CEL expression over the actor context.
	// Compiled at policy load; the route is denied when it evaluates false.
	Expression string `yaml:"expression"`
}

// Route is one allowlisted edge.
type Route struct {
	ID   string `yaml:"id"`
	From Node   `yaml:"from"`
	To   Node   `yaml:"to"`
	// AllowedCapabilities filters which capabilities may traverse the edge.
	// Entries ending in "*" match by prefix. Nil matches any capability.
	AllowedCapabilities []string    `yaml:"allowed_capabilities"`
	Conditions          *Conditions `yaml:"conditions"`
	Enabled             bool        `yaml:"enabled"`
	// Internal routes carry nested module-to-module calls and are never
	// selected for edges originating at a UI.
	Internal bool `yaml:"internal"`
}

// CapabilityMatches reports whether capability may traverse the route,
// honoring trailing-"*" prefixes. A route with no capability list matches
// everything; conditions still apply.
func (r *Route) CapabilityMatches(capability string) bool {
	if r.AllowedCapabilities == nil {
		return true
	}
	for _, pattern := range r.AllowedCapabilities {
		if pattern == capability {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasPrefix(capability, prefix) {
			return true
		}
	}
	return false
}

// ConditionEvaluator evaluates a route's CEL expression against the actor.
// Implemented by the CEL adapter; the domain stays free of the CEL runtime.
type ConditionEvaluator interface {
	Evaluate(expression string, ctx *authz.Context) (bool, error)
}

// Graph is the immutable routing policy snapshot: the route list in
// declaration order plus the capability-chain whitelist.
type Graph struct {
	Routes []Route
	// Chains maps a parent capability to the child capabilities it may
	// invoke through nested calls. A parent with no entry chains nothing.
	Chains map[string][]string
}

// FindRoutes returns the enabled routes whose endpoints exactly match and
// whose capability filter admits capability, in declaration order. Internal
// routes are excluded for UI-originated edges.
func (g *Graph) FindRoutes(from, to Node, capability string) []*Route {
	var matches []*Route
	for i := range g.Routes {
		r := &g.Routes[i]
		if !r.Enabled {
			continue
		}
		if r.Internal && from.Type == NodeTypeUI {
			continue
		}
		if r.From != from || r.To != to {
			continue
		}
		if !r.CapabilityMatches(capability) {
			continue
		}
		matches = append(matches, r)
	}
	return matches
}

// ChainAllowed reports whether parent may invoke child through a nested
// call. Absence of the parent key denies every child.
func (g *Graph) ChainAllowed(parent, child string) bool {
	for _, allowed := range g.Chains[parent] {
		if allowed == child {
			return true
		}
	}
	return false
}
