package routing

import (
	"strings"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

// CapabilityDef is one capability a module declares in its manifest.
type CapabilityDef struct {
	ID      string `yaml:"id"`
	Handler string `yaml:"handler"`
}

// Endpoints are a module's wire endpoints from its manifest.
type Endpoints struct {
	Invoke string `yaml:"invoke"`
	Health string `yaml:"health"`
}

// Manifest describes one installed module.
type Manifest struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name"`
	Capabilities []CapabilityDef `yaml:"capabilities"`
	Endpoints    Endpoints       `yaml:"endpoints"`
}

// Declares reports whether the manifest declares capability.
func (m *Manifest) Declares(capability string) bool {
	for _, c := range m.Capabilities {
		if c.ID == capability {
			return true
		}
	}
	return false
}

// EndpointResolver maps capabilities to modules. The prefix table replaces
// hard-coded module heuristics: each entry maps a capability prefix (ending
// in a dot) to a module ID, and lookup picks the longest matching prefix.
type EndpointResolver struct {
	// prefixes in longest-first order so the first match wins.
	prefixes  []prefixEntry
	manifests map[string]Manifest
}

type prefixEntry struct {
	prefix   string
	moduleID string
}

// NewEndpointResolver builds a resolver from the prefix table and the module
// manifests loaded at boot.
func NewEndpointResolver(prefixTable map[string]string, manifests map[string]Manifest) *EndpointResolver {
	entries := make([]prefixEntry, 0, len(prefixTable))
	for prefix, moduleID := range prefixTable {
		entries = append(entries, prefixEntry{prefix: prefix, moduleID: moduleID})
	}
	// Longest prefix first; ties broken lexicographically for determinism.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if len(b.prefix) > len(a.prefix) || (len(b.prefix) == len(a.prefix) && b.prefix < a.prefix) {
				entries[j-1], entries[j] = b, a
			} else {
				break
			}
		}
	}
	return &EndpointResolver{prefixes: entries, manifests: manifests}
}

// Resolve maps capability to its module ID and invoke endpoint. The module's
// manifest must declare the capability.
func (r *EndpointResolver) Resolve(capability string) (moduleID, endpoint string, err error) {
	moduleID = ""
	for _, entry := range r.prefixes {
		if strings.HasPrefix(capability, entry.prefix) {
			moduleID = entry.moduleID
			break
		}
	}
	if moduleID == "" {
		return "", "", ipc.NewError(ipc.CodeRoutingDenied,
			"cannot determine module for capability %q", capability)
	}

	manifest, ok := r.manifests[moduleID]
	if !ok {
		return "", "", ipc.NewError(ipc.CodeRoutingDenied,
			"module %q has no manifest", moduleID)
	}
	if !manifest.Declares(capability) {
		return "", "", ipc.NewError(ipc.CodeRoutingDenied,
			"capability %q not declared by module %q", capability, moduleID)
	}

	return moduleID, manifest.Endpoints.Invoke, nil
}
