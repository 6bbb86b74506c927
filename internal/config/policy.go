package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cabinet-platform/kernel/internal/domain/authz"
	"github.com/cabinet-platform/kernel/internal/domain/resultgate"
	"github.com/cabinet-platform/kernel/internal/domain/routing"
	"github.com/cabinet-platform/kernel/internal/domain/sandbox"
)

// denyByDefault is the only accepted policy tag. Every policy file must
// declare it explicitly; silence is rejection.
const denyByDefault = "deny_by_default"

// PolicySnapshot is the immutable policy state shared by every request after
// kernel construction.
type PolicySnapshot struct {
	Roles        map[string]authz.Role
	Requirements map[string]authz.CapabilityRequirement
	Graph        *routing.Graph
	Limits       *sandbox.LimitsPolicy
	Profiles     *resultgate.ProfilesPolicy
	Resolver     *routing.EndpointResolver
}

// policyHeader is the tag block shared by all policy files.
type policyHeader struct {
	Version string `yaml:"version"`
	Policy  string `yaml:"policy"`
}

func (h *policyHeader) check(file string) error {
	if h.Policy != denyByDefault {
		return fmt.Errorf("%s: policy must be %q", file, denyByDefault)
	}
	return nil
}

type accessPolicy struct {
	policyHeader           `yaml:",inline"`
	Roles                  map[string]authz.Role                  `yaml:"roles"`
	CapabilityRequirements map[string]authz.CapabilityRequirement `yaml:"capability_requirements"`
}

type routingPolicy struct {
	policyHeader        `yaml:",inline"`
	Routes              []routing.Route     `yaml:"routes"`
	CapabilityChains    map[string][]string `yaml:"capability_chains"`
	CapabilityEndpoints map[string]string   `yaml:"capability_endpoints"`
}

type limitsPolicy struct {
	policyHeader `yaml:",inline"`
	Defaults     sandbox.ModuleLimits            `yaml:"defaults"`
	ModuleLimits map[string]sandbox.ModuleLimits `yaml:"module_limits"`
	Filesystem   sandbox.FilesystemConfig        `yaml:"filesystem"`
}

type profilesPolicy struct {
	policyHeader `yaml:",inline"`
	Profiles     map[string]resultgate.Profile `yaml:"profiles"`
	UIProfiles   map[string]string             `yaml:"ui_profiles"`
	Redaction    *resultgate.RedactionConfig   `yaml:"redaction"`
}

// manifestFile mirrors the on-disk manifest layout with its nested module
// block.
type manifestFile struct {
	Module struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"module"`
	Capabilities []routing.CapabilityDef `yaml:"capabilities"`
	Endpoints    routing.Endpoints       `yaml:"endpoints"`
}

// LoadPolicies reads every policy file named by cfg once and builds the
// immutable snapshot. Any structural fault, missing deny-by-default tag, or
// malformed wildcard pattern fails the whole load.
func LoadPolicies(cfg *KernelConfig) (*PolicySnapshot, error) {
	access, err := loadAccessPolicy(cfg.Policy.AccessFile)
	if err != nil {
		return nil, err
	}

	routes, err := loadRoutingPolicy(cfg.Policy.RoutingFile)
	if err != nil {
		return nil, err
	}

	limits, err := loadLimitsPolicy(cfg.Policy.LimitsFile)
	if err != nil {
		return nil, err
	}

	profiles, err := loadProfilesPolicy(cfg.Policy.ProfilesFile)
	if err != nil {
		return nil, err
	}

	manifests, err := loadManifests(cfg.Policy.ManifestsDir)
	if err != nil {
		return nil, err
	}

	return &PolicySnapshot{
		Roles:        access.Roles,
		Requirements: access.CapabilityRequirements,
		Graph: &routing.Graph{
			Routes: routes.Routes,
			Chains: routes.CapabilityChains,
		},
		Limits: &sandbox.LimitsPolicy{
			Defaults:     limits.Defaults,
			ModuleLimits: limits.ModuleLimits,
			Filesystem:   limits.Filesystem,
		},
		Profiles: &resultgate.ProfilesPolicy{
			Profiles:   profiles.Profiles,
			UIProfiles: profiles.UIProfiles,
			Redaction:  profiles.Redaction,
		},
		Resolver: routing.NewEndpointResolver(routes.CapabilityEndpoints, manifests),
	}, nil
}

func loadAccessPolicy(file string) (*accessPolicy, error) {
	var policy accessPolicy
	if err := readYAML(file, &policy); err != nil {
		return nil, err
	}
	if err := policy.check(file); err != nil {
		return nil, err
	}
	if len(policy.Roles) == 0 {
		return nil, fmt.Errorf("%s: no roles defined", file)
	}
	for name, role := range policy.Roles {
		for _, pattern := range role.Capabilities {
			if err := ValidateWildcardPattern(pattern); err != nil {
				return nil, fmt.Errorf("%s: role %q: %w", file, name, err)
			}
		}
	}
	return &policy, nil
}

func loadRoutingPolicy(file string) (*routingPolicy, error) {
	var policy routingPolicy
	if err := readYAML(file, &policy); err != nil {
		return nil, err
	}
	if err := policy.check(file); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(policy.Routes))
	for _, route := range policy.Routes {
		if route.ID == "" {
			return nil, fmt.Errorf("%s: route without id", file)
		}
		if _, dup := seen[route.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate route id %q", file, route.ID)
		}
		seen[route.ID] = struct{}{}

		if !route.From.Type.Valid() || !route.To.Type.Valid() {
			return nil, fmt.Errorf("%s: route %q has an invalid node type", file, route.ID)
		}
		for _, pattern := range route.AllowedCapabilities {
			if err := ValidateWildcardPattern(pattern); err != nil {
				return nil, fmt.Errorf("%s: route %q: %w", file, route.ID, err)
			}
		}
	}
	return &policy, nil
}

func loadLimitsPolicy(file string) (*limitsPolicy, error) {
	var policy limitsPolicy
	if err := readYAML(file, &policy); err != nil {
		return nil, err
	}
	if err := policy.check(file); err != nil {
		return nil, err
	}
	if policy.Defaults.TimeoutMS <= 0 {
		return nil, fmt.Errorf("%s: defaults.timeout_ms must be positive", file)
	}
	if policy.Defaults.MaxInputBytes <= 0 || policy.Defaults.MaxOutputBytes <= 0 {
		return nil, fmt.Errorf("%s: defaults must bound input and output size", file)
	}
	return &policy, nil
}

func loadProfilesPolicy(file string) (*profilesPolicy, error) {
	var policy profilesPolicy
	if err := readYAML(file, &policy); err != nil {
		return nil, err
	}
	if err := policy.check(file); err != nil {
		return nil, err
	}
	for uiID, profileID := range policy.UIProfiles {
		if _, ok := policy.Profiles[profileID]; !ok {
			return nil, fmt.Errorf("%s: ui %q references unknown profile %q", file, uiID, profileID)
		}
	}
	return &policy, nil
}

// loadManifests reads <dir>/<module-id>/manifest.yaml for every module
// directory present.
func loadManifests(dir string) (map[string]routing.Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifests directory: %w", err)
	}

	manifests := make(map[string]routing.Manifest)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		file := filepath.Join(dir, entry.Name(), "manifest.yaml")
		var mf manifestFile
		if err := readYAML(file, &mf); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if mf.Module.ID == "" {
			return nil, fmt.Errorf("%s: manifest without module id", file)
		}
		if mf.Module.ID != entry.Name() {
			return nil, fmt.Errorf("%s: module id %q does not match directory %q", file, mf.Module.ID, entry.Name())
		}
		manifests[mf.Module.ID] = routing.Manifest{
			ID:           mf.Module.ID,
			Name:         mf.Module.Name,
			Capabilities: mf.Capabilities,
			Endpoints:    mf.Endpoints,
		}
	}
	return manifests, nil
}

func readYAML(file string, out any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("policy file %s: %w", file, os.ErrNotExist)
		}
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}
