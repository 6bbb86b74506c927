// Package resultgate contains the outbound result controls: the closed shape
// schema, entity-type-directed field redaction, and recursive size caps.
package resultgate

import "github.com/cabinet-platform/kernel/internal/domain/ipc"

// Profile is one result profile: size caps plus the per-entity-type allowed
// field sets.
type Profile struct {
	Name                 string `yaml:"name"`
	Description          string `yaml:"description"`
	MaxResponseSizeBytes int64  `yaml:"max_response_size_bytes"`
	MaxArrayLength       int    `yaml:"max_array_length"`
	MaxStringLength      int    `yaml:"max_string_length"`
	// TruncateOnOverflow is reserved. The kernel treats overflow as strict
	// rejection regardless of its value.
	TruncateOnOverflow bool `yaml:"truncate_on_overflow"`
	// AllowedFields maps an entity type to the fields that survive
	// redaction. An object of a type with no entry passes unmodified.
	AllowedFields map[string][]string `yaml:"allowed_fields"`
}

// RedactionConfig is the profile policy's redaction block. It is decoded with
// the policy; the result gate does not read it, and field removal follows
// AllowedFields only.
type RedactionConfig struct {
	SensitiveFields  []string `yaml:"sensitive_fields"`
	RedactedMarker   string   `yaml:"redacted_marker"`
	HashIDsForPublic bool     `yaml:"hash_ids_for_public"`
}

// ProfilesPolicy is the result-profiles policy snapshot.
type ProfilesPolicy struct {
	Profiles   map[string]Profile `yaml:"profiles"`
	UIProfiles map[string]string  `yaml:"ui_profiles"`
	Redaction  *RedactionConfig   `yaml:"redaction"`
}

// ProfileForUI resolves the profile serving uiID. A missing mapping is a
// kernel wiring fault, not a request error.
func (p *ProfilesPolicy) ProfileForUI(uiID string) (*Profile, error) {
	profileID, ok := p.UIProfiles[uiID]
	if !ok {
		return nil, ipc.NewError(ipc.CodeInternal, "no profile mapping for UI %q", uiID)
	}
	profile, ok := p.Profiles[profileID]
	if !ok {
		return nil, ipc.NewError(ipc.CodeInternal, "profile %q not found", profileID)
	}
	return &profile, nil
}
