package resultgate

// Entity types detected from object field patterns. Detection is
// first-match-wins over an unambiguous pattern list.
const (
	entityListing = "listing"
	entityImport  = "import"
	entityUser    = "user"
)

// ApplyProfile filters result.data through the profile's allowed-field sets.
// Objects of a detected entity type retain only their allowed fields; arrays
// are filtered element-wise; everything else passes through. The input is
// not mutated.
func ApplyProfile(result map[string]any, profile *Profile) map[string]any {
	out := make(map[string]any, len(result))
	for k, v := range result {
		out[k] = v
	}
	if data, ok := out["data"]; ok {
		out["data"] = redactValue(data, profile)
	}
	return out
}

func redactValue(v any, profile *Profile) any {
	switch val := v.(type) {
	case map[string]any:
		entityType := detectEntityType(val)
		if entityType == "" {
			return val
		}
		allowed, ok := profile.AllowedFields[entityType]
		if !ok {
			return val
		}
		allowedSet := make(map[string]struct{}, len(allowed))
		for _, f := range allowed {
			allowedSet[f] = struct{}{}
		}
		filtered := make(map[string]any)
		for k, field := range val {
			if _, keep := allowedSet[k]; keep {
				filtered[k] = field
			}
		}
		return filtered
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item, profile)
		}
		return out
	default:
		return v
	}
}

// detectEntityType classifies an object by its field pattern. Returns ""
// when no pattern matches; such objects pass redaction unmodified.
func detectEntityType(obj map[string]any) string {
	if hasKeys(obj, "brand", "model") {
		return entityListing
	}
	if hasKeys(obj, "import_id") {
		return entityImport
	}
	if hasKeys(obj, "email", "role") {
		return entityUser
	}
	return ""
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}
