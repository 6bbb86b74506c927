package resultgate

import "github.com/cabinet-platform/kernel/internal/domain/ipc"

// ValidateShape enforces the closed result schema. The top object accepts
// only status, data, metadata, and links; anything else is INVALID_RESULT.
func ValidateShape(result map[string]any) error {
	if result == nil {
		return ipc.NewError(ipc.CodeInvalidResult, "result must be a JSON object")
	}

	if err := ipc.ValidateResult(result); err != nil {
		return err
	}

	if metadata, ok := result["metadata"]; ok {
		if err := validateMetadata(metadata); err != nil {
			return err
		}
	}
	if links, ok := result["links"]; ok {
		if err := validateLinks(links); err != nil {
			return err
		}
	}

	for key := range result {
		switch key {
		case "status", "data", "metadata", "links":
		default:
			return ipc.NewError(ipc.CodeInvalidResult, "unknown field in result: %q", key)
		}
	}
	return nil
}

func validateMetadata(v any) error {
	metadata, ok := v.(map[string]any)
	if !ok {
		return ipc.NewError(ipc.CodeInvalidResult, "metadata must be an object")
	}

	if execTime, ok := metadata["execution_time_ms"]; ok && !isNumber(execTime) {
		return ipc.NewError(ipc.CodeInvalidResult, "execution_time_ms must be a number")
	}
	if cached, ok := metadata["cached"]; ok {
		if _, isBool := cached.(bool); !isBool {
			return ipc.NewError(ipc.CodeInvalidResult, "cached must be a boolean")
		}
	}
	if warnings, ok := metadata["warnings"]; ok {
		arr, isArr := warnings.([]any)
		if !isArr {
			return ipc.NewError(ipc.CodeInvalidResult, "warnings must be an array")
		}
		for _, w := range arr {
			warning, isObj := w.(map[string]any)
			if !isObj {
				return ipc.NewError(ipc.CodeInvalidResult, "warning must be an object")
			}
			for _, field := range []string{"code", "message"} {
				if _, present := warning[field]; !present {
					return ipc.NewError(ipc.CodeInvalidResult, "warning missing required field: %s", field)
				}
			}
		}
	}
	return nil
}

func validateLinks(v any) error {
	links, ok := v.(map[string]any)
	if !ok {
		return ipc.NewError(ipc.CodeInvalidResult, "links must be an object")
	}
	for _, link := range links {
		linkObj, isObj := link.(map[string]any)
		if !isObj {
			return ipc.NewError(ipc.CodeInvalidResult, "each link must be an object")
		}
		if _, present := linkObj["href"]; !present {
			return ipc.NewError(ipc.CodeInvalidResult, "link missing required field: href")
		}
	}
	return nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, int, int64, uint64:
		return true
	}
	// canonical.Decode yields json.Number for numeric literals.
	type numberLike interface{ Float64() (float64, error) }
	_, ok := v.(numberLike)
	return ok
}
