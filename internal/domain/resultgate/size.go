package resultgate

import (
	"github.com/cabinet-platform/kernel/internal/domain/ipc"
	"github.com/cabinet-platform/kernel/pkg/canonical"
)

// CheckSizeLimits enforces the profile's size caps on a (redacted) result:
// total serialized bytes, every array length, and every string length.
// TruncateOnOverflow is reserved; overflow always rejects.
func CheckSizeLimits(result map[string]any, profile *Profile) error {
	serialized, err := canonical.Encode(result)
	if err != nil {
		return ipc.NewError(ipc.CodeInternal, "result is not serializable")
	}
	if int64(len(serialized)) > profile.MaxResponseSizeBytes {
		return ipc.NewError(ipc.CodeResultTooLarge,
			"result size %d bytes exceeds limit %d bytes", len(serialized), profile.MaxResponseSizeBytes)
	}
	return checkValueLimits(result, profile)
}

func checkValueLimits(v any, profile *Profile) error {
	switch val := v.(type) {
	case map[string]any:
		for _, item := range val {
			if err := checkValueLimits(item, profile); err != nil {
				return err
			}
		}
	case []any:
		if len(val) > profile.MaxArrayLength {
			return ipc.NewError(ipc.CodeResultTooLarge,
				"array length %d exceeds limit %d", len(val), profile.MaxArrayLength)
		}
		for _, item := range val {
			if err := checkValueLimits(item, profile); err != nil {
				return err
			}
		}
	case string:
		if len(val) > profile.MaxStringLength {
			return ipc.NewError(ipc.CodeResultTooLarge,
				"string length %d exceeds limit %d", len(val), profile.MaxStringLength)
		}
	}
	return nil
}
