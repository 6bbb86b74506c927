package ipc

import (
	"strings"

	"github.com/cabinet-platform/kernel/pkg/canonical"
)

// MaxMessageBytes caps the size of a single inbound message before parsing.
const MaxMessageBytes = 10 * 1024 * 1024

// DecodeMessage parses raw bytes into an envelope object. Oversized, empty or
// malformed input maps to INVALID_JSON; a well-formed document that is not an
// object maps to INVALID_ENVELOPE. Parser internals never leak into the error
// message.
func DecodeMessage(data []byte) (map[string]any, error) {
	if len(data) > MaxMessageBytes {
		return nil, NewError(CodeInvalidJSON, "input exceeds maximum size")
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, NewError(CodeInvalidJSON, "empty input")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, NewError(CodeInvalidJSON, "input is not a JSON document")
	}

	v, err := canonical.Decode([]byte(trimmed))
	if err != nil {
		return nil, NewError(CodeInvalidJSON, "malformed JSON")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, NewError(CodeInvalidEnvelope, "envelope must be a JSON object")
	}
	return obj, nil
}

// ValidateBasicStructure checks that every required envelope field is
// present before field-level validation runs.
func ValidateBasicStructure(envelope map[string]any) error {
	for _, field := range []string{FieldVersion, FieldMessageID, FieldTimestamp, FieldMessageType, FieldPayload} {
		if _, ok := envelope[field]; !ok {
			return NewError(CodeInvalidEnvelope, "missing required field: %s", field)
		}
	}
	return nil
}
