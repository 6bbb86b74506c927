package ipc

import "strings"

// ValidateEnvelope checks the envelope's field types, version family, message
// ID shape, timestamp form, and message type. This is the single canonical
// point for version-negotiation rejection: any version outside the v1 family
// fails here with INVALID_ENVELOPE.
func ValidateEnvelope(envelope map[string]any) error {
	if err := ValidateBasicStructure(envelope); err != nil {
		return err
	}

	version := StringField(envelope, FieldVersion)
	if !strings.HasPrefix(version, "v1.") {
		return NewError(CodeInvalidEnvelope, "unsupported version")
	}

	if err := validateMessageID(StringField(envelope, FieldMessageID)); err != nil {
		return err
	}

	if !MessageType(StringField(envelope, FieldMessageType)).Valid() {
		return NewError(CodeInvalidEnvelope, "invalid message_type")
	}

	timestamp := StringField(envelope, FieldTimestamp)
	if !strings.Contains(timestamp, "T") {
		return NewError(CodeInvalidEnvelope, "timestamp is not an ISO-8601 instant")
	}

	return nil
}

// validateMessageID checks the 36-character, 5-group UUID shape. Group
// lengths, hex digits and the version nibble are not checked.
func validateMessageID(id string) error {
	if len(id) != 36 {
		return NewError(CodeInvalidEnvelope, "message_id must be 36 characters")
	}
	if len(strings.Split(id, "-")) != 5 {
		return NewError(CodeInvalidEnvelope, "message_id must have 5 hyphen-separated groups")
	}
	return nil
}

// ValidateCommand checks a command payload: command_type enum, target
// presence, and dotted capability form.
func ValidateCommand(command map[string]any) error {
	if command == nil {
		return NewError(CodeInvalidCommand, "payload must be an object")
	}
	if _, ok := command["command_type"]; !ok {
		return NewError(CodeInvalidCommand, "missing required field: command_type")
	}
	if !CommandType(StringField(command, "command_type")).Valid() {
		return NewError(CodeInvalidCommand, "invalid command_type")
	}

	target := ObjectField(command, "target")
	if target == nil {
		return NewError(CodeInvalidCommand, "missing required field: target")
	}
	capability := StringField(target, "capability")
	if capability == "" {
		return NewError(CodeInvalidCommand, "missing required field: target.capability")
	}
	if !strings.Contains(capability, ".") {
		return NewError(CodeInvalidCommand, "capability must be in dot notation")
	}

	return nil
}

// ValidateResult checks a result payload's status and data presence.
func ValidateResult(result map[string]any) error {
	if result == nil {
		return NewError(CodeInvalidResult, "result must be an object")
	}
	if _, ok := result["status"]; !ok {
		return NewError(CodeInvalidResult, "missing required field: status")
	}
	if _, ok := result["data"]; !ok {
		return NewError(CodeInvalidResult, "missing required field: data")
	}
	if !ResultStatus(StringField(result, "status")).Valid() {
		return NewError(CodeInvalidResult, "invalid status")
	}
	return nil
}

// ValidateError checks an error payload's required fields and severity enum.
func ValidateError(payload map[string]any) error {
	if payload == nil {
		return NewError(CodeInvalidEnvelope, "error payload must be an object")
	}
	for _, field := range []string{"error_code", "message", "severity"} {
		if _, ok := payload[field]; !ok {
			return NewError(CodeInvalidEnvelope, "missing required field: %s", field)
		}
	}
	if !Severity(StringField(payload, "severity")).Valid() {
		return NewError(CodeInvalidEnvelope, "invalid severity")
	}
	return nil
}
