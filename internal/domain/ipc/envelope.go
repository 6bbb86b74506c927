package ipc

// KernelVersion is the protocol version stamped on every outbound envelope.
const KernelVersion = "v1.0.0"

// MessageType discriminates envelope payloads.
type MessageType string

// Envelope message types accepted on the wire.
const (
	MessageTypeCommand            MessageType = "command"
	MessageTypeResult             MessageType = "result"
	MessageTypeError              MessageType = "error"
	MessageTypeCapabilityQuery    MessageType = "capability_query"
	MessageTypeCapabilityResponse MessageType = "capability_response"
)

// Valid reports whether t is one of the enumerated message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeCommand, MessageTypeResult, MessageTypeError,
		MessageTypeCapabilityQuery, MessageTypeCapabilityResponse:
		return true
	}
	return false
}

// CommandType discriminates command payloads.
type CommandType string

// Command types accepted in a command payload.
const (
	CommandTypeInvoke      CommandType = "invoke"
	CommandTypeQuery       CommandType = "query"
	CommandTypeSubscribe   CommandType = "subscribe"
	CommandTypeUnsubscribe CommandType = "unsubscribe"
)

// Valid reports whether t is one of the enumerated command types.
func (t CommandType) Valid() bool {
	switch t {
	case CommandTypeInvoke, CommandTypeQuery, CommandTypeSubscribe, CommandTypeUnsubscribe:
		return true
	}
	return false
}

// ResultStatus discriminates result payloads.
type ResultStatus string

// Result statuses accepted from modules.
const (
	ResultStatusSuccess        ResultStatus = "success"
	ResultStatusPartialSuccess ResultStatus = "partial_success"
)

// Valid reports whether s is one of the enumerated result statuses.
func (s ResultStatus) Valid() bool {
	return s == ResultStatusSuccess || s == ResultStatusPartialSuccess
}

// Envelope field names shared by the validator and the encoder.
const (
	FieldVersion       = "version"
	FieldMessageID     = "message_id"
	FieldTimestamp     = "timestamp"
	FieldMessageType   = "message_type"
	FieldPayload       = "payload"
	FieldCorrelationID = "correlation_id"
)

// StringField returns the named string field of a decoded JSON object, or ""
// when the field is absent or not a string.
func StringField(obj map[string]any, field string) string {
	s, _ := obj[field].(string)
	return s
}

// ObjectField returns the named object field of a decoded JSON object, or nil
// when the field is absent or not an object.
func ObjectField(obj map[string]any, field string) map[string]any {
	m, _ := obj[field].(map[string]any)
	return m
}
