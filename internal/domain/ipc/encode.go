package ipc

import (
	"time"

	"github.com/cabinet-platform/kernel/pkg/canonical"
	"github.com/cabinet-platform/kernel/pkg/primitives"
)

// Encoder builds outbound envelopes and serializes them canonically. The
// clock and ID source are injectable for deterministic tests; both must be
// set, and NewEncoder sets them to real time and random UUIDs.
type Encoder struct {
	Now   func() time.Time
	NewID func() string
}

// NewEncoder returns an Encoder using the system clock and random v4 IDs.
func NewEncoder() *Encoder {
	return &Encoder{
		Now:   time.Now,
		NewID: primitives.NewUUID,
	}
}

func (e *Encoder) timestamp() string {
	return e.Now().UTC().Format(time.RFC3339Nano)
}

// Result builds a result envelope around data and returns its canonical
// encoding. The payload always carries execution_time_ms and cached=false in
// its metadata.
func (e *Encoder) Result(correlationID string, data any, executionTimeMS int64) (string, error) {
	envelope := map[string]any{
		FieldVersion:       KernelVersion,
		FieldMessageID:     e.NewID(),
		FieldCorrelationID: correlationID,
		FieldTimestamp:     e.timestamp(),
		FieldMessageType:   string(MessageTypeResult),
		FieldPayload: map[string]any{
			"status": string(ResultStatusSuccess),
			"data":   data,
			"metadata": map[string]any{
				"execution_time_ms": executionTimeMS,
				"cached":            false,
			},
		},
	}
	return canonical.Encode(envelope)
}

// Error builds an error envelope and returns its canonical encoding. The
// correlation ID is omitted when unknown. Errors are never retryable.
func (e *Encoder) Error(correlationID string, code Code, message string, severity Severity) (string, error) {
	envelope := map[string]any{
		FieldVersion:     KernelVersion,
		FieldMessageID:   e.NewID(),
		FieldTimestamp:   e.timestamp(),
		FieldMessageType: string(MessageTypeError),
		FieldPayload: map[string]any{
			"error_code": string(code),
			"message":    message,
			"severity":   string(severity),
			"retry": map[string]any{
				"retryable": false,
			},
		},
	}
	if correlationID != "" {
		envelope[FieldCorrelationID] = correlationID
	}
	return canonical.Encode(envelope)
}
