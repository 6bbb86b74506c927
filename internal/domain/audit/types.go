// Package audit contains the audit-trail domain: event types, the three
// event factories, and the sanitizer every record passes before emission.
package audit

import "time"

// EventType categorizes an audit event by pipeline stage.
type EventType string

// Event types, one per recorded pipeline decision.
const (
	EventTypeAuthorization EventType = "authorization"
	EventTypeRouting       EventType = "routing"
	EventTypeExecution     EventType = "execution"
)

// Result is the outcome recorded on an event.
type Result string

// Event results.
const (
	ResultAllowed Result = "allowed"
	ResultDenied  Result = "denied"
	ResultSuccess Result = "success"
	ResultError   Result = "error"
)

// Metadata carries the optional, stage-specific event facts.
type Metadata struct {
	FromType        string `json:"from_type,omitempty"`
	FromID          string `json:"from_id,omitempty"`
	ToType          string `json:"to_type,omitempty"`
	ToID            string `json:"to_id,omitempty"`
	ExecutionTimeMS int64  `json:"execution_time_ms,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

// Event is one audit record. Events are facts-only: they never carry request
// payloads, and Reason is scrubbed by Sanitize before emission.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  EventType `json:"event_type"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Capability string    `json:"capability"`
	Result     Result    `json:"result"`
	Reason     string    `json:"reason,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Authz builds an authorization event.
func Authz(actorID, actorRole, capability string, allowed bool, reason string) Event {
	result := ResultAllowed
	if !allowed {
		result = ResultDenied
	}
	return Event{
		Timestamp:  time.Now().UTC(),
		EventType:  EventTypeAuthorization,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Capability: capability,
		Result:     result,
		Reason:     reason,
	}
}

// Routing builds a routing event carrying the edge endpoints.
func Routing(actorID, actorRole, capability, fromType, fromID, toType, toID string, allowed bool, reason string) Event {
	result := ResultAllowed
	if !allowed {
		result = ResultDenied
	}
	return Event{
		Timestamp:  time.Now().UTC(),
		EventType:  EventTypeRouting,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Capability: capability,
		Result:     result,
		Reason:     reason,
		Metadata: &Metadata{
			FromType: fromType,
			FromID:   fromID,
			ToType:   toType,
			ToID:     toID,
		},
	}
}

// Execution builds an execution event carrying elapsed time and, on failure,
// the error code.
func Execution(actorID, actorRole, capability string, success bool, executionTimeMS int64, errorCode string) Event {
	result := ResultSuccess
	if !success {
		result = ResultError
	}
	return Event{
		Timestamp:  time.Now().UTC(),
		EventType:  EventTypeExecution,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Capability: capability,
		Result:     result,
		Metadata: &Metadata{
			ExecutionTimeMS: executionTimeMS,
			ErrorCode:       errorCode,
		},
	}
}
