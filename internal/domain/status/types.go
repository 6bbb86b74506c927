// Package status contains the per-module runtime status domain.
package status

import "time"

// State is a module's lifecycle state.
type State string

// Module states.
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateError   State = "error"
	StateStopped State = "stopped"
)

// ModuleStatus aggregates one module's invocation history. Facts only: the
// kernel never stores request payloads here.
type ModuleStatus struct {
	ModuleID           string    `json:"module_id"`
	Status             State     `json:"status"`
	LastInvocation     time.Time `json:"last_invocation,omitzero"`
	InvocationCount    int64     `json:"invocation_count"`
	ErrorCount         int64     `json:"error_count"`
	AvgExecutionTimeMS float64   `json:"avg_execution_time_ms"`
	LastError          string    `json:"last_error,omitempty"`
	UptimeSeconds      int64     `json:"uptime_seconds"`
}

// RecordInvocation folds one invocation into the status: the rolling mean
// updates incrementally, failures flip the state to error and capture the
// caller-provided error string.
func (s *ModuleStatus) RecordInvocation(executionTimeMS int64, success bool, errMsg string, at time.Time) {
	s.InvocationCount++
	s.LastInvocation = at

	if success {
		s.Status = StateRunning
	} else {
		s.ErrorCount++
		s.Status = StateError
		s.LastError = errMsg
	}

	count := float64(s.InvocationCount)
	s.AvgExecutionTimeMS = (s.AvgExecutionTimeMS*(count-1) + float64(executionTimeMS)) / count
}

// Snapshot is the document written to the status file.
type Snapshot struct {
	Timestamp     time.Time               `json:"timestamp"`
	KernelVersion string                  `json:"kernel_version"`
	Modules       map[string]ModuleStatus `json:"modules"`
}
