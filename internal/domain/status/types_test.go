package status

import (
	"testing"
	"time"
)

func TestRecordInvocation_Success(t *testing.T) {
	t.Parallel()

	s := ModuleStatus{ModuleID: "storage", Status: StateIdle}
	now := time.Now().UTC()
	s.RecordInvocation(100, true, "", now)

	if s.InvocationCount != 1 {
		t.Errorf("InvocationCount = %d, want 1", s.InvocationCount)
	}
	if s.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", s.ErrorCount)
	}
	if s.Status != StateRunning {
		t.Errorf("Status = %q, want running", s.Status)
	}
	if s.AvgExecutionTimeMS != 100 {
		t.Errorf("AvgExecutionTimeMS = %v, want 100", s.AvgExecutionTimeMS)
	}
	if !s.LastInvocation.Equal(now) {
		t.Errorf("LastInvocation = %v, want %v", s.LastInvocation, now)
	}
}

func TestRecordInvocation_Error(t *testing.T) {
	t.Parallel()

	s := ModuleStatus{ModuleID: "storage"}
	s.RecordInvocation(50, false, "TIMEOUT", time.Now().UTC())

	if s.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", s.ErrorCount)
	}
	if s.Status != StateError {
		t.Errorf("Status = %q, want error", s.Status)
	}
	if s.LastError != "TIMEOUT" {
		t.Errorf("LastError = %q, want TIMEOUT", s.LastError)
	}
}

func TestRecordInvocation_RollingMean(t *testing.T) {
	t.Parallel()

	s := ModuleStatus{ModuleID: "storage"}
	now := time.Now().UTC()
	s.RecordInvocation(100, true, "", now)
	s.RecordInvocation(200, true, "", now)

	if s.AvgExecutionTimeMS != 150 {
		t.Errorf("AvgExecutionTimeMS = %v, want 150", s.AvgExecutionTimeMS)
	}

	s.RecordInvocation(300, true, "", now)
	if s.AvgExecutionTimeMS != 200 {
		t.Errorf("AvgExecutionTimeMS = %v, want 200", s.AvgExecutionTimeMS)
	}
}
