package ipc

import (
	"errors"
	"strings"
	"testing"
)

func validEnvelope() map[string]any {
	return map[string]any{
		"version":      "v1.0.0",
		"message_id":   "550e8400-e29b-41d4-a716-446655440000",
		"timestamp":    "2026-01-09T15:00:00Z",
		"message_type": "command",
		"payload":      map[string]any{},
	}
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	var kerr *KernelError
	if !errors.As(err, &kerr) {
		t.Fatalf("error = %v, want *KernelError with code %s", err, code)
	}
	if kerr.Code != code {
		t.Fatalf("error code = %s, want %s (message: %s)", kerr.Code, code, kerr.Message)
	}
}

func TestValidateEnvelope_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateEnvelope(validEnvelope()); err != nil {
		t.Errorf("ValidateEnvelope() error: %v", err)
	}
}

func TestValidateEnvelope_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing version", func(e map[string]any) { delete(e, "version") }},
		{"missing message_id", func(e map[string]any) { delete(e, "message_id") }},
		{"missing timestamp", func(e map[string]any) { delete(e, "timestamp") }},
		{"missing message_type", func(e map[string]any) { delete(e, "message_type") }},
		{"missing payload", func(e map[string]any) { delete(e, "payload") }},
		{"wrong version family", func(e map[string]any) { e["version"] = "v2.0.0" }},
		{"message_id wrong length", func(e map[string]any) { e["message_id"] = "short" }},
		{"message_id wrong groups", func(e map[string]any) {
			e["message_id"] = "550e8400e29b41d4a716446655440000abcd"
		}},
		{"unknown message_type", func(e map[string]any) { e["message_type"] = "notify" }},
		{"timestamp without T", func(e map[string]any) { e["timestamp"] = "2026-01-09 15:00:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := validEnvelope()
			tt.mutate(env)
			wantCode(t, ValidateEnvelope(env), CodeInvalidEnvelope)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command map[string]any
		wantErr bool
	}{
		{
			name: "valid invoke",
			command: map[string]any{
				"command_type": "invoke",
				"target":       map[string]any{"capability": "storage.listings.create"},
			},
		},
		{
			name: "valid query",
			command: map[string]any{
				"command_type": "query",
				"target":       map[string]any{"capability": "storage.listings.list"},
			},
		},
		{
			name:    "missing command_type",
			command: map[string]any{"target": map[string]any{"capability": "a.b"}},
			wantErr: true,
		},
		{
			name: "unknown command_type",
			command: map[string]any{
				"command_type": "execute",
				"target":       map[string]any{"capability": "a.b"},
			},
			wantErr: true,
		},
		{
			name:    "missing target",
			command: map[string]any{"command_type": "invoke"},
			wantErr: true,
		},
		{
			name: "capability without dot",
			command: map[string]any{
				"command_type": "invoke",
				"target":       map[string]any{"capability": "storage"},
			},
			wantErr: true,
		},
		{
			name:    "nil payload",
			command: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCommand(tt.command)
			if tt.wantErr {
				wantCode(t, err, CodeInvalidCommand)
			} else if err != nil {
				t.Errorf("ValidateCommand() error: %v", err)
			}
		})
	}
}

func TestValidateResult(t *testing.T) {
	t.Parallel()

	valid := map[string]any{"status": "success", "data": map[string]any{}}
	if err := ValidateResult(valid); err != nil {
		t.Errorf("ValidateResult() error: %v", err)
	}

	partial := map[string]any{"status": "partial_success", "data": map[string]any{}}
	if err := ValidateResult(partial); err != nil {
		t.Errorf("ValidateResult(partial_success) error: %v", err)
	}

	wantCode(t, ValidateResult(map[string]any{"status": "failed", "data": map[string]any{}}), CodeInvalidResult)
	wantCode(t, ValidateResult(map[string]any{"data": map[string]any{}}), CodeInvalidResult)
	wantCode(t, ValidateResult(map[string]any{"status": "success"}), CodeInvalidResult)
}

func TestValidateError(t *testing.T) {
	t.Parallel()

	valid := map[string]any{"error_code": "TIMEOUT", "message": "m", "severity": "error"}
	if err := ValidateError(valid); err != nil {
		t.Errorf("ValidateError() error: %v", err)
	}

	bad := map[string]any{"error_code": "TIMEOUT", "message": "m", "severity": "critical"}
	wantCode(t, ValidateError(bad), CodeInvalidEnvelope)
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"valid object", `{"version":"v1.0.0"}`, ""},
		{"empty", "", CodeInvalidJSON},
		{"whitespace only", "   \n", CodeInvalidJSON},
		{"not json", "this is not json", CodeInvalidJSON},
		{"truncated", `{"version":"v1.0.0"`, CodeInvalidJSON},
		{"array top level", `[1,2,3]`, CodeInvalidEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeMessage([]byte(tt.input))
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("DecodeMessage() error: %v", err)
				}
				return
			}
			wantCode(t, err, tt.wantCode)
		})
	}
}

func TestDecodeMessage_Oversized(t *testing.T) {
	t.Parallel()

	big := `{"pad":"` + strings.Repeat("a", MaxMessageBytes) + `"}`
	_, err := DecodeMessage([]byte(big))
	wantCode(t, err, CodeInvalidJSON)
}

func TestDecodeMessage_ParserInternalsHidden(t *testing.T) {
	t.Parallel()

	_, err := DecodeMessage([]byte(`{"a": 1,}`))
	if err == nil {
		t.Fatal("DecodeMessage() accepted malformed JSON")
	}
	if strings.Contains(err.Error(), "json:") || strings.Contains(err.Error(), "offset") {
		t.Errorf("error leaks parser internals: %v", err)
	}
}
