package sandbox

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

func testLimits() *ModuleLimits {
	return &ModuleLimits{
		TimeoutMS:      30000,
		MaxMemoryMB:    512,
		MaxCPUPercent:  80,
		MaxOutputBytes: 1024,
		MaxInputBytes:  1024,
		AllowedFilePaths: []string{
			"/mnt/data/modules/storage",
		},
		ReadonlyPaths: []string{
			"/mnt/data/shared",
		},
	}
}

func testFSConfig() *FilesystemConfig {
	return &FilesystemConfig{
		ForbiddenPaths:         []string{"/etc", "/root"},
		DetectPathTraversal:    true,
		ValidateCanonicalPaths: true,
	}
}

func wantSandboxCode(t *testing.T, err error, code ipc.Code) {
	t.Helper()
	var kerr *ipc.KernelError
	if !errors.As(err, &kerr) {
		t.Fatalf("error = %v, want *ipc.KernelError with code %s", err, code)
	}
	if kerr.Code != code {
		t.Fatalf("error code = %s, want %s (message: %s)", kerr.Code, code, kerr.Message)
	}
}

func TestCheckInputSize(t *testing.T) {
	t.Parallel()

	limits := testLimits()
	if err := CheckInputSize([]byte("small"), limits); err != nil {
		t.Errorf("CheckInputSize(small) error: %v", err)
	}

	big := []byte(strings.Repeat("a", 2048))
	wantSandboxCode(t, CheckInputSize(big, limits), ipc.CodeLimitExceeded)
}

func TestCheckOutputSize(t *testing.T) {
	t.Parallel()

	limits := testLimits()
	if err := CheckOutputSize([]byte("ok"), limits); err != nil {
		t.Errorf("CheckOutputSize(ok) error: %v", err)
	}
	wantSandboxCode(t, CheckOutputSize([]byte(strings.Repeat("b", 4096)), limits), ipc.CodeLimitExceeded)
}

func TestCheckTimeout(t *testing.T) {
	t.Parallel()

	limits := &ModuleLimits{TimeoutMS: 1000}
	if err := CheckTimeout(500*time.Millisecond, limits); err != nil {
		t.Errorf("CheckTimeout(500ms) error: %v", err)
	}
	wantSandboxCode(t, CheckTimeout(1500*time.Millisecond, limits), ipc.CodeTimeout)
}

func TestLimitsPolicy_LimitsFor(t *testing.T) {
	t.Parallel()

	policy := &LimitsPolicy{
		Defaults: ModuleLimits{TimeoutMS: 30000, MaxInputBytes: 1024},
		ModuleLimits: map[string]ModuleLimits{
			"pricing": {TimeoutMS: 5000, MaxInputBytes: 64},
		},
	}

	if got := policy.LimitsFor("pricing"); got.TimeoutMS != 5000 {
		t.Errorf("LimitsFor(pricing).TimeoutMS = %d, want 5000", got.TimeoutMS)
	}
	if got := policy.LimitsFor("storage"); got.TimeoutMS != 30000 {
		t.Errorf("LimitsFor(storage).TimeoutMS = %d, want defaults 30000", got.TimeoutMS)
	}
}

func TestValidatePath_Traversal(t *testing.T) {
	t.Parallel()

	tests := []string{
		"/mnt/data/modules/storage/../../../etc/passwd",
		"../etc/passwd",
		"/data/../../etc",
		`C:\modules\..\secrets`,
	}

	for _, path := range tests {
		err := ValidatePath(path, testLimits(), testFSConfig(), AccessRead)
		wantSandboxCode(t, err, ipc.CodeSecurityViolation)
	}
}

func TestValidatePath_TraversalErrorHidesPath(t *testing.T) {
	t.Parallel()

	err := ValidatePath("/mnt/data/modules/storage/../../../etc/passwd", testLimits(), testFSConfig(), AccessRead)
	if err == nil {
		t.Fatal("traversal accepted")
	}
	if strings.Contains(err.Error(), "passwd") {
		t.Errorf("error message echoes the offending path: %v", err)
	}
}

func TestValidatePath_ForbiddenPrefix(t *testing.T) {
	t.Parallel()

	err := ValidatePath("/etc/shadow", testLimits(), testFSConfig(), AccessRead)
	wantSandboxCode(t, err, ipc.CodeSecurityViolation)
}

func TestValidatePath_PermissionDecision(t *testing.T) {
	t.Parallel()

	limits := testLimits()
	config := testFSConfig()

	tests := []struct {
		name    string
		path    string
		access  Access
		wantErr bool
	}{
		{"read allowed path", "/mnt/data/modules/storage/state.json", AccessRead, false},
		{"write allowed path", "/mnt/data/modules/storage/state.json", AccessWrite, false},
		{"read readonly path", "/mnt/data/shared/contracts/v1/command.yaml", AccessRead, false},
		{"write readonly path", "/mnt/data/shared/contracts/v1/command.yaml", AccessWrite, true},
		{"read outside jail", "/var/log/syslog", AccessRead, true},
		{"write outside jail", "/var/log/syslog", AccessWrite, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePath(tt.path, limits, config, tt.access)
			if tt.wantErr {
				wantSandboxCode(t, err, ipc.CodeSecurityViolation)
			} else if err != nil {
				t.Errorf("ValidatePath(%q) error: %v", tt.path, err)
			}
		})
	}
}

func TestValidatePath_ReservedTreeAlwaysBlocked(t *testing.T) {
	t.Parallel()

	// Every toggle off, path even under an allowed prefix: still denied.
	limits := &ModuleLimits{
		AllowedFilePaths: []string{"/mnt/data"},
	}
	config := &FilesystemConfig{
		DetectPathTraversal:    false,
		ValidateCanonicalPaths: false,
	}

	paths := []string{
		"system/intent/company.yaml",
		"/mnt/data/system/intent/company.yaml",
	}
	for _, p := range paths {
		err := ValidatePath(p, limits, config, AccessRead)
		wantSandboxCode(t, err, ipc.CodeSecurityViolation)
	}
}

func TestValidatePath_ReservedTreeSurvivesCanonicalization(t *testing.T) {
	t.Parallel()

	limits := &ModuleLimits{AllowedFilePaths: []string{"/mnt/data"}}
	config := &FilesystemConfig{ValidateCanonicalPaths: true}

	// The dotted segment hides the literal substring until canonicalization.
	err := ValidatePath("/mnt/data/system/./intent/company.yaml", limits, config, AccessRead)
	wantSandboxCode(t, err, ipc.CodeSecurityViolation)
}

func TestCheckReservedTree(t *testing.T) {
	t.Parallel()

	if err := CheckReservedTree("/system/policy/access.yaml"); err != nil {
		t.Errorf("CheckReservedTree(policy path) error: %v", err)
	}
	wantSandboxCode(t, CheckReservedTree("/system/intent/company.yaml"), ipc.CodeSecurityViolation)
	wantSandboxCode(t, CheckReservedTree("system/intent/company.yaml"), ipc.CodeSecurityViolation)
}

func TestCanonicalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/some/./path", "/some/path", false},
		{"/some/path/../other", "/some/other", false},
		{"/a/b/c/../../d", "/a/d", false},
		{"/a//b///c", "/a/b/c", false},
		{"/..", "", true},
		{"/a/../..", "", true},
	}

	for _, tt := range tests {
		got, err := CanonicalizePath(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CanonicalizePath(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("CanonicalizePath(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
