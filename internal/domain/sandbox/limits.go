// Package sandbox contains the module execution contract: per-module
// resource limits and the filesystem jail. The kernel decides the bounds;
// process-level enforcement belongs to the isolation primitive that spawns
// the module.
package sandbox

import (
	"time"

	"github.com/cabinet-platform/kernel/internal/domain/ipc"
)

// ModuleLimits bounds one module's execution.
type ModuleLimits struct {
	TimeoutMS      int64 `yaml:"timeout_ms"`
	MaxMemoryMB    int64 `yaml:"max_memory_mb"`
	MaxCPUPercent  int   `yaml:"max_cpu_percent"`
	MaxOutputBytes int64 `yaml:"max_output_bytes"`
	MaxInputBytes  int64 `yaml:"max_input_bytes"`
	// AllowedFilePaths are the prefixes the module may read and write under.
	AllowedFilePaths []string `yaml:"allowed_file_paths"`
	// ReadonlyPaths are additional prefixes the module may only read under.
	ReadonlyPaths []string `yaml:"readonly_paths"`
}

// Timeout returns the module's execution deadline as a duration.
func (l *ModuleLimits) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}

// FilesystemConfig is the platform-wide jail configuration.
type FilesystemConfig struct {
	ForbiddenPaths         []string `yaml:"forbidden_paths"`
	FollowSymlinks         bool     `yaml:"follow_symlinks"`
	DetectPathTraversal    bool     `yaml:"detect_path_traversal"`
	ValidateCanonicalPaths bool     `yaml:"validate_canonical_paths"`
}

// LimitsPolicy is the limits policy snapshot: a defaults record, per-module
// overrides, and the filesystem configuration.
type LimitsPolicy struct {
	Defaults     ModuleLimits            `yaml:"defaults"`
	ModuleLimits map[string]ModuleLimits `yaml:"module_limits"`
	Filesystem   FilesystemConfig        `yaml:"filesystem"`
}

// LimitsFor returns the limits for moduleID, falling back to the defaults
// record when no override exists.
func (p *LimitsPolicy) LimitsFor(moduleID string) ModuleLimits {
	if limits, ok := p.ModuleLimits[moduleID]; ok {
		return limits
	}
	return p.Defaults
}

// CheckInputSize rejects raw commands over the module's input cap.
func CheckInputSize(input []byte, limits *ModuleLimits) error {
	if int64(len(input)) > limits.MaxInputBytes {
		return ipc.NewError(ipc.CodeLimitExceeded,
			"input size %d bytes exceeds limit %d bytes", len(input), limits.MaxInputBytes)
	}
	return nil
}

// CheckOutputSize rejects module output over the module's output cap.
func CheckOutputSize(output []byte, limits *ModuleLimits) error {
	if int64(len(output)) > limits.MaxOutputBytes {
		return ipc.NewError(ipc.CodeLimitExceeded,
			"output size %d bytes exceeds limit %d bytes", len(output), limits.MaxOutputBytes)
	}
	return nil
}

// CheckTimeout rejects executions that ran past the module's deadline.
func CheckTimeout(elapsed time.Duration, limits *ModuleLimits) error {
	if elapsed > limits.Timeout() {
		return ipc.NewError(ipc.CodeTimeout,
			"execution time %d ms exceeds limit %d ms", elapsed.Milliseconds(), limits.TimeoutMS)
	}
	return nil
}
