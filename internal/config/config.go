// Package config provides the kernel runtime configuration and the policy
// file loader. The runtime config comes from cabinet-kernel.yaml plus
// CABINET_KERNEL_ environment overrides; the policy files are read once at
// boot into an immutable snapshot.
package config

// KernelConfig is the top-level runtime configuration. It locates the policy
// files and the observability outputs; it never contains policy content.
type KernelConfig struct {
	// Kernel configures the request source identity and versioning.
	Kernel KernelSection `yaml:"kernel" mapstructure:"kernel"`

	// Policy locates the policy files read at boot.
	Policy PolicySection `yaml:"policy" mapstructure:"policy"`

	// Audit configures the audit trail outputs.
	Audit AuditSection `yaml:"audit" mapstructure:"audit"`

	// Status configures the module status file.
	Status StatusSection `yaml:"status" mapstructure:"status"`

	// Metrics configures the optional Prometheus listener (serve mode only).
	Metrics MetricsSection `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configures the optional stdout span exporter.
	Tracing TracingSection `yaml:"tracing" mapstructure:"tracing"`

	// DevMode enables development features (verbose logging).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// KernelSection identifies the request source for routing and profile
// selection. The source surface is config until the envelope carries it
// explicitly.
type KernelSection struct {
	// SourceType is the from-node type for routing decisions.
	SourceType string `yaml:"source_type" mapstructure:"source_type" validate:"required,oneof=ui module registry platform"`
	// SourceID is the from-node ID; it also selects the result profile.
	SourceID string `yaml:"source_id" mapstructure:"source_id" validate:"required"`
}

// PolicySection locates the policy files.
type PolicySection struct {
	// AccessFile holds roles and capability requirements.
	AccessFile string `yaml:"access_file" mapstructure:"access_file" validate:"required"`
	// RoutingFile holds routes, capability chains, and the endpoint table.
	RoutingFile string `yaml:"routing_file" mapstructure:"routing_file" validate:"required"`
	// LimitsFile holds module limits and the filesystem jail config.
	LimitsFile string `yaml:"limits_file" mapstructure:"limits_file" validate:"required"`
	// ProfilesFile holds result profiles and the UI mapping.
	ProfilesFile string `yaml:"profiles_file" mapstructure:"profiles_file" validate:"required"`
	// ManifestsDir holds one <module-id>/manifest.yaml per installed module.
	ManifestsDir string `yaml:"manifests_dir" mapstructure:"manifests_dir" validate:"required"`
}

// AuditSection configures audit persistence.
type AuditSection struct {
	// LogFile is the JSONL audit trail, one sanitized event per line.
	LogFile string `yaml:"log_file" mapstructure:"log_file" validate:"required"`
	// SQLitePath optionally mirrors events into a queryable SQLite store.
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// StatusSection configures the module status file.
type StatusSection struct {
	// File is rewritten atomically after each status update.
	File string `yaml:"file" mapstructure:"file" validate:"required"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Addr is the listen address, e.g. "127.0.0.1:9464".
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// TracingSection configures span export.
type TracingSection struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Defaults returns the configuration used when no file and no environment
// overrides are present.
func Defaults() KernelConfig {
	return KernelConfig{
		Kernel: KernelSection{
			SourceType: "ui",
			SourceID:   "main_ui",
		},
		Policy: PolicySection{
			AccessFile:   "system/policy/access.yaml",
			RoutingFile:  "system/policy/routing.yaml",
			LimitsFile:   "system/policy/limits.yaml",
			ProfilesFile: "system/policy/result_profiles.yaml",
			ManifestsDir: "extensions/modules",
		},
		Audit: AuditSection{
			LogFile: "dist/reports/audit_log.jsonl",
		},
		Status: StatusSection{
			File: "dist/reports/runtime_status.json",
		},
		Metrics: MetricsSection{
			Addr: "127.0.0.1:9464",
		},
	}
}
