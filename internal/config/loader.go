package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. When configFile is empty, standard locations are searched for
// cabinet-kernel.yaml/.yml. The search requires an explicit YAML extension so
// the binary itself (same base name, no extension) is never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file in any standard location. Set name/type without
		// search paths so ReadInConfig returns ConfigFileNotFoundError,
		// which callers treat as "defaults plus env".
		viper.SetConfigName("cabinet-kernel")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: CABINET_KERNEL_AUDIT_LOG_FILE etc.
	viper.SetEnvPrefix("CABINET_KERNEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for cabinet-kernel.yaml or .yml.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".cabinet-kernel"),
		"/etc/cabinet-kernel",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "cabinet-kernel"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds the nested config keys so environment variables can
// override them individually.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("kernel.source_type")
	_ = viper.BindEnv("kernel.source_id")

	_ = viper.BindEnv("policy.access_file")
	_ = viper.BindEnv("policy.routing_file")
	_ = viper.BindEnv("policy.limits_file")
	_ = viper.BindEnv("policy.profiles_file")
	_ = viper.BindEnv("policy.manifests_dir")

	_ = viper.BindEnv("audit.log_file")
	_ = viper.BindEnv("audit.sqlite_path")

	_ = viper.BindEnv("status.file")

	_ = viper.BindEnv("metrics.enabled")
	_ = viper.BindEnv("metrics.addr")

	_ = viper.BindEnv("tracing.enabled")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides on
// top of the defaults, and validates the result.
func LoadConfig() (*KernelConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found: continue with defaults and env only.
	}

	cfg := Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
