package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// BootstrapFileName is the configuration file looked up inside the config directory.
const BootstrapFileName = "rover_config.yaml"

// Environment variables that override values from the file.
const (
	EnvConfigDir       = "ROVER_CONFIG_DIR"
	EnvTelemetryTarget = "ROVER_TELEMETRY_TARGET"
	EnvLogLevel        = "ROVER_LOG_LEVEL"
)

// ResolveConfigDir picks the config directory from the flag value, then the
// environment, then ./config.
func ResolveConfigDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return "config"
}

// LoadBootstrapConfig loads rover_config.yaml from configDir, applies
// environment overrides and validates the result.
func LoadBootstrapConfig(configDir string) (*Config, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapFileName)

	cfg, err := LoadConfig(bootstrapConfigPath)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bootstrap config '%s': %w", bootstrapConfigPath, err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if target := os.Getenv(EnvTelemetryTarget); target != "" {
		cfg.Telemetry.TargetAddress = target
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
}
