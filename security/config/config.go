// Package config holds the resource governance configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for metric snapshots.
const (
	MetricsStorageMemory = "memory"
	MetricsStorageRedis  = "redis"
)

// Config controls the security manager.
type Config struct {
	MaxAuditLogSize int  `json:"max_audit_log_size" yaml:"max_audit_log_size"`
	EnableTracking  bool `json:"enable_tracking" yaml:"enable_tracking"`
	EnableEvents    bool `json:"enable_events" yaml:"enable_events"`

	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

// MetricsConfig controls decision metric collection.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Storage   string `json:"storage" yaml:"storage"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
	Retention string `json:"retention" yaml:"retention"`
	FlushSize int    `json:"flush_size" yaml:"flush_size"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxAuditLogSize <= 0 {
		return fmt.Errorf("max_audit_log_size must be greater than 0, got: %d", c.MaxAuditLogSize)
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics config validation failed: %v", err)
		}
	}

	return nil
}

// Validate validates metrics configuration.
func (m *MetricsConfig) Validate() error {
	switch m.Storage {
	case "", MetricsStorageMemory, MetricsStorageRedis:
	default:
		return fmt.Errorf("unknown metrics storage: %s", m.Storage)
	}

	if m.Retention != "" {
		if _, err := time.ParseDuration(m.Retention); err != nil {
			return fmt.Errorf("invalid retention: %v", err)
		}
	}

	return nil
}

// RetentionDuration returns the parsed retention, or the default of 24h.
func (m *MetricsConfig) RetentionDuration() time.Duration {
	if m == nil || m.Retention == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(m.Retention)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// GetDefaultConfig returns the default governance configuration.
func GetDefaultConfig() *Config {
	return &Config{
		MaxAuditLogSize: 10000,
		EnableTracking:  true,
		EnableEvents:    true,
		Metrics: &MetricsConfig{
			Enabled:   true,
			Storage:   MetricsStorageMemory,
			KeyPrefix: "modguard",
			Retention: "24h",
			FlushSize: 100,
		},
	}
}

// GetConfig returns governance config from viper.
func GetConfig(v *viper.Viper) *Config {
	defaults := GetDefaultConfig()

	return &Config{
		MaxAuditLogSize: getIntWithDefault(v, "security.max_audit_log_size", defaults.MaxAuditLogSize),
		EnableTracking:  getBoolWithDefault(v, "security.enable_tracking", defaults.EnableTracking),
		EnableEvents:    getBoolWithDefault(v, "security.enable_events", defaults.EnableEvents),
		Metrics:         getMetricsConfig(v, defaults.Metrics),
	}
}

func getMetricsConfig(v *viper.Viper, defaults *MetricsConfig) *MetricsConfig {
	if !v.IsSet("security.metrics") {
		return defaults
	}

	return &MetricsConfig{
		Enabled:   getBoolWithDefault(v, "security.metrics.enabled", defaults.Enabled),
		Storage:   getStringWithDefault(v, "security.metrics.storage", defaults.Storage),
		KeyPrefix: getStringWithDefault(v, "security.metrics.key_prefix", defaults.KeyPrefix),
		Retention: getStringWithDefault(v, "security.metrics.retention", defaults.Retention),
		FlushSize: getIntWithDefault(v, "security.metrics.flush_size", defaults.FlushSize),
	}
}

// Helper functions for default values

func getStringWithDefault(v *viper.Viper, key, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}

func getIntWithDefault(v *viper.Viper, key string, defaultValue int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultValue
}

func getBoolWithDefault(v *viper.Viper, key string, defaultValue bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return defaultValue
}
