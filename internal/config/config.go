// Package config loads ahnlichd's runtime configuration, layering
// defaults, an optional YAML file, environment variables, and CLI
// flags (applied by the caller last, with the highest precedence).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is ahnlichd's complete runtime configuration, mirroring the
// CLI surface of spec.md §6.
type Config struct {
	Network     NetworkConfig     `yaml:"network" json:"network"`
	Persistence PersistenceConfig `yaml:"persistence" json:"persistence"`
	Tracing     TracingConfig     `yaml:"tracing" json:"tracing"`
	Auth        AuthConfig        `yaml:"auth" json:"auth"`
	TLS         TLSConfig         `yaml:"tls" json:"tls"`
}

// NetworkConfig configures the listening address and connection limits.
type NetworkConfig struct {
	Host           string `yaml:"host" json:"host"`
	Port           int    `yaml:"port" json:"port"`
	MaximumClients int    `yaml:"maximum_clients" json:"maximum_clients"`
	AllocatorSize  int    `yaml:"allocator_size" json:"allocator_size"`
}

// PersistenceConfig configures the snapshot file and save cadence.
type PersistenceConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	Location         string `yaml:"location" json:"location"`
	IntervalSeconds  int    `yaml:"interval_seconds" json:"interval_seconds"`
}

// TracingConfig configures optional OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	OTELEndpoint string `yaml:"otel_endpoint" json:"otel_endpoint"`
}

// AuthConfig configures optional client authentication.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Config  string `yaml:"config" json:"config"`
}

// TLSConfig configures optional TLS for the TCP listener.
type TLSConfig struct {
	CertPath string `yaml:"cert_path" json:"cert_path"`
	KeyPath  string `yaml:"key_path" json:"key_path"`
}

// defaultOTELEndpoint is overridden by DEMO_OTEL_URL when set, per
// spec.md §6.
const defaultOTELEndpoint = "http://localhost:4317"

// NewConfig returns a Config populated with ahnlichd's defaults.
func NewConfig() *Config {
	otel := defaultOTELEndpoint
	if v := os.Getenv("DEMO_OTEL_URL"); v != "" {
		otel = v
	}

	return &Config{
		Network: NetworkConfig{
			Host:           "127.0.0.1",
			Port:           1369,
			MaximumClients: 100,
			AllocatorSize:  1 << 30, // 1 GiB, informational only; Go's GC ignores it
		},
		Persistence: PersistenceConfig{
			Enabled:         false,
			Location:        "",
			IntervalSeconds: 300,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			OTELEndpoint: otel,
		},
		Auth: AuthConfig{
			Enabled: false,
			Config:  "",
		},
	}
}

// Load returns ahnlichd's configuration: defaults, then path's YAML
// file if given and present, then environment variable overrides. The
// caller applies CLI flags last, with the highest precedence.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays other's non-zero fields onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Network.Host != "" {
		c.Network.Host = other.Network.Host
	}
	if other.Network.Port != 0 {
		c.Network.Port = other.Network.Port
	}
	if other.Network.MaximumClients != 0 {
		c.Network.MaximumClients = other.Network.MaximumClients
	}
	if other.Network.AllocatorSize != 0 {
		c.Network.AllocatorSize = other.Network.AllocatorSize
	}

	if other.Persistence.Enabled {
		c.Persistence.Enabled = other.Persistence.Enabled
	}
	if other.Persistence.Location != "" {
		c.Persistence.Location = other.Persistence.Location
	}
	if other.Persistence.IntervalSeconds != 0 {
		c.Persistence.IntervalSeconds = other.Persistence.IntervalSeconds
	}

	if other.Tracing.Enabled {
		c.Tracing.Enabled = other.Tracing.Enabled
	}
	if other.Tracing.OTELEndpoint != "" {
		c.Tracing.OTELEndpoint = other.Tracing.OTELEndpoint
	}

	if other.Auth.Enabled {
		c.Auth.Enabled = other.Auth.Enabled
	}
	if other.Auth.Config != "" {
		c.Auth.Config = other.Auth.Config
	}

	if other.TLS.CertPath != "" {
		c.TLS.CertPath = other.TLS.CertPath
	}
	if other.TLS.KeyPath != "" {
		c.TLS.KeyPath = other.TLS.KeyPath
	}
}

// applyEnvOverrides applies AHNLICH_*-prefixed environment variables,
// the highest-precedence layer below CLI flags.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AHNLICH_HOST"); v != "" {
		c.Network.Host = v
	}
	if v := os.Getenv("AHNLICH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Network.Port = port
		}
	}
	if v := os.Getenv("AHNLICH_MAXIMUM_CLIENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Network.MaximumClients = n
		}
	}
	if v := os.Getenv("AHNLICH_ENABLE_PERSISTENCE"); v != "" {
		c.Persistence.Enabled = v == "1" || v == "true"
	}
	if v := os.Getenv("AHNLICH_PERSIST_LOCATION"); v != "" {
		c.Persistence.Location = v
	}
	if v := os.Getenv("DEMO_OTEL_URL"); v != "" {
		c.Tracing.OTELEndpoint = v
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		return fmt.Errorf("network.port must be between 1 and 65535, got %d", c.Network.Port)
	}
	if c.Network.MaximumClients <= 0 {
		return fmt.Errorf("network.maximum_clients must be positive")
	}
	if c.Persistence.Enabled && c.Persistence.Location == "" {
		return fmt.Errorf("persistence.location is required when persistence is enabled")
	}
	if c.Persistence.Enabled && c.Persistence.IntervalSeconds <= 0 {
		return fmt.Errorf("persistence.interval_seconds must be positive when persistence is enabled")
	}
	if (c.TLS.CertPath == "") != (c.TLS.KeyPath == "") {
		return fmt.Errorf("tls.cert_path and tls.key_path must both be set or both be empty")
	}
	return nil
}
