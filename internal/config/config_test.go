package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "127.0.0.1", cfg.Network.Host)
	require.Equal(t, 1369, cfg.Network.Port)
}

func TestNewConfigRespectsDemoOtelURLEnv(t *testing.T) {
	t.Setenv("DEMO_OTEL_URL", "http://collector.internal:4317")
	cfg := NewConfig()
	require.Equal(t, "http://collector.internal:4317", cfg.Tracing.OTELEndpoint)
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahnlichd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  port: 2000\n  host: 0.0.0.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2000, cfg.Network.Port)
	require.Equal(t, "0.0.0.0", cfg.Network.Host)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 1369, cfg.Network.Port)
}

func TestLoadAppliesEnvOverridesAboveYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahnlichd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  port: 2000\n"), 0o644))
	t.Setenv("AHNLICH_PORT", "3000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Network.Port)
}

func TestValidateRejectsInvalidPort(t *testing.T) {
	cfg := NewConfig()
	cfg.Network.Port = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresPersistenceLocationWhenEnabled(t *testing.T) {
	cfg := NewConfig()
	cfg.Persistence.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Persistence.Location = "/tmp/ahnlich.snapshot"
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresBothTLSPathsOrNeither(t *testing.T) {
	cfg := NewConfig()
	cfg.TLS.CertPath = "/tmp/cert.pem"
	require.Error(t, cfg.Validate())

	cfg.TLS.KeyPath = "/tmp/key.pem"
	require.NoError(t, cfg.Validate())
}
