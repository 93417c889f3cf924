package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Region:     "eu-west-1",
		ClusterID:  "c1",
		StateTable: "swarm-state",
		SecretID:   "prod/environment",
		NodeRole:   RoleManager,
	}
	cfg.Certificates.Domain = "example.internal"
	cfg.applyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no region", func(c *Config) { c.Region = "" }, "region"},
		{"no cluster id", func(c *Config) { c.ClusterID = "" }, "cluster_id"},
		{"no state table", func(c *Config) { c.StateTable = "" }, "state_table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_BadRole(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.NodeRole = "observer"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_role")
}

func TestValidate_ThresholdAboveValidity(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Certificates.ValidityDays = 20
	cfg.Certificates.RenewalThresholdDays = 30
	assert.Error(t, cfg.Validate())
}

func TestValidateCertificates(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.NoError(t, cfg.ValidateCertificates())

	cfg.SecretID = ""
	err := cfg.ValidateCertificates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_id")

	cfg = validConfig()
	cfg.Certificates.Domain = ""
	err = cfg.ValidateCertificates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificates.domain")
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{ClusterID: "c1"}
	cfg.applyDefaults()

	assert.Equal(t, RoleWorker, cfg.NodeRole)
	assert.Equal(t, 365, cfg.Certificates.ValidityDays)
	assert.Equal(t, 30, cfg.Certificates.RenewalThresholdDays)
	assert.Equal(t, 2048, cfg.Certificates.KeyBits)
	assert.Equal(t, 32, cfg.Certificates.PasswordLength)
	assert.Equal(t, "certificatePassword", cfg.Certificates.PasswordKey)
	assert.Equal(t, "c1-cert", cfg.Certificates.SecretPrefix)
	assert.Equal(t, "/etc/swarmboot/certs/status.json", cfg.Certificates.StatusFile)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmboot.yaml")
	content := []byte(`
region: eu-west-1
cluster_id: c1
state_table: swarm-state
node_role: worker
certificates:
  domain: example.internal
  validity_days: 45
services:
  - gateway
  - api
`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	t.Setenv("SWARMBOOT_NODE_ROLE", "manager")
	t.Setenv("SWARMBOOT_SERVICES", "gateway, api, auth")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "c1", cfg.ClusterID)
	assert.Equal(t, RoleManager, cfg.NodeRole, "env must override file")
	assert.Equal(t, 45, cfg.Certificates.ValidityDays)
	assert.Equal(t, []string{"gateway", "api", "auth"}, cfg.Services)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("SWARMBOOT_REGION", "us-east-1")
	t.Setenv("SWARMBOOT_CLUSTER_ID", "i-0abc123")
	t.Setenv("SWARMBOOT_STATE_TABLE", "swarm-state")
	t.Setenv("SWARMBOOT_NODE_ROLE", "worker")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "i-0abc123", cfg.ClusterID)
	assert.Equal(t, "i-0abc123-cert", cfg.Certificates.SecretPrefix)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/swarmboot.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
