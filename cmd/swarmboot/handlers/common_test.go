package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvironmentOnly(t *testing.T) {
	t.Setenv("SWARMBOOT_REGION", "eu-central-1")
	t.Setenv("SWARMBOOT_CLUSTER_ID", "prod-cluster")
	t.Setenv("SWARMBOOT_STATE_TABLE", "swarm-state")
	t.Setenv("SWARMBOOT_NODE_ROLE", "manager")

	cfg, timeouts, err := loadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, timeouts)

	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "prod-cluster", cfg.ClusterID)
	assert.Equal(t, "manager", cfg.NodeRole)
	assert.Empty(t, cfg.Path)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := loadConfig("/nonexistent/swarmboot.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestLoadConfig_MissingRequiredValues(t *testing.T) {
	t.Setenv("SWARMBOOT_REGION", "")
	t.Setenv("SWARMBOOT_CLUSTER_ID", "")
	t.Setenv("SWARMBOOT_STATE_TABLE", "")

	_, _, err := loadConfig("")
	require.Error(t, err)
}
