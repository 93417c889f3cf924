package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	cmd := Bootstrap()

	require.NotNil(t, cmd)
	assert.Equal(t, "bootstrap", cmd.Use)
	assert.Equal(t, "Initialize or defer to the cluster, then install the recurring schedules", cmd.Short)
}

func TestBootstrap_ConfigFlag(t *testing.T) {
	cmd := Bootstrap()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestBootstrap_SkipSchedulesFlag(t *testing.T) {
	cmd := Bootstrap()

	flag := cmd.Flags().Lookup("skip-schedules")
	require.NotNil(t, flag, "skip-schedules flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestBootstrap_DryRunFlag(t *testing.T) {
	cmd := Bootstrap()

	flag := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, flag, "dry-run flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestBootstrap_RunE(t *testing.T) {
	cmd := Bootstrap()
	assert.NotNil(t, cmd.RunE, "Bootstrap command should have RunE function")
}
