package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateCerts(t *testing.T) {
	cmd := RotateCerts()

	require.NotNil(t, cmd)
	assert.Equal(t, "rotate-certs", cmd.Use)
	assert.Equal(t, "Verify and rotate the cluster certificate bundle (leader only)", cmd.Short)
}

func TestRotateCerts_ConfigFlag(t *testing.T) {
	cmd := RotateCerts()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestRotateCerts_ForceFlag(t *testing.T) {
	cmd := RotateCerts()

	flag := cmd.Flags().Lookup("force")
	require.NotNil(t, flag, "force flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestRotateCerts_RunE(t *testing.T) {
	cmd := RotateCerts()
	assert.NotNil(t, cmd.RunE, "RotateCerts command should have RunE function")
}
