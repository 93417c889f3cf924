package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	cmd := Join()

	require.NotNil(t, cmd)
	assert.Equal(t, "join", cmd.Use)
	assert.Equal(t, "Join this node to the cluster (recurring, idempotent)", cmd.Short)
}

func TestJoin_ConfigFlag(t *testing.T) {
	cmd := Join()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestJoin_RunE(t *testing.T) {
	cmd := Join()
	assert.NotNil(t, cmd.RunE, "Join command should have RunE function")
}
