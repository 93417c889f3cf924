package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/swarmboot/internal/config"
)

func managerConfig(path string) *config.Config {
	return &config.Config{NodeRole: config.RoleManager, Path: path}
}

func workerConfig() *config.Config {
	return &config.Config{NodeRole: config.RoleWorker}
}

func TestScheduleUnits_Worker(t *testing.T) {
	t.Parallel()

	units := scheduleUnits(workerConfig())

	require.Len(t, units, 2)
	assert.Equal(t, "swarmboot-join.service", units[0].Name)
	assert.Equal(t, "swarmboot-join.timer", units[1].Name)
	assert.True(t, units[1].Enable)
}

func TestScheduleUnits_Manager(t *testing.T) {
	t.Parallel()

	units := scheduleUnits(managerConfig(""))

	require.Len(t, units, 4)
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "swarmboot-rotate.service")
	assert.Contains(t, names, "swarmboot-rotate.timer")
}

func TestScheduleUnits_ConfigFlag(t *testing.T) {
	t.Parallel()

	units := scheduleUnits(managerConfig("/etc/swarmboot/swarmboot.yaml"))

	assert.Contains(t, units[0].Content, "swarmboot join --config /etc/swarmboot/swarmboot.yaml")
}

func TestScheduleUnits_NoConfigFlagWhenEnvOnly(t *testing.T) {
	t.Parallel()

	units := scheduleUnits(managerConfig(""))

	assert.Contains(t, units[0].Content, "ExecStart=/usr/local/bin/swarmboot join\n")
	assert.NotContains(t, units[0].Content, "--config")
}

func TestInstallSchedules(t *testing.T) {
	origDir := unitDir
	origRun := runSystemctl
	defer func() {
		unitDir = origDir
		runSystemctl = origRun
	}()

	unitDir = t.TempDir()
	var calls [][]string
	runSystemctl = func(_ context.Context, args ...string) error {
		calls = append(calls, args)
		return nil
	}

	err := installSchedules(context.Background(), managerConfig(""))
	require.NoError(t, err)

	for _, name := range []string{
		"swarmboot-join.service",
		"swarmboot-join.timer",
		"swarmboot-rotate.service",
		"swarmboot-rotate.timer",
	} {
		_, statErr := os.Stat(filepath.Join(unitDir, name))
		assert.NoError(t, statErr, "unit %s should be written", name)
	}

	require.NotEmpty(t, calls)
	assert.Equal(t, []string{"daemon-reload"}, calls[0])
	assert.Equal(t, []string{"enable", "--now", "swarmboot-join.timer"}, calls[1])
	assert.Equal(t, []string{"enable", "--now", "swarmboot-rotate.timer"}, calls[2])
}

func TestInstallSchedules_SystemctlFailure(t *testing.T) {
	origDir := unitDir
	origRun := runSystemctl
	defer func() {
		unitDir = origDir
		runSystemctl = origRun
	}()

	unitDir = t.TempDir()
	runSystemctl = func(_ context.Context, _ ...string) error {
		return assert.AnError
	}

	err := installSchedules(context.Background(), workerConfig())
	require.Error(t, err)
}
