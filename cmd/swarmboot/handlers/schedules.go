package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/imamik/swarmboot/internal/config"
)

// unitDir is where schedule unit files are written. Overridable in tests.
var unitDir = "/etc/systemd/system"

// runSystemctl executes a systemctl invocation. Overridable in tests.
var runSystemctl = func(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "systemctl", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %v: %w: %s", args, err, out)
	}
	return nil
}

// scheduleUnit is a single systemd unit to install.
type scheduleUnit struct {
	Name    string
	Content string
	Enable  bool
}

const joinServiceUnit = `[Unit]
Description=Swarm join daemon
After=docker.service
Requires=docker.service

[Service]
Type=oneshot
ExecStart=/usr/local/bin/swarmboot join%s

[Install]
WantedBy=multi-user.target
`

const joinTimerUnit = `[Unit]
Description=Swarm join daemon schedule

[Timer]
OnBootSec=30s
OnUnitInactiveSec=5min

[Install]
WantedBy=timers.target
`

const rotateServiceUnit = `[Unit]
Description=Certificate rotation
After=docker.service
Requires=docker.service

[Service]
Type=oneshot
ExecStart=/usr/local/bin/swarmboot rotate-certs%s
`

const rotateTimerUnit = `[Unit]
Description=Certificate rotation schedule

[Timer]
OnCalendar=daily
RandomizedDelaySec=1h
Persistent=true

[Install]
WantedBy=timers.target
`

// scheduleUnits returns the units to install for this node. Workers get
// the join daemon schedule only; managers additionally get the daily
// certificate rotation check.
func scheduleUnits(cfg *config.Config) []scheduleUnit {
	configFlag := ""
	if cfg.Path != "" {
		configFlag = " --config " + cfg.Path
	}
	units := []scheduleUnit{
		{Name: "swarmboot-join.service", Content: fmt.Sprintf(joinServiceUnit, configFlag)},
		{Name: "swarmboot-join.timer", Content: joinTimerUnit, Enable: true},
	}
	if cfg.NodeRole == config.RoleManager {
		units = append(units,
			scheduleUnit{Name: "swarmboot-rotate.service", Content: fmt.Sprintf(rotateServiceUnit, configFlag)},
			scheduleUnit{Name: "swarmboot-rotate.timer", Content: rotateTimerUnit, Enable: true},
		)
	}
	return units
}

// installSchedules writes the unit files and enables the timers.
func installSchedules(ctx context.Context, cfg *config.Config) error {
	units := scheduleUnits(cfg)
	for _, unit := range units {
		path := filepath.Join(unitDir, unit.Name)
		if err := os.WriteFile(path, []byte(unit.Content), 0o644); err != nil {
			return fmt.Errorf("writing unit %s: %w", unit.Name, err)
		}
		log.Printf("Installed %s", unit.Name)
	}
	if err := runSystemctl(ctx, "daemon-reload"); err != nil {
		return err
	}
	for _, unit := range units {
		if !unit.Enable {
			continue
		}
		if err := runSystemctl(ctx, "enable", "--now", unit.Name); err != nil {
			return err
		}
	}
	return nil
}
