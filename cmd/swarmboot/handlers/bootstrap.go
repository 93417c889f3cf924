package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/swarmboot/internal/bootstrap"
	"github.com/imamik/swarmboot/internal/config"
)

// BootstrapOptions holds options for the bootstrap command.
type BootstrapOptions struct {
	ConfigPath    string
	SkipSchedules bool
	DryRun        bool
}

// Bootstrap runs the one-time node bootstrap: the initialization
// decision on managers, then installation of the recurring schedules
// for the join daemon and, on managers, the certificate lifecycle.
func Bootstrap(ctx context.Context, opts BootstrapOptions) error {
	cfg, timeouts, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.DryRun {
		log.Printf("Dry run: would bootstrap cluster %s as %s", cfg.ClusterID, cfg.NodeRole)
		printSchedulePlan(cfg)
		return nil
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	store, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}

	log.Println("Phase 1/2: Cluster initialization decision...")
	coordinator := bootstrap.New(cfg, timeouts, rt, store)
	if err := coordinator.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	if opts.SkipSchedules {
		log.Println("Skipping schedule installation")
		return nil
	}

	log.Println("Phase 2/2: Installing recurring schedules...")
	if err := installSchedules(ctx, cfg); err != nil {
		return fmt.Errorf("schedule installation failed: %w", err)
	}

	log.Println("Bootstrap complete")
	return nil
}

// printSchedulePlan lists the schedules a real run would install.
func printSchedulePlan(cfg *config.Config) {
	for _, unit := range scheduleUnits(cfg) {
		fmt.Printf("Would install %s\n", unit.Name)
	}
}
