package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmboot/cmd/swarmboot/handlers"
)

// Bootstrap returns the command run once at node start.
//
// On a manager node the command decides whether this node must
// initialize a new cluster or defer to one a peer already initialized,
// and publishes the shared cluster state record after winning
// initialization. On worker nodes it only installs the recurring
// schedules; joining is the join daemon's job.
//
// Optional flags:
//
//	--config, -c: Path to the swarmboot configuration YAML file
//	--skip-schedules: Do not install the recurring systemd schedules
//	--dry-run: Print what would be done without making changes
//
// Environment variables (set by the provisioning layer):
//
//	SWARMBOOT_REGION, SWARMBOOT_CLUSTER_ID, SWARMBOOT_STATE_TABLE,
//	SWARMBOOT_SECRET_ID, SWARMBOOT_NODE_ROLE
func Bootstrap() *cobra.Command {
	var (
		configPath    string
		skipSchedules bool
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Initialize or defer to the cluster, then install the recurring schedules",
		Long: `Bootstrap this node into the cluster.

A manager node that finds no published cluster state record initializes
a new cluster, reads the join credentials from the runtime and publishes
the record for its peers. A manager that finds the record defers to the
join daemon, and a worker always defers. A failed initialization exits
non-zero so the node-health tooling can replace the node.

Examples:
  # Bootstrap using environment configuration only
  swarmboot bootstrap

  # Bootstrap with a config file, without touching systemd
  swarmboot bootstrap -c /etc/swarmboot/swarmboot.yaml --skip-schedules`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.BootstrapOptions{
				ConfigPath:    configPath,
				SkipSchedules: skipSchedules,
				DryRun:        dryRun,
			}
			return handlers.Bootstrap(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: environment only)")
	cmd.Flags().BoolVar(&skipSchedules, "skip-schedules", false, "Skip installing the recurring systemd schedules")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be done without making changes")

	return cmd
}
