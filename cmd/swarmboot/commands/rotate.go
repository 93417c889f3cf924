package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmboot/cmd/swarmboot/handlers"
)

// RotateCerts returns the recurring certificate lifecycle command.
//
// The command only does work on the current cluster leader: a manager
// that is not the leader exits zero without touching anything, and a
// node that is not a manager at all exits non-zero because the schedule
// is misconfigured. When any bundle artifact is missing, unparseable or
// within the renewal threshold of expiry, the entire bundle is
// regenerated as one unit and propagated: password to the secret store,
// artifacts to the cluster secrets, forced reload of every dependent
// service.
func RotateCerts() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "rotate-certs",
		Short: "Verify and rotate the cluster certificate bundle (leader only)",
		Long: `Verify the certificate bundle and rotate it when needed.

Runs on the elected cluster leader only; leadership is re-evaluated on
every tick, which re-homes the responsibility automatically after a
leadership change. The outcome of every run is recorded in the status
file for operator inspection.

Examples:
  # Scheduled run: rotate only when an artifact is near expiry
  swarmboot rotate-certs

  # Operator-triggered full rotation regardless of validity
  swarmboot rotate-certs --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.RotateOptions{
				ConfigPath: configPath,
				Force:      force,
			}
			return handlers.Rotate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: environment only)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate the bundle regardless of validity")

	return cmd
}
