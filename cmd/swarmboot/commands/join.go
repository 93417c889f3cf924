package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmboot/cmd/swarmboot/handlers"
)

// Join returns the recurring join daemon command.
//
// Each invocation is one bounded tick: a node already in the cluster
// returns success immediately, otherwise the shared cluster state
// record is polled and a join attempted until success or the deadline.
// A deadline hit exits non-zero and the next scheduled tick retries
// from a fresh membership check.
func Join() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join this node to the cluster (recurring, idempotent)",
		Long: `Join this node to the cluster published in the state record.

The command is safe to re-trigger indefinitely: once the node is a
member every further invocation is a no-op. The wall-clock deadline and
poll backoff are controlled by SWARMBOOT_JOIN_DEADLINE (default 300s)
and SWARMBOOT_JOIN_BACKOFF (default 10s).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Join(cmd.Context(), handlers.JoinOptions{ConfigPath: configPath})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: environment only)")

	return cmd
}
