// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the swarmboot CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarmboot",
		Short: "Bootstrap Docker Swarm clusters and rotate their TLS material",
	}

	// Node lifecycle commands
	cmd.AddCommand(Bootstrap())
	cmd.AddCommand(Join())
	cmd.AddCommand(RotateCerts())

	// Utility commands
	cmd.AddCommand(Status())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
