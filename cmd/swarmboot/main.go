// Package main is the entry point for the swarmboot CLI.
//
// swarmboot turns independently launched compute nodes into a working
// Docker Swarm cluster and keeps the cluster's TLS material valid
// without human intervention. It is installed on every node by the
// provisioning layer and driven by recurring schedules.
//
// Commands: bootstrap, join, rotate-certs, status.
//
// For detailed usage information, run:
//
//	swarmboot --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/swarmboot/cmd/swarmboot/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
