// Package main is the entry point for the magnum-capi CLI.
//
// magnum-capi drives the lifecycle of Magnum clusters through Cluster API
// objects in a management cluster. The serve command runs the status poller
// together with the metrics and health endpoints; the cluster and nodegroup
// commands run single driver operations against the local record store.
//
// For detailed usage information, run:
//
//	magnum-capi --help
package main

import (
	"fmt"
	"os"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/imamik/magnum-capi/cmd/magnum-capi/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
