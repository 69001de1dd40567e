package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/magnum-capi/cmd/magnum-capi/handlers"
)

// Serve returns the serve command.
func Serve(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the status poller with metrics and health endpoints",
		Long: `Serve refreshes every in-progress cluster record once per poll interval
until it reaches a terminal status. Records that reach DELETE_COMPLETE are
removed from the store.

Prometheus metrics are served on metrics.bindAddress and the /healthz and
/readyz probes on metrics.healthBindAddress.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), flags.configPath)
		},
	}
}
