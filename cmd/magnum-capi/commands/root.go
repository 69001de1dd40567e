// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
}

// Root returns the root command for the magnum-capi CLI.
func Root() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "magnum-capi",
		Short:         "Manage Magnum clusters with Cluster API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			ctrl.SetLogger(zap.New(zap.UseDevMode(flags.debug)))
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to the driver configuration file")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable verbose development logging")

	cmd.AddCommand(Serve(flags))
	cmd.AddCommand(Cluster(flags))
	cmd.AddCommand(NodeGroup(flags))
	cmd.AddCommand(Version())

	return cmd
}
