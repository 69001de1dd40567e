package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

var build = buildInfo{Version: "dev", Commit: "none", Date: "unknown"}

// SetVersionInfo records the linker-provided build metadata.
func SetVersionInfo(v, c, d string) {
	build = buildInfo{Version: v, Commit: c, Date: d}
}

// Version returns the version command.
func Version() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, build.Version)
				return
			}
			fmt.Fprintf(w, "magnum-capi %s (commit: %s, built %s)\n", build.Version, build.Commit, build.Date)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
