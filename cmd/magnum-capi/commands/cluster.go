package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/magnum-capi/cmd/magnum-capi/handlers"
)

// Cluster returns the cluster command group.
func Cluster(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Run cluster lifecycle operations",
	}

	cmd.AddCommand(clusterInit())
	cmd.AddCommand(clusterCreate(flags))
	cmd.AddCommand(clusterDelete(flags))
	cmd.AddCommand(clusterStatus(flags))
	cmd.AddCommand(clusterRefresh(flags))
	cmd.AddCommand(clusterResize(flags))

	return cmd
}

// clusterInit returns the command for interactively writing a cluster record.
//
// Flags:
//
//	--output, -o: Path to output file (default "cluster.yaml")
//	--advanced, -a: Also ask for the tenant network settings
func clusterInit() *cobra.Command {
	var (
		outputPath string
		advanced   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a cluster record",
		Long: `Interactively create a cluster record file.

This command asks about:

  - Cluster identity (name, ID, owning user and project)
  - Control plane flavor and size
  - Default worker flavor, size and image
  - Kubernetes version and auto healing

Use --advanced for the external network, fixed network and subnet,
DNS nameserver and API load balancer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, advanced)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "cluster.yaml", "Output file path")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "Ask for network options")

	return cmd
}

func clusterCreate(flags *globalFlags) *cobra.Command {
	var recordPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster from a record file",
		Long: `Create issues the cluster credential and applies every Cluster API object
of the cluster described in the record file. It returns once the objects are
submitted; use "cluster refresh" or the serve command to follow progress.

Example:
  magnum-capi cluster create -c driver.yaml -f cluster.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateCluster(cmd.Context(), flags.configPath, recordPath)
		},
	}

	cmd.Flags().StringVarP(&recordPath, "file", "f", "", "Path to the cluster record (YAML) (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func clusterDelete(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CLUSTER_ID",
		Short: "Delete a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DeleteCluster(cmd.Context(), flags.configPath, args[0])
		},
	}
}

func clusterStatus(flags *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "status CLUSTER_ID",
		Short: "Show the stored record and live health of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ClusterStatus(cmd.Context(), flags.configPath, args[0], jsonOutput, watch)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the cluster in a live dashboard until it settles")

	return cmd
}

func clusterRefresh(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh CLUSTER_ID",
		Short: "Refresh the status of a cluster once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.RefreshCluster(cmd.Context(), flags.configPath, args[0])
		},
	}
}

func clusterResize(flags *globalFlags) *cobra.Command {
	var (
		nodeCount     int
		nodesToRemove []string
		nodeGroup     string
	)

	cmd := &cobra.Command{
		Use:   "resize CLUSTER_ID",
		Short: "Change the node count of a node group",
		Long: `Resize sets the node count of a node group, the default worker group unless
--nodegroup is given. Instances passed with --remove are marked so they are
removed first when the group scales down.

Example:
  magnum-capi cluster resize 0b5e6a5c --count 2 --remove 3f1c9d2e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ResizeCluster(cmd.Context(), flags.configPath, args[0], nodeCount, nodesToRemove, nodeGroup)
		},
	}

	cmd.Flags().IntVar(&nodeCount, "count", 0, "Desired node count (required)")
	cmd.Flags().StringSliceVar(&nodesToRemove, "remove", nil, "Instance IDs to remove first")
	cmd.Flags().StringVar(&nodeGroup, "nodegroup", "", "Node group to resize (default: first worker group)")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}
