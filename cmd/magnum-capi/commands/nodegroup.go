package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/cmd/magnum-capi/handlers"
)

// NodeGroup returns the nodegroup command group.
func NodeGroup(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodegroup",
		Short: "Run node group lifecycle operations",
	}

	cmd.AddCommand(nodeGroupCreate(flags))
	cmd.AddCommand(nodeGroupDelete(flags))

	return cmd
}

func nodeGroupCreate(flags *globalFlags) *cobra.Command {
	ng := v1alpha1.NodeGroup{Role: v1alpha1.RoleWorker}
	var role string

	cmd := &cobra.Command{
		Use:   "create CLUSTER_ID NAME",
		Short: "Add a worker node group to a cluster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ng.Name = args[1]
			ng.Role = v1alpha1.Role(role)
			return handlers.CreateNodeGroup(cmd.Context(), flags.configPath, args[0], ng)
		},
	}

	cmd.Flags().StringVar(&role, "role", string(v1alpha1.RoleWorker), "Node group role")
	cmd.Flags().IntVar(&ng.NodeCount, "count", 1, "Node count")
	cmd.Flags().IntVar(&ng.MinNodeCount, "min", 0, "Minimum node count for the autoscaler")
	cmd.Flags().IntVar(&ng.MaxNodeCount, "max", 0, "Maximum node count for the autoscaler (0 disables autoscaling)")
	cmd.Flags().StringVar(&ng.FlavorID, "flavor", "", "Compute flavor (required)")
	cmd.Flags().StringVar(&ng.ImageID, "image", "", "Machine image")
	_ = cmd.MarkFlagRequired("flavor")

	return cmd
}

func nodeGroupDelete(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CLUSTER_ID NAME",
		Short: "Delete a node group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DeleteNodeGroup(cmd.Context(), flags.configPath, args[0], args[1])
		},
	}
}
