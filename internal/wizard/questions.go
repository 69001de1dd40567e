package wizard

import (
	"context"
	"net"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/util/uuid"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// newClusterID generates the default cluster identifier.
var newClusterID = func() string { return string(uuid.NewUUID()) }

// runIdentityGroup prompts for the cluster identity and its owner.
func runIdentityGroup(ctx context.Context, result *WizardResult) error {
	result.ClusterID = newClusterID()

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("1-32 lowercase alphanumeric characters or hyphens").
				Placeholder("my-cluster").
				Value(&result.Name).
				Validate(validateClusterName),
			huh.NewInput().
				Title("Cluster ID").
				Description("Resource names in the management cluster derive from it").
				Value(&result.ClusterID).
				Validate(required(errClusterNameRequired)),
			huh.NewInput().
				Title("User ID").
				Description("Keystone user that owns the application credential").
				Value(&result.UserID).
				Validate(required(errUserIDRequired)),
			huh.NewInput().
				Title("Project ID (Optional)").
				Value(&result.ProjectID),
			huh.NewInput().
				Title("Key Pair (Optional)").
				Description("Nova key pair injected into every machine").
				Value(&result.KeyPair),
		).Title("Cluster Identity"),
	).RunWithContext(ctx)
}

// runControlPlaneGroup prompts for the master node group.
func runControlPlaneGroup(ctx context.Context, result *WizardResult) error {
	result.MasterCount = 1

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Flavor").
				Description("Compute flavor for control plane machines").
				Placeholder("m1.medium").
				Value(&result.MasterFlavor).
				Validate(required(errFlavorRequired)),
			huh.NewSelect[int]().
				Title("Node Count").
				Description("Odd numbers required for etcd quorum (HA)").
				Options(MasterCountOptions...).
				Value(&result.MasterCount),
		).Title("Control Plane"),
	).RunWithContext(ctx)
}

// runWorkersGroup prompts for the default worker node group.
func runWorkersGroup(ctx context.Context, result *WizardResult) error {
	result.WorkerCount = 1

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Flavor").
				Description("Compute flavor for worker machines").
				Placeholder("m1.large").
				Value(&result.WorkerFlavor).
				Validate(required(errFlavorRequired)),
			huh.NewSelect[int]().
				Title("Node Count").
				Options(WorkerCountOptions...).
				Value(&result.WorkerCount),
			huh.NewInput().
				Title("Image (Optional)").
				Description("Glance image for all machines").
				Value(&result.ImageID),
		).Title("Workers"),
	).RunWithContext(ctx)
}

// runOptionsGroup prompts for driver options carried as cluster labels.
func runOptionsGroup(ctx context.Context, result *WizardResult) error {
	result.KubeTag = DefaultKubeTag
	result.AutoHealing = true

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kubernetes Version").
				Options(KubeTagsToOptions()...).
				Value(&result.KubeTag),
			huh.NewConfirm().
				Title("Enable Auto Healing").
				Description("Replace unhealthy machines with a MachineHealthCheck").
				Value(&result.AutoHealing),
		).Title("Options"),
	).RunWithContext(ctx)
}

// runNetworkGroup prompts for the tenant network settings.
func runNetworkGroup(ctx context.Context, opts *NetworkOptions) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("External Network ID (Optional)").
				Description("Network used for floating IPs").
				Value(&opts.ExternalNetworkID),
			huh.NewInput().
				Title("Fixed Network (Optional)").
				Description("Existing tenant network").
				Value(&opts.FixedNetwork),
			huh.NewInput().
				Title("Fixed Subnet (Optional)").
				Value(&opts.FixedSubnet),
			huh.NewInput().
				Title("DNS Nameserver (Optional)").
				Placeholder("8.8.8.8").
				Value(&opts.DNSNameserver).
				Validate(validateNameserver),
			huh.NewConfirm().
				Title("Enable API Load Balancer").
				Description("Place the API server behind a load balancer").
				Value(&opts.MasterLBEnabled),
		).Title("Network"),
	).RunWithContext(ctx)
}

// validateClusterName validates the cluster name format.
func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if !clusterNameRegex.MatchString(s) {
		return errClusterNameInvalid
	}
	return nil
}

// validateNameserver accepts an empty value or an IP address.
func validateNameserver(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if net.ParseIP(s) == nil {
		return errNameserverInvalid
	}
	return nil
}

// required returns a validator rejecting blank input with err.
func required(err error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return err
		}
		return nil
	}
}
