package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Identity
	ClusterID string
	Name      string
	UserID    string
	ProjectID string

	// Access
	KeyPair string

	// Control plane
	MasterFlavor string
	MasterCount  int

	// Workers
	WorkerFlavor string
	WorkerCount  int
	ImageID      string

	// Options
	KubeTag     string
	AutoHealing bool

	// Network options (only set in advanced mode)
	Network *NetworkOptions
}

// NetworkOptions holds the tenant network settings.
type NetworkOptions struct {
	ExternalNetworkID string
	FixedNetwork      string
	FixedSubnet       string
	DNSNameserver     string
	MasterLBEnabled   bool
}

// RunWizard runs the interactive wizard. If advanced is true, the network
// settings are asked as well. The context is used for cancellation support
// (e.g., Ctrl+C).
func RunWizard(ctx context.Context, advanced bool) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	if err := runControlPlaneGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("control plane: %w", err)
	}

	if err := runWorkersGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}

	if err := runOptionsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}

	if advanced {
		netOpts := &NetworkOptions{}
		if err := runNetworkGroup(ctx, netOpts); err != nil {
			return nil, fmt.Errorf("network: %w", err)
		}
		result.Network = netOpts
	}

	return result, nil
}
