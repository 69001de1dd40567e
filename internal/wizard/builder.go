package wizard

import (
	"strconv"
	"strings"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/util/labels"
)

// Default node group names used by the cluster service.
const (
	MasterGroupName = "default-master"
	WorkerGroupName = "default-worker"
)

// BuildRecord creates a validated cluster record from the wizard result.
func BuildRecord(result *WizardResult) (v1alpha1.Cluster, error) {
	groups := []v1alpha1.NodeGroup{{
		Name:      MasterGroupName,
		Role:      v1alpha1.RoleMaster,
		NodeCount: result.MasterCount,
		FlavorID:  strings.TrimSpace(result.MasterFlavor),
		ImageID:   strings.TrimSpace(result.ImageID),
	}, {
		Name:      WorkerGroupName,
		Role:      v1alpha1.RoleWorker,
		NodeCount: result.WorkerCount,
		FlavorID:  strings.TrimSpace(result.WorkerFlavor),
		ImageID:   strings.TrimSpace(result.ImageID),
	}}

	c, err := v1alpha1.NewCluster(strings.TrimSpace(result.ClusterID), strings.TrimSpace(result.UserID), groups...)
	if err != nil {
		return v1alpha1.Cluster{}, err
	}

	c.Name = result.Name
	c.ProjectID = strings.TrimSpace(result.ProjectID)
	c.KeyPair = strings.TrimSpace(result.KeyPair)
	c.Labels = map[string]string{
		labels.ClusterAutoHealingEnabled: strconv.FormatBool(result.AutoHealing),
	}
	if result.KubeTag != "" {
		c.Labels[labels.ClusterKubeTag] = result.KubeTag
	}

	if n := result.Network; n != nil {
		c.ExternalNetworkID = strings.TrimSpace(n.ExternalNetworkID)
		c.FixedNetwork = strings.TrimSpace(n.FixedNetwork)
		c.FixedSubnet = strings.TrimSpace(n.FixedSubnet)
		c.DNSNameserver = strings.TrimSpace(n.DNSNameserver)
		c.MasterLBEnabled = n.MasterLBEnabled
	}

	return c, nil
}
