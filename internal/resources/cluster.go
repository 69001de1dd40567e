package resources

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/util/labels"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// Cluster network defaults.
const (
	DefaultNodeCIDR      = "10.0.0.0/24"
	DefaultPodCIDR       = "10.100.0.0/16"
	DefaultServiceCIDR   = "10.254.0.0/16"
	DefaultServiceDomain = "cluster.local"
)

func (b *Builder) openStackCluster(c v1alpha1.Cluster) *unstructured.Unstructured {
	spec := map[string]interface{}{
		"cloudName": CloudName,
		"identityRef": map[string]interface{}{
			"kind": SecretGVK.Kind,
			"name": naming.CloudConfigSecret(c.ID),
		},
		"managedSecurityGroups": true,
		"apiServerLoadBalancer": map[string]interface{}{
			"enabled": c.MasterLBEnabled,
		},
	}
	if c.ExternalNetworkID != "" {
		spec["externalNetworkId"] = c.ExternalNetworkID
	}
	if c.DNSNameserver != "" {
		spec["dnsNameservers"] = []interface{}{c.DNSNameserver}
	}
	if c.FixedNetwork != "" {
		spec["network"] = map[string]interface{}{"name": c.FixedNetwork}
		if c.FixedSubnet != "" {
			spec["subnet"] = map[string]interface{}{"name": c.FixedSubnet}
		}
	} else {
		spec["nodeCidr"] = DefaultNodeCIDR
	}

	return newObject(OpenStackClusterGVK, b.Namespace, naming.Cluster(c.ID), clusterLabels(c).Build(), spec)
}

func (b *Builder) cluster(c v1alpha1.Cluster) *unstructured.Unstructured {
	return newObject(ClusterGVK, b.Namespace, naming.Cluster(c.ID), clusterLabels(c).Build(),
		map[string]interface{}{
			"clusterNetwork": map[string]interface{}{
				"serviceDomain": DefaultServiceDomain,
				"pods": map[string]interface{}{
					"cidrBlocks": []interface{}{DefaultPodCIDR},
				},
				"services": map[string]interface{}{
					"cidrBlocks": []interface{}{DefaultServiceCIDR},
				},
			},
			"controlPlaneRef":   objectReference(KubeadmControlPlaneGVK, naming.ControlPlane(c.ID)),
			"infrastructureRef": objectReference(OpenStackClusterGVK, naming.Cluster(c.ID)),
		})
}

// AutoHealingEnabled reports whether the cluster wants a MachineHealthCheck.
func AutoHealingEnabled(c v1alpha1.Cluster) bool {
	return c.LabelBool(labels.ClusterAutoHealingEnabled, true)
}

// MachineHealthCheck builds the auto-healing guard of a cluster. It remediates
// machines whose node stays not ready.
func (b *Builder) MachineHealthCheck(c v1alpha1.Cluster) *unstructured.Unstructured {
	clusterName := naming.Cluster(c.ID)
	unhealthy := func(status string) map[string]interface{} {
		return map[string]interface{}{
			"type":    "Ready",
			"status":  status,
			"timeout": "5m0s",
		}
	}

	return newObject(MachineHealthCheckGVK, b.Namespace, naming.MachineHealthCheck(c.ID), clusterLabels(c).Build(),
		map[string]interface{}{
			"clusterName":  clusterName,
			"maxUnhealthy": "80%",
			"selector": map[string]interface{}{
				"matchLabels": map[string]interface{}{
					labels.KeyClusterName: clusterName,
				},
			},
			"unhealthyConditions": []interface{}{
				unhealthy("False"),
				unhealthy("Unknown"),
			},
		})
}
