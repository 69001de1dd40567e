package naming

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Naming functions for management cluster resources.
// Names are derived from the cluster id only, so they can be recomputed on
// every call without persisting them.

func Cluster(clusterID string) string {
	return strings.ToLower(clusterID)
}

func NodeGroup(clusterID, nodeGroup string) string {
	return fmt.Sprintf("%s-%s", Cluster(clusterID), strings.ToLower(nodeGroup))
}

func MachineTemplate(clusterID, nodeGroup string) string {
	return NodeGroup(clusterID, nodeGroup)
}

func ControlPlane(clusterID string) string {
	return fmt.Sprintf("%s-control-plane", Cluster(clusterID))
}

func KubeadmConfigTemplate(clusterID string) string {
	return Cluster(clusterID)
}

func CloudConfigSecret(clusterID string) string {
	return fmt.Sprintf("%s-cloud-config", Cluster(clusterID))
}

// CertificateAuthoritySecret follows the Cluster API convention
// {cluster}-{purpose} (ca, etcd, proxy, sa).
func CertificateAuthoritySecret(clusterID, purpose string) string {
	return fmt.Sprintf("%s-%s", Cluster(clusterID), purpose)
}

func AddonConfigMap(clusterID, addon string) string {
	return fmt.Sprintf("%s-%s", Cluster(clusterID), addon)
}

func ClusterResourceSet(clusterID, addon string) string {
	return AddonConfigMap(clusterID, addon)
}

func MachineHealthCheck(clusterID string) string {
	return Cluster(clusterID)
}

// ValidateCluster checks that every name derived from the cluster id is a
// valid object name and label value. The control plane name is the longest.
func ValidateCluster(clusterID string) error {
	return validLabel("cluster id", clusterID, ControlPlane(clusterID))
}

// ValidateNodeGroup checks the names derived for a node group. The group name
// doubles as the MachineDeployment name and its deployment-name label value.
func ValidateNodeGroup(clusterID, nodeGroup string) error {
	return validLabel("node group", nodeGroup, NodeGroup(clusterID, nodeGroup))
}

func validLabel(what, input, derived string) error {
	if errs := validation.IsDNS1123Label(derived); len(errs) > 0 {
		return fmt.Errorf("%s %q yields invalid name %q: %s", what, input, derived, strings.Join(errs, "; "))
	}
	return nil
}

// CredentialName is the identity API name of the cluster's credential.
func CredentialName(clusterID string) string {
	return clusterID
}

// CredentialDescription is the identity API description of the cluster's credential.
func CredentialDescription(clusterID string) string {
	return fmt.Sprintf("Magnum cluster (%s)", clusterID)
}

// InstanceIDFromProviderID returns the last path element of a machine
// providerID, e.g. "openstack:///abc123" yields "abc123".
func InstanceIDFromProviderID(providerID string) string {
	idx := strings.LastIndex(providerID, "/")
	return providerID[idx+1:]
}
