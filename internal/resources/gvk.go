package resources

import (
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// API groups of the Cluster API providers the driver targets.
const (
	GroupCluster        = "cluster.x-k8s.io"
	GroupAddons         = "addons.cluster.x-k8s.io"
	GroupControlPlane   = "controlplane.cluster.x-k8s.io"
	GroupBootstrap      = "bootstrap.cluster.x-k8s.io"
	GroupInfrastructure = "infrastructure.cluster.x-k8s.io"

	versionCAPI = "v1beta1"
	versionCAPO = "v1alpha7"
)

var (
	NamespaceGVK                = schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}
	ConfigMapGVK                = schema.GroupVersionKind{Version: "v1", Kind: "ConfigMap"}
	SecretGVK                   = schema.GroupVersionKind{Version: "v1", Kind: "Secret"}
	ClusterResourceSetGVK       = schema.GroupVersionKind{Group: GroupAddons, Version: versionCAPI, Kind: "ClusterResourceSet"}
	ClusterGVK                  = schema.GroupVersionKind{Group: GroupCluster, Version: versionCAPI, Kind: "Cluster"}
	MachineDeploymentGVK        = schema.GroupVersionKind{Group: GroupCluster, Version: versionCAPI, Kind: "MachineDeployment"}
	MachineHealthCheckGVK       = schema.GroupVersionKind{Group: GroupCluster, Version: versionCAPI, Kind: "MachineHealthCheck"}
	MachineGVK                  = schema.GroupVersionKind{Group: GroupCluster, Version: versionCAPI, Kind: "Machine"}
	KubeadmControlPlaneGVK      = schema.GroupVersionKind{Group: GroupControlPlane, Version: versionCAPI, Kind: "KubeadmControlPlane"}
	KubeadmConfigTemplateGVK    = schema.GroupVersionKind{Group: GroupBootstrap, Version: versionCAPI, Kind: "KubeadmConfigTemplate"}
	OpenStackClusterGVK         = schema.GroupVersionKind{Group: GroupInfrastructure, Version: versionCAPO, Kind: "OpenStackCluster"}
	OpenStackMachineTemplateGVK = schema.GroupVersionKind{Group: GroupInfrastructure, Version: versionCAPO, Kind: "OpenStackMachineTemplate"}
)

func ref(gvk schema.GroupVersionKind, namespace, name string) applier.Ref {
	return applier.Ref{GroupVersionKind: gvk, Namespace: namespace, Name: name}
}

// ClusterRef references the top-level Cluster object.
func ClusterRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(ClusterGVK, namespace, naming.Cluster(c.ID))
}

// ControlPlaneRef references the KubeadmControlPlane of the master node group.
func ControlPlaneRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(KubeadmControlPlaneGVK, namespace, naming.ControlPlane(c.ID))
}

// MachineDeploymentRef references the MachineDeployment of a worker node group.
func MachineDeploymentRef(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) applier.Ref {
	return ref(MachineDeploymentGVK, namespace, naming.NodeGroup(c.ID, ng.Name))
}

// MachineTemplateRef references the OpenStackMachineTemplate of a node group.
func MachineTemplateRef(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) applier.Ref {
	return ref(OpenStackMachineTemplateGVK, namespace, naming.MachineTemplate(c.ID, ng.Name))
}

// KubeadmConfigTemplateRef references the bootstrap template shared by all workers.
func KubeadmConfigTemplateRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(KubeadmConfigTemplateGVK, namespace, naming.KubeadmConfigTemplate(c.ID))
}

func OpenStackClusterRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(OpenStackClusterGVK, namespace, naming.Cluster(c.ID))
}

func CloudConfigSecretRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(SecretGVK, namespace, naming.CloudConfigSecret(c.ID))
}

func CertificateAuthorityRef(namespace string, c v1alpha1.Cluster, kind certs.Kind) applier.Ref {
	return ref(SecretGVK, namespace, naming.CertificateAuthoritySecret(c.ID, string(kind)))
}

// CertificateAuthorityRefs references the four CA secrets in certs.AllKinds order.
func CertificateAuthorityRefs(namespace string, c v1alpha1.Cluster) []applier.Ref {
	refs := make([]applier.Ref, 0, len(certs.AllKinds))
	for _, kind := range certs.AllKinds {
		refs = append(refs, CertificateAuthorityRef(namespace, c, kind))
	}
	return refs
}

func MachineHealthCheckRef(namespace string, c v1alpha1.Cluster) applier.Ref {
	return ref(MachineHealthCheckGVK, namespace, naming.MachineHealthCheck(c.ID))
}

// objectReference renders the {apiVersion, kind, name} object reference used in
// Cluster API specs.
func objectReference(gvk schema.GroupVersionKind, name string) map[string]interface{} {
	apiVersion, kind := gvk.ToAPIVersionAndKind()
	return map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"name":       name,
	}
}
