package labels

// Cluster API label and annotation keys read or written by the driver.
const (
	// KeyClusterName associates an object with a Cluster API cluster
	KeyClusterName = "cluster.x-k8s.io/cluster-name"

	// KeyDeploymentName is set by Cluster API on machines owned by a MachineDeployment
	KeyDeploymentName = "cluster.x-k8s.io/deployment-name"

	// KeyControlPlaneName is set by Cluster API on machines owned by a KubeadmControlPlane
	KeyControlPlaneName = "cluster.x-k8s.io/control-plane-name"

	// AnnotationDeleteMachine marks a machine to be removed first on scale down
	AnnotationDeleteMachine = "cluster.x-k8s.io/delete-machine"

	// ValueDeleteMachine is the value written to AnnotationDeleteMachine
	ValueDeleteMachine = "yes"

	// AnnotationAutoscalerMinSize and AnnotationAutoscalerMaxSize bound the
	// cluster autoscaler on a MachineDeployment
	AnnotationAutoscalerMinSize = "cluster.x-k8s.io/cluster-api-autoscaler-node-group-min-size"
	AnnotationAutoscalerMaxSize = "cluster.x-k8s.io/cluster-api-autoscaler-node-group-max-size"
)

// magnum-capi label keys.
const (
	// KeyClusterID identifies the cluster record a resource belongs to
	KeyClusterID = "magnum-capi.io/cluster-id"

	// KeyNodeGroup identifies the node group name
	KeyNodeGroup = "magnum-capi.io/node-group"

	// KeyRole identifies the node group role (master, worker)
	KeyRole = "magnum-capi.io/role"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "magnum-capi.io/managed-by"
)

// ManagedBy values
const (
	ManagedByDriver = "magnum-capi"
)

// Cluster label keys understood by the driver.
const (
	// ClusterAutoHealingEnabled toggles the MachineHealthCheck (default true)
	ClusterAutoHealingEnabled = "auto_healing_enabled"

	// ClusterKubeTag selects the Kubernetes version
	ClusterKubeTag = "kube_tag"
)

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster labels pre-set.
func NewLabelBuilder(clusterName, clusterID string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyClusterName: clusterName,
			KeyClusterID:   clusterID,
			KeyManagedBy:   ManagedByDriver,
		},
	}
}

// WithNodeGroup adds the node group name and role.
func (lb *LabelBuilder) WithNodeGroup(name, role string) *LabelBuilder {
	lb.labels[KeyNodeGroup] = name
	lb.labels[KeyRole] = role
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// ControlPlaneSelector selects the machines of one KubeadmControlPlane.
func ControlPlaneSelector(clusterName, controlPlaneName string) map[string]string {
	return map[string]string{
		KeyClusterName:      clusterName,
		KeyControlPlaneName: controlPlaneName,
	}
}

// DeploymentSelector selects the machines of one MachineDeployment.
func DeploymentSelector(clusterName, deploymentName string) map[string]string {
	return map[string]string{
		KeyClusterName:    clusterName,
		KeyDeploymentName: deploymentName,
	}
}
