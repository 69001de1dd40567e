package testing

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/util/labels"
)

// ClusterStatus is the status block of a Cluster object whose
// ControlPlaneReady condition has the given value. An empty value omits the
// condition.
func ClusterStatus(controlPlaneReady string) map[string]interface{} {
	conditions := []interface{}{
		map[string]interface{}{"type": "InfrastructureReady", "status": "True"},
	}
	if controlPlaneReady != "" {
		conditions = append(conditions, map[string]interface{}{"type": "ControlPlaneReady", "status": controlPlaneReady})
	}
	return map[string]interface{}{"conditions": conditions}
}

// SetControlPlaneEndpoint writes the endpoint the Cluster API controller
// copies from the infrastructure cluster.
func SetControlPlaneEndpoint(host string, port int64) func(obj *unstructured.Unstructured) {
	return func(obj *unstructured.Unstructured) {
		_ = unstructured.SetNestedField(obj.Object, host, "spec", "controlPlaneEndpoint", "host")
		_ = unstructured.SetNestedField(obj.Object, port, "spec", "controlPlaneEndpoint", "port")
	}
}

// ControlPlaneStatus is the status block of a KubeadmControlPlane.
func ControlPlaneStatus(ready bool, version, failureMessage string) map[string]interface{} {
	status := map[string]interface{}{"ready": ready}
	if version != "" {
		status["version"] = version
	}
	if failureMessage != "" {
		status["failureMessage"] = failureMessage
	}
	return status
}

// MachineDeploymentStatus is the status block of a MachineDeployment.
func MachineDeploymentStatus(phase string) map[string]interface{} {
	return map[string]interface{}{"phase": phase}
}

// Machine builds a Machine owned by a MachineDeployment.
func Machine(namespace, clusterName, deploymentName, name, providerID string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{}}
	obj.SetGroupVersionKind(resources.MachineGVK)
	obj.SetNamespace(namespace)
	obj.SetName(name)
	obj.SetLabels(labels.DeploymentSelector(clusterName, deploymentName))
	_ = unstructured.SetNestedField(obj.Object, providerID, "spec", "providerID")
	return obj
}
