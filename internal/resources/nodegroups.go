package resources

import (
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/util/labels"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// DefaultKubernetesVersion is used when the cluster has no kube_tag label.
const DefaultKubernetesVersion = "v1.27.4"

// GroupKind carries the role specific behaviour of a node group. Callers
// resolve it once with KindOf and never branch on the role again.
type GroupKind interface {
	// Role returns the role the kind implements.
	Role() v1alpha1.Role

	// Resources returns the node group objects in apply order.
	Resources(b *Builder, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []Descriptor

	// DeleteRefs returns the objects removed by a node group deletion, in
	// delete order.
	DeleteRefs(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []applier.Ref

	// StatusSource returns the object the node group status is derived from.
	StatusSource(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) StatusSource

	// MachineSelector selects the Machines of the node group.
	MachineSelector(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) map[string]string
}

// StatusSource names the object to read and how to fold it into an observation.
type StatusSource struct {
	Ref     applier.Ref
	Observe func(obj *unstructured.Unstructured) Observation

	// Health returns why the object reports an unhealthy node group, or ""
	// when it is healthy.
	Health func(obj *unstructured.Unstructured) string
}

// Observation is what one fresh read of a node group object says about the
// node group. Fields without their Has flag leave the record untouched.
type Observation struct {
	Outcome    v1alpha1.Outcome
	HasOutcome bool

	Reason    string
	HasReason bool

	// Version is the observed Kubernetes version, reported by the control plane only.
	Version string
}

// Apply folds the observation into the node group. The action of the current
// status is kept and only the outcome is replaced.
func (o Observation) Apply(ng v1alpha1.NodeGroup) v1alpha1.NodeGroup {
	if o.HasOutcome {
		action := ng.Status.Action()
		if action == "" {
			action = v1alpha1.ActionCreate
		}
		ng.Status = v1alpha1.NewStatus(action, o.Outcome)
	}
	if o.HasReason {
		ng.StatusReason = o.Reason
	}
	return ng
}

// KindOf resolves the kind of a node group.
func KindOf(ng v1alpha1.NodeGroup) GroupKind {
	if ng.IsMaster() {
		return MasterGroup{}
	}
	return WorkerGroup{}
}

// MasterGroup is the control plane node group, backed by a KubeadmControlPlane.
type MasterGroup struct{}

func (MasterGroup) Role() v1alpha1.Role { return v1alpha1.RoleMaster }

func (MasterGroup) Resources(b *Builder, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []Descriptor {
	return []Descriptor{
		{Step: StepNodeGroups, Object: b.machineTemplate(c, ng)},
		{Step: StepNodeGroups, Object: b.controlPlane(c, ng)},
	}
}

// DeleteRefs only returns the machine template: the control plane cannot be
// removed through a node group deletion.
func (MasterGroup) DeleteRefs(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []applier.Ref {
	return []applier.Ref{MachineTemplateRef(namespace, c, ng)}
}

func (MasterGroup) StatusSource(namespace string, c v1alpha1.Cluster, _ v1alpha1.NodeGroup) StatusSource {
	return StatusSource{Ref: ControlPlaneRef(namespace, c), Observe: observeControlPlane, Health: controlPlaneHealth}
}

func (MasterGroup) MachineSelector(c v1alpha1.Cluster, _ v1alpha1.NodeGroup) map[string]string {
	return labels.ControlPlaneSelector(naming.Cluster(c.ID), naming.ControlPlane(c.ID))
}

func observeControlPlane(obj *unstructured.Unstructured) Observation {
	ready, _, _ := unstructured.NestedBool(obj.Object, "status", "ready")
	failureMessage, _, _ := unstructured.NestedString(obj.Object, "status", "failureMessage")
	version, _, _ := unstructured.NestedString(obj.Object, "status", "version")

	o := Observation{Reason: failureMessage, HasReason: true, Version: version}
	if ready {
		o.Outcome = v1alpha1.OutcomeComplete
		o.HasOutcome = true
	}
	return o
}

// WorkerGroup is a node group backed by a MachineDeployment.
type WorkerGroup struct{}

func (WorkerGroup) Role() v1alpha1.Role { return v1alpha1.RoleWorker }

func (WorkerGroup) Resources(b *Builder, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []Descriptor {
	return []Descriptor{
		{Step: StepNodeGroups, Object: b.machineTemplate(c, ng)},
		{Step: StepNodeGroups, Object: b.kubeadmConfigTemplate(c)},
		{Step: StepNodeGroups, Object: b.MachineDeployment(c, ng)},
	}
}

// DeleteRefs returns the MachineDeployment, then the shared bootstrap template
// when no other worker group still uses it, then the machine template.
func (WorkerGroup) DeleteRefs(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) []applier.Ref {
	refs := []applier.Ref{MachineDeploymentRef(namespace, c, ng)}

	shared := false
	for _, other := range c.NodeGroups {
		if !other.IsMaster() && other.Name != ng.Name {
			shared = true
			break
		}
	}
	if !shared {
		refs = append(refs, KubeadmConfigTemplateRef(namespace, c))
	}

	return append(refs, MachineTemplateRef(namespace, c, ng))
}

func (WorkerGroup) StatusSource(namespace string, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) StatusSource {
	return StatusSource{Ref: MachineDeploymentRef(namespace, c, ng), Observe: observeMachineDeployment, Health: machineDeploymentHealth}
}

func (WorkerGroup) MachineSelector(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) map[string]string {
	return labels.DeploymentSelector(naming.Cluster(c.ID), naming.NodeGroup(c.ID, ng.Name))
}

func observeMachineDeployment(obj *unstructured.Unstructured) Observation {
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	outcome, ok := OutcomeForPhase(Phase(phase))
	return Observation{Outcome: outcome, HasOutcome: ok}
}

func controlPlaneHealth(obj *unstructured.Unstructured) string {
	if ready, _, _ := unstructured.NestedBool(obj.Object, "status", "ready"); !ready {
		if msg, _, _ := unstructured.NestedString(obj.Object, "status", "failureMessage"); msg != "" {
			return msg
		}
		return "control plane not ready"
	}
	return replicaHealth(obj)
}

func machineDeploymentHealth(obj *unstructured.Unstructured) string {
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	if Phase(phase) != PhaseRunning {
		return fmt.Sprintf("machine deployment phase %q", phase)
	}
	return replicaHealth(obj)
}

func replicaHealth(obj *unstructured.Unstructured) string {
	replicas, _, _ := unstructured.NestedInt64(obj.Object, "status", "replicas")
	ready, _, _ := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	if ready < replicas {
		return fmt.Sprintf("%d of %d machines ready", ready, replicas)
	}
	return ""
}

func kubernetesVersion(c v1alpha1.Cluster) string {
	if v, ok := c.Label(labels.ClusterKubeTag); ok && v != "" {
		return v
	}
	return DefaultKubernetesVersion
}

func nodeGroupLabels(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) map[string]string {
	return clusterLabels(c).WithNodeGroup(ng.Name, string(ng.Role)).Build()
}

func (b *Builder) machineTemplate(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) *unstructured.Unstructured {
	machine := map[string]interface{}{
		"cloudName": CloudName,
		"identityRef": map[string]interface{}{
			"kind": SecretGVK.Kind,
			"name": naming.CloudConfigSecret(c.ID),
		},
		"flavor": ng.FlavorID,
	}
	if ng.ImageID != "" {
		machine["imageUUID"] = ng.ImageID
	}
	if c.KeyPair != "" {
		machine["sshKeyName"] = c.KeyPair
	}

	return newObject(OpenStackMachineTemplateGVK, b.Namespace, naming.MachineTemplate(c.ID, ng.Name), nodeGroupLabels(c, ng),
		map[string]interface{}{
			"template": map[string]interface{}{
				"spec": machine,
			},
		})
}

func nodeRegistration() map[string]interface{} {
	return map[string]interface{}{
		"name": "{{ local_hostname }}",
		"kubeletExtraArgs": map[string]interface{}{
			"cloud-provider": "external",
		},
	}
}

func (b *Builder) controlPlane(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) *unstructured.Unstructured {
	external := map[string]interface{}{"cloud-provider": "external"}

	return newObject(KubeadmControlPlaneGVK, b.Namespace, naming.ControlPlane(c.ID), nodeGroupLabels(c, ng),
		map[string]interface{}{
			"replicas": int64(ng.NodeCount),
			"version":  kubernetesVersion(c),
			"machineTemplate": map[string]interface{}{
				"infrastructureRef": objectReference(OpenStackMachineTemplateGVK, naming.MachineTemplate(c.ID, ng.Name)),
			},
			"kubeadmConfigSpec": map[string]interface{}{
				"clusterConfiguration": map[string]interface{}{
					"apiServer":         map[string]interface{}{"extraArgs": external},
					"controllerManager": map[string]interface{}{"extraArgs": external},
				},
				"initConfiguration": map[string]interface{}{"nodeRegistration": nodeRegistration()},
				"joinConfiguration": map[string]interface{}{"nodeRegistration": nodeRegistration()},
				"files":             b.cloudConfigFiles(c),
			},
		})
}

func (b *Builder) kubeadmConfigTemplate(c v1alpha1.Cluster) *unstructured.Unstructured {
	return newObject(KubeadmConfigTemplateGVK, b.Namespace, naming.KubeadmConfigTemplate(c.ID), clusterLabels(c).Build(),
		map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"joinConfiguration": map[string]interface{}{"nodeRegistration": nodeRegistration()},
					"files":             b.cloudConfigFiles(c),
				},
			},
		})
}

// MachineDeployment builds the MachineDeployment of a worker node group. A
// resize re-applies it with the new node count.
func (b *Builder) MachineDeployment(c v1alpha1.Cluster, ng v1alpha1.NodeGroup) *unstructured.Unstructured {
	clusterName := naming.Cluster(c.ID)
	selector := map[string]interface{}{
		labels.KeyClusterName: clusterName,
		labels.KeyNodeGroup:   ng.Name,
	}

	obj := newObject(MachineDeploymentGVK, b.Namespace, naming.NodeGroup(c.ID, ng.Name), nodeGroupLabels(c, ng),
		map[string]interface{}{
			"clusterName": clusterName,
			"replicas":    int64(ng.NodeCount),
			"selector": map[string]interface{}{
				"matchLabels": selector,
			},
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{
					"labels": selector,
				},
				"spec": map[string]interface{}{
					"clusterName": clusterName,
					"version":     kubernetesVersion(c),
					"bootstrap": map[string]interface{}{
						"configRef": objectReference(KubeadmConfigTemplateGVK, naming.KubeadmConfigTemplate(c.ID)),
					},
					"infrastructureRef": objectReference(OpenStackMachineTemplateGVK, naming.MachineTemplate(c.ID, ng.Name)),
				},
			},
		})

	if ng.MaxNodeCount > 0 {
		obj.SetAnnotations(map[string]string{
			labels.AnnotationAutoscalerMinSize: strconv.Itoa(ng.MinNodeCount),
			labels.AnnotationAutoscalerMaxSize: strconv.Itoa(ng.MaxNodeCount),
		})
	}
	return obj
}
