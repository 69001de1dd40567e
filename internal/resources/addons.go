package resources

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/util/labels"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// Addon is a workload distributed to the child cluster by a ClusterResourceSet.
type Addon string

const (
	AddonCloudControllerManager Addon = "cloud-controller-manager"
	AddonCalico                 Addon = "calico"
	AddonCinderCSI              Addon = "cinder-csi"
)

// Addons lists the addons in apply order.
var Addons = []Addon{AddonCloudControllerManager, AddonCalico, AddonCinderCSI}

// manifestKey is the ConfigMap key holding the addon manifest.
func (a Addon) manifestKey() string {
	return string(a) + ".yaml"
}

func (b *Builder) addonConfigMap(c v1alpha1.Cluster, addon Addon) (*unstructured.Unstructured, error) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.AddonConfigMap(c.ID, string(addon)),
			Namespace: b.Namespace,
			Labels:    clusterLabels(c).Build(),
		},
		Data: map[string]string{
			addon.manifestKey(): string(b.Manifests[addon]),
		},
	}
	return fromTyped(ConfigMapGVK, cm)
}

func (b *Builder) addonResourceSet(c v1alpha1.Cluster, addon Addon) *unstructured.Unstructured {
	return newObject(ClusterResourceSetGVK, b.Namespace, naming.ClusterResourceSet(c.ID, string(addon)), clusterLabels(c).Build(),
		map[string]interface{}{
			"clusterSelector": map[string]interface{}{
				"matchLabels": map[string]interface{}{
					labels.KeyClusterID: c.ID,
				},
			},
			"resources": []interface{}{
				map[string]interface{}{
					"name": naming.AddonConfigMap(c.ID, string(addon)),
					"kind": ConfigMapGVK.Kind,
				},
			},
		})
}

func clusterLabels(c v1alpha1.Cluster) *labels.LabelBuilder {
	return labels.NewLabelBuilder(naming.Cluster(c.ID), c.ID)
}
