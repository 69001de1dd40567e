package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/util/labels"
)

const testNamespace = "magnum-system"

func testBuilder() *Builder {
	return &Builder{
		Namespace:  testNamespace,
		AuthURL:    "https://keystone.example.com/v3",
		RegionName: "RegionOne",
		Interface:  "public",
		Manifests: map[Addon][]byte{
			AddonCalico: []byte("kind: DaemonSet\n"),
		},
	}
}

func testCluster(t *testing.T) v1alpha1.Cluster {
	t.Helper()
	c, err := v1alpha1.NewCluster("C0FFEE", "user-1",
		v1alpha1.NodeGroup{Name: "default-master", Role: v1alpha1.RoleMaster, NodeCount: 3, FlavorID: "m1.large"},
		v1alpha1.NodeGroup{Name: "default-worker", Role: v1alpha1.RoleWorker, NodeCount: 2, FlavorID: "m1.medium"},
		v1alpha1.NodeGroup{Name: "gpu", Role: v1alpha1.RoleWorker, NodeCount: 1, FlavorID: "g1.large"},
	)
	require.NoError(t, err)
	return c
}

func testCredential() *credentials.Credential {
	return &credentials.Credential{ID: "cred-id", Name: "C0FFEE", Secret: "s3cret"}
}

func allCAs() map[certs.Kind]*certs.KeyPair {
	cas := make(map[certs.Kind]*certs.KeyPair, len(certs.AllKinds))
	for _, kind := range certs.AllKinds {
		cas[kind] = &certs.KeyPair{Cert: []byte("cert-" + string(kind)), Key: []byte("key-" + string(kind))}
	}
	return cas
}

func countKinds(g Graph) map[string]int {
	counts := map[string]int{}
	for _, d := range g {
		counts[d.Object.GetKind()]++
	}
	return counts
}

func indexOf(t *testing.T, g Graph, kind, name string) int {
	t.Helper()
	for i, d := range g {
		if d.Object.GetKind() == kind && d.Object.GetName() == name {
			return i
		}
	}
	t.Fatalf("%s %s not found in graph", kind, name)
	return -1
}

func TestClusterGraph_Counts(t *testing.T) {
	t.Parallel()

	g, err := testBuilder().ClusterGraph(testCluster(t), testCredential(), allCAs())
	require.NoError(t, err)

	counts := countKinds(g)
	assert.Equal(t, 1, counts["Namespace"])
	assert.Equal(t, 3, counts["ConfigMap"])
	assert.Equal(t, 3, counts["ClusterResourceSet"])
	assert.Equal(t, 5, counts["Secret"], "four certificate authorities and the cloud config")
	assert.Equal(t, 3, counts["OpenStackMachineTemplate"])
	assert.Equal(t, 1, counts["KubeadmControlPlane"])
	assert.Equal(t, 2, counts["KubeadmConfigTemplate"], "shared template is applied once per worker group")
	assert.Equal(t, 2, counts["MachineDeployment"])
	assert.Equal(t, 1, counts["OpenStackCluster"])
	assert.Equal(t, 1, counts["Cluster"])
	assert.Equal(t, 1, counts["MachineHealthCheck"])
}

func TestClusterGraph_StepsAreOrdered(t *testing.T) {
	t.Parallel()

	g, err := testBuilder().ClusterGraph(testCluster(t), testCredential(), allCAs())
	require.NoError(t, err)

	for i := 1; i < len(g); i++ {
		assert.LessOrEqual(t, g[i-1].Step, g[i].Step, "descriptor %d (%s) is out of order", i, g[i].Ref())
	}

	cloudConfig := indexOf(t, g, "Secret", "c0ffee-cloud-config")
	firstTemplate := indexOf(t, g, "OpenStackMachineTemplate", "c0ffee-default-master")
	assert.Less(t, cloudConfig, firstTemplate, "cloud config precedes every node group")

	cluster := indexOf(t, g, "Cluster", "c0ffee")
	for _, kind := range certs.AllKinds {
		assert.Less(t, indexOf(t, g, "Secret", "c0ffee-"+string(kind)), cluster)
	}

	infra := indexOf(t, g, "OpenStackCluster", "c0ffee")
	assert.Less(t, indexOf(t, g, "OpenStackMachineTemplate", "c0ffee-gpu"), infra)
	assert.Less(t, infra, cluster)
}

func TestClusterGraph_NodeGroupsKeepCallerOrder(t *testing.T) {
	t.Parallel()

	g, err := testBuilder().ClusterGraph(testCluster(t), testCredential(), allCAs())
	require.NoError(t, err)

	var names []string
	for _, ref := range g.Refs(StepNodeGroups) {
		names = append(names, ref.Kind+"/"+ref.Name)
	}
	assert.Equal(t, []string{
		"OpenStackMachineTemplate/c0ffee-default-master",
		"KubeadmControlPlane/c0ffee-control-plane",
		"OpenStackMachineTemplate/c0ffee-default-worker",
		"KubeadmConfigTemplate/c0ffee",
		"MachineDeployment/c0ffee-default-worker",
		"OpenStackMachineTemplate/c0ffee-gpu",
		"KubeadmConfigTemplate/c0ffee",
		"MachineDeployment/c0ffee-gpu",
	}, names)
}

func TestClusterGraph_SkipsExistingCertificateAuthorities(t *testing.T) {
	t.Parallel()

	cas := allCAs()
	delete(cas, certs.KindEtcd)
	delete(cas, certs.KindServiceAccount)

	g, err := testBuilder().ClusterGraph(testCluster(t), testCredential(), cas)
	require.NoError(t, err)

	refs := g.Refs(StepCertificateAuthorities)
	require.Len(t, refs, 2)
	assert.Equal(t, "c0ffee-ca", refs[0].Name)
	assert.Equal(t, "c0ffee-proxy", refs[1].Name)
}

func TestClusterGraph_AutoHealingDisabled(t *testing.T) {
	t.Parallel()

	c := testCluster(t)
	c.Labels = map[string]string{labels.ClusterAutoHealingEnabled: "false"}

	g, err := testBuilder().ClusterGraph(c, testCredential(), allCAs())
	require.NoError(t, err)
	assert.Empty(t, g.Refs(StepAutoHealing))
	assert.False(t, AutoHealingEnabled(c))
}

func TestClusterGraph_Errors(t *testing.T) {
	t.Parallel()

	_, err := testBuilder().ClusterGraph(testCluster(t), nil, allCAs())
	require.Error(t, err)

	c := testCluster(t)
	c.NodeGroups = c.NodeGroups[1:]
	_, err = testBuilder().ClusterGraph(c, testCredential(), allCAs())
	require.ErrorIs(t, err, v1alpha1.ErrInvalidNodeGroups)
}

func TestClusterGraph_Objects(t *testing.T) {
	t.Parallel()

	c := testCluster(t)
	c.Labels = map[string]string{labels.ClusterKubeTag: "v1.28.1"}
	g, err := testBuilder().ClusterGraph(c, testCredential(), allCAs())
	require.NoError(t, err)

	for _, d := range g {
		if d.Object.GetKind() != "Namespace" {
			assert.Equal(t, testNamespace, d.Object.GetNamespace(), d.Ref().String())
		}
		// Unstructured content must survive a deep copy, which panics on
		// non JSON types such as int.
		assert.NotPanics(t, func() { d.Object.DeepCopy() })
	}

	kcp := g[indexOf(t, g, "KubeadmControlPlane", "c0ffee-control-plane")].Object
	replicas, _, _ := unstructured.NestedInt64(kcp.Object, "spec", "replicas")
	assert.Equal(t, int64(3), replicas)
	version, _, _ := unstructured.NestedString(kcp.Object, "spec", "version")
	assert.Equal(t, "v1.28.1", version)

	cluster := g[indexOf(t, g, "Cluster", "c0ffee")].Object
	cpRef, _, _ := unstructured.NestedString(cluster.Object, "spec", "controlPlaneRef", "name")
	assert.Equal(t, "c0ffee-control-plane", cpRef)
	assert.Equal(t, "C0FFEE", cluster.GetLabels()[labels.KeyClusterID])

	crs := g[indexOf(t, g, "ClusterResourceSet", "c0ffee-calico")].Object
	selector, _, _ := unstructured.NestedStringMap(crs.Object, "spec", "clusterSelector", "matchLabels")
	assert.Equal(t, map[string]string{labels.KeyClusterID: "C0FFEE"}, selector)

	cm := g[indexOf(t, g, "ConfigMap", "c0ffee-calico")].Object
	data, _, _ := unstructured.NestedStringMap(cm.Object, "data")
	assert.Equal(t, "kind: DaemonSet\n", data["calico.yaml"])

	ca := g[indexOf(t, g, "Secret", "c0ffee-ca")].Object
	secretType, _, _ := unstructured.NestedString(ca.Object, "type")
	assert.Equal(t, string(ClusterSecretType), secretType)
	_, found := ca.Object["metadata"].(map[string]interface{})["creationTimestamp"]
	assert.False(t, found)
}

func TestRefs(t *testing.T) {
	t.Parallel()

	c := testCluster(t)
	worker, _ := c.NodeGroup("gpu")

	assert.Equal(t, "Cluster magnum-system/c0ffee", ClusterRef(testNamespace, c).String())
	assert.Equal(t, "KubeadmControlPlane magnum-system/c0ffee-control-plane", ControlPlaneRef(testNamespace, c).String())
	assert.Equal(t, "MachineDeployment magnum-system/c0ffee-gpu", MachineDeploymentRef(testNamespace, c, worker).String())
	assert.Equal(t, "Secret magnum-system/c0ffee-cloud-config", CloudConfigSecretRef(testNamespace, c).String())

	var names []string
	for _, r := range CertificateAuthorityRefs(testNamespace, c) {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"c0ffee-ca", "c0ffee-etcd", "c0ffee-proxy", "c0ffee-sa"}, names)
}

func TestPreludeAndAfter(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	c := testCluster(t)

	prelude, err := b.Prelude(c)
	require.NoError(t, err)
	assert.Len(t, prelude, 7)

	g, err := b.ClusterGraph(c, testCredential(), allCAs())
	require.NoError(t, err)

	rest := g.After(StepAddons)
	assert.Len(t, rest, len(g)-len(prelude))
	assert.Equal(t, StepCloudConfig, rest[0].Step)
}
