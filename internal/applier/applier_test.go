package applier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"
)

var (
	secretGVK  = schema.GroupVersionKind{Version: "v1", Kind: "Secret"}
	machineGVK = schema.GroupVersionKind{Group: "cluster.x-k8s.io", Version: "v1beta1", Kind: "Machine"}
	machineGVR = schema.GroupVersionResource{Group: "cluster.x-k8s.io", Version: "v1beta1", Resource: "machines"}
	secretGVR  = schema.GroupVersionResource{Version: "v1", Resource: "secrets"}
)

func createTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name: "",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "secrets", Namespaced: true, Kind: "Secret"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name: "cluster.x-k8s.io",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "cluster.x-k8s.io/v1beta1", Version: "v1beta1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "cluster.x-k8s.io/v1beta1", Version: "v1beta1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1beta1": {
					{Name: "clusters", Namespaced: true, Kind: "Cluster"},
					{Name: "machines", Namespaced: true, Kind: "Machine"},
					{Name: "machinedeployments", Namespaced: true, Kind: "MachineDeployment"},
				},
			},
		},
	}

	return restmapper.NewDiscoveryRESTMapper(resources)
}

func newMachine(name string, lbls map[string]string) *unstructured.Unstructured {
	m := &unstructured.Unstructured{}
	m.SetGroupVersionKind(machineGVK)
	m.SetNamespace("magnum-system")
	m.SetName(name)
	m.SetLabels(lbls)
	m.SetAnnotations(map[string]string{"existing": "kept"})
	_ = unstructured.SetNestedField(m.Object, "openstack:///"+name, "spec", "providerID")
	return m
}

func newSecret(name string) *unstructured.Unstructured {
	s := &unstructured.Unstructured{}
	s.SetGroupVersionKind(secretGVK)
	s.SetNamespace("magnum-system")
	s.SetName(name)
	return s
}

func setupTestClient(t *testing.T, objects ...runtime.Object) (Applier, *dynamicfake.FakeDynamicClient) {
	t.Helper()

	scheme := runtime.NewScheme()
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{
			machineGVR: "MachineList",
			secretGVR:  "SecretList",
		},
		objects...,
	)
	return NewFromClients(dynamicClient, createTestMapper(), "magnum-capi"), dynamicClient
}

func TestApply_SendsServerSideApplyPatch(t *testing.T) {
	t.Parallel()
	a, dyn := setupTestClient(t)

	var captured k8stesting.PatchAction
	dyn.PrependReactor("patch", "secrets", func(action k8stesting.Action) (bool, runtime.Object, error) {
		captured = action.(k8stesting.PatchAction)
		return true, newSecret(captured.GetName()), nil
	})

	require.NoError(t, a.Apply(context.Background(), newSecret("c1-ca")))

	require.NotNil(t, captured)
	assert.Equal(t, types.ApplyPatchType, captured.GetPatchType())
	assert.Equal(t, "c1-ca", captured.GetName())
	assert.Equal(t, "magnum-system", captured.GetNamespace())
	assert.Contains(t, string(captured.GetPatch()), `"name":"c1-ca"`)
}

func TestApply_Validation(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t)

	t.Run("no name", func(t *testing.T) {
		t.Parallel()
		err := a.Apply(context.Background(), newSecret(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no name")
	})

	t.Run("no kind", func(t *testing.T) {
		t.Parallel()
		obj := &unstructured.Unstructured{Object: map[string]any{}}
		obj.SetName("x")
		err := a.Apply(context.Background(), obj)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no kind")
	})

	t.Run("namespaced kind without namespace", func(t *testing.T) {
		t.Parallel()
		obj := newSecret("x")
		obj.SetNamespace("")
		err := a.Apply(context.Background(), obj)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "namespace is required")
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		obj := &unstructured.Unstructured{}
		obj.SetGroupVersionKind(schema.GroupVersionKind{Group: "example.com", Version: "v1", Kind: "Widget"})
		obj.SetName("x")
		err := a.Apply(context.Background(), obj)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get REST mapping")
	})
}

func TestGetAndExists(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t, newSecret("present"))
	ctx := context.Background()

	obj, err := a.Get(ctx, RefFor(newSecret("present")))
	require.NoError(t, err)
	assert.Equal(t, "present", obj.GetName())

	_, err = a.Get(ctx, RefFor(newSecret("absent")))
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err), "wrapped error must stay NotFound")

	ok, err := a.Exists(ctx, RefFor(newSecret("present")))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Exists(ctx, RefFor(newSecret("absent")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_Idempotent(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t, newSecret("doomed"))
	ctx := context.Background()
	ref := RefFor(newSecret("doomed"))

	require.NoError(t, a.Delete(ctx, ref))
	ok, err := a.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Delete(ctx, ref), "deleting an absent resource is not an error")
}

func TestList_FiltersBySelector(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t,
		newMachine("m1", map[string]string{"cluster.x-k8s.io/deployment-name": "c1-default-worker"}),
		newMachine("m2", map[string]string{"cluster.x-k8s.io/deployment-name": "c1-default-worker"}),
		newMachine("m3", map[string]string{"cluster.x-k8s.io/deployment-name": "c1-other"}),
	)

	items, err := a.List(context.Background(), machineGVK, "magnum-system",
		map[string]string{"cluster.x-k8s.io/deployment-name": "c1-default-worker"})
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.GetName())
	}
	assert.ElementsMatch(t, []string{"m1", "m2"}, names)
}

func TestAnnotate_PreservesExistingAnnotations(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t, newMachine("m1", nil))
	ctx := context.Background()
	ref := RefFor(newMachine("m1", nil))

	require.NoError(t, a.Annotate(ctx, ref, "cluster.x-k8s.io/delete-machine", "yes"))

	obj, err := a.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "yes", obj.GetAnnotations()["cluster.x-k8s.io/delete-machine"])
	assert.Equal(t, "kept", obj.GetAnnotations()["existing"])
}

func TestAnnotate_MissingResource(t *testing.T) {
	t.Parallel()
	a, _ := setupTestClient(t)

	err := a.Annotate(context.Background(), RefFor(newMachine("ghost", nil)), "k", "v")
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestRef_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Secret magnum-system/x", RefFor(newSecret("x")).String())

	ns := Ref{GroupVersionKind: schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}, Name: "magnum-system"}
	assert.Equal(t, "Namespace magnum-system", ns.String())
}
