package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/store"
	testutil "github.com/imamik/magnum-capi/internal/testing"
)

const namespace = "magnum-system"

type fixture struct {
	agg      *Aggregator
	fake     *testutil.FakeApplier
	identity *testutil.MockIdentity
	store    *store.BoltStore
	cluster  v1alpha1.Cluster
}

func newFixture(t *testing.T, c v1alpha1.Cluster) *fixture {
	t.Helper()
	ctx := testutil.TestContext(t)

	f := &fixture{
		fake:     testutil.NewFakeApplier(),
		identity: testutil.NewMockIdentity(),
		store:    testutil.NewStore(t),
		cluster:  c,
	}
	f.agg = &Aggregator{
		Applier:     f.fake,
		Credentials: credentials.NewManager(f.identity),
		Store:       f.store,
		Namespace:   namespace,
	}

	cas := map[certs.Kind]*certs.KeyPair{}
	for _, kind := range certs.AllKinds {
		cas[kind] = &certs.KeyPair{Cert: []byte("cert"), Key: []byte("key")}
	}
	b := &resources.Builder{Namespace: namespace, AuthURL: "https://keystone/v3"}
	g, err := b.ClusterGraph(c, &credentials.Credential{ID: "id", Secret: "secret"}, cas)
	require.NoError(t, err)
	for _, d := range g {
		require.NoError(t, f.fake.Apply(ctx, d.Object))
	}
	f.fake.ResetCalls()

	require.NoError(t, f.store.SaveCluster(ctx, c))
	return f
}

func (f *fixture) stored(t *testing.T) v1alpha1.Cluster {
	t.Helper()
	c, err := f.store.LoadCluster(testutil.TestContext(t), f.cluster.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) master() v1alpha1.NodeGroup {
	ng, _ := f.cluster.Master()
	return ng
}

func (f *fixture) worker() v1alpha1.NodeGroup {
	ng, _ := f.cluster.DefaultWorker()
	return ng
}

// ready marks every child object as reconciled.
func (f *fixture) ready(t *testing.T) {
	t.Helper()
	c := f.cluster
	require.True(t, f.fake.SetStatus(resources.ClusterRef(namespace, c), testutil.ClusterStatus("True")))
	require.True(t, f.fake.Mutate(resources.ClusterRef(namespace, c), testutil.SetControlPlaneEndpoint("10.0.0.10", 6443)))
	require.True(t, f.fake.SetStatus(resources.ControlPlaneRef(namespace, c), testutil.ControlPlaneStatus(true, "v1.27.4", "")))
	for _, ng := range c.NodeGroups {
		if !ng.IsMaster() {
			require.True(t, f.fake.SetStatus(resources.MachineDeploymentRef(namespace, c, ng), testutil.MachineDeploymentStatus("Running")))
		}
	}
}

func TestRefreshCluster_ControlPlaneNotReady(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"False", "Unknown", ""} {
		t.Run("condition="+value, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testutil.NewClusterBuilder().Build(t))
			ref := resources.ClusterRef(namespace, f.cluster)
			require.True(t, f.fake.SetStatus(ref, testutil.ClusterStatus(value)))
			require.True(t, f.fake.Mutate(ref, testutil.SetControlPlaneEndpoint("10.0.0.10", 6443)))

			got, err := f.agg.RefreshCluster(testutil.TestContext(t), f.cluster)
			require.NoError(t, err)
			assert.Equal(t, f.cluster, got)
			assert.Empty(t, got.APIAddress)
			assert.Equal(t, f.cluster, f.stored(t))
			assert.Len(t, f.fake.Calls("get"), 1, "node groups are not read before the control plane is ready")
		})
	}
}

func TestRefreshCluster_Completes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prior v1alpha1.Status
		want  v1alpha1.Status
	}{
		{prior: v1alpha1.CreateInProgress, want: v1alpha1.CreateComplete},
		{prior: v1alpha1.UpdateInProgress, want: v1alpha1.UpdateComplete},
	}

	for _, tt := range tests {
		t.Run(string(tt.prior), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testutil.NewClusterBuilder().WithWorker("gpu", 1).WithStatus(tt.prior).Build(t))
			f.ready(t)

			got, err := f.agg.RefreshCluster(testutil.TestContext(t), f.cluster)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, "https://10.0.0.10:6443", got.APIAddress)
			assert.Equal(t, "v1.27.4", got.COEVersion)
			for _, ng := range got.NodeGroups {
				assert.Equal(t, tt.want, ng.Status, ng.Name)
			}

			stored := f.stored(t)
			assert.Equal(t, got, stored)
		})
	}
}

func TestRefreshCluster_WaitsForNodeGroups(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().Build(t))
	f.ready(t)
	require.True(t, f.fake.SetStatus(resources.MachineDeploymentRef(namespace, f.cluster, f.worker()),
		testutil.MachineDeploymentStatus("ScalingUp")))

	got, err := f.agg.RefreshCluster(testutil.TestContext(t), f.cluster)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.CreateInProgress, got.Status)

	stored := f.stored(t)
	assert.Equal(t, v1alpha1.CreateInProgress, stored.Status)
	master, _ := stored.Master()
	assert.Equal(t, v1alpha1.CreateComplete, master.Status, "node groups are persisted on every refresh")
	worker, _ := stored.DefaultWorker()
	assert.Equal(t, v1alpha1.CreateInProgress, worker.Status)
}

func TestRefreshCluster_MasterNotReady(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().Build(t))
	f.ready(t)
	require.True(t, f.fake.SetStatus(resources.ControlPlaneRef(namespace, f.cluster),
		testutil.ControlPlaneStatus(false, "", "machine create failed")))

	got, err := f.agg.RefreshCluster(testutil.TestContext(t), f.cluster)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.CreateInProgress, got.Status)
	assert.Empty(t, got.COEVersion)

	master, _ := got.Master()
	assert.Equal(t, "machine create failed", master.StatusReason)
	assert.Zero(t, f.fake.CountKind("get", "MachineDeployment"), "refresh stops at the first incomplete node group")
}

func TestRefreshCluster_Monotonic(t *testing.T) {
	t.Parallel()

	for _, s := range []v1alpha1.Status{
		v1alpha1.CreateComplete, v1alpha1.CreateFailed,
		v1alpha1.UpdateComplete, v1alpha1.UpdateFailed,
		v1alpha1.DeleteComplete, v1alpha1.DeleteFailed,
		v1alpha1.DeleteInProgress,
	} {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testutil.NewClusterBuilder().WithStatus(s).Build(t))
			f.ready(t)

			c := f.cluster
			for i := 0; i < 3; i++ {
				var err error
				c, err = f.agg.RefreshCluster(testutil.TestContext(t), c)
				require.NoError(t, err)
				assert.Equal(t, s, c.Status)
			}
			assert.Empty(t, f.fake.Calls("get"))
		})
	}
}

func TestRefreshCluster_ReadFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().Build(t))
	f.fake.Errors["get"] = errors.New("connection refused")

	got, err := f.agg.RefreshCluster(testutil.TestContext(t), f.cluster)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, f.cluster, got)
}

func TestRefreshNodeGroup_WorkerRunning(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().WithStatus(v1alpha1.UpdateInProgress).Build(t))
	worker := f.worker()
	require.True(t, f.fake.SetStatus(resources.MachineDeploymentRef(namespace, f.cluster, worker),
		testutil.MachineDeploymentStatus("Running")))

	got, err := f.agg.RefreshNodeGroup(testutil.TestContext(t), f.cluster, worker)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.UpdateComplete, got.Status)

	stored, _ := f.stored(t).DefaultWorker()
	assert.Equal(t, v1alpha1.UpdateComplete, stored.Status)
}

func TestRefreshNodeGroup_UnrecognizedPhase(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().Build(t))
	worker := f.worker()
	worker.NodeCount = 7
	require.True(t, f.fake.SetStatus(resources.MachineDeploymentRef(namespace, f.cluster, worker),
		testutil.MachineDeploymentStatus("Provisioning")))

	got, err := f.agg.RefreshNodeGroup(testutil.TestContext(t), f.cluster, worker)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.CreateInProgress, got.Status)

	stored, _ := f.stored(t).DefaultWorker()
	assert.Equal(t, 7, stored.NodeCount, "record is persisted even without a status change")
}

func TestRefreshNodeGroup_Failed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().Build(t))
	worker := f.worker()
	require.True(t, f.fake.SetStatus(resources.MachineDeploymentRef(namespace, f.cluster, worker),
		testutil.MachineDeploymentStatus("Failed")))

	got, err := f.agg.RefreshNodeGroup(testutil.TestContext(t), f.cluster, worker)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.CreateFailed, got.Status)
}

func TestRefreshDeletion_ClusterStillPresent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().WithStatus(v1alpha1.DeleteInProgress).Build(t))

	got, err := f.agg.RefreshDeletion(testutil.TestContext(t), f.cluster)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.DeleteInProgress, got.Status)

	f.identity.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything, mock.Anything)
	f.identity.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.fake.Calls("delete"))
	assert.True(t, f.fake.Has(resources.CloudConfigSecretRef(namespace, f.cluster)))
	assert.Equal(t, v1alpha1.DeleteInProgress, f.stored(t).Status)
}

func TestRefreshDeletion_Completes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(m *testutil.MockIdentity, userID, clusterID string)
	}{
		{
			name:  "credential already absent",
			setup: func(m *testutil.MockIdentity, u, c string) { m.WithAbsent(u, c) },
		},
		{
			name:  "credential revoked",
			setup: func(m *testutil.MockIdentity, u, c string) { m.WithRevocable(u, c) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testutil.NewClusterBuilder().WithStatus(v1alpha1.DeleteInProgress).Build(t))
			tt.setup(f.identity, f.cluster.UserID, f.cluster.ID)
			f.fake.Remove(resources.ClusterRef(namespace, f.cluster))

			got, err := f.agg.RefreshDeletion(testutil.TestContext(t), f.cluster)
			require.NoError(t, err)
			assert.Equal(t, v1alpha1.DeleteComplete, got.Status)
			assert.Equal(t, v1alpha1.DeleteComplete, f.stored(t).Status)

			assert.False(t, f.fake.Has(resources.CloudConfigSecretRef(namespace, f.cluster)))
			for _, ref := range resources.CertificateAuthorityRefs(namespace, f.cluster) {
				assert.False(t, f.fake.Has(ref), ref.String())
			}
			assert.Equal(t, 5, f.fake.CountKind("delete", "Secret"))
			f.identity.AssertExpectations(t)
		})
	}
}

func TestRefreshDeletion_RevokeFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().WithStatus(v1alpha1.DeleteInProgress).Build(t))
	f.identity.On("FindByName", mock.Anything, f.cluster.UserID, f.cluster.ID).
		Return(credentials.Lookup{}, errors.New("identity unavailable"))
	f.fake.Remove(resources.ClusterRef(namespace, f.cluster))

	got, err := f.agg.RefreshDeletion(testutil.TestContext(t), f.cluster)
	require.Error(t, err)
	assert.Equal(t, v1alpha1.DeleteInProgress, got.Status)
	assert.Empty(t, f.fake.Calls("delete"), "secrets stay until the credential is gone")
	assert.Equal(t, v1alpha1.DeleteInProgress, f.stored(t).Status)
}

func TestRefreshDeletion_IgnoresOtherStatuses(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.NewClusterBuilder().WithStatus(v1alpha1.CreateInProgress).Build(t))
	f.fake.Remove(resources.ClusterRef(namespace, f.cluster))

	got, err := f.agg.RefreshDeletion(testutil.TestContext(t), f.cluster)
	require.NoError(t, err)
	assert.Equal(t, f.cluster, got)
	assert.Empty(t, f.fake.Calls(""))
}
