package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCluster(t *testing.T, id string) v1alpha1.Cluster {
	t.Helper()
	c, err := v1alpha1.NewCluster(id, "user-1",
		v1alpha1.NodeGroup{Name: "default-master", Role: v1alpha1.RoleMaster, NodeCount: 1},
		v1alpha1.NodeGroup{Name: "default-worker", Role: v1alpha1.RoleWorker, NodeCount: 2},
	)
	require.NoError(t, err)
	return c
}

func TestBoltStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	c := testCluster(t, "c1")
	c.Status = v1alpha1.UpdateFailed
	c.StatusReason = "quota exceeded"
	c.COEVersion = "v1.27.4"
	c.APIAddress = "https://10.0.0.10:6443"
	require.NoError(t, s.SaveCluster(ctx, c))

	got, err := s.LoadCluster(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestBoltStore_SaveNodeGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveCluster(ctx, testCluster(t, "c1")))

	ng := v1alpha1.NodeGroup{Name: "default-worker", Role: v1alpha1.RoleWorker, NodeCount: 5, Status: v1alpha1.UpdateInProgress}
	require.NoError(t, s.SaveNodeGroup(ctx, "c1", ng))

	got, err := s.LoadCluster(ctx, "c1")
	require.NoError(t, err)
	stored, ok := got.NodeGroup("default-worker")
	require.True(t, ok)
	assert.Equal(t, 5, stored.NodeCount)
	assert.Equal(t, v1alpha1.UpdateInProgress, stored.Status)
	assert.Len(t, got.NodeGroups, 2)

	err = s.SaveNodeGroup(ctx, "missing", ng)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltStore_ListAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveCluster(ctx, testCluster(t, "c1")))
	require.NoError(t, s.SaveCluster(ctx, testCluster(t, "c2")))

	clusters, err := s.ListClusters(ctx)
	require.NoError(t, err)
	assert.Len(t, clusters, 2)

	require.NoError(t, s.DeleteCluster(ctx, "c1"))
	require.NoError(t, s.DeleteCluster(ctx, "c1"))

	_, err = s.LoadCluster(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	clusters, err = s.ListClusters(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "c2", clusters[0].ID)
}

func TestBoltStore_Reopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveCluster(ctx, testCluster(t, "c1")))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadCluster(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.CreateInProgress, got.Status)
}

func TestBoltStore_SaveRequiresID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.Error(t, s.SaveCluster(context.Background(), v1alpha1.Cluster{}))
}
