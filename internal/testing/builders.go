package testing

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

// Defaults used by ClusterBuilder.
const (
	DefaultClusterID = "0B5E6A5C-CAFE-4F00-9D1E-000000000001"
	DefaultUserID    = "user-1"
	DefaultMaster    = "default-master"
	DefaultWorker    = "default-worker"
)

// ClusterBuilder provides a fluent interface for constructing cluster records.
// Each method returns a new builder (immutable) for chaining.
type ClusterBuilder struct {
	id     string
	userID string
	groups []v1alpha1.NodeGroup
	labels map[string]string
	status v1alpha1.Status
}

// NewClusterBuilder creates a builder for a cluster with one master and one
// default worker group.
func NewClusterBuilder() *ClusterBuilder {
	return &ClusterBuilder{
		id:     DefaultClusterID,
		userID: DefaultUserID,
		groups: []v1alpha1.NodeGroup{
			{Name: DefaultMaster, Role: v1alpha1.RoleMaster, NodeCount: 1, FlavorID: "m1.medium", ImageID: "image-1"},
			{Name: DefaultWorker, Role: v1alpha1.RoleWorker, NodeCount: 2, FlavorID: "m1.medium", ImageID: "image-1"},
		},
	}
}

// WithID sets the cluster id.
func (b *ClusterBuilder) WithID(id string) *ClusterBuilder {
	nb := b.clone()
	nb.id = id
	return nb
}

// WithWorker adds a worker node group.
func (b *ClusterBuilder) WithWorker(name string, count int) *ClusterBuilder {
	nb := b.clone()
	nb.groups = append(nb.groups, v1alpha1.NodeGroup{Name: name, Role: v1alpha1.RoleWorker, NodeCount: count, FlavorID: "m1.medium"})
	return nb
}

// WithLabel sets a cluster label.
func (b *ClusterBuilder) WithLabel(key, value string) *ClusterBuilder {
	nb := b.clone()
	nb.labels[key] = value
	return nb
}

// WithStatus sets the status of the cluster and every node group.
func (b *ClusterBuilder) WithStatus(status v1alpha1.Status) *ClusterBuilder {
	nb := b.clone()
	nb.status = status
	return nb
}

// Build creates the record and fails the test when it is invalid.
func (b *ClusterBuilder) Build(t testing.TB) v1alpha1.Cluster {
	t.Helper()
	c, err := v1alpha1.NewCluster(b.id, b.userID, b.groups...)
	require.NoError(t, err)
	if len(b.labels) > 0 {
		c.Labels = maps.Clone(b.labels)
	}
	if b.status != "" {
		c.Status = b.status
		for i := range c.NodeGroups {
			c.NodeGroups[i].Status = b.status
		}
	}
	return c
}

func (b *ClusterBuilder) clone() *ClusterBuilder {
	nb := *b
	nb.groups = append([]v1alpha1.NodeGroup(nil), b.groups...)
	nb.labels = maps.Clone(b.labels)
	if nb.labels == nil {
		nb.labels = map[string]string{}
	}
	return &nb
}
