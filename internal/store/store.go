package store

import (
	"context"
	"errors"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("record not found")

// Store defines load/save access to cluster records.
type Store interface {
	LoadCluster(ctx context.Context, id string) (v1alpha1.Cluster, error)
	ListClusters(ctx context.Context) ([]v1alpha1.Cluster, error)

	// SaveCluster upserts the record including its node groups.
	SaveCluster(ctx context.Context, cluster v1alpha1.Cluster) error

	// SaveNodeGroup replaces or appends one node group of a stored cluster.
	SaveNodeGroup(ctx context.Context, clusterID string, ng v1alpha1.NodeGroup) error

	DeleteCluster(ctx context.Context, id string) error
}
