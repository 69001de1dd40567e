package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

const dbFile = "magnum-capi.db"

var bucketClusters = []byte("clusters")

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates the database inside dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dataDir, dbFile), 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketClusters); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketClusters, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) LoadCluster(_ context.Context, id string) (v1alpha1.Cluster, error) {
	var cluster v1alpha1.Cluster
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		cluster, err = getCluster(tx.Bucket(bucketClusters), id)
		return err
	})
	return cluster, err
}

func (s *BoltStore) ListClusters(_ context.Context) ([]v1alpha1.Cluster, error) {
	var clusters []v1alpha1.Cluster
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketClusters).ForEach(func(k, v []byte) error {
			var cluster v1alpha1.Cluster
			if err := json.Unmarshal(v, &cluster); err != nil {
				return fmt.Errorf("failed to decode cluster %s: %w", k, err)
			}
			clusters = append(clusters, cluster)
			return nil
		})
	})
	return clusters, err
}

func (s *BoltStore) SaveCluster(_ context.Context, cluster v1alpha1.Cluster) error {
	if cluster.ID == "" {
		return fmt.Errorf("cluster id is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCluster(tx.Bucket(bucketClusters), cluster)
	})
}

func (s *BoltStore) SaveNodeGroup(_ context.Context, clusterID string, ng v1alpha1.NodeGroup) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketClusters)
		cluster, err := getCluster(b, clusterID)
		if err != nil {
			return err
		}
		return putCluster(b, cluster.WithNodeGroup(ng))
	})
}

// DeleteCluster removes a record. Deleting an absent record is not an error.
func (s *BoltStore) DeleteCluster(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketClusters).Delete([]byte(id))
	})
}

func getCluster(b *bolt.Bucket, id string) (v1alpha1.Cluster, error) {
	var cluster v1alpha1.Cluster
	data := b.Get([]byte(id))
	if data == nil {
		return cluster, fmt.Errorf("cluster %s: %w", id, ErrNotFound)
	}
	if err := json.Unmarshal(data, &cluster); err != nil {
		return cluster, fmt.Errorf("failed to decode cluster %s: %w", id, err)
	}
	return cluster, nil
}

func putCluster(b *bolt.Bucket, cluster v1alpha1.Cluster) error {
	data, err := json.Marshal(cluster)
	if err != nil {
		return fmt.Errorf("failed to encode cluster %s: %w", cluster.ID, err)
	}
	return b.Put([]byte(cluster.ID), data)
}
