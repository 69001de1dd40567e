package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

// CreateNodeGroup adds a node group to a stored cluster.
func CreateNodeGroup(ctx context.Context, configPath, id string, ng v1alpha1.NodeGroup) error {
	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	c, err := env.loadCluster(ctx, id)
	if err != nil {
		return err
	}

	updated, err := env.driver.CreateNodeGroup(ctx, c, ng)
	if err != nil {
		return fmt.Errorf("failed to create node group %s: %w", ng.Name, err)
	}
	printCluster(updated)
	return nil
}

// DeleteNodeGroup deletes a node group of a stored cluster.
func DeleteNodeGroup(ctx context.Context, configPath, id, name string) error {
	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	c, err := env.loadCluster(ctx, id)
	if err != nil {
		return err
	}

	ng, ok := c.NodeGroup(name)
	if !ok {
		return fmt.Errorf("cluster %s has no node group %q", id, name)
	}

	updated, err := env.driver.DeleteNodeGroup(ctx, c, ng)
	if err != nil {
		return fmt.Errorf("failed to delete node group %s: %w", name, err)
	}
	printCluster(updated)
	return nil
}
