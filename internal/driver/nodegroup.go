package driver

import (
	"context"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/resources"
)

// CreateNodeGroup adds a worker node group to a cluster and applies its
// objects. The node group starts in CREATE_IN_PROGRESS and the cluster in
// UPDATE_IN_PROGRESS.
func (d *Driver) CreateNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "create_nodegroup", time.Now(), &err)

	if _, exists := c.NodeGroup(ng.Name); exists {
		return c, fmt.Errorf("%w: node group %q already exists", v1alpha1.ErrInvalidNodeGroups, ng.Name)
	}

	ng.Status = v1alpha1.CreateInProgress
	ng.StatusReason = ""
	return d.submitNodeGroup(ctx, c, ng)
}

// UpdateNodeGroup re-applies the objects of a node group, e.g. after its
// node count changed.
func (d *Driver) UpdateNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "update_nodegroup", time.Now(), &err)
	return d.updateNodeGroup(ctx, c, ng)
}

func (d *Driver) updateNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (v1alpha1.Cluster, error) {
	if _, exists := c.NodeGroup(ng.Name); !exists {
		return c, fmt.Errorf("cluster %s has no node group %q", c.ID, ng.Name)
	}

	ng.Status = v1alpha1.UpdateInProgress
	ng.StatusReason = ""
	return d.submitNodeGroup(ctx, c, ng)
}

// submitNodeGroup applies the node group objects, then persists the record
// with the cluster in UPDATE_IN_PROGRESS so the next refresh picks it up.
func (d *Driver) submitNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (v1alpha1.Cluster, error) {
	updated := c.WithNodeGroup(ng)
	if err := updated.Validate(); err != nil {
		return c, err
	}

	if err := d.applyGraph(ctx, d.builder.NodeGroupGraph(updated, ng)); err != nil {
		return c, err
	}

	updated.Status = v1alpha1.UpdateInProgress
	updated.StatusReason = ""
	if err := d.store.SaveCluster(ctx, updated); err != nil {
		return c, fmt.Errorf("failed to save cluster: %w", err)
	}

	log.FromContext(ctx).Info("node group submitted",
		"cluster", c.ID, "nodeGroup", ng.Name, "role", ng.Role, "nodeCount", ng.NodeCount)
	return updated, nil
}

// DeleteNodeGroup deletes the objects of a node group and drops it from the
// record. For the master node group only the machine template is deleted and
// the group stays on the record: the control plane cannot be removed this way.
func (d *Driver) DeleteNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "delete_nodegroup", time.Now(), &err)

	kind := resources.KindOf(ng)
	if err := d.deleteRefs(ctx, kind.DeleteRefs(d.namespace(), c, ng)); err != nil {
		return c, err
	}

	if ng.IsMaster() {
		log.FromContext(ctx).Info("master node group kept, control plane is not deleted", "cluster", c.ID, "nodeGroup", ng.Name)
		return c, nil
	}

	updated := c.WithoutNodeGroup(ng.Name)
	if err := d.store.SaveCluster(ctx, updated); err != nil {
		return c, fmt.Errorf("failed to save cluster: %w", err)
	}

	log.FromContext(ctx).Info("node group deleted", "cluster", c.ID, "nodeGroup", ng.Name)
	return updated, nil
}

// UpdateNodeGroupStatus refreshes one node group from its backing object.
func (d *Driver) UpdateNodeGroupStatus(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (_ v1alpha1.NodeGroup, err error) {
	defer d.observe(ctx, "update_nodegroup_status", time.Now(), &err)
	return d.aggregator.RefreshNodeGroup(ctx, c, ng)
}
