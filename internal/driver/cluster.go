package driver

import (
	"context"
	"fmt"
	"slices"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/monitor"
	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/util/labels"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// CreateCluster persists the record at CREATE_IN_PROGRESS, issues the cluster
// credential and applies the full object graph. It does not wait for the
// cluster to come up.
func (d *Driver) CreateCluster(ctx context.Context, c v1alpha1.Cluster) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "create_cluster", time.Now(), &err)
	logger := log.FromContext(ctx).WithValues("cluster", c.ID)

	if err := c.Validate(); err != nil {
		return c, err
	}

	c.NodeGroups = slices.Clone(c.NodeGroups)
	c.Status = v1alpha1.CreateInProgress
	for i := range c.NodeGroups {
		c.NodeGroups[i].Status = v1alpha1.CreateInProgress
	}
	if err := d.store.SaveCluster(ctx, c); err != nil {
		return c, fmt.Errorf("failed to save cluster: %w", err)
	}

	prelude, err := d.builder.Prelude(c)
	if err != nil {
		return c, err
	}
	if err := d.applyGraph(ctx, prelude); err != nil {
		return c, err
	}

	cred, err := d.credentials.Issue(ctx, c.UserID, c.ID)
	if err != nil {
		return c, err
	}

	cas, err := d.missingCertificateAuthorities(ctx, c)
	if err != nil {
		return c, err
	}

	g, err := d.builder.ClusterGraph(c, cred, cas)
	if err != nil {
		return c, err
	}
	if err := d.applyGraph(ctx, g.After(resources.StepAddons)); err != nil {
		return c, err
	}

	if !resources.AutoHealingEnabled(c) {
		if err := d.applier.Delete(ctx, resources.MachineHealthCheckRef(d.namespace(), c)); err != nil {
			return c, fmt.Errorf("failed to remove machine health check: %w", err)
		}
	}

	logger.Info("cluster creation submitted", "nodeGroups", len(c.NodeGroups))
	return c, nil
}

// missingCertificateAuthorities generates the CAs whose secret does not exist
// yet. Existing CA material is never replaced.
func (d *Driver) missingCertificateAuthorities(ctx context.Context, c v1alpha1.Cluster) (map[certs.Kind]*certs.KeyPair, error) {
	cas := make(map[certs.Kind]*certs.KeyPair, len(certs.AllKinds))
	for _, kind := range certs.AllKinds {
		ref := resources.CertificateAuthorityRef(d.namespace(), c, kind)
		exists, err := d.applier.Exists(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", ref, err)
		}
		if exists {
			log.FromContext(ctx).V(1).Info("keeping existing certificate authority", "secret", ref.Name)
			continue
		}
		pair, err := d.certs.Generate(kind)
		if err != nil {
			return nil, err
		}
		cas[kind] = pair
	}
	return cas, nil
}

// UpdateClusterStatus refreshes an in-progress record from the management
// cluster. Records in any other status are returned unchanged.
func (d *Driver) UpdateClusterStatus(ctx context.Context, c v1alpha1.Cluster) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "update_cluster_status", time.Now(), &err)

	if c.Status.Action() == v1alpha1.ActionDelete {
		return d.aggregator.RefreshDeletion(ctx, c)
	}
	return d.aggregator.RefreshCluster(ctx, c)
}

// UpdateCluster is not supported.
func (d *Driver) UpdateCluster(ctx context.Context, _ v1alpha1.Cluster) (err error) {
	defer d.observe(ctx, "update_cluster", time.Now(), &err)
	return notSupported("update_cluster")
}

// UpgradeCluster is not supported.
func (d *Driver) UpgradeCluster(ctx context.Context, _ v1alpha1.Cluster, _ v1alpha1.NodeGroup) (err error) {
	defer d.observe(ctx, "upgrade_cluster", time.Now(), &err)
	return notSupported("upgrade_cluster")
}

// ResizeCluster marks the machines named in nodesToRemove for deletion, then
// sets the desired node count of the node group and re-applies it. A nil
// node group resizes the default worker group.
//
// Machines are only annotated; the Cluster API removes annotated machines
// first when it scales the group down.
func (d *Driver) ResizeCluster(ctx context.Context, c v1alpha1.Cluster, nodeCount int, nodesToRemove []string, nodeGroup *v1alpha1.NodeGroup) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "resize_cluster", time.Now(), &err)

	if nodeCount < 0 {
		return c, fmt.Errorf("node count must not be negative, got %d", nodeCount)
	}

	var ng v1alpha1.NodeGroup
	if nodeGroup != nil {
		ng = *nodeGroup
	} else {
		var ok bool
		ng, ok = c.DefaultWorker()
		if !ok {
			return c, fmt.Errorf("cluster %s has no default worker node group", c.ID)
		}
	}

	if len(nodesToRemove) > 0 {
		if err := d.markMachinesForDeletion(ctx, c, ng, nodesToRemove); err != nil {
			return c, err
		}
	}

	ng.NodeCount = nodeCount
	return d.updateNodeGroup(ctx, c, ng)
}

func (d *Driver) markMachinesForDeletion(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup, nodesToRemove []string) error {
	logger := log.FromContext(ctx)

	remove := make(map[string]bool, len(nodesToRemove))
	for _, id := range nodesToRemove {
		remove[id] = true
	}

	selector := resources.KindOf(ng).MachineSelector(c, ng)
	machines, err := d.applier.List(ctx, resources.MachineGVK, d.namespace(), selector)
	if err != nil {
		return fmt.Errorf("failed to list machines of node group %s: %w", ng.Name, err)
	}

	for i := range machines {
		machine := &machines[i]
		providerID, _, _ := unstructured.NestedString(machine.Object, "spec", "providerID")
		if !remove[naming.InstanceIDFromProviderID(providerID)] {
			continue
		}

		ref := applier.RefFor(machine)
		if err := d.applier.Annotate(ctx, ref, labels.AnnotationDeleteMachine, labels.ValueDeleteMachine); err != nil {
			return fmt.Errorf("failed to mark %s for deletion: %w", ref, err)
		}
		logger.Info("marked machine for deletion", "machine", machine.GetName(), "providerID", providerID)
	}
	return nil
}

// DeleteCluster deletes the Cluster object and persists DELETE_IN_PROGRESS.
// The Cluster API garbage collects everything the Cluster owns; the
// credential and the secrets are removed by UpdateClusterStatus once the
// Cluster object is gone.
func (d *Driver) DeleteCluster(ctx context.Context, c v1alpha1.Cluster) (_ v1alpha1.Cluster, err error) {
	defer d.observe(ctx, "delete_cluster", time.Now(), &err)

	ref := resources.ClusterRef(d.namespace(), c)
	if err := d.applier.Delete(ctx, ref); err != nil {
		return c, fmt.Errorf("failed to delete %s: %w", ref, err)
	}

	updated := c
	updated.Status = v1alpha1.DeleteInProgress
	updated.StatusReason = ""
	if err := d.store.SaveCluster(ctx, updated); err != nil {
		return c, fmt.Errorf("failed to save cluster: %w", err)
	}

	log.FromContext(ctx).Info("cluster deletion submitted", "cluster", c.ID)
	return updated, nil
}

// GetMonitor returns the health monitor of a cluster.
func (d *Driver) GetMonitor(c v1alpha1.Cluster) *monitor.Monitor {
	return monitor.New(d.applier, d.namespace(), c)
}
