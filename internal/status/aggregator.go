package status

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/metrics"
	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/store"
)

// Aggregator refreshes cluster and node group records from the management
// cluster. Every read is a fresh GET.
type Aggregator struct {
	Applier     applier.Applier
	Credentials *credentials.Manager
	Store       store.Store
	Namespace   string
}

// RefreshCluster advances a CREATE_IN_PROGRESS or UPDATE_IN_PROGRESS cluster
// to its COMPLETE state once the control plane is ready and every node group
// is complete. Any other status is returned unchanged.
func (a *Aggregator) RefreshCluster(ctx context.Context, c v1alpha1.Cluster) (v1alpha1.Cluster, error) {
	logger := log.FromContext(ctx).WithValues("cluster", c.ID)

	if !c.Status.IsInProgress() || c.Status.Action() == v1alpha1.ActionDelete {
		return c, nil
	}

	ref := resources.ClusterRef(a.Namespace, c)
	obj, err := a.Applier.Get(ctx, ref)
	if err != nil {
		return c, fmt.Errorf("failed to read %s: %w", ref, err)
	}

	if !ConditionsOf(obj).IsTrue(ConditionControlPlaneReady) {
		logger.V(1).Info("control plane not ready yet")
		return c, nil
	}

	if endpoint, ok := ControlPlaneEndpoint(obj); ok {
		c.APIAddress = endpoint.URL()
	}

	for _, ng := range c.NodeGroups {
		updated, obs, err := a.refreshNodeGroup(ctx, c, ng)
		if err != nil {
			return c, err
		}
		c = c.WithNodeGroup(updated)

		if !updated.Status.IsComplete() {
			logger.V(1).Info("node group not complete yet", "nodeGroup", updated.Name, "status", updated.Status)
			return c, nil
		}
		if updated.IsMaster() && obs.Version != "" {
			c.COEVersion = obs.Version
		}
	}

	return a.transition(ctx, c, c.Status.WithOutcome(v1alpha1.OutcomeComplete))
}

// RefreshNodeGroup recomputes the outcome of a node group from its backing
// object and persists the record, whether or not it changed.
func (a *Aggregator) RefreshNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (v1alpha1.NodeGroup, error) {
	updated, _, err := a.refreshNodeGroup(ctx, c, ng)
	return updated, err
}

func (a *Aggregator) refreshNodeGroup(ctx context.Context, c v1alpha1.Cluster, ng v1alpha1.NodeGroup) (v1alpha1.NodeGroup, resources.Observation, error) {
	src := resources.KindOf(ng).StatusSource(a.Namespace, c, ng)

	obj, err := a.Applier.Get(ctx, src.Ref)
	if err != nil {
		return ng, resources.Observation{}, fmt.Errorf("failed to read %s: %w", src.Ref, err)
	}

	obs := src.Observe(obj)
	updated := obs.Apply(ng)
	if updated.Status != ng.Status {
		metrics.RecordStatusTransition(string(ng.Status), string(updated.Status))
		log.FromContext(ctx).Info("node group status changed",
			"cluster", c.ID, "nodeGroup", ng.Name, "from", ng.Status, "to", updated.Status)
	}

	if err := a.Store.SaveNodeGroup(ctx, c.ID, updated); err != nil {
		return ng, obs, fmt.Errorf("failed to save node group %s: %w", ng.Name, err)
	}
	return updated, obs, nil
}

// RefreshDeletion completes a DELETE_IN_PROGRESS cluster once its Cluster
// object is gone: the credential is revoked, the secrets the Cluster API does
// not own are deleted and the record moves to DELETE_COMPLETE.
func (a *Aggregator) RefreshDeletion(ctx context.Context, c v1alpha1.Cluster) (v1alpha1.Cluster, error) {
	if c.Status != v1alpha1.DeleteInProgress {
		return c, nil
	}

	ref := resources.ClusterRef(a.Namespace, c)
	exists, err := a.Applier.Exists(ctx, ref)
	if err != nil {
		return c, fmt.Errorf("failed to check %s: %w", ref, err)
	}
	if exists {
		log.FromContext(ctx).V(1).Info("cluster object still present", "cluster", c.ID)
		return c, nil
	}

	// The providers need cloud access until the Cluster object is gone.
	if err := a.Credentials.Revoke(ctx, c.UserID, c.ID); err != nil {
		return c, err
	}

	refs := append([]applier.Ref{resources.CloudConfigSecretRef(a.Namespace, c)},
		resources.CertificateAuthorityRefs(a.Namespace, c)...)
	for _, r := range refs {
		if err := a.Applier.Delete(ctx, r); err != nil {
			return c, fmt.Errorf("failed to delete %s: %w", r, err)
		}
	}

	return a.transition(ctx, c, v1alpha1.DeleteComplete)
}

func (a *Aggregator) transition(ctx context.Context, c v1alpha1.Cluster, to v1alpha1.Status) (v1alpha1.Cluster, error) {
	updated := c
	updated.Status = to
	if err := a.Store.SaveCluster(ctx, updated); err != nil {
		return c, fmt.Errorf("failed to save cluster %s: %w", c.ID, err)
	}
	metrics.RecordStatusTransition(string(c.Status), string(to))
	log.FromContext(ctx).Info("cluster status changed", "cluster", c.ID, "from", c.Status, "to", to)
	return updated, nil
}
