package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/driver"
	"github.com/imamik/magnum-capi/internal/store"
	"github.com/imamik/magnum-capi/internal/util/retry"
)

// Refresher advances a cluster record from the management cluster.
type Refresher interface {
	UpdateClusterStatus(ctx context.Context, c v1alpha1.Cluster) (v1alpha1.Cluster, error)
}

// Poller refreshes every in-progress cluster once per interval.
type Poller struct {
	refresher Refresher
	store     store.Store
	interval  time.Duration
	retryOpts []retry.Option
}

// New creates a Poller. Transient refresh errors are retried up to
// maxRetries times per tick.
func New(r Refresher, s store.Store, interval time.Duration, maxRetries int, opts ...retry.Option) *Poller {
	return &Poller{
		refresher: r,
		store:     s,
		interval:  interval,
		retryOpts: append([]retry.Option{retry.WithMaxRetries(maxRetries)}, opts...),
	}
}

// Start runs ticks until ctx is cancelled. It satisfies manager.Runnable.
func (p *Poller) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("poller")
	logger.Info("starting status poller", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Tick(ctx); err != nil {
			logger.Error(err, "status refresh failed")
		}
		select {
		case <-ctx.Done():
			logger.Info("stopping status poller")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick refreshes every stored cluster whose status is in progress and drops
// records that reached DELETE_COMPLETE. Failures of single clusters do not
// stop the tick; they are joined into the returned error.
func (p *Poller) Tick(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("poller")

	clusters, err := p.store.ListClusters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clusters: %w", err)
	}

	var errs []error
	for _, c := range clusters {
		if c.Status == v1alpha1.DeleteComplete {
			if err := p.forget(ctx, c); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if !c.Status.IsInProgress() {
			continue
		}

		updated, err := p.refresh(ctx, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("cluster %s: %w", c.ID, err))
			continue
		}
		if updated.Status != c.Status {
			logger.Info("cluster advanced", "cluster", c.ID, "from", c.Status, "to", updated.Status)
		}
		if updated.Status == v1alpha1.DeleteComplete {
			if err := p.forget(ctx, updated); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Poller) refresh(ctx context.Context, c v1alpha1.Cluster) (v1alpha1.Cluster, error) {
	updated := c
	err := retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		var err error
		updated, err = p.refresher.UpdateClusterStatus(ctx, c)
		return retry.FatalIf(err, driver.ErrNotSupported, credentials.ErrCredentialExists, v1alpha1.ErrInvalidNodeGroups)
	}, p.retryOpts...)
	return updated, err
}

func (p *Poller) forget(ctx context.Context, c v1alpha1.Cluster) error {
	if err := p.store.DeleteCluster(ctx, c.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to remove deleted cluster %s: %w", c.ID, err)
	}
	log.FromContext(ctx).Info("removed deleted cluster record", "cluster", c.ID)
	return nil
}
