package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/metrics"
	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/status"
	"github.com/imamik/magnum-capi/internal/store"
)

// ErrNotSupported is returned by operations this driver does not implement.
var ErrNotSupported = errors.New("operation not supported by this driver")

func notSupported(operation string) error {
	return fmt.Errorf("%s: %w", operation, ErrNotSupported)
}

// Driver sequences the applier, the credential manager, the graph builder
// and the status aggregator.
type Driver struct {
	applier     applier.Applier
	credentials *credentials.Manager
	store       store.Store
	builder     *resources.Builder
	certs       certs.Generator
	aggregator  *status.Aggregator
}

// Option configures a Driver.
type Option func(*Driver)

// WithCertificateGenerator replaces the RSA certificate authority generator.
func WithCertificateGenerator(g certs.Generator) Option {
	return func(d *Driver) {
		d.certs = g
	}
}

// New creates a Driver. The builder namespace is used for every object.
func New(a applier.Applier, creds *credentials.Manager, s store.Store, b *resources.Builder, opts ...Option) *Driver {
	d := &Driver{
		applier:     a,
		credentials: creds,
		store:       s,
		builder:     b,
		certs:       certs.RSAGenerator{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.aggregator = &status.Aggregator{
		Applier:     a,
		Credentials: creds,
		Store:       s,
		Namespace:   b.Namespace,
	}
	return d
}

func (d *Driver) namespace() string {
	return d.builder.Namespace
}

// observe records the outcome of an operation. Use with a named error return:
//
//	defer d.observe(ctx, "create_cluster", time.Now(), &err)
func (d *Driver) observe(ctx context.Context, operation string, start time.Time, err *error) {
	metrics.RecordOperation(operation, *err, time.Since(start))
	if *err != nil {
		log.FromContext(ctx).V(1).Info("operation failed", "operation", operation, "error", (*err).Error())
	}
}

// applyGraph applies descriptors in order and stops at the first failure.
func (d *Driver) applyGraph(ctx context.Context, g resources.Graph) error {
	logger := log.FromContext(ctx)
	for _, desc := range g {
		logger.V(1).Info("applying", "step", desc.Step.String(), "object", desc.Ref().String())
		if err := d.applier.Apply(ctx, desc.Object); err != nil {
			return fmt.Errorf("failed to apply %s: %w", desc.Ref(), err)
		}
	}
	return nil
}

func (d *Driver) deleteRefs(ctx context.Context, refs []applier.Ref) error {
	for _, ref := range refs {
		if err := d.applier.Delete(ctx, ref); err != nil {
			return fmt.Errorf("failed to delete %s: %w", ref, err)
		}
	}
	return nil
}
