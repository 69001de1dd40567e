package driver

import (
	"context"
	"time"
)

// Federation identifies a federation of clusters.
type Federation struct {
	ID   string
	Name string
}

// CreateFederation is not supported.
func (d *Driver) CreateFederation(ctx context.Context, _ Federation) (err error) {
	defer d.observe(ctx, "create_federation", time.Now(), &err)
	return notSupported("create_federation")
}

// UpdateFederation is not supported.
func (d *Driver) UpdateFederation(ctx context.Context, _ Federation) (err error) {
	defer d.observe(ctx, "update_federation", time.Now(), &err)
	return notSupported("update_federation")
}

// DeleteFederation is not supported.
func (d *Driver) DeleteFederation(ctx context.Context, _ Federation) (err error) {
	defer d.observe(ctx, "delete_federation", time.Now(), &err)
	return notSupported("delete_federation")
}
