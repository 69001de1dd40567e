/*
Package store persists the cluster and node group records the driver reports
to the cluster service.

Records are kept in a single bbolt database under <stateDir>/magnum-capi.db.
Each cluster is one JSON value in the clusters bucket, keyed by cluster id,
with its node groups embedded. Saving a node group rewrites the owning
cluster record inside one transaction, so a reader never observes a cluster
with a half written node group.
*/
package store
