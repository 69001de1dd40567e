// Package driver implements the lifecycle operations the cluster service
// invokes for a Cluster API backed cluster.
//
// Operations are synchronous and never wait for the child control plane.
// They submit desired state and leave the record in an *_IN_PROGRESS status;
// UpdateClusterStatus is called repeatedly afterwards to advance it.
package driver
